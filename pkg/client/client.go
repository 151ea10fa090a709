package client

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"
)

// Config wires a notification client together.
type Config struct {
	// BaseURL is the REST API root, e.g. "http://localhost:8080".
	BaseURL string
	// HubURL is the push endpoint, e.g. "http://localhost:8080/notificationHub".
	HubURL string
	// Token is the caller's bearer credential, reused for both surfaces.
	Token string

	Backoff        Backoff
	ConnectTimeout time.Duration
	ToastDuration  time.Duration

	HTTPClient *http.Client
	Transport  Transport
}

// Client is the full client-side notification subsystem: the REST API, the
// push channel, the unread counter stream, the toast queue and an
// id-deduplicating local cache. Push and pull both converge on the cache;
// Refresh always wins over accumulated optimistic deltas.
type Client struct {
	api     *API
	channel *Channel

	Counter *UnreadCounter
	Toasts  *ToastQueue

	toastDuration time.Duration

	mu     sync.Mutex
	byID   map[int64]Notification
	sorted []Notification // most recent first
}

func New(cfg Config) *Client {
	api := NewAPI(cfg.BaseURL, cfg.Token, cfg.HTTPClient)

	c := &Client{
		api:           api,
		Counter:       NewUnreadCounter(api),
		Toasts:        NewToastQueue(),
		toastDuration: cfg.ToastDuration,
		byID:          make(map[int64]Notification),
	}

	c.channel = NewChannel(ChannelConfig{
		URL:            cfg.HubURL,
		Token:          cfg.Token,
		Backoff:        cfg.Backoff,
		ConnectTimeout: cfg.ConnectTimeout,
		Transport:      cfg.Transport,
		OnNotification: c.handlePush,
		OnStateChange:  c.handleStateChange,
	})
	return c
}

// API exposes the raw REST client for callers that need it directly.
func (c *Client) API() *API { return c.api }

// Connect starts the push channel. Safe to call again after the channel
// closed; that restarts the reconnection cycle from attempt 0.
func (c *Client) Connect() { c.channel.Start() }

// Disconnect stops the push channel and cancels any pending reconnection.
// CRUD against notifications keeps working over REST regardless.
func (c *Client) Disconnect() { c.channel.Stop() }

// ChannelState reports the push channel's liveness. StateClosed after
// exhausted retries means live updates are unavailable until Connect is
// called again.
func (c *Client) ChannelState() State { return c.channel.State() }

// Refresh pulls the authoritative notification list and unread count,
// replacing the local cache. Invoked automatically whenever the channel
// (re)opens; callers should also run it periodically as a safety net.
func (c *Client) Refresh(ctx context.Context) error {
	notifications, err := c.api.ListNotifications(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.byID = make(map[int64]Notification, len(notifications))
	for _, n := range notifications {
		c.byID[n.ID] = n
	}
	c.resortLocked()
	c.mu.Unlock()

	return c.Counter.Refresh(ctx)
}

// Notifications returns a snapshot of the cached notifications, most recent
// first.
func (c *Client) Notifications() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.sorted))
	copy(out, c.sorted)
	return out
}

// MarkRead marks one notification as read, optimistically updating the local
// cache and counter ahead of server confirmation.
func (c *Client) MarkRead(ctx context.Context, id int64) error {
	c.mu.Lock()
	changed := false
	if n, ok := c.byID[id]; ok && n.Status == StatusUnread {
		n.Status = StatusRead
		c.byID[id] = n
		c.resortLocked()
		c.Counter.Decrement()
		changed = true
	}
	c.mu.Unlock()

	if err := c.api.MarkRead(ctx, id); err != nil {
		// Roll the optimistic update back and reconcile against the server.
		if changed {
			c.mu.Lock()
			if n, ok := c.byID[id]; ok && n.Status == StatusRead {
				n.Status = StatusUnread
				c.byID[id] = n
				c.resortLocked()
			}
			c.mu.Unlock()
		}
		_ = c.Counter.Refresh(ctx)
		return err
	}
	return nil
}

// MarkAllRead marks every notification as read and zeroes the counter.
func (c *Client) MarkAllRead(ctx context.Context) error {
	c.mu.Lock()
	for id, n := range c.byID {
		if n.Status == StatusUnread {
			n.Status = StatusRead
			c.byID[id] = n
		}
	}
	c.resortLocked()
	c.mu.Unlock()
	c.Counter.Reset()

	if _, err := c.api.MarkAllRead(ctx); err != nil {
		_ = c.Counter.Refresh(ctx)
		return err
	}
	return nil
}

// Delete permanently removes a notification.
func (c *Client) Delete(ctx context.Context, id int64) error {
	c.mu.Lock()
	if n, ok := c.byID[id]; ok {
		if n.Status == StatusUnread {
			c.Counter.Decrement()
		}
		delete(c.byID, id)
		c.resortLocked()
	}
	c.mu.Unlock()

	if err := c.api.DeleteNotification(ctx, id); err != nil {
		_ = c.Counter.Refresh(ctx)
		return err
	}
	return nil
}

// handlePush is the channel's delivery callback. Duplicates (a push racing a
// pull that already fetched the same notification) are dropped by id.
func (c *Client) handlePush(n Notification) {
	c.mu.Lock()
	if _, seen := c.byID[n.ID]; seen {
		c.mu.Unlock()
		return
	}
	c.byID[n.ID] = n
	c.resortLocked()
	c.mu.Unlock()

	c.Counter.Increment()
	c.Toasts.Show(n.Title, n.Message, SeverityFor(n.Type), c.toastDuration)
}

// handleStateChange resyncs with the store every time the channel opens,
// covering anything missed while disconnected.
func (c *Client) handleStateChange(s State) {
	if s == StateOpen {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			_ = c.Refresh(ctx)
		}()
	}
}

// resortLocked rebuilds the sorted view, newest first with id as tiebreaker.
func (c *Client) resortLocked() {
	c.sorted = c.sorted[:0]
	for _, n := range c.byID {
		c.sorted = append(c.sorted, n)
	}
	sort.Slice(c.sorted, func(i, j int) bool {
		if !c.sorted[i].CreatedAt.Equal(c.sorted[j].CreatedAt) {
			return c.sorted[i].CreatedAt.After(c.sorted[j].CreatedAt)
		}
		return c.sorted[i].ID > c.sorted[j].ID
	})
}
