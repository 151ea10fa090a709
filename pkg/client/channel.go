package client

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// State is the delivery channel's liveness state.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateReconnecting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// ChannelConfig configures the push channel.
type ChannelConfig struct {
	URL            string
	Token          string
	Backoff        Backoff
	ConnectTimeout time.Duration
	Transport      Transport

	// OnNotification is invoked for every pushed notification.
	OnNotification func(Notification)
	// OnStateChange is invoked whenever the channel changes state.
	OnStateChange func(State)
}

// Channel maintains a push connection to the notification hub across network
// interruptions. Reconnection follows the configured backoff; exhausting the
// budget parks the channel in StateClosed until Start is called again.
type Channel struct {
	cfg       ChannelConfig
	transport Transport

	mu       sync.Mutex
	state    State
	conn     Conn
	stop     chan struct{}
	done     chan struct{}
	running  bool
	stopping bool
}

// NewChannel builds a channel. Zero-value config fields fall back to
// DefaultBackoff, a 10s connect timeout and the websocket transport.
func NewChannel(cfg ChannelConfig) *Channel {
	if cfg.Backoff == (Backoff{}) {
		cfg.Backoff = DefaultBackoff
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	transport := cfg.Transport
	if transport == nil {
		transport = NewWebSocketTransport(cfg.ConnectTimeout)
	}
	return &Channel{
		cfg:       cfg,
		transport: transport,
		state:     StateIdle,
	}
}

// State returns the current liveness state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start begins connecting. Calling Start on a Closed channel restarts the
// cycle from attempt 0 (the manual-reconnect path); calling it while the
// channel is already running is a no-op.
func (c *Channel) Start() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.stopping = false
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	c.mu.Unlock()

	c.setState(StateConnecting)
	go c.run()
}

// Stop cancels any pending reconnection attempt, closes the live connection
// and parks the channel in StateClosed. No automatic attempts follow.
func (c *Channel) Stop() {
	c.mu.Lock()
	if !c.running || c.stopping {
		c.mu.Unlock()
		return
	}
	c.stopping = true
	close(c.stop)
	conn := c.conn
	done := c.done
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	<-done
}

func (c *Channel) run() {
	defer func() {
		c.mu.Lock()
		c.running = false
		done := c.done
		c.mu.Unlock()
		c.setState(StateClosed)
		close(done)
	}()

	attempt := 0
	for {
		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.ConnectTimeout)
		conn, err := c.transport.Dial(ctx, c.cfg.URL, c.cfg.Token)
		cancel()

		if err != nil {
			if errors.Is(err, ErrUnauthorized) {
				// A bad credential never gets retried.
				log.WithError(err).Warn("Push channel rejected credential")
				return
			}
			if c.stopped() {
				return
			}
			if c.cfg.Backoff.Exhausted(attempt) {
				log.Warn("Push channel reconnection attempts exhausted")
				return
			}
			delay := c.cfg.Backoff.Delay(attempt)
			attempt++
			log.WithError(err).WithFields(log.Fields{
				"attempt": attempt,
				"delay":   delay.String(),
			}).Info("Push channel connect failed, retrying")
			c.setState(StateReconnecting)
			if !c.sleep(delay) {
				return
			}
			continue
		}

		attempt = 0
		c.setConn(conn)
		// A Stop issued while the dial was in flight saw a nil conn and had
		// nothing to close; honor it here instead of entering the read loop.
		if c.stopped() {
			_ = conn.Close()
			c.setConn(nil)
			return
		}
		c.setState(StateOpen)

		c.readLoop(conn)
		c.setConn(nil)

		if c.stopped() {
			return
		}
		log.Info("Push channel lost, reconnecting")
		c.setState(StateReconnecting)
		if c.cfg.Backoff.Exhausted(attempt) {
			return
		}
		delay := c.cfg.Backoff.Delay(attempt)
		attempt++
		if !c.sleep(delay) {
			return
		}
	}
}

// readLoop pumps events until the connection breaks.
func (c *Channel) readLoop(conn Conn) {
	defer conn.Close()
	for {
		event, err := conn.ReadEvent()
		if err != nil {
			return
		}
		if notif, ok := decodeNotification(event); ok && c.cfg.OnNotification != nil {
			c.cfg.OnNotification(*notif)
		}
	}
}

// sleep waits for the backoff delay, returning false when Stop interrupts it.
func (c *Channel) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-c.stop:
		return false
	}
}

func (c *Channel) stopped() bool {
	select {
	case <-c.stop:
		return true
	default:
		return false
	}
}

func (c *Channel) setConn(conn Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}

func (c *Channel) setState(s State) {
	c.mu.Lock()
	if c.state == s {
		c.mu.Unlock()
		return
	}
	c.state = s
	c.mu.Unlock()

	if c.cfg.OnStateChange != nil {
		c.cfg.OnStateChange(s)
	}
}
