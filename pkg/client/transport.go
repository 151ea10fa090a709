package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// EventReceiveNotification is the push event carrying a new notification.
const EventReceiveNotification = "ReceiveNotification"

// Event is the envelope the server writes for every push.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Conn is a single live push connection.
type Conn interface {
	// ReadEvent blocks until the next event or a transport error.
	ReadEvent() (*Event, error)
	Close() error
}

// Transport dials the push endpoint. The production implementation speaks
// websocket; tests inject a scripted fake.
type Transport interface {
	Dial(ctx context.Context, rawURL, token string) (Conn, error)
}

type wsTransport struct {
	handshakeTimeout time.Duration
}

// NewWebSocketTransport returns the production websocket transport.
func NewWebSocketTransport(handshakeTimeout time.Duration) Transport {
	if handshakeTimeout <= 0 {
		handshakeTimeout = 10 * time.Second
	}
	return &wsTransport{handshakeTimeout: handshakeTimeout}
}

// Dial connects to the hub endpoint. The credential travels as a query
// parameter because the websocket handshake cannot carry custom headers.
func (t *wsTransport) Dial(ctx context.Context, rawURL, token string) (Conn, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	dialer := websocket.Dialer{HandshakeTimeout: t.handshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return &wsConn{conn: conn}, nil
}

type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) ReadEvent() (*Event, error) {
	var event Event
	if err := c.conn.ReadJSON(&event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

// decodeNotification unpacks the payload of a ReceiveNotification event.
func decodeNotification(event *Event) (*Notification, bool) {
	if event == nil || !strings.EqualFold(event.Event, EventReceiveNotification) {
		return nil, false
	}
	var notif Notification
	if err := json.Unmarshal(event.Data, &notif); err != nil {
		return nil, false
	}
	return &notif, true
}
