package hub

import (
	"sync"
	"time"

	"github.com/Dias221467/Internship_Manager/internal/models"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// EventReceiveNotification is the event name pushed to clients when a new
// notification is created for them.
const EventReceiveNotification = "ReceiveNotification"

// Event is the envelope written on the wire for every push.
type Event struct {
	Event string               `json:"event"`
	Data  *models.Notification `json:"data"`
}

// Connection is one live websocket bound to an authenticated user. A user may
// hold several at once (multiple tabs/devices).
type Connection struct {
	ID     string
	UserID int64

	conn *websocket.Conn

	mu       sync.Mutex // guards writes to conn
	lastSeen time.Time
}

// Touch records client liveness, called from the pong handler.
func (c *Connection) Touch() {
	c.mu.Lock()
	c.lastSeen = time.Now()
	c.mu.Unlock()
}

func (c *Connection) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub groups live connections by user id for targeted fan-out.
type Hub struct {
	mu          sync.RWMutex
	connections map[int64]map[*Connection]struct{}
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[int64]map[*Connection]struct{}),
	}
}

// Add registers a connection for a user and returns its handle.
func (h *Hub) Add(userID int64, conn *websocket.Conn) *Connection {
	c := &Connection{
		ID:       uuid.NewString(),
		UserID:   userID,
		conn:     conn,
		lastSeen: time.Now(),
	}

	h.mu.Lock()
	if _, ok := h.connections[userID]; !ok {
		h.connections[userID] = make(map[*Connection]struct{})
	}
	h.connections[userID][c] = struct{}{}
	total := len(h.connections[userID])
	h.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"connectionID": c.ID,
		"userID":       userID,
		"total":        total,
	}).Info("WebSocket connected")
	return c
}

// Remove drops a connection and closes its socket.
func (h *Hub) Remove(c *Connection) {
	h.mu.Lock()
	if conns, ok := h.connections[c.UserID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.connections, c.UserID)
		}
	}
	h.mu.Unlock()

	_ = c.conn.Close()
	logrus.WithFields(logrus.Fields{
		"connectionID": c.ID,
		"userID":       c.UserID,
	}).Info("WebSocket disconnected")
}

// SendToUser pushes a notification to every open connection of the user.
// Write failures evict the broken connection; they never propagate to the
// caller, so a create succeeds even when no connection is reachable.
func (h *Hub) SendToUser(userID int64, notif *models.Notification) {
	event := Event{Event: EventReceiveNotification, Data: notif}

	h.mu.RLock()
	conns := make([]*Connection, 0, len(h.connections[userID]))
	for c := range h.connections[userID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.writeJSON(event); err != nil {
			logrus.WithError(err).WithField("connectionID", c.ID).Warn("Failed to push notification, dropping connection")
			h.Remove(c)
		}
	}
}

// CountConnections reports how many connections the user currently holds.
func (h *Hub) CountConnections(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[userID])
}

// Heartbeat pings all connections on the given interval and reaps those that
// have not answered within two intervals. Run it in its own goroutine.
func (h *Hub) Heartbeat(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		// Snapshot first; pinging slow peers must not hold up Add/Remove.
		h.mu.RLock()
		conns := make([]*Connection, 0)
		for _, set := range h.connections {
			for c := range set {
				conns = append(conns, c)
			}
		}
		h.mu.RUnlock()

		for _, c := range conns {
			c.mu.Lock()
			idle := time.Since(c.lastSeen)
			c.mu.Unlock()
			if idle > 2*interval {
				h.Remove(c)
				continue
			}
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second))
		}
	}
}
