package hub

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Dias221467/Internship_Manager/internal/models"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// startHubServer exposes the hub over a real websocket endpoint; the user id
// travels in the query string since the tests skip authentication.
func startHubServer(t *testing.T, h *Hub) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(r.URL.Query().Get("user"), 10, 64)
		if err != nil {
			http.Error(w, "bad user", http.StatusBadRequest)
			return
		}
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := h.Add(userID, conn)
		defer h.Remove(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dialHub(t *testing.T, srv *httptest.Server, userID int64) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + strconv.FormatInt(userID, 10)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event Event
	require.NoError(t, conn.ReadJSON(&event))
	return event
}

func TestHubFansOutToAllConnectionsOfUser(t *testing.T) {
	h := NewHub()
	srv := startHubServer(t, h)

	// Two tabs for user 1, one for user 2.
	tab1 := dialHub(t, srv, 1)
	tab2 := dialHub(t, srv, 1)
	other := dialHub(t, srv, 2)

	require.Eventually(t, func() bool { return h.CountConnections(1) == 2 && h.CountConnections(2) == 1 },
		2*time.Second, 5*time.Millisecond)

	notif := &models.Notification{ID: 11, UserID: 1, Type: models.TypeInfo, Title: "hello", Message: "world", Status: models.StatusUnread}
	h.SendToUser(1, notif)

	for _, conn := range []*websocket.Conn{tab1, tab2} {
		event := readEvent(t, conn)
		assert.Equal(t, EventReceiveNotification, event.Event)
		require.NotNil(t, event.Data)
		assert.Equal(t, int64(11), event.Data.ID)
		assert.Equal(t, "hello", event.Data.Title)
	}

	// User 2 must not receive the event.
	require.NoError(t, other.SetReadDeadline(time.Now().Add(150*time.Millisecond)))
	var event Event
	err := other.ReadJSON(&event)
	assert.Error(t, err, "user 2 unexpectedly received a push")
}

func TestHubSendToUserWithoutConnectionsIsNoOp(t *testing.T) {
	h := NewHub()
	// Nothing registered; must not panic or block.
	h.SendToUser(42, &models.Notification{ID: 1, UserID: 42})
	assert.Equal(t, 0, h.CountConnections(42))
}

func TestHubRemoveDropsConnection(t *testing.T) {
	h := NewHub()
	srv := startHubServer(t, h)

	conn := dialHub(t, srv, 1)
	require.Eventually(t, func() bool { return h.CountConnections(1) == 1 },
		2*time.Second, 5*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return h.CountConnections(1) == 0 },
		2*time.Second, 5*time.Millisecond)
}

func TestHeartbeatReapsStaleConnections(t *testing.T) {
	h := NewHub()
	srv := startHubServer(t, h)

	dialHub(t, srv, 1)
	require.Eventually(t, func() bool { return h.CountConnections(1) == 1 },
		2*time.Second, 5*time.Millisecond)

	// Backdate liveness far past two intervals so the next sweep reaps it.
	h.mu.RLock()
	for _, set := range h.connections {
		for c := range set {
			c.mu.Lock()
			c.lastSeen = time.Now().Add(-time.Minute)
			c.mu.Unlock()
		}
	}
	h.mu.RUnlock()

	go h.Heartbeat(10 * time.Millisecond)

	require.Eventually(t, func() bool { return h.CountConnections(1) == 0 },
		2*time.Second, 5*time.Millisecond)
}

func TestHubEventEnvelopeShape(t *testing.T) {
	notif := &models.Notification{ID: 3, UserID: 9, Type: models.TypeWelcome, Title: "Welcome", Message: "Hi", Status: models.StatusUnread}
	payload, err := json.Marshal(Event{Event: EventReceiveNotification, Data: notif})
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.JSONEq(t, `"ReceiveNotification"`, string(decoded["event"]))
	assert.Contains(t, string(decoded["data"]), `"id":3`)
}
