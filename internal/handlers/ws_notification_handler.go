package handlers

import (
	"net/http"
	"time"

	"github.com/Dias221467/Internship_Manager/internal/hub"
	jwtutil "github.com/Dias221467/Internship_Manager/pkg/jwt"
	"github.com/Dias221467/Internship_Manager/pkg/logger"
	"github.com/gorilla/websocket"
)

const (
	wsReadLimit    = 512
	wsPongDeadline = 60 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// NotificationHubHandler upgrades authenticated clients to websocket
// connections and registers them with the hub for push delivery.
type NotificationHubHandler struct {
	Hub       *hub.Hub
	JWTSecret string
}

func NewNotificationHubHandler(h *hub.Hub, jwtSecret string) *NotificationHubHandler {
	return &NotificationHubHandler{Hub: h, JWTSecret: jwtSecret}
}

// GET /notificationHub?token=...
// The token travels as a query parameter because the websocket dial cannot
// set custom headers.
func (h *NotificationHubHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	claims, err := jwtutil.ValidateToken(token, h.JWTSecret)
	if err != nil {
		logger.Log.WithError(err).Warn("WebSocket auth failed")
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := h.Hub.Add(claims.UserID, conn)
	defer h.Hub.Remove(c)

	// Reader loop: the client never sends application messages on this
	// channel, only pongs keeping the connection alive.
	conn.SetReadLimit(wsReadLimit)
	conn.SetReadDeadline(time.Now().Add(wsPongDeadline))
	conn.SetPongHandler(func(string) error {
		c.Touch()
		return conn.SetReadDeadline(time.Now().Add(wsPongDeadline))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
