package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dias221467/Internship_Manager/internal/hub"
	"github.com/Dias221467/Internship_Manager/internal/models"
	"github.com/Dias221467/Internship_Manager/internal/services"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWSServer(t *testing.T) (*httptest.Server, *hub.Hub) {
	t.Helper()
	notificationHub := hub.NewHub()
	handler := NewNotificationHubHandler(notificationHub, testSecret)
	srv := httptest.NewServer(http.HandlerFunc(handler.ServeWS))
	t.Cleanup(srv.Close)
	return srv, notificationHub
}

func wsURL(srv *httptest.Server, token string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/?token=" + token
}

func TestServeWSRejectsMissingToken(t *testing.T) {
	srv, _ := startWSServer(t)

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServeWSRejectsInvalidToken(t *testing.T) {
	srv, _ := startWSServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "garbage"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServeWSDeliversCreatedNotifications(t *testing.T) {
	srv, notificationHub := startWSServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, tokenFor(t, 7, "intern")), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return notificationHub.CountConnections(7) == 1 },
		2*time.Second, 5*time.Millisecond)

	// A producer-side create pushes through the hub to the connected client.
	store := newMemStore()
	service := services.NewNotificationService(store, notificationHub)
	created, err := service.CreateNotification(context.Background(), 7, models.TypeRatingReceived, "New evaluation", "You received a rating", "rating-12")
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event hub.Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, hub.EventReceiveNotification, event.Event)
	require.NotNil(t, event.Data)
	assert.Equal(t, created.ID, event.Data.ID)
	assert.Equal(t, "New evaluation", event.Data.Title)
	assert.Equal(t, models.StatusUnread, event.Data.Status)
}
