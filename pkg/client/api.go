package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Sentinel errors mapped from API status codes.
var (
	ErrNotFound     = errors.New("notification not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// API is the REST client for the notification endpoints.
type API struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewAPI builds a REST client. httpClient may be nil, in which case a client
// with a 15s timeout is used.
func NewAPI(baseURL, token string, httpClient *http.Client) *API {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    httpClient,
	}
}

// ListNotifications fetches all notifications for the caller, most recent first.
func (a *API) ListNotifications(ctx context.Context) ([]Notification, error) {
	var out []Notification
	if err := a.do(ctx, http.MethodGet, "/notifications", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListUnread fetches only the unread notifications.
func (a *API) ListUnread(ctx context.Context) ([]Notification, error) {
	var out []Notification
	if err := a.do(ctx, http.MethodGet, "/notifications/unread", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UnreadCount fetches the authoritative unread count.
func (a *API) UnreadCount(ctx context.Context) (int64, error) {
	var count int64
	if err := a.do(ctx, http.MethodGet, "/notifications/unread/count", nil, &count); err != nil {
		return 0, err
	}
	return count, nil
}

// GetNotification fetches one notification by id.
func (a *API) GetNotification(ctx context.Context, id int64) (*Notification, error) {
	var out Notification
	if err := a.do(ctx, http.MethodGet, fmt.Sprintf("/notifications/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateNotification creates a notification for another user. The caller
// needs a producer (admin/hr) token.
func (a *API) CreateNotification(ctx context.Context, req CreateNotificationRequest) (*Notification, error) {
	var out Notification
	if err := a.do(ctx, http.MethodPost, "/notifications", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkRead marks one notification as read. Idempotent on the server.
func (a *API) MarkRead(ctx context.Context, id int64) error {
	return a.do(ctx, http.MethodPut, fmt.Sprintf("/notifications/%d/read", id), nil, nil)
}

// MarkAllRead marks every unread notification as read and returns how many changed.
func (a *API) MarkAllRead(ctx context.Context) (int64, error) {
	var out struct {
		Updated int64 `json:"updated"`
	}
	if err := a.do(ctx, http.MethodPut, "/notifications/read-all", nil, &out); err != nil {
		return 0, err
	}
	return out.Updated, nil
}

// DeleteNotification permanently deletes a notification.
func (a *API) DeleteNotification(ctx context.Context, id int64) error {
	return a.do(ctx, http.MethodDelete, fmt.Sprintf("/notifications/%d", id), nil, nil)
}

func (a *API) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+a.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusForbidden:
		return ErrForbidden
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s failed with status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
