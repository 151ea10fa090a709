package client

import "time"

// Notification statuses as serialized by the server.
const (
	StatusUnread = "unread"
	StatusRead   = "read"
)

// Notification is the client-side view of a server notification.
type Notification struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	Type            string    `json:"type"`
	Title           string    `json:"title"`
	Message         string    `json:"message"`
	Status          string    `json:"status"`
	RelatedEntityID string    `json:"related_entity_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// CreateNotificationRequest is the producer payload for POST /notifications.
type CreateNotificationRequest struct {
	UserID          int64  `json:"user_id"`
	Type            string `json:"type"`
	Title           string `json:"title"`
	Message         string `json:"message"`
	RelatedEntityID string `json:"related_entity_id,omitempty"`
}
