package models

import "time"

// Notification statuses. A notification only ever moves unread -> read.
const (
	StatusUnread = "unread"
	StatusRead   = "read"
)

// Notification types. Display categories only, no behavioral effect.
const (
	TypeInfo             = "Info"
	TypeSuccess          = "Success"
	TypeWarning          = "Warning"
	TypeError            = "Error"
	TypeWelcome          = "Welcome"
	TypeUserRegistration = "UserRegistration"

	TypeRatingReceived  = "RatingReceived"
	TypeRatingSubmitted = "RatingSubmitted"
	TypeRatingApproved  = "RatingApproved"
	TypeRatingRejected  = "RatingRejected"
	TypeRatingResponse  = "RatingResponse"
	TypeRatingReminder  = "RatingReminder"
	TypeRatingRequest   = "RatingRequest"
)

type Notification struct {
	ID              int64     `bson:"_id" json:"id"`
	UserID          int64     `bson:"user_id" json:"user_id"`
	Type            string    `bson:"type" json:"type"`                                             // e.g. "RatingReceived", "Welcome"
	Title           string    `bson:"title" json:"title"`                                           // Short headline
	Message         string    `bson:"message" json:"message"`                                       // Descriptive content
	Status          string    `bson:"status" json:"status"`                                         // "unread" or "read"
	RelatedEntityID string    `bson:"related_entity_id,omitempty" json:"related_entity_id,omitempty"` // Optional reference to a project/rating/etc.
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
}
