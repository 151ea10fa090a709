package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dias221467/Internship_Manager/internal/models"
	"github.com/Dias221467/Internship_Manager/internal/repository"
	"github.com/sirupsen/logrus"
)

// ErrNotFound mirrors the repository sentinel so handlers only import services.
var ErrNotFound = repository.ErrNotFound

// ErrForbidden is returned when a user touches a notification they do not own.
var ErrForbidden = errors.New("notification belongs to another user")

// NotificationStore is the persistence surface the service needs.
// *repository.NotificationRepository implements it.
type NotificationStore interface {
	CreateNotification(ctx context.Context, notif *models.Notification) error
	GetUserNotifications(ctx context.Context, userID int64) ([]models.Notification, error)
	GetUnreadNotifications(ctx context.Context, userID int64) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Notification, error)
	MarkAsRead(ctx context.Context, id int64) error
	MarkAllAsRead(ctx context.Context, userID int64) (int64, error)
	DeleteNotification(ctx context.Context, id int64) error
	DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Pusher delivers a notification to every live connection of a user.
// *hub.Hub implements it.
type Pusher interface {
	SendToUser(userID int64, notif *models.Notification)
}

type NotificationService struct {
	store  NotificationStore
	pusher Pusher
}

func NewNotificationService(store NotificationStore, pusher Pusher) *NotificationService {
	return &NotificationService{
		store:  store,
		pusher: pusher,
	}
}

// CreateNotification persists a notification and pushes it to the recipient's
// live connections. The push is best effort: a create succeeds even when the
// user has no reachable connection.
func (s *NotificationService) CreateNotification(ctx context.Context, userID int64, notifType, title, message, relatedEntityID string) (*models.Notification, error) {
	notif := &models.Notification{
		UserID:          userID,
		Type:            notifType,
		Title:           title,
		Message:         message,
		RelatedEntityID: relatedEntityID,
	}
	if err := s.store.CreateNotification(ctx, notif); err != nil {
		return nil, err
	}

	if s.pusher != nil {
		s.pusher.SendToUser(userID, notif)
	}
	return notif, nil
}

// GetUserNotifications returns all notifications for a user, most recent first.
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID int64) ([]models.Notification, error) {
	return s.store.GetUserNotifications(ctx, userID)
}

// GetUnreadNotifications returns only the unread ones.
func (s *NotificationService) GetUnreadNotifications(ctx context.Context, userID int64) ([]models.Notification, error) {
	return s.store.GetUnreadNotifications(ctx, userID)
}

// CountUnread returns the number of unread notifications for a user.
func (s *NotificationService) CountUnread(ctx context.Context, userID int64) (int64, error) {
	return s.store.CountUnread(ctx, userID)
}

// GetNotification fetches one notification, enforcing ownership.
func (s *NotificationService) GetNotification(ctx context.Context, userID, notifID int64) (*models.Notification, error) {
	notif, err := s.store.GetByID(ctx, notifID)
	if err != nil {
		return nil, err
	}
	if notif.UserID != userID {
		return nil, ErrForbidden
	}
	return notif, nil
}

// MarkNotificationAsRead flips a notification to read. Idempotent: marking an
// already-read notification succeeds.
func (s *NotificationService) MarkNotificationAsRead(ctx context.Context, userID, notifID int64) error {
	if _, err := s.GetNotification(ctx, userID, notifID); err != nil {
		return err
	}
	return s.store.MarkAsRead(ctx, notifID)
}

// MarkAllNotificationsAsRead flips every unread notification of the user and
// returns how many were changed (possibly 0).
func (s *NotificationService) MarkAllNotificationsAsRead(ctx context.Context, userID int64) (int64, error) {
	return s.store.MarkAllAsRead(ctx, userID)
}

// DeleteNotification permanently removes a notification, enforcing ownership.
func (s *NotificationService) DeleteNotification(ctx context.Context, userID, notifID int64) error {
	if _, err := s.GetNotification(ctx, userID, notifID); err != nil {
		return err
	}
	return s.store.DeleteNotification(ctx, notifID)
}

// CleanupOldNotifications deletes read notifications older than the retention
// window. Called periodically by the scheduler.
func (s *NotificationService) CleanupOldNotifications(ctx context.Context, retentionDays int) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	deleted, err := s.store.DeleteReadOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("cleanup of old notifications failed: %w", err)
	}
	logrus.WithField("deleted", deleted).Info("Notification retention sweep completed")
	return nil
}
