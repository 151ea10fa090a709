package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dias221467/Internship_Manager/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a notification id does not exist.
var ErrNotFound = errors.New("notification not found")

type NotificationRepository struct {
	collection *mongo.Collection
	counters   *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{
		collection: db.Collection("notifications"),
		counters:   db.Collection("counters"),
	}
}

// EnsureIndexes creates the indexes the unread count and listing queries rely on.
func (r *NotificationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create notification indexes: %w", err)
	}
	return nil
}

// nextID atomically increments the notifications sequence and returns the new value.
func (r *NotificationRepository) nextID(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(
		ctx,
		bson.M{"_id": "notifications"},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("failed to advance notification sequence: %w", err)
	}
	return doc.Seq, nil
}

// CreateNotification inserts a new notification with a server-assigned id and timestamp.
func (r *NotificationRepository) CreateNotification(ctx context.Context, notif *models.Notification) error {
	id, err := r.nextID(ctx)
	if err != nil {
		return err
	}
	notif.ID = id
	notif.Status = models.StatusUnread
	notif.CreatedAt = time.Now().UTC()

	if _, err := r.collection.InsertOne(ctx, notif); err != nil {
		logrus.WithError(err).Error("Failed to insert notification")
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// GetUserNotifications returns all notifications for a user, most recent first.
func (r *NotificationRepository) GetUserNotifications(ctx context.Context, userID int64) ([]models.Notification, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

// GetUnreadNotifications returns the unread subset, most recent first.
func (r *NotificationRepository) GetUnreadNotifications(ctx context.Context, userID int64) ([]models.Notification, error) {
	return r.find(ctx, bson.M{"user_id": userID, "status": models.StatusUnread})
}

func (r *NotificationRepository) find(ctx context.Context, filter bson.M) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	defer cursor.Close(ctx)

	notifications := make([]models.Notification, 0)
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return notifications, nil
}

// CountUnread counts unread notifications through the {user_id, status} index.
func (r *NotificationRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID, "status": models.StatusUnread})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// GetByID fetches a single notification. Returns ErrNotFound when absent.
func (r *NotificationRepository) GetByID(ctx context.Context, id int64) (*models.Notification, error) {
	var notif models.Notification
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&notif)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch notification %d: %w", id, err)
	}
	return &notif, nil
}

// MarkAsRead sets the notification status to read. Idempotent.
func (r *NotificationRepository) MarkAsRead(ctx context.Context, id int64) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": models.StatusRead}})
	return err
}

// MarkAllAsRead flips every unread notification of the user and reports how many changed.
func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID int64) (int64, error) {
	result, err := r.collection.UpdateMany(
		ctx,
		bson.M{"user_id": userID, "status": models.StatusUnread},
		bson.M{"$set": bson.M{"status": models.StatusRead}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications as read: %w", err)
	}
	return result.ModifiedCount, nil
}

// DeleteNotification permanently removes a notification.
func (r *NotificationRepository) DeleteNotification(ctx context.Context, id int64) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// DeleteReadOlderThan removes read notifications created before the cutoff.
func (r *NotificationRepository) DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{
		"status":     models.StatusRead,
		"created_at": bson.M{"$lte": cutoff},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete old notifications: %w", err)
	}
	if result.DeletedCount > 0 {
		logrus.Infof("Deleted %d old read notifications", result.DeletedCount)
	}
	return result.DeletedCount, nil
}
