package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Dias221467/Internship_Manager/internal/models"
	"github.com/Dias221467/Internship_Manager/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory NotificationStore.
type fakeStore struct {
	mu     sync.Mutex
	nextID int64
	notifs map[int64]*models.Notification
}

func newFakeStore() *fakeStore {
	return &fakeStore{notifs: make(map[int64]*models.Notification)}
}

func (s *fakeStore) CreateNotification(ctx context.Context, notif *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	notif.ID = s.nextID
	notif.Status = models.StatusUnread
	notif.CreatedAt = time.Now().UTC()
	stored := *notif
	s.notifs[notif.ID] = &stored
	return nil
}

func (s *fakeStore) GetUserNotifications(ctx context.Context, userID int64) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Notification, 0)
	for _, n := range s.notifs {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (s *fakeStore) GetUnreadNotifications(ctx context.Context, userID int64) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Notification, 0)
	for _, n := range s.notifs {
		if n.UserID == userID && n.Status == models.StatusUnread {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (s *fakeStore) CountUnread(ctx context.Context, userID int64) (int64, error) {
	unread, err := s.GetUnreadNotifications(ctx, userID)
	return int64(len(unread)), err
}

func (s *fakeStore) GetByID(ctx context.Context, id int64) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *n
	return &out, nil
}

func (s *fakeStore) MarkAsRead(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.notifs[id]; ok {
		n.Status = models.StatusRead
	}
	return nil
}

func (s *fakeStore) MarkAllAsRead(ctx context.Context, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var updated int64
	for _, n := range s.notifs {
		if n.UserID == userID && n.Status == models.StatusUnread {
			n.Status = models.StatusRead
			updated++
		}
	}
	return updated, nil
}

func (s *fakeStore) DeleteNotification(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.notifs, id)
	return nil
}

func (s *fakeStore) DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for id, n := range s.notifs {
		if n.Status == models.StatusRead && !n.CreatedAt.After(cutoff) {
			delete(s.notifs, id)
			deleted++
		}
	}
	return deleted, nil
}

// fakePusher records pushes.
type fakePusher struct {
	mu     sync.Mutex
	pushes []*models.Notification
}

func (p *fakePusher) SendToUser(userID int64, notif *models.Notification) {
	p.mu.Lock()
	p.pushes = append(p.pushes, notif)
	p.mu.Unlock()
}

func (p *fakePusher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pushes)
}

func TestCreateNotificationPersistsAndPushes(t *testing.T) {
	store := newFakeStore()
	pusher := &fakePusher{}
	svc := NewNotificationService(store, pusher)

	notif, err := svc.CreateNotification(context.Background(), 7, models.TypeWelcome, "Welcome", "Glad to have you", "")
	require.NoError(t, err)
	require.NotNil(t, notif)

	assert.NotZero(t, notif.ID)
	assert.Equal(t, models.StatusUnread, notif.Status)
	assert.False(t, notif.CreatedAt.IsZero())

	list, err := svc.GetUserNotifications(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	count, err := svc.CountUnread(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	assert.Equal(t, 1, pusher.count())
}

func TestCreateNotificationSucceedsWithoutPusher(t *testing.T) {
	svc := NewNotificationService(newFakeStore(), nil)

	notif, err := svc.CreateNotification(context.Background(), 7, models.TypeInfo, "t", "m", "")
	require.NoError(t, err)
	assert.NotZero(t, notif.ID)
}

func TestGetNotificationEnforcesOwnership(t *testing.T) {
	store := newFakeStore()
	svc := NewNotificationService(store, nil)

	created, err := svc.CreateNotification(context.Background(), 1, models.TypeInfo, "t", "m", "")
	require.NoError(t, err)

	_, err = svc.GetNotification(context.Background(), 2, created.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.GetNotification(context.Background(), 1, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	notif, err := svc.GetNotification(context.Background(), 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, notif.ID)
}

func TestMarkNotificationAsReadIsIdempotent(t *testing.T) {
	store := newFakeStore()
	svc := NewNotificationService(store, nil)

	created, err := svc.CreateNotification(context.Background(), 1, models.TypeInfo, "t", "m", "")
	require.NoError(t, err)

	require.NoError(t, svc.MarkNotificationAsRead(context.Background(), 1, created.ID))
	// Second call must not be an error.
	require.NoError(t, svc.MarkNotificationAsRead(context.Background(), 1, created.ID))

	notif, err := svc.GetNotification(context.Background(), 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRead, notif.Status)

	count, err := svc.CountUnread(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestMarkNotificationAsReadChecksOwnership(t *testing.T) {
	store := newFakeStore()
	svc := NewNotificationService(store, nil)

	created, err := svc.CreateNotification(context.Background(), 1, models.TypeInfo, "t", "m", "")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.MarkNotificationAsRead(context.Background(), 2, created.ID), ErrForbidden)
	assert.ErrorIs(t, svc.MarkNotificationAsRead(context.Background(), 1, 404), ErrNotFound)
}

func TestMarkAllNotificationsAsRead(t *testing.T) {
	store := newFakeStore()
	svc := NewNotificationService(store, nil)

	for i := 0; i < 3; i++ {
		_, err := svc.CreateNotification(context.Background(), 1, models.TypeInfo, "t", "m", "")
		require.NoError(t, err)
	}
	_, err := svc.CreateNotification(context.Background(), 2, models.TypeInfo, "other user", "m", "")
	require.NoError(t, err)

	updated, err := svc.MarkAllNotificationsAsRead(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated)

	count, err := svc.CountUnread(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// The other user's notifications are untouched.
	count, err = svc.CountUnread(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Idempotent: a second bulk call updates nothing and does not fail.
	updated, err = svc.MarkAllNotificationsAsRead(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)
}

func TestDeleteNotification(t *testing.T) {
	store := newFakeStore()
	svc := NewNotificationService(store, nil)

	created, err := svc.CreateNotification(context.Background(), 1, models.TypeInfo, "t", "m", "")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteNotification(context.Background(), 2, created.ID), ErrForbidden)

	require.NoError(t, svc.DeleteNotification(context.Background(), 1, created.ID))
	_, err = svc.GetNotification(context.Background(), 1, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.DeleteNotification(context.Background(), 1, created.ID), ErrNotFound)
}

func TestCleanupOldNotifications(t *testing.T) {
	store := newFakeStore()
	svc := NewNotificationService(store, nil)

	oldRead, err := svc.CreateNotification(context.Background(), 1, models.TypeInfo, "old", "m", "")
	require.NoError(t, err)
	require.NoError(t, svc.MarkNotificationAsRead(context.Background(), 1, oldRead.ID))
	store.mu.Lock()
	store.notifs[oldRead.ID].CreatedAt = time.Now().UTC().AddDate(0, 0, -60)
	store.mu.Unlock()

	fresh, err := svc.CreateNotification(context.Background(), 1, models.TypeInfo, "fresh", "m", "")
	require.NoError(t, err)

	require.NoError(t, svc.CleanupOldNotifications(context.Background(), 30))

	_, err = svc.GetNotification(context.Background(), 1, oldRead.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetNotification(context.Background(), 1, fresh.ID)
	assert.NoError(t, err)
}
