package notify

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/lumagram/backend/internal/errs"
	"github.com/lumagram/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProfileStore struct {
	profiles map[uint]models.Profile
}

func (f *fakeProfileStore) CreateProfile(*models.Profile) error { return nil }

func (f *fakeProfileStore) GetProfileByID(id uint) (*models.Profile, error) {
	if p, ok := f.profiles[id]; ok {
		return &p, nil
	}
	return nil, errs.NotFound
}

func (f *fakeProfileStore) GetProfileByUsername(string) (*models.Profile, error) {
	return nil, errs.NotFound
}

func (f *fakeProfileStore) GetProfileByFirebaseUID(string) (*models.Profile, error) {
	return nil, errs.NotFound
}

func (f *fakeProfileStore) GetProfilesByIDs(ids []uint) ([]models.Profile, error) {
	var out []models.Profile
	for _, id := range ids {
		if p, ok := f.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProfileStore) UpdateProfile(*models.Profile) error { return nil }

func (f *fakeProfileStore) SearchProfiles(string, int) ([]models.Profile, error) {
	return nil, nil
}

type fakeNotificationStore struct {
	rows      []models.Notification
	createErr error
}

func (f *fakeNotificationStore) CreateNotification(n *models.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.rows = append(f.rows, *n)
	return nil
}

func (f *fakeNotificationStore) GetByRecipientID(recipientID uint, _, _ int) ([]models.Notification, int64, error) {
	var out []models.Notification
	for _, n := range f.rows {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeNotificationStore) GetUnreadCount(uint) (int64, error) { return 0, nil }

func (f *fakeNotificationStore) MarkAsRead(uint, uint) error { return nil }

func (f *fakeNotificationStore) MarkAllAsRead(uint) error { return nil }

type fakePusher struct {
	titles []string
	bodies []string
	err    error
}

func (f *fakePusher) Push(_ context.Context, _ uint, title, body string) error {
	if f.err != nil {
		return f.err
	}
	f.titles = append(f.titles, title)
	f.bodies = append(f.bodies, body)
	return nil
}

func newTestService() (*Service, *fakeProfileStore, *fakeNotificationStore, *fakePusher) {
	profiles := &fakeProfileStore{profiles: map[uint]models.Profile{
		1: {ID: 1, Username: "ana"},
	}}
	notifications := &fakeNotificationStore{}
	pusher := &fakePusher{}
	return NewService(profiles, notifications, pusher), profiles, notifications, pusher
}

func TestNotifyLike(t *testing.T) {
	svc, _, notifications, pusher := newTestService()

	svc.Notify(context.Background(), Event{
		Type:        models.NotificationLike,
		ActorID:     1,
		RecipientID: 2,
		TargetID:    "abc123",
		TargetType:  "post",
		Preview:     "golden hour",
	})

	require.Len(t, notifications.rows, 1)
	row := notifications.rows[0]
	assert.Equal(t, models.NotificationLike, row.Type)
	assert.Equal(t, uint(2), row.RecipientID)
	assert.Equal(t, "abc123", row.TargetID)
	assert.Equal(t, "ana liked your post", row.Message)

	require.Len(t, pusher.titles, 1)
	assert.Equal(t, "ana liked your post", pusher.titles[0])
	assert.Equal(t, `"golden hour"`, pusher.bodies[0])
}

func TestNotifyLikeWithoutCaption(t *testing.T) {
	svc, _, _, pusher := newTestService()

	svc.Notify(context.Background(), Event{
		Type: models.NotificationLike, ActorID: 1, RecipientID: 2,
	})

	require.Len(t, pusher.bodies, 1)
	assert.Equal(t, "Check it out!", pusher.bodies[0])
}

func TestNotifyCommentTruncatesPreview(t *testing.T) {
	svc, _, _, pusher := newTestService()
	long := strings.Repeat("x", 150)

	svc.Notify(context.Background(), Event{
		Type:    models.NotificationComment,
		ActorID: 1, RecipientID: 2,
		Preview: long,
	})

	require.Len(t, pusher.titles, 1)
	assert.Equal(t, "ana commented on your post", pusher.titles[0])
	assert.Equal(t, fmt.Sprintf("%q", long[:100]+"..."), pusher.bodies[0])
}

func TestNotifyFollow(t *testing.T) {
	svc, _, _, pusher := newTestService()

	svc.Notify(context.Background(), Event{
		Type: models.NotificationFollow, ActorID: 1, RecipientID: 2,
	})

	require.Len(t, pusher.titles, 1)
	assert.Equal(t, "ana started following you", pusher.titles[0])
	assert.Equal(t, "Check out their profile!", pusher.bodies[0])
}

func TestNotifyUnknownActorSkips(t *testing.T) {
	svc, _, notifications, pusher := newTestService()

	svc.Notify(context.Background(), Event{
		Type: models.NotificationLike, ActorID: 99, RecipientID: 2,
	})

	assert.Empty(t, notifications.rows)
	assert.Empty(t, pusher.titles)
}

func TestNotifyPersistFailureStillPushes(t *testing.T) {
	svc, _, notifications, pusher := newTestService()
	notifications.createErr = fmt.Errorf("connection refused")

	svc.Notify(context.Background(), Event{
		Type: models.NotificationLike, ActorID: 1, RecipientID: 2,
	})

	assert.Empty(t, notifications.rows)
	assert.Len(t, pusher.titles, 1)
}

func TestNotifyPushFailureSwallowed(t *testing.T) {
	svc, _, notifications, pusher := newTestService()
	pusher.err = fmt.Errorf("fcm unavailable")

	// Must not panic or surface the error.
	svc.Notify(context.Background(), Event{
		Type: models.NotificationLike, ActorID: 1, RecipientID: 2,
	})

	assert.Len(t, notifications.rows, 1)
}

func TestNotifyNilPusher(t *testing.T) {
	profiles := &fakeProfileStore{profiles: map[uint]models.Profile{1: {ID: 1, Username: "ana"}}}
	notifications := &fakeNotificationStore{}
	svc := NewService(profiles, notifications, nil)

	svc.Notify(context.Background(), Event{
		Type: models.NotificationLike, ActorID: 1, RecipientID: 2,
	})

	assert.Len(t, notifications.rows, 1)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 50))
	assert.Equal(t, strings.Repeat("a", 50)+"...", truncate(strings.Repeat("a", 60), 50))
}
