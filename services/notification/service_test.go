package notification

import (
	"context"
	"encoding/json"
	"testing"

	"velora/config"
	"velora/models"
	"velora/services/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotificationRepo struct {
	created []models.Notification
	subs    map[string]models.PushSubscription
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{subs: make(map[string]models.PushSubscription)}
}

func (r *fakeNotificationRepo) Create(n *models.Notification) error {
	r.created = append(r.created, *n)
	return nil
}

func (r *fakeNotificationRepo) ListByUser(userID string, unreadOnly bool, limit int64) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range r.created {
		if n.UserID == userID && (!unreadOnly || !n.Read) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(userID, notificationID string) error {
	for i := range r.created {
		if r.created[i].ID == notificationID && r.created[i].UserID == userID {
			r.created[i].Read = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(userID string) error {
	for i := range r.created {
		if r.created[i].UserID == userID {
			r.created[i].Read = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) SavePushSubscription(sub *models.PushSubscription) error {
	r.subs[sub.Endpoint] = *sub
	return nil
}

func (r *fakeNotificationRepo) ListPushSubscriptions(userID string) ([]models.PushSubscription, error) {
	var out []models.PushSubscription
	for _, s := range r.subs {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) DeletePushSubscription(endpoint string) error {
	delete(r.subs, endpoint)
	return nil
}

type fakeUserService struct {
	user.UserService
	users map[string]*models.User
}

func (f *fakeUserService) GetUserByID(userID string) (*models.User, error) {
	if u, ok := f.users[userID]; ok {
		return u, nil
	}
	return nil, assert.AnError
}

func newTestNotificationService(repo *fakeNotificationRepo) *DefaultNotificationService {
	config.AppConfig = config.Config{}
	return &DefaultNotificationService{
		User: &fakeUserService{users: map[string]*models.User{
			"u-en": {ID: "u-en", Locale: "en"},
			"u-de": {ID: "u-de", Locale: "de"},
		}},
		Repo: repo,
		Hub:  NewHub(),
	}
}

func TestNotifyPersistsLocalized(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := newTestNotificationService(repo)

	err := svc.Notify(context.Background(), "u-de", Event{
		Type:     models.NotifTypeCallSignal,
		TitleKey: "call.incoming.title",
		BodyKey:  "call.incoming.body",
		BodyArgs: []any{"anna"},
	})
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	assert.Equal(t, "Eingehender Anruf", repo.created[0].Title)
	assert.Contains(t, repo.created[0].Body, "anna")
}

func TestNotifyReachesLiveStream(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := newTestNotificationService(repo)

	ch, cancel := svc.Subscribe("u-en")
	defer cancel()

	err := svc.Notify(context.Background(), "u-en", Event{
		Type:     models.NotifTypeBookingUpdate,
		TitleKey: "call.incoming.title",
		BodyKey:  "call.incoming.body",
		BodyArgs: []any{"lena"},
	})
	require.NoError(t, err)

	select {
	case payload := <-ch:
		var n models.Notification
		require.NoError(t, json.Unmarshal(payload, &n))
		assert.Equal(t, repo.created[0].ID, n.ID)
	default:
		t.Fatal("expected a streamed payload")
	}
}

func TestNotifyUnknownUserFails(t *testing.T) {
	svc := newTestNotificationService(newFakeNotificationRepo())

	err := svc.Notify(context.Background(), "ghost", Event{TitleKey: "x", BodyKey: "y"})
	assert.Error(t, err)
}

func TestSignalIsEphemeral(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := newTestNotificationService(repo)

	ch, cancel := svc.Subscribe("u-en")
	defer cancel()

	err := svc.Signal(context.Background(), "u-en", map[string]string{"event": "peer", "peerId": "p-1"})
	require.NoError(t, err)

	assert.Empty(t, repo.created, "signals must not be persisted")
	select {
	case payload := <-ch:
		assert.Contains(t, string(payload), `"event":"peer"`)
	default:
		t.Fatal("expected a streamed signal")
	}
}

func TestMarkReadFlow(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := newTestNotificationService(repo)

	require.NoError(t, svc.Notify(context.Background(), "u-en", Event{
		Type: models.NotifTypeBookingUpdate, TitleKey: "call.incoming.title", BodyKey: "call.incoming.body", BodyArgs: []any{"x"},
	}))
	require.NoError(t, svc.Notify(context.Background(), "u-en", Event{
		Type: models.NotifTypeBookingUpdate, TitleKey: "call.incoming.title", BodyKey: "call.incoming.body", BodyArgs: []any{"y"},
	}))

	unread, _ := svc.ListNotifications("u-en", true, 50)
	require.Len(t, unread, 2)

	require.NoError(t, svc.MarkRead("u-en", repo.created[0].ID))
	unread, _ = svc.ListNotifications("u-en", true, 50)
	assert.Len(t, unread, 1)

	require.NoError(t, svc.MarkAllRead("u-en"))
	unread, _ = svc.ListNotifications("u-en", true, 50)
	assert.Empty(t, unread)
}

func TestSavePushSubscriptionValidation(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := newTestNotificationService(repo)

	err := svc.SavePushSubscription(&models.PushSubscription{Endpoint: "https://push.example/x"})
	assert.Error(t, err, "missing keys")

	sub := &models.PushSubscription{
		UserID:    "u-en",
		Endpoint:  "https://push.example/x",
		P256dhKey: "p256",
		AuthKey:   "auth",
	}
	require.NoError(t, svc.SavePushSubscription(sub))
	assert.NotEmpty(t, sub.ID)

	stored, _ := repo.ListPushSubscriptions("u-en")
	assert.Len(t, stored, 1)
}
