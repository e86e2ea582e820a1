package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"velora/i18n"
	"velora/models"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"velora/utils"
)

// Notify persists the notification localized to the recipient's stored
// locale, then fans it out: SSE (via Redis pub/sub when bridged), FCM for
// mobile tokens, and Web Push for browser subscriptions. Persistence is
// authoritative; push failures are logged, not returned.
func (s *DefaultNotificationService) Notify(ctx context.Context, userID string, ev Event) error {
	u, err := s.User.GetUserByID(userID)
	if err != nil {
		return fmt.Errorf("Notify: could not find user %s: %w", userID, err)
	}

	locale := u.Locale
	title := i18n.T(locale, ev.TitleKey, ev.TitleArgs...)
	body := i18n.T(locale, ev.BodyKey, ev.BodyArgs...)

	n := &models.Notification{
		ID:     uuid.New().String(),
		UserID: userID,
		Type:   ev.Type,
		Title:  title,
		Body:   body,
		Data:   ev.Data,
	}
	if err := s.Repo.Create(n); err != nil {
		return fmt.Errorf("Notify: failed to persist notification: %w", err)
	}

	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("Notify: failed to marshal notification: %w", err)
	}

	// SSE fan-out. With a Redis bridge running, publishing the channel is
	// enough; every instance replays into its local hub.
	if s.Redis != nil {
		if err := s.Redis.Publish(ctx, notifyChannelPrefix+userID, payload).Err(); err != nil {
			utils.GetLogger().Error("Notify: redis publish failed", zap.Error(err))
			s.Hub.Publish(userID, payload)
		}
	} else {
		s.Hub.Publish(userID, payload)
	}

	if u.FCMToken != "" {
		if err := s.sendFCM(ctx, u.FCMToken, n); err != nil {
			utils.GetLogger().Warn("Notify: FCM push failed",
				zap.String("userId", userID), zap.Error(err))
		}
	}

	if err := s.sendWebPush(ctx, userID, payload); err != nil {
		utils.GetLogger().Warn("Notify: web push failed",
			zap.String("userId", userID), zap.Error(err))
	}

	return nil
}

// Signal delivers an ephemeral SSE payload to the user. Nothing is stored
// and no push is sent.
func (s *DefaultNotificationService) Signal(ctx context.Context, userID string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("Signal: failed to marshal payload: %w", err)
	}
	if s.Redis != nil {
		if err := s.Redis.Publish(ctx, notifyChannelPrefix+userID, b).Err(); err != nil {
			utils.GetLogger().Error("Signal: redis publish failed", zap.Error(err))
			s.Hub.Publish(userID, b)
		}
		return nil
	}
	s.Hub.Publish(userID, b)
	return nil
}

// Subscribe registers an SSE connection for the user.
func (s *DefaultNotificationService) Subscribe(userID string) (<-chan []byte, func()) {
	return s.Hub.Subscribe(userID)
}

// ListNotifications returns the user's recent notifications.
func (s *DefaultNotificationService) ListNotifications(userID string, unreadOnly bool, limit int64) ([]models.Notification, error) {
	return s.Repo.ListByUser(userID, unreadOnly, limit)
}

// MarkRead marks one notification as read.
func (s *DefaultNotificationService) MarkRead(userID, notificationID string) error {
	return s.Repo.MarkRead(userID, notificationID)
}

// MarkAllRead marks all notifications as read.
func (s *DefaultNotificationService) MarkAllRead(userID string) error {
	return s.Repo.MarkAllRead(userID)
}

// SavePushSubscription stores a browser push subscription.
func (s *DefaultNotificationService) SavePushSubscription(sub *models.PushSubscription) error {
	if sub.Endpoint == "" || sub.P256dhKey == "" || sub.AuthKey == "" {
		return fmt.Errorf("push subscription requires endpoint, p256dh and auth keys")
	}
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	return s.Repo.SavePushSubscription(sub)
}

// DeletePushSubscription removes a browser push subscription.
func (s *DefaultNotificationService) DeletePushSubscription(endpoint string) error {
	return s.Repo.DeletePushSubscription(endpoint)
}
