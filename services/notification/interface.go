package notification

import (
	"context"

	notificationRepo "velora/database/repository/notification"
	"velora/models"
	"velora/services/user"

	"github.com/go-redis/redis/v8"
)

// Event is a notification to be delivered to one user. Title and body are
// i18n catalog keys resolved against the recipient's stored locale.
type Event struct {
	Type      string
	TitleKey  string
	BodyKey   string
	TitleArgs []any
	BodyArgs  []any
	Data      map[string]any
}

// NotificationService persists notifications and fans them out over SSE,
// FCM and Web Push.
type NotificationService interface {
	Notify(ctx context.Context, userID string, ev Event) error
	// Signal pushes an ephemeral payload over the user's SSE stream
	// without persisting a notification. Used for call signaling.
	Signal(ctx context.Context, userID string, payload any) error

	Subscribe(userID string) (<-chan []byte, func())
	ListNotifications(userID string, unreadOnly bool, limit int64) ([]models.Notification, error)
	MarkRead(userID, notificationID string) error
	MarkAllRead(userID string) error

	SavePushSubscription(sub *models.PushSubscription) error
	DeletePushSubscription(endpoint string) error
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	User  user.UserService
	Repo  notificationRepo.NotificationRepository
	Hub   *Hub
	Redis *redis.Client // pub/sub bridge; nil means in-process delivery only
}
