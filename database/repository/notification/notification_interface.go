package notificationRepo

import (
	"velora/models"
)

// NotificationRepository defines persistence for notifications and browser
// push subscriptions.
type NotificationRepository interface {
	Create(n *models.Notification) error
	ListByUser(userID string, unreadOnly bool, limit int64) ([]models.Notification, error)
	MarkRead(userID, notificationID string) error
	MarkAllRead(userID string) error

	SavePushSubscription(sub *models.PushSubscription) error
	ListPushSubscriptions(userID string) ([]models.PushSubscription, error)
	DeletePushSubscription(endpoint string) error
}
