package notification

import (
	"context"
	"fmt"

	"velora/models"
	"velora/utils"

	"firebase.google.com/go/v4/messaging"
)

// sendFCM delivers a mobile push via Firebase Cloud Messaging. A nil client
// (Firebase not configured) is treated as a silent no-op.
func (s *DefaultNotificationService) sendFCM(ctx context.Context, token string, n *models.Notification) error {
	if utils.FCMClient == nil {
		return nil
	}

	data := map[string]string{
		"notificationId": n.ID,
		"type":           n.Type,
	}
	for k, v := range n.Data {
		data[k] = fmt.Sprintf("%v", v)
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: data,
	}

	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("fcm send: %w", err)
	}
	return nil
}
