// File: velora/models/notification.go
package models

import "time"

// Notification type constants.
const (
	NotifTypeBookingUpdate    = "booking_update"
	NotifTypeCallSignal       = "call_signal"
	NotifTypeWalletUpdate     = "wallet_update"
	NotifTypeSubscription     = "subscription_activated"
	NotifTypeBookingReminder  = "booking_reminder"
	NotifTypeDispute          = "dispute_update"
)

type Notification struct {
	ID        string         `bson:"id" json:"id"`
	UserID    string         `bson:"userId" json:"userId"`
	Type      string         `bson:"type" json:"type"`
	Title     string         `bson:"title" json:"title"`
	Body      string         `bson:"body" json:"body"`
	Data      map[string]any `bson:"data,omitempty" json:"data,omitempty"`
	Read      bool           `bson:"read" json:"read"`
	CreatedAt time.Time      `bson:"createdAt" json:"createdAt"`
}

// PushSubscription holds a browser Web Push subscription (VAPID).
type PushSubscription struct {
	ID         string    `bson:"id" json:"id"`
	UserID     string    `bson:"userId" json:"userId"`
	Endpoint   string    `bson:"endpoint" json:"endpoint"`
	P256dhKey  string    `bson:"p256dhKey" json:"p256dhKey"`
	AuthKey    string    `bson:"authKey" json:"authKey"`
	DeviceName string    `bson:"deviceName,omitempty" json:"deviceName,omitempty"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}
