// File: velora/models/tasks.go
package models

// ReminderPayload is carried by scheduled reminder tasks.
type ReminderPayload struct {
	UserID    string `json:"userId"`
	BookingID string `json:"bookingId,omitempty"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Service   string `json:"service,omitempty"`
	StartAt   string `json:"startAt,omitempty"`
}

// BookingSweepPayload drives the auto-complete task for a booking left in
// awaiting_confirmation past the grace window.
type BookingSweepPayload struct {
	BookingID string `json:"bookingId"`
}

// CallTimeoutPayload drives the ring-timeout task for a call session.
type CallTimeoutPayload struct {
	CallID string `json:"callId"`
}

// SubscriptionExpiryPayload drives the premium expiry task.
type SubscriptionExpiryPayload struct {
	ModelID string `json:"modelId"`
}
