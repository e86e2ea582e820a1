// File: velora/models/booking.go
package models

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending              BookingStatus = "pending"
	BookingConfirmed            BookingStatus = "confirmed"
	BookingInProgress           BookingStatus = "in_progress"
	BookingAwaitingConfirmation BookingStatus = "awaiting_confirmation"
	BookingCompleted            BookingStatus = "completed"
	BookingDisputed             BookingStatus = "disputed"
	BookingCancelled            BookingStatus = "cancelled"
	BookingRejected             BookingStatus = "rejected"
)

// Terminal reports whether no further transitions are allowed from s.
func (s BookingStatus) Terminal() bool {
	switch s {
	case BookingCompleted, BookingCancelled, BookingRejected:
		return true
	}
	return false
}

// Booking is a scheduled engagement between a customer and a model.
type Booking struct {
	ID           string        `bson:"id" json:"id"`
	CustomerID   string        `bson:"customerId" json:"customerId"`
	ModelID      string        `bson:"modelId" json:"modelId"`
	Service      string        `bson:"service" json:"service"`
	Start        time.Time     `bson:"start" json:"start"`
	DurationMin  int           `bson:"durationMin" json:"durationMin"`
	LocationNote string        `bson:"locationNote,omitempty" json:"locationNote,omitempty"`
	Price        float64       `bson:"price" json:"price"`
	Currency     string        `bson:"currency" json:"currency"`
	Status       BookingStatus `bson:"status" json:"status"`
	HoldTxID     string        `bson:"holdTxId,omitempty" json:"-"`
	CancelledBy  string        `bson:"cancelledBy,omitempty" json:"cancelledBy,omitempty"`
	DisputeNote  string        `bson:"disputeNote,omitempty" json:"disputeNote,omitempty"`
	CreatedAt    time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// End returns the scheduled end of the engagement.
func (b *Booking) End() time.Time {
	return b.Start.Add(time.Duration(b.DurationMin) * time.Minute)
}

// BookingInput is the customer-supplied request to create a booking.
type BookingInput struct {
	ModelID      string    `json:"modelId" binding:"required"`
	Service      string    `json:"service" binding:"required"`
	Start        time.Time `json:"start" binding:"required"`
	DurationMin  int       `json:"durationMin" binding:"required"`
	LocationNote string    `json:"locationNote"`
}
