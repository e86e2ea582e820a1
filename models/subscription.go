// File: velora/models/subscription.go
package models

import "time"

// SubscriptionStatus represents a model's premium subscription state.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionInactive SubscriptionStatus = "inactive"
	SubscriptionLapsed   SubscriptionStatus = "lapsed"
)

// SubscriptionPlan is a purchasable premium-placement plan.
type SubscriptionPlan struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Price    float64       `json:"price"`
	Duration time.Duration `json:"-"`
}

// SubscriptionInfo is what the API reports about a model's subscription.
type SubscriptionInfo struct {
	Status       SubscriptionStatus `json:"status"`
	PlanID       string             `json:"planId,omitempty"`
	PremiumUntil *time.Time         `json:"premiumUntil,omitempty"`
}
