// File: velora/models/profile.go
package models

import "time"

// ServiceRate is a single bookable service a model offers.
type ServiceRate struct {
	Service    string  `bson:"service" json:"service"` // e.g. "dinner_date", "city_tour"
	PricePerHr float64 `bson:"pricePerHr" json:"pricePerHr"`
	MinHours   int     `bson:"minHours" json:"minHours"`
}

// AvailabilitySlot is a weekly recurring window a model is bookable in.
// Start and End are minutes from midnight in the model's local time.
type AvailabilitySlot struct {
	Weekday time.Weekday `bson:"weekday" json:"weekday"`
	Start   int          `bson:"start" json:"start"`
	End     int          `bson:"end" json:"end"`
}

// ModelProfile carries the companion-specific data for users with RoleModel.
type ModelProfile struct {
	UserID       string             `bson:"userId" json:"userId"`
	DisplayName  string             `bson:"displayName" json:"displayName"`
	Bio          string             `bson:"bio" json:"bio"`
	City         string             `bson:"city" json:"city"`
	Languages    []string           `bson:"languages" json:"languages"`
	Services     []ServiceRate      `bson:"services" json:"services"`
	Availability []AvailabilitySlot `bson:"availability" json:"availability"`
	Gallery      []string           `bson:"gallery" json:"gallery"` // cloudinary URLs
	Verified     bool               `bson:"verified" json:"verified"`
	Online       bool               `bson:"online" json:"online"`
	Rating       float64            `bson:"rating" json:"rating"`
	// PremiumUntil is kept after expiry so a lapsed subscription stays
	// distinguishable from one that never existed. PremiumLapsed records
	// that the expiry has been swept and the model notified.
	PremiumUntil  *time.Time `bson:"premiumUntil,omitempty" json:"premiumUntil,omitempty"`
	PremiumLapsed bool       `bson:"premiumLapsed,omitempty" json:"-"`
	CreatedAt     time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// ProfileSearchQuery captures browse/search filters for discovery.
type ProfileSearchQuery struct {
	City       string  `form:"city"`
	Service    string  `form:"service"`
	MaxRate    float64 `form:"maxRate"`
	Language   string  `form:"language"`
	OnlyOnline bool    `form:"online"`
	Limit      int64   `form:"limit"`
	Offset     int64   `form:"offset"`
}
