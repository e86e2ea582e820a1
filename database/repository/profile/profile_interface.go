package profileRepo

import (
	"time"

	"velora/models"

	"go.mongodb.org/mongo-driver/bson"
)

// ProfileRepository defines persistence operations for model profiles.
type ProfileRepository interface {
	Create(profile *models.ModelProfile) error
	Update(profile *models.ModelProfile) error
	UpdateSetDocument(userID string, updateDoc bson.M) error
	Delete(userID string) error

	GetByUserID(userID string) (*models.ModelProfile, error)
	Search(query models.ProfileSearchQuery) ([]models.ModelProfile, error)

	AddGalleryURL(userID, url string) error
	RemoveGalleryURL(userID, url string) error
	SetPremiumUntil(userID string, until *time.Time) error
	MarkPremiumLapsed(userID string, until time.Time) (bool, error)
}
