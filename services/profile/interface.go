package profile

import (
	"context"
	"mime/multipart"

	profileRepo "velora/database/repository/profile"
	"velora/models"
	"velora/services/storage"
	"velora/services/user"
)

// ProfileService manages model profiles and discovery.
type ProfileService interface {
	CreateProfile(userID string, profile *models.ModelProfile) (*models.ModelProfile, error)
	UpdateProfile(userID string, updates map[string]interface{}) (*models.ModelProfile, error)
	GetProfile(userID string) (*models.ModelProfile, error)
	DeleteProfile(userID string) error

	Search(query models.ProfileSearchQuery) ([]models.ModelProfile, error)
	SetOnline(userID string, online bool) error

	UploadGalleryImage(ctx context.Context, userID string, file *multipart.FileHeader) (string, error)
	RemoveGalleryImage(ctx context.Context, userID, url string) error

	SetVerified(userID string, verified bool) error
}

// DefaultProfileService is the production implementation.
type DefaultProfileService struct {
	Repo    profileRepo.ProfileRepository
	Users   user.UserService
	Storage storage.StorageService
}
