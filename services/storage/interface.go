package storage

import (
	"context"
	"fmt"

	"velora/config"

	"github.com/cloudinary/cloudinary-go/v2"
)

// StorageService defines media storage operations for profile galleries.
type StorageService interface {
	// UploadImage compresses and uploads a local image file, returning the
	// permanent public URL and the storage public ID.
	UploadImage(ctx context.Context, localFilePath, destFolder string) (url, publicID string, err error)
	DeleteFile(ctx context.Context, publicID string) error
}

// CloudinaryStorageService implements StorageService on Cloudinary.
type CloudinaryStorageService struct {
	cld *cloudinary.Cloudinary
}

// NewStorageService initializes a Cloudinary-backed storage service from the
// CLOUDINARY_URL in the app config.
func NewStorageService() (StorageService, error) {
	if config.AppConfig.CloudinaryURL == "" {
		return nil, fmt.Errorf("storage: CLOUDINARY_URL not configured")
	}
	cld, err := cloudinary.NewFromURL(config.AppConfig.CloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to initialize cloudinary: %w", err)
	}
	return &CloudinaryStorageService{cld: cld}, nil
}
