package profile

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"velora/models"
	"velora/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const (
	maxGalleryImages = 12
	galleryFolder    = "velora/gallery"
)

// CreateProfile creates a companion profile for a user with the model role.
func (s *DefaultProfileService) CreateProfile(userID string, p *models.ModelProfile) (*models.ModelProfile, error) {
	u, err := s.Users.GetUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", userID, err)
	}
	if u.Role != models.RoleModel {
		return nil, fmt.Errorf("user %s does not have the model role", userID)
	}

	if existing, err := s.Repo.GetByUserID(userID); err != nil {
		return nil, fmt.Errorf("failed to check existing profile: %w", err)
	} else if existing != nil {
		return nil, fmt.Errorf("profile already exists for user %s", userID)
	}

	if p.DisplayName == "" {
		return nil, fmt.Errorf("display name is required")
	}
	for _, sr := range p.Services {
		if sr.Service == "" || sr.PricePerHr <= 0 {
			return nil, fmt.Errorf("invalid service rate: %q", sr.Service)
		}
		if sr.MinHours <= 0 {
			return nil, fmt.Errorf("service %q must have a positive minimum duration", sr.Service)
		}
	}
	for _, slot := range p.Availability {
		if err := validateSlot(slot); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	p.UserID = userID
	p.Gallery = nil
	p.Verified = false
	p.Rating = 0
	p.PremiumUntil = nil
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.Repo.Create(p); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	utils.GetLogger().Info("Model profile created", zap.String("userId", userID))
	return p, nil
}

// UpdateProfile applies a partial update to the caller's own profile.
// Only whitelisted fields are writable; verification, rating and premium
// status are managed elsewhere.
func (s *DefaultProfileService) UpdateProfile(userID string, updates map[string]interface{}) (*models.ModelProfile, error) {
	existing, err := s.Repo.GetByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	if existing == nil {
		return nil, fmt.Errorf("profile not found for user %s", userID)
	}

	allowed := map[string]bool{
		"displayName":  true,
		"bio":          true,
		"city":         true,
		"languages":    true,
		"services":     true,
		"availability": true,
	}
	updateDoc := bson.M{}
	for k, v := range updates {
		if allowed[k] {
			updateDoc[k] = v
		}
	}
	if len(updateDoc) == 0 {
		return existing, nil
	}
	updateDoc["updatedAt"] = time.Now()

	if err := s.Repo.UpdateSetDocument(userID, updateDoc); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.Repo.GetByUserID(userID)
}

// GetProfile returns the profile for the given model user.
func (s *DefaultProfileService) GetProfile(userID string) (*models.ModelProfile, error) {
	p, err := s.Repo.GetByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("profile not found for user %s", userID)
	}
	return p, nil
}

// DeleteProfile removes the profile.
func (s *DefaultProfileService) DeleteProfile(userID string) error {
	return s.Repo.Delete(userID)
}

// Search runs a discovery query. Premium profiles sort first.
func (s *DefaultProfileService) Search(query models.ProfileSearchQuery) ([]models.ModelProfile, error) {
	if query.Limit <= 0 || query.Limit > 50 {
		query.Limit = 20
	}
	return s.Repo.Search(query)
}

// SetOnline toggles the model's presence flag.
func (s *DefaultProfileService) SetOnline(userID string, online bool) error {
	return s.Repo.UpdateSetDocument(userID, bson.M{"online": online, "updatedAt": time.Now()})
}

// UploadGalleryImage stores an uploaded photo and appends its URL to the
// gallery. The file is written to a temp path, compressed, uploaded, and
// both local copies removed.
func (s *DefaultProfileService) UploadGalleryImage(ctx context.Context, userID string, file *multipart.FileHeader) (string, error) {
	p, err := s.GetProfile(userID)
	if err != nil {
		return "", err
	}
	if len(p.Gallery) >= maxGalleryImages {
		return "", fmt.Errorf("gallery limit of %d images reached", maxGalleryImages)
	}
	if !utils.IsSupportedImage(file.Filename) {
		return "", fmt.Errorf("unsupported image type: %s", file.Filename)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(file.Filename))
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to buffer upload: %w", err)
	}
	tmp.Close()

	url, _, err := s.Storage.UploadImage(ctx, tmp.Name(), galleryFolder)
	if err != nil {
		return "", err
	}
	if err := s.Repo.AddGalleryURL(userID, url); err != nil {
		return "", fmt.Errorf("failed to record gallery image: %w", err)
	}
	return url, nil
}

// RemoveGalleryImage drops a URL from the gallery.
func (s *DefaultProfileService) RemoveGalleryImage(ctx context.Context, userID, url string) error {
	if err := s.Repo.RemoveGalleryURL(userID, url); err != nil {
		return fmt.Errorf("failed to remove gallery image: %w", err)
	}
	return nil
}

// SetVerified is an admin operation.
func (s *DefaultProfileService) SetVerified(userID string, verified bool) error {
	return s.Repo.UpdateSetDocument(userID, bson.M{"verified": verified, "updatedAt": time.Now()})
}

func validateSlot(slot models.AvailabilitySlot) error {
	if slot.Start < 0 || slot.End > 24*60 || slot.Start >= slot.End {
		return fmt.Errorf("invalid availability slot on %s", slot.Weekday)
	}
	return nil
}
