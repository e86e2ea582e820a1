package user

import (
	"fmt"

	"velora/i18n"
	"velora/models"
	"velora/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// safeProjection excludes credential material from reads that leave the service.
var safeProjection = bson.M{"passwordHash": 0, "tokenHash": 0}

// GetUserByID retrieves a user (safe view) by its unique ID.
func (s *DefaultUserService) GetUserByID(userID string) (*models.User, error) {
	userRec, err := s.Repo.GetByIDWithProjection(userID, safeProjection)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	if userRec == nil {
		return nil, fmt.Errorf("user with id %s not found", userID)
	}
	return userRec, nil
}

// GetUserByEmail retrieves a user (safe view) by its email.
func (s *DefaultUserService) GetUserByEmail(email string) (*models.User, error) {
	userRec, err := s.Repo.GetByEmailWithProjection(email, safeProjection)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	if userRec == nil {
		return nil, fmt.Errorf("user with email %s not found", email)
	}
	return userRec, nil
}

// UpdateUser updates mutable profile fields of an existing user.
func (s *DefaultUserService) UpdateUser(user models.User) (*models.User, error) {
	existing, err := s.Repo.GetByIDWithProjection(user.ID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	if existing == nil {
		return nil, fmt.Errorf("user with id %s not found", user.ID)
	}

	updateDoc := bson.M{}
	if user.Username != "" {
		updateDoc["username"] = user.Username
	}
	if user.PhoneNumber != "" {
		updateDoc["phoneNumber"] = user.PhoneNumber
	}
	if user.AvatarURL != "" {
		updateDoc["avatarUrl"] = user.AvatarURL
	}
	if len(updateDoc) == 0 {
		return existing, nil
	}

	if err := s.Repo.UpdateSetDocument(user.ID, updateDoc); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return s.GetUserByID(user.ID)
}

// DeleteUser removes a user record.
func (s *DefaultUserService) DeleteUser(userID string) error {
	if err := s.Repo.Delete(userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// UpdateUserPassword verifies the current password and updates to a new one.
func (s *DefaultUserService) UpdateUserPassword(userID, currentPassword, newPassword string) error {
	userRec, err := s.Repo.GetByIDWithProjection(userID, nil)
	if err != nil {
		return fmt.Errorf("failed to retrieve user: %w", err)
	}
	if userRec == nil {
		return fmt.Errorf("user not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(userRec.PasswordHash), []byte(currentPassword)); err != nil {
		return fmt.Errorf("current password is incorrect")
	}

	if err := VerifyPasswordComplexity(newPassword); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.GetLogger().Error("UpdateUserPassword: failed to hash password", zap.Error(err))
		return fmt.Errorf("failed to update password, please try again")
	}

	return s.Repo.UpdateSetDocument(userID, bson.M{"passwordHash": string(hashed)})
}

// SetLocale stores the user's preferred locale after validating support.
func (s *DefaultUserService) SetLocale(userID, locale string) error {
	if !i18n.IsSupported(locale) {
		return fmt.Errorf("unsupported locale %q", locale)
	}
	return s.Repo.UpdateSetDocument(userID, bson.M{"locale": locale})
}

// UpdateFCMToken stores the mobile push token for the account.
func (s *DefaultUserService) UpdateFCMToken(userID, deviceID, fcmToken string) error {
	if fcmToken == "" {
		return fmt.Errorf("fcm token is required")
	}
	return s.Repo.UpdateSetDocument(userID, bson.M{"fcmToken": fcmToken})
}

// GetAllUsers returns all users (admin surface).
func (s *DefaultUserService) GetAllUsers() ([]models.User, error) {
	users, err := s.Repo.GetAllWithProjection(safeProjection)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %w", err)
	}
	return users, nil
}

// SetBanned flips the suspension flag and clears tokens when banning.
func (s *DefaultUserService) SetBanned(userID string, banned bool) error {
	updateDoc := bson.M{"banned": banned}
	if banned {
		updateDoc["tokenHash"] = ""
	}
	if err := s.Repo.UpdateSetDocument(userID, updateDoc); err != nil {
		return err
	}
	if banned {
		utils.PurgeAuthCache(userID)
	}
	return nil
}
