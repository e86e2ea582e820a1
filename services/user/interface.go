package user

import (
	userRepo "velora/database/repository/user"
	"velora/models"
)

// UserService defines business logic for account operations shared by
// customers and models.
type UserService interface {
	// Registration (three phases: 100 OTP pending, 101 OTP verified, 102 finalized).
	InitiateRegistration(basicData models.UserBasicRegistrationData, device models.Device) (string, int, error)
	VerifyRegistrationOTP(sessionID string, deviceID string, providedOTP string) (int, error)
	FinalizeRegistration(sessionID string) (*AuthResponse, error)

	// Authentication
	AuthenticateUser(email, password string, currentDevice models.Device, providedSessionID string) (*AuthResponse, error)
	VerifyAuthenticationOTP(sessionID, otp string, currentDevice models.Device) error
	RevokeUserAuthToken(userID, deviceID string) error

	// Account management
	GetUserByID(userID string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	UpdateUser(user models.User) (*models.User, error)
	DeleteUser(userID string) error
	UpdateUserPassword(userID, currentPassword, newPassword string) error
	SetLocale(userID, locale string) error
	UpdateFCMToken(userID, deviceID, fcmToken string) error

	// Device management
	GetUserDevices(userID string) ([]models.Device, error)
	SignOutOtherDevices(userID, currentDeviceID string) error

	// Password reset
	ResetPassword(email, providedOTP, newPassword, providedSessionID string) error

	// Admin
	GetAllUsers() ([]models.User, error)
	SetBanned(userID string, banned bool) error
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo userRepo.UserRepository
}

// AuthResponse contains the user's ID, token, and additional details.
type AuthResponse struct {
	ID          string      `json:"id"`
	Token       string      `json:"token"`
	Role        models.Role `json:"role"`
	Username    string      `json:"username,omitempty"`
	Email       string      `json:"email,omitempty"`
	PhoneNumber string      `json:"phoneNumber,omitempty"`
	Locale      string      `json:"locale,omitempty"`
}
