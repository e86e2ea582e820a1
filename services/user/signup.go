package user

import (
	"fmt"
	"time"

	"velora/i18n"
	"velora/models"
	"velora/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// InitiateRegistration validates basic data, checks for duplicates, creates a
// registration session, initiates OTP, and returns the session ID with code
// 100 (OTP pending).
func (s *DefaultUserService) InitiateRegistration(basicReq models.UserBasicRegistrationData, device models.Device) (string, int, error) {
	if basicReq.Email == "" || basicReq.Password == "" || basicReq.Username == "" || basicReq.PhoneNumber == "" {
		return "", 0, fmt.Errorf("all fields are required")
	}
	if basicReq.Role != models.RoleCustomer && basicReq.Role != models.RoleModel {
		return "", 0, fmt.Errorf("role must be customer or model")
	}

	available, err := s.Repo.IsUserAvailable(basicReq)
	if err != nil {
		utils.GetLogger().Error("InitiateRegistration: availability check failed", zap.Error(err))
		return "", 0, fmt.Errorf("registration failed, please try again")
	}
	if !available {
		return "", 0, fmt.Errorf("a user with this email or username already exists")
	}

	sessionClient := utils.GetAuthCacheClient()
	sessionID := fmt.Sprintf("%s:%s", basicReq.Email, device.DeviceID)

	regSession := models.UserRegistrationSession{
		TempID:        sessionID,
		BasicData:     &basicReq,
		OTPStatus:     "pending",
		CreatedAt:     time.Now(),
		LastUpdatedAt: time.Now(),
		Devices:       []models.Device{device},
	}

	if err := utils.InitiateDeviceOTP(basicReq.Email, device.DeviceID, basicReq.PhoneNumber); err != nil {
		return "", 0, fmt.Errorf("failed to initiate OTP: %w", err)
	}

	if err := SaveUserRegistrationSession(sessionClient, sessionID, regSession, 30*time.Minute); err != nil {
		return "", 0, fmt.Errorf("failed to save registration session: %w", err)
	}

	// Return sessionID with code 100 (OTP pending).
	return sessionID, 100, nil
}

// VerifyRegistrationOTP retrieves the session, verifies the OTP, updates the
// session to "verified", and returns code 101 (OTP verified).
func (s *DefaultUserService) VerifyRegistrationOTP(sessionID string, deviceID string, providedOTP string) (int, error) {
	sessionClient := utils.GetAuthCacheClient()
	regSession, err := GetUserRegistrationSession(sessionClient, sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to retrieve registration session")
	}

	if err := utils.VerifyDeviceOTPRecord(regSession.BasicData.Email, deviceID, providedOTP); err != nil {
		return 0, fmt.Errorf("OTP verification failed: %w", err)
	}

	regSession.OTPStatus = "verified"
	regSession.LastUpdatedAt = time.Now()
	if err := SaveUserRegistrationSession(sessionClient, sessionID, regSession, 30*time.Minute); err != nil {
		return 0, fmt.Errorf("failed to update registration session: %w", err)
	}

	// Return code 101 to indicate OTP verified.
	return 101, nil
}

// FinalizeRegistration builds and persists the user record from stored basic
// data, clears the registration session, and returns an AuthResponse.
// (Finalization corresponds to code 102.)
func (s *DefaultUserService) FinalizeRegistration(sessionID string) (*AuthResponse, error) {
	sessionClient := utils.GetAuthCacheClient()
	regSession, err := GetUserRegistrationSession(sessionClient, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve registration session")
	}
	if regSession.OTPStatus != "verified" {
		return nil, fmt.Errorf("OTP not verified")
	}
	if regSession.BasicData == nil {
		return nil, fmt.Errorf("registration session missing basic data")
	}

	if err := VerifyPasswordComplexity(regSession.BasicData.Password); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(regSession.BasicData.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.GetLogger().Error("FinalizeRegistration: Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("registration failed, please try again")
	}

	locale := regSession.BasicData.Locale
	if !i18n.IsSupported(locale) {
		locale = "en"
	}

	userObj := models.User{
		ID:           uuid.New().String(),
		Role:         regSession.BasicData.Role,
		Username:     regSession.BasicData.Username,
		Email:        regSession.BasicData.Email,
		PasswordHash: string(hashedPassword),
		PhoneNumber:  regSession.BasicData.PhoneNumber,
		Locale:       locale,
		Devices:      regSession.Devices,
	}

	token, err := utils.GenerateToken(userObj.ID, userObj.Email, utils.TokenTTL)
	if err != nil {
		utils.GetLogger().Error("FinalizeRegistration: Failed to generate token", zap.Error(err))
		return nil, fmt.Errorf("registration failed, please try again")
	}
	tokenHash := utils.HashToken(token)
	for idx := range userObj.Devices {
		userObj.Devices[idx].TokenHash = tokenHash
		userObj.Devices[idx].LastLogin = time.Now()
		userObj.Devices[idx].Creator = true
	}

	if err := s.Repo.Create(&userObj); err != nil {
		utils.GetLogger().Error("FinalizeRegistration: Failed to persist user", zap.Error(err))
		return nil, fmt.Errorf("registration failed, please try again")
	}

	_ = DeleteUserRegistrationSession(sessionClient, sessionID)

	return &AuthResponse{
		ID:          userObj.ID,
		Token:       token,
		Role:        userObj.Role,
		Username:    userObj.Username,
		Email:       userObj.Email,
		PhoneNumber: userObj.PhoneNumber,
		Locale:      userObj.Locale,
	}, nil
}
