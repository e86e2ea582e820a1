package user

import (
	"context"
	"fmt"
	"time"

	"velora/models"
	"velora/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthenticateUser verifies credentials and issues a device-bound token.
// Unknown devices must complete an OTP round-trip first; the flow is driven
// through a Redis auth session keyed by userID:deviceID.
func (s *DefaultUserService) AuthenticateUser(email, password string, currentDevice models.Device, providedSessionID string) (*AuthResponse, error) {
	userRec, err := s.Repo.GetByEmailWithProjection(email, bson.M{})
	if err != nil {
		utils.GetLogger().Error("AuthenticateUser: Failed to fetch user", zap.Error(err))
		return nil, fmt.Errorf("authentication failed, please try again")
	}
	if userRec == nil {
		return nil, fmt.Errorf("invalid email or password")
	}
	if userRec.Banned {
		return nil, fmt.Errorf("this account has been suspended")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(userRec.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	sessionClient := utils.GetAuthCacheClient()
	ctx := context.Background()

	sessionID := providedSessionID
	if sessionID == "" {
		sessionID = fmt.Sprintf("%s:%s", userRec.ID, currentDevice.DeviceID)
		authSession := utils.AuthSession{
			UserID:        userRec.ID,
			Email:         userRec.Email,
			Role:          string(userRec.Role),
			Device:        utils.DeviceSessionInfo{DeviceID: currentDevice.DeviceID, DeviceName: currentDevice.DeviceName, IP: currentDevice.IP, Location: currentDevice.Location},
			Status:        "pending",
			CreatedAt:     time.Now(),
			LastUpdatedAt: time.Now(),
		}
		if err := utils.SaveAuthSession(sessionClient, sessionID, authSession); err != nil {
			return nil, fmt.Errorf("failed to create auth session: %w", err)
		}
	}

	authSession, err := utils.GetAuthSession(sessionClient, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve auth session: %w", err)
	}

	// Check if the device is already registered.
	deviceExists := false
	for idx, d := range userRec.Devices {
		if d.DeviceID == currentDevice.DeviceID {
			deviceExists = true
			userRec.Devices[idx].IP = currentDevice.IP
			userRec.Devices[idx].Location = currentDevice.Location
			break
		}
	}

	// If device is not registered, handle OTP and append device.
	if !deviceExists {
		if authSession.Status != "otp_verified" {
			if len(userRec.Devices) >= 3 {
				return nil, fmt.Errorf("maximum device limit reached. Only 3 devices are allowed")
			}
			otpCacheKey := fmt.Sprintf("otp:%s:%s", userRec.ID, currentDevice.DeviceID)
			if _, err := utils.GetOTPCacheClient().Get(ctx, otpCacheKey).Result(); err != nil {
				if err := utils.InitiateDeviceOTP(userRec.ID, currentDevice.DeviceID, userRec.PhoneNumber); err != nil {
					return nil, fmt.Errorf("failed to initiate OTP: %w", err)
				}
				authSession.Status = "pending_otp"
				if err := utils.SaveAuthSession(sessionClient, sessionID, *authSession); err != nil {
					return nil, fmt.Errorf("failed to update auth session: %w", err)
				}
			}
			return nil, OTPPendingError{SessionID: sessionID}
		}
		// OTP verified: append the new device.
		currentDevice.LastLogin = time.Now()
		currentDevice.Creator = false
		userRec.Devices = append(userRec.Devices, currentDevice)
	}

	// Drop any cached authorization for the previous token.
	utils.PurgeAuthCache(userRec.ID)

	// Generate a new JWT token for this device.
	token, err := utils.GenerateToken(userRec.ID, userRec.Email, utils.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("authentication failed, please try again")
	}
	tokenHash := utils.HashToken(token)

	for idx, d := range userRec.Devices {
		if d.DeviceID == currentDevice.DeviceID {
			userRec.Devices[idx].TokenHash = tokenHash
			userRec.Devices[idx].LastLogin = time.Now()
			break
		}
	}

	updateDoc := bson.M{
		"devices":   userRec.Devices,
		"tokenHash": tokenHash,
	}
	if err := s.Repo.UpdateSetDocument(userRec.ID, updateDoc); err != nil {
		return nil, fmt.Errorf("authentication failed, please try again")
	}

	_ = utils.DeleteAuthSession(sessionClient, sessionID)

	return &AuthResponse{
		ID:          userRec.ID,
		Token:       token,
		Role:        userRec.Role,
		Username:    userRec.Username,
		Email:       userRec.Email,
		PhoneNumber: userRec.PhoneNumber,
		Locale:      userRec.Locale,
	}, nil
}

// VerifyAuthenticationOTP verifies the OTP for a pending login session and
// marks the session verified so the next AuthenticateUser call completes.
func (s *DefaultUserService) VerifyAuthenticationOTP(sessionID, otp string, currentDevice models.Device) error {
	sessionClient := utils.GetAuthCacheClient()
	authSession, err := utils.GetAuthSession(sessionClient, sessionID)
	if err != nil {
		return fmt.Errorf("failed to retrieve auth session: %w", err)
	}

	if err := utils.VerifyDeviceOTPRecord(authSession.UserID, currentDevice.DeviceID, otp); err != nil {
		return fmt.Errorf("OTP verification failed: %w", err)
	}

	authSession.Status = "otp_verified"
	if err := utils.SaveAuthSession(sessionClient, sessionID, *authSession); err != nil {
		return fmt.Errorf("failed to update auth session: %w", err)
	}
	return nil
}

// RevokeUserAuthToken revokes the token for one device, or the whole account
// token when deviceID is empty.
func (s *DefaultUserService) RevokeUserAuthToken(userID, deviceID string) error {
	userRec, err := s.Repo.GetByIDWithProjection(userID, nil)
	if err != nil {
		return fmt.Errorf("failed to retrieve user: %w", err)
	}
	if userRec == nil {
		return fmt.Errorf("user not found")
	}

	if deviceID == "" {
		if err := s.Repo.UpdateSetDocument(userID, bson.M{"tokenHash": ""}); err != nil {
			return err
		}
		utils.PurgeAuthCache(userID)
		return nil
	}

	for idx, d := range userRec.Devices {
		if d.DeviceID == deviceID {
			userRec.Devices[idx].TokenHash = ""
		}
	}
	if err := s.Repo.UpdateSetDocument(userID, bson.M{"devices": userRec.Devices}); err != nil {
		return err
	}
	utils.PurgeAuthCache(userID)
	return nil
}
