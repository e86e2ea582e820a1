package user

import (
	"context"
	"fmt"
	"time"

	"velora/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ResetPassword resets a user's password via a three-state OTP-based flow.
// State 1: Called with email only → initiates OTP and returns OTPPendingError.
// State 2: Called with email and OTP (but no new password) → verifies OTP and returns NewPasswordRequiredError.
// State 3: Called with email, OTP, and new password → verifies OTP, validates and updates password.
func (s *DefaultUserService) ResetPassword(email, providedOTP, newPassword, providedSessionID string) error {
	userRec, err := s.Repo.GetByEmailWithProjection(email, bson.M{})
	if err != nil {
		utils.GetLogger().Error("ResetPassword: Failed to fetch user", zap.Error(err))
		return fmt.Errorf("failed to reset password, please try again")
	}
	if userRec == nil {
		// Avoid exposing whether the email exists.
		return fmt.Errorf("invalid email")
	}

	sessionClient := utils.GetAuthCacheClient()
	ctx := context.Background()

	sessionID := providedSessionID
	if sessionID == "" {
		sessionID = fmt.Sprintf("%s:%s", userRec.ID, "reset_password")
		authSession := utils.AuthSession{
			UserID:        userRec.ID,
			Email:         userRec.Email,
			Status:        "pending",
			CreatedAt:     time.Now(),
			LastUpdatedAt: time.Now(),
		}
		if err := utils.SaveAuthSession(sessionClient, sessionID, authSession); err != nil {
			return fmt.Errorf("failed to create password reset session: %w", err)
		}
	}

	authSession, err := utils.GetAuthSession(sessionClient, sessionID)
	if err != nil {
		return fmt.Errorf("failed to retrieve password reset session: %w", err)
	}

	// State 1: no OTP and no new password, initiate OTP.
	if providedOTP == "" && newPassword == "" {
		otpCacheKey := fmt.Sprintf("otp:%s:%s", userRec.ID, "reset_password")
		if _, err := utils.GetOTPCacheClient().Get(ctx, otpCacheKey).Result(); err != nil {
			if err := utils.InitiateDeviceOTP(userRec.ID, "reset_password", userRec.PhoneNumber); err != nil {
				return fmt.Errorf("failed to initiate OTP: %w", err)
			}
			authSession.Status = "pending_otp"
			if err := utils.SaveAuthSession(sessionClient, sessionID, *authSession); err != nil {
				return fmt.Errorf("failed to update password reset session: %w", err)
			}
		}
		return OTPPendingError{SessionID: sessionID}
	}

	// OTP verification: only verify if the session isn't already verified.
	if authSession.Status != "otp_verified" {
		if err := utils.VerifyDeviceOTPRecord(userRec.ID, "reset_password", providedOTP); err != nil {
			return fmt.Errorf("OTP verification failed: %w", err)
		}
		authSession.Status = "otp_verified"
		authSession.LastUpdatedAt = time.Now()
		if err := utils.SaveAuthSession(sessionClient, sessionID, *authSession); err != nil {
			return fmt.Errorf("failed to update password reset session: %w", err)
		}
	}

	// State 2: OTP verified but no new password yet.
	if newPassword == "" {
		return NewPasswordRequiredError{SessionID: sessionID}
	}

	// State 3: set the new password, revoking all device tokens.
	if err := VerifyPasswordComplexity(newPassword); err != nil {
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.GetLogger().Error("ResetPassword: failed to hash password", zap.Error(err))
		return fmt.Errorf("failed to reset password, please try again")
	}

	for idx := range userRec.Devices {
		userRec.Devices[idx].TokenHash = ""
	}
	updateDoc := bson.M{
		"passwordHash": string(hashed),
		"tokenHash":    "",
		"devices":      userRec.Devices,
	}
	if err := s.Repo.UpdateSetDocument(userRec.ID, updateDoc); err != nil {
		return fmt.Errorf("failed to reset password, please try again")
	}
	utils.PurgeAuthCache(userRec.ID)

	_ = utils.DeleteAuthSession(sessionClient, sessionID)
	return nil
}
