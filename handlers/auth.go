package handlers

import (
	"errors"
	"net/http"

	"velora/models"
	"velora/services/user"
	"velora/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler exposes registration and login endpoints.
type AuthHandler struct {
	Users user.UserService
}

func NewAuthHandler(users user.UserService) *AuthHandler {
	return &AuthHandler{Users: users}
}

// deviceFromHeaders builds the device record from the standard client headers.
func deviceFromHeaders(c *gin.Context) (models.Device, bool) {
	d := models.Device{
		DeviceID:   c.GetHeader("X-Device-ID"),
		DeviceName: c.GetHeader("X-Device-Name"),
	}
	return d, d.DeviceID != ""
}

// RegisterHandler starts phase one of registration: basic data is parked in
// a Redis session and an OTP goes out to the phone number.
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	logger := utils.GetLogger()

	device, ok := deviceFromHeaders(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing device details: X-Device-ID"})
		return
	}

	var req models.UserBasicRegistrationData
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Invalid registration request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	sessionID, code, err := h.Users.InitiateRegistration(req, device)
	if err != nil {
		logger.Error("Registration initiation failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": sessionID, "code": code})
}

// VerifyRegistrationOTPHandler is phase two: the OTP comes back.
func (h *AuthHandler) VerifyRegistrationOTPHandler(c *gin.Context) {
	logger := utils.GetLogger()

	device, ok := deviceFromHeaders(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing device details: X-Device-ID"})
		return
	}

	var req struct {
		SessionID string `json:"sessionId" binding:"required"`
		OTP       string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	code, err := h.Users.VerifyRegistrationOTP(req.SessionID, device.DeviceID, req.OTP)
	if err != nil {
		logger.Error("Registration OTP verification failed", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": req.SessionID, "code": code})
}

// FinalizeRegistrationHandler is phase three: the account is created and a
// token issued.
func (h *AuthHandler) FinalizeRegistrationHandler(c *gin.Context) {
	logger := utils.GetLogger()

	var req struct {
		SessionID string `json:"sessionId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	resp, err := h.Users.FinalizeRegistration(req.SessionID)
	if err != nil {
		logger.Error("Registration finalization failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// AuthenticateHandler handles login. A sign-in from an unknown device
// returns 401 with otpPending and the session ID for the OTP round-trip.
func (h *AuthHandler) AuthenticateHandler(c *gin.Context) {
	logger := utils.GetLogger()

	device, ok := deviceFromHeaders(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing device details: X-Device-ID"})
		return
	}

	var req struct {
		Email     string `json:"email" binding:"required"`
		Password  string `json:"password" binding:"required"`
		SessionID string `json:"sessionId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	resp, err := h.Users.AuthenticateUser(req.Email, req.Password, device, req.SessionID)
	if err != nil {
		var otpErr user.OTPPendingError
		if errors.As(err, &otpErr) {
			c.JSON(http.StatusUnauthorized, gin.H{"otpPending": true, "sessionId": otpErr.SessionID})
			return
		}
		logger.Warn("Authentication failed", zap.String("email", req.Email), zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VerifyAuthOTPHandler completes the unknown-device OTP round-trip. The
// client retries login with the same session ID afterwards.
func (h *AuthHandler) VerifyAuthOTPHandler(c *gin.Context) {
	device, ok := deviceFromHeaders(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing device details: X-Device-ID"})
		return
	}

	var req struct {
		SessionID string `json:"sessionId" binding:"required"`
		OTP       string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := h.Users.VerifyAuthenticationOTP(req.SessionID, req.OTP, device); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": true, "sessionId": req.SessionID})
}

// SignOutHandler revokes the current device's token.
func (h *AuthHandler) SignOutHandler(c *gin.Context) {
	device, ok := deviceFromHeaders(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing device details: X-Device-ID"})
		return
	}

	userID := c.GetString("userID")
	if err := h.Users.RevokeUserAuthToken(userID, device.DeviceID); err != nil {
		utils.GetLogger().Error("Sign out failed", zap.String("userId", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// ForgotPasswordHandler drives the OTP-gated password reset. The flow
// mirrors login: first call sends the OTP, the second carries OTP and the
// new password.
func (h *AuthHandler) ForgotPasswordHandler(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required"`
		OTP         string `json:"otp"`
		NewPassword string `json:"newPassword"`
		SessionID   string `json:"sessionId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	err := h.Users.ResetPassword(req.Email, req.OTP, req.NewPassword, req.SessionID)
	if err != nil {
		var otpErr user.OTPPendingError
		if errors.As(err, &otpErr) {
			c.JSON(http.StatusUnauthorized, gin.H{"otpPending": true, "sessionId": otpErr.SessionID})
			return
		}
		var pwErr user.NewPasswordRequiredError
		if errors.As(err, &pwErr) {
			c.JSON(http.StatusUnauthorized, gin.H{"newPasswordRequired": true, "sessionId": pwErr.SessionID})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset"})
}
