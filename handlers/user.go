package handlers

import (
	"net/http"

	"velora/i18n"
	"velora/models"
	"velora/services/user"
	"velora/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler exposes account management endpoints.
type UserHandler struct {
	Users user.UserService
}

func NewUserHandler(users user.UserService) *UserHandler {
	return &UserHandler{Users: users}
}

// MeHandler returns the authenticated account.
func (h *UserHandler) MeHandler(c *gin.Context) {
	userID := c.GetString("userID")
	usr, err := h.Users.GetUserByID(userID)
	if err != nil {
		utils.GetLogger().Error("User not found", zap.String("id", userID), zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, usr)
}

// UpdateMeHandler applies a partial update to the account.
func (h *UserHandler) UpdateMeHandler(c *gin.Context) {
	userID := c.GetString("userID")

	var req models.User
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	req.ID = userID

	updated, err := h.Users.UpdateUser(req)
	if err != nil {
		utils.GetLogger().Error("User update failed", zap.String("id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteMeHandler removes the account.
func (h *UserHandler) DeleteMeHandler(c *gin.Context) {
	userID := c.GetString("userID")
	if err := h.Users.DeleteUser(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}

// UpdatePasswordHandler changes the password after verifying the current one.
func (h *UserHandler) UpdatePasswordHandler(c *gin.Context) {
	userID := c.GetString("userID")

	var req struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := h.Users.UpdateUserPassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// SetLocaleHandler stores the preferred notification locale.
func (h *UserHandler) SetLocaleHandler(c *gin.Context) {
	userID := c.GetString("userID")

	var req struct {
		Locale string `json:"locale" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if !i18n.IsSupported(req.Locale) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported locale", "supported": i18n.Supported()})
		return
	}

	if err := h.Users.SetLocale(userID, req.Locale); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"locale": req.Locale})
}

// UpdateFCMTokenHandler stores the mobile push token for this device.
func (h *UserHandler) UpdateFCMTokenHandler(c *gin.Context) {
	userID := c.GetString("userID")

	device, ok := deviceFromHeaders(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing device details: X-Device-ID"})
		return
	}

	var req struct {
		FCMToken string `json:"fcmToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := h.Users.UpdateFCMToken(userID, device.DeviceID, req.FCMToken); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Push token updated"})
}

// GetDevicesHandler lists the account's signed-in devices.
func (h *UserHandler) GetDevicesHandler(c *gin.Context) {
	userID := c.GetString("userID")
	devices, err := h.Users.GetUserDevices(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, devices)
}

// SignOutOtherDevicesHandler revokes every device except the current one.
func (h *UserHandler) SignOutOtherDevicesHandler(c *gin.Context) {
	userID := c.GetString("userID")

	device, ok := deviceFromHeaders(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing device details: X-Device-ID"})
		return
	}

	if err := h.Users.SignOutOtherDevices(userID, device.DeviceID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Other devices signed out"})
}
