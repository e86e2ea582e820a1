package handlers

import (
	"net/http"

	"velora/models"
	"velora/services/profile"
	"velora/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProfileHandler exposes model profile and discovery endpoints.
type ProfileHandler struct {
	Profiles profile.ProfileService
}

func NewProfileHandler(profiles profile.ProfileService) *ProfileHandler {
	return &ProfileHandler{Profiles: profiles}
}

// CreateProfileHandler creates the caller's companion profile.
func (h *ProfileHandler) CreateProfileHandler(c *gin.Context) {
	userID := c.GetString("userID")

	var req models.ModelProfile
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	created, err := h.Profiles.CreateProfile(userID, &req)
	if err != nil {
		utils.GetLogger().Error("Profile creation failed", zap.String("userId", userID), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateProfileHandler applies a partial update to the caller's profile.
func (h *ProfileHandler) UpdateProfileHandler(c *gin.Context) {
	userID := c.GetString("userID")

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	updated, err := h.Profiles.UpdateProfile(userID, updates)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// GetProfileHandler returns a model's public profile.
func (h *ProfileHandler) GetProfileHandler(c *gin.Context) {
	p, err := h.Profiles.GetProfile(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

// SearchHandler runs a discovery query from query-string filters.
func (h *ProfileHandler) SearchHandler(c *gin.Context) {
	var query models.ProfileSearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query: " + err.Error()})
		return
	}

	results, err := h.Profiles.Search(query)
	if err != nil {
		utils.GetLogger().Error("Profile search failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}

// SetOnlineHandler toggles the caller's presence flag.
func (h *ProfileHandler) SetOnlineHandler(c *gin.Context) {
	userID := c.GetString("userID")

	var req struct {
		Online bool `json:"online"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := h.Profiles.SetOnline(userID, req.Online); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"online": req.Online})
}

// UploadGalleryHandler accepts a multipart image for the caller's gallery.
func (h *ProfileHandler) UploadGalleryHandler(c *gin.Context) {
	userID := c.GetString("userID")

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing image file"})
		return
	}

	url, err := h.Profiles.UploadGalleryImage(c.Request.Context(), userID, file)
	if err != nil {
		utils.GetLogger().Error("Gallery upload failed", zap.String("userId", userID), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

// RemoveGalleryHandler drops an image URL from the caller's gallery.
func (h *ProfileHandler) RemoveGalleryHandler(c *gin.Context) {
	userID := c.GetString("userID")

	var req struct {
		URL string `json:"url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := h.Profiles.RemoveGalleryImage(c.Request.Context(), userID, req.URL); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Image removed"})
}
