package handlers

import (
	"errors"
	"net/http"

	callRepo "velora/database/repository/call"
	"velora/i18n"
	"velora/models"
	"velora/services/call"
	"velora/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CallHandler exposes WebRTC signaling endpoints.
type CallHandler struct {
	Calls call.CallService
}

func NewCallHandler(calls call.CallService) *CallHandler {
	return &CallHandler{Calls: calls}
}

func callError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, call.ErrIllegalCallState):
		locale := c.GetString("locale")
		c.JSON(http.StatusConflict, gin.H{"error": i18n.T(locale, "error.invalid_transition")})
	case errors.Is(err, call.ErrNotCallParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant of this call"})
	case errors.Is(err, callRepo.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Call session not found"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

// InitiateHandler opens a ringing session toward the callee.
func (h *CallHandler) InitiateHandler(c *gin.Context) {
	userID := c.GetString("userID")

	var req models.CallInitiateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	sess, err := h.Calls.Initiate(userID, req)
	if err != nil {
		utils.GetLogger().Warn("Call initiation failed", zap.String("userId", userID), zap.Error(err))
		callError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

// AcceptHandler answers a ringing call with the callee's peer ID.
func (h *CallHandler) AcceptHandler(c *gin.Context) {
	var req struct {
		PeerID string `json:"peerId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	sess, err := h.Calls.Accept(c.GetString("userID"), c.Param("id"), req.PeerID)
	if err != nil {
		callError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// DeclineHandler declines a ringing call.
func (h *CallHandler) DeclineHandler(c *gin.Context) {
	sess, err := h.Calls.Decline(c.GetString("userID"), c.Param("id"))
	if err != nil {
		callError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// RegisterPeerHandler updates the caller's peer ID after a reconnect.
func (h *CallHandler) RegisterPeerHandler(c *gin.Context) {
	var req struct {
		PeerID string `json:"peerId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	sess, err := h.Calls.RegisterPeer(c.GetString("userID"), c.Param("id"), req.PeerID)
	if err != nil {
		callError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// EndHandler hangs up from either side.
func (h *CallHandler) EndHandler(c *gin.Context) {
	sess, err := h.Calls.End(c.GetString("userID"), c.Param("id"))
	if err != nil {
		callError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// GetHandler returns one session for a participant.
func (h *CallHandler) GetHandler(c *gin.Context) {
	sess, err := h.Calls.GetSession(c.GetString("userID"), c.Param("id"))
	if err != nil {
		callError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// HistoryHandler lists the caller's recent sessions.
func (h *CallHandler) HistoryHandler(c *gin.Context) {
	sessions, err := h.Calls.History(c.GetString("userID"), 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"calls": sessions, "count": len(sessions)})
}
