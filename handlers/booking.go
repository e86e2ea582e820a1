package handlers

import (
	"errors"
	"net/http"

	bookingRepo "velora/database/repository/booking"
	walletRepo "velora/database/repository/wallet"
	"velora/i18n"
	"velora/models"
	"velora/services/booking"
	"velora/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the booking lifecycle endpoints.
type BookingHandler struct {
	Bookings booking.BookingService
}

func NewBookingHandler(bookings booking.BookingService) *BookingHandler {
	return &BookingHandler{Bookings: bookings}
}

// bookingError maps service errors to HTTP responses with localized
// messages for the well-known cases.
func bookingError(c *gin.Context, err error) {
	locale := c.GetString("locale")
	switch {
	case errors.Is(err, booking.ErrSlotUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": i18n.T(locale, "error.slot_unavailable")})
	case errors.Is(err, booking.ErrIllegalTransition):
		c.JSON(http.StatusConflict, gin.H{"error": i18n.T(locale, "error.invalid_transition")})
	case errors.Is(err, walletRepo.ErrInsufficientFunds):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": i18n.T(locale, "error.insufficient_funds")})
	case errors.Is(err, booking.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant of this booking"})
	case errors.Is(err, bookingRepo.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

// CreateHandler creates a pending booking request.
func (h *BookingHandler) CreateHandler(c *gin.Context) {
	userID := c.GetString("userID")

	var req models.BookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	b, err := h.Bookings.CreateBooking(userID, req)
	if err != nil {
		utils.GetLogger().Warn("Booking creation failed", zap.String("userId", userID), zap.Error(err))
		bookingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// GetHandler returns one booking for a participant.
func (h *BookingHandler) GetHandler(c *gin.Context) {
	b, err := h.Bookings.GetBooking(c.GetString("userID"), c.Param("id"))
	if err != nil {
		bookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ListHandler returns the caller's bookings for their role.
func (h *BookingHandler) ListHandler(c *gin.Context) {
	userID := c.GetString("userID")
	role, _ := c.Get("role")

	bookings, err := h.Bookings.ListBookings(userID, role.(models.Role), 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

func (h *BookingHandler) transition(c *gin.Context, fn func(actorID, bookingID string) (*models.Booking, error)) {
	b, err := fn(c.GetString("userID"), c.Param("id"))
	if err != nil {
		bookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ConfirmHandler: model accepts, funds go on hold.
func (h *BookingHandler) ConfirmHandler(c *gin.Context) {
	h.transition(c, h.Bookings.Confirm)
}

// RejectHandler: model declines a pending request.
func (h *BookingHandler) RejectHandler(c *gin.Context) {
	h.transition(c, h.Bookings.Reject)
}

// CancelHandler: either side cancels before start.
func (h *BookingHandler) CancelHandler(c *gin.Context) {
	h.transition(c, h.Bookings.Cancel)
}

// StartHandler: model marks the engagement as started.
func (h *BookingHandler) StartHandler(c *gin.Context) {
	h.transition(c, h.Bookings.Start)
}

// CompleteRequestHandler: model marks the engagement as done.
func (h *BookingHandler) CompleteRequestHandler(c *gin.Context) {
	h.transition(c, h.Bookings.CompleteRequest)
}

// ConfirmCompletionHandler: customer confirms, escrow settles.
func (h *BookingHandler) ConfirmCompletionHandler(c *gin.Context) {
	h.transition(c, h.Bookings.ConfirmCompletion)
}

// DisputeHandler: customer opens a dispute instead of confirming.
func (h *BookingHandler) DisputeHandler(c *gin.Context) {
	userID := c.GetString("userID")

	var req struct {
		Note string `json:"note" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	b, err := h.Bookings.Dispute(userID, c.Param("id"), req.Note)
	if err != nil {
		bookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
