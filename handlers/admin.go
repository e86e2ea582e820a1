package handlers

import (
	"net/http"

	bookingRepo "velora/database/repository/booking"
	walletRepo "velora/database/repository/wallet"
	"velora/models"
	"velora/services/booking"
	"velora/services/profile"
	"velora/services/user"
	"velora/services/wallet"
	"velora/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler exposes the operations surface: user management, dispute
// resolution, profile verification and payout settlement.
type AdminHandler struct {
	Users       user.UserService
	Profiles    profile.ProfileService
	Bookings    booking.BookingService
	Wallet      wallet.WalletService
	BookingRepo bookingRepo.BookingRepository
}

func NewAdminHandler(users user.UserService, profiles profile.ProfileService, bookings booking.BookingService, w wallet.WalletService, repo bookingRepo.BookingRepository) *AdminHandler {
	return &AdminHandler{Users: users, Profiles: profiles, Bookings: bookings, Wallet: w, BookingRepo: repo}
}

// ListUsersHandler returns all accounts.
func (h *AdminHandler) ListUsersHandler(c *gin.Context) {
	users, err := h.Users.GetAllUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

// SetBannedHandler suspends or reinstates an account. Banning revokes all
// auth tokens.
func (h *AdminHandler) SetBannedHandler(c *gin.Context) {
	userID := c.Param("id")

	var req struct {
		Banned bool `json:"banned"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := h.Users.SetBanned(userID, req.Banned); err != nil {
		utils.GetLogger().Error("Ban update failed", zap.String("userId", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": userID, "banned": req.Banned})
}

// VerifyProfileHandler marks a model profile as identity-verified.
func (h *AdminHandler) VerifyProfileHandler(c *gin.Context) {
	userID := c.Param("id")

	var req struct {
		Verified bool `json:"verified"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := h.Profiles.SetVerified(userID, req.Verified); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": userID, "verified": req.Verified})
}

// ResolveDisputeHandler settles a disputed booking either way.
func (h *AdminHandler) ResolveDisputeHandler(c *gin.Context) {
	bookingID := c.Param("id")

	var req struct {
		RefundCustomer bool   `json:"refundCustomer"`
		Note           string `json:"note" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	b, err := h.Bookings.ResolveDispute(bookingID, req.RefundCustomer, req.Note)
	if err != nil {
		utils.GetLogger().Error("Dispute resolution failed", zap.String("bookingId", bookingID), zap.Error(err))
		bookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ListPayoutsHandler returns payout requests awaiting bank settlement.
func (h *AdminHandler) ListPayoutsHandler(c *gin.Context) {
	payouts, err := h.Wallet.ListPendingPayouts(100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payouts": payouts, "count": len(payouts)})
}

// MarkPayoutPaidHandler settles a pending payout after the bank transfer.
func (h *AdminHandler) MarkPayoutPaidHandler(c *gin.Context) {
	txID := c.Param("id")

	tx, err := h.Wallet.MarkPayoutPaid(txID)
	if err != nil {
		if err == walletRepo.ErrPayoutNotPending {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		utils.GetLogger().Error("Payout settlement failed", zap.String("txId", txID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tx)
}

// ListDisputesHandler returns open disputes.
func (h *AdminHandler) ListDisputesHandler(c *gin.Context) {
	disputes, err := h.BookingRepo.ListByStatus(models.BookingDisputed, 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"disputes": disputes, "count": len(disputes)})
}
