package handlers

import (
	"errors"
	"net/http"

	walletRepo "velora/database/repository/wallet"
	"velora/i18n"
	"velora/services/subscription"

	"github.com/gin-gonic/gin"
)

// SubscriptionHandler exposes premium-placement endpoints for models.
type SubscriptionHandler struct {
	Subscriptions subscription.SubscriptionService
}

func NewSubscriptionHandler(s subscription.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{Subscriptions: s}
}

// PlansHandler lists the purchasable plans.
func (h *SubscriptionHandler) PlansHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"plans": h.Subscriptions.ListPlans()})
}

// InfoHandler reports the caller's subscription state.
func (h *SubscriptionHandler) InfoHandler(c *gin.Context) {
	info, err := h.Subscriptions.GetInfo(c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, info)
}

// PurchaseHandler buys or extends a plan from the wallet balance.
func (h *SubscriptionHandler) PurchaseHandler(c *gin.Context) {
	var req struct {
		PlanID string `json:"planId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	info, err := h.Subscriptions.Purchase(c.GetString("userID"), req.PlanID)
	if err != nil {
		switch {
		case errors.Is(err, subscription.ErrUnknownPlan):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, walletRepo.ErrInsufficientFunds):
			locale := c.GetString("locale")
			c.JSON(http.StatusPaymentRequired, gin.H{"error": i18n.T(locale, "error.insufficient_funds")})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, info)
}
