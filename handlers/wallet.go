package handlers

import (
	"errors"
	"net/http"

	walletRepo "velora/database/repository/wallet"
	"velora/i18n"
	"velora/services/wallet"
	"velora/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WalletHandler exposes balance, top-up and payout endpoints.
type WalletHandler struct {
	Wallet wallet.WalletService
}

func NewWalletHandler(w wallet.WalletService) *WalletHandler {
	return &WalletHandler{Wallet: w}
}

// GetWalletHandler returns the caller's balance.
func (h *WalletHandler) GetWalletHandler(c *gin.Context) {
	w, err := h.Wallet.GetWallet(c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, w)
}

// ListTransactionsHandler returns the caller's ledger.
func (h *WalletHandler) ListTransactionsHandler(c *gin.Context) {
	txs, err := h.Wallet.ListTransactions(c.GetString("userID"), 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs, "count": len(txs)})
}

// TopUpHandler opens a Stripe payment intent.
func (h *WalletHandler) TopUpHandler(c *gin.Context) {
	userID := c.GetString("userID")

	var req struct {
		Amount float64 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	intent, err := h.Wallet.CreateTopUpIntent(userID, req.Amount)
	if err != nil {
		utils.GetLogger().Error("Top-up intent failed", zap.String("userId", userID), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, intent)
}

// ConfirmTopUpHandler credits the wallet once the payment settled.
func (h *WalletHandler) ConfirmTopUpHandler(c *gin.Context) {
	userID := c.GetString("userID")

	var req struct {
		IntentID string `json:"intentId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	w, err := h.Wallet.ConfirmTopUp(userID, req.IntentID)
	if err != nil {
		if errors.Is(err, wallet.ErrTopUpNotSettled) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, w)
}

// RequestPayoutHandler debits the model's balance for settlement.
func (h *WalletHandler) RequestPayoutHandler(c *gin.Context) {
	userID := c.GetString("userID")

	var req struct {
		Amount float64 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	tx, err := h.Wallet.RequestPayout(userID, req.Amount)
	if err != nil {
		if errors.Is(err, walletRepo.ErrInsufficientFunds) {
			locale := c.GetString("locale")
			c.JSON(http.StatusPaymentRequired, gin.H{"error": i18n.T(locale, "error.insufficient_funds")})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, tx)
}
