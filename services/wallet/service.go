package wallet

import (
	"fmt"

	"velora/config"
	walletRepo "velora/database/repository/wallet"
	"velora/models"
	"velora/utils"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

const (
	minTopUp  = 5.0
	maxTopUp  = 2000.0
	minPayout = 10.0
)

func currency() string {
	if config.AppConfig.Currency != "" {
		return config.AppConfig.Currency
	}
	return "eur"
}

// GetWallet returns the user's wallet, creating an empty one on first use.
func (s *DefaultWalletService) GetWallet(userID string) (*models.Wallet, error) {
	return s.Repo.EnsureWallet(userID, currency())
}

// ListTransactions returns the user's recent ledger entries.
func (s *DefaultWalletService) ListTransactions(userID string, limit int64) ([]models.WalletTransaction, error) {
	return s.Repo.ListTransactions(userID, limit)
}

// CreateTopUpIntent opens a Stripe payment intent for the amount.
func (s *DefaultWalletService) CreateTopUpIntent(userID string, amount float64) (*models.TopUpIntent, error) {
	if amount < minTopUp || amount > maxTopUp {
		return nil, fmt.Errorf("top-up amount must be between %.0f and %.0f", minTopUp, maxTopUp)
	}
	if _, err := s.Repo.EnsureWallet(userID, currency()); err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(amount * 100)),
		Currency: stripe.String(currency()),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("userId", userID)
	params.AddMetadata("purpose", "wallet_topup")

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &models.TopUpIntent{
		IntentID:     pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       amount,
		Currency:     currency(),
	}, nil
}

// ConfirmTopUp verifies the payment intent succeeded and credits the wallet.
func (s *DefaultWalletService) ConfirmTopUp(userID, intentID string) (*models.Wallet, error) {
	if existing, err := s.Repo.GetTransactionByStripeID(intentID); err != nil {
		return nil, err
	} else if existing != nil {
		return s.Repo.GetWallet(userID)
	}

	pi, err := paymentintent.Get(intentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment intent: %w", err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, ErrTopUpNotSettled
	}
	if pi.Metadata["userId"] != userID {
		return nil, fmt.Errorf("payment intent %s does not belong to user %s", intentID, userID)
	}

	return s.settleTopUp(userID, intentID, float64(pi.Amount)/100)
}

// settleTopUp credits a verified payment intent exactly once. The ledger
// entry goes in first; the unique stripeId index makes it the idempotency
// barrier, so a concurrent confirm of the same intent loses the insert and
// must not credit a second time.
func (s *DefaultWalletService) settleTopUp(userID, intentID string, amount float64) (*models.Wallet, error) {
	err := s.Repo.RecordTransaction(&models.WalletTransaction{
		ID:       uuid.New().String(),
		UserID:   userID,
		Type:     models.TxTopUp,
		Amount:   amount,
		Currency: currency(),
		StripeID: intentID,
	})
	if err == walletRepo.ErrDuplicateTransaction {
		return s.Repo.GetWallet(userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record top-up: %w", err)
	}
	if err := s.Repo.Credit(userID, amount); err != nil {
		utils.GetLogger().Error("top-up recorded but wallet credit failed",
			zap.String("userId", userID), zap.String("intentId", intentID), zap.Error(err))
		return nil, fmt.Errorf("failed to credit wallet: %w", err)
	}

	utils.GetLogger().Info("Wallet topped up",
		zap.String("userId", userID), zap.Float64("amount", amount))
	return s.Repo.GetWallet(userID)
}

// HoldFunds escrows the booking amount out of the customer's balance.
func (s *DefaultWalletService) HoldFunds(userID, bookingID string, amount float64) (string, error) {
	if err := s.Repo.Hold(userID, amount); err != nil {
		return "", err
	}
	tx := &models.WalletTransaction{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      models.TxHold,
		Amount:    -amount,
		Currency:  currency(),
		BookingID: bookingID,
	}
	if err := s.Repo.RecordTransaction(tx); err != nil {
		return "", fmt.Errorf("failed to record hold: %w", err)
	}
	return tx.ID, nil
}

// ReleaseFunds returns a held booking amount to the customer.
func (s *DefaultWalletService) ReleaseFunds(userID, bookingID string, amount float64) error {
	if err := s.Repo.ReleaseHold(userID, amount); err != nil {
		return err
	}
	return s.Repo.RecordTransaction(&models.WalletTransaction{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      models.TxRelease,
		Amount:    amount,
		Currency:  currency(),
		BookingID: bookingID,
	})
}

// CaptureToModel settles a completed booking: the customer's hold is
// captured and the model is credited the amount minus commission.
func (s *DefaultWalletService) CaptureToModel(customerID, modelID, bookingID string, amount, commission float64) error {
	if commission < 0 || commission >= amount {
		return fmt.Errorf("invalid commission %.2f for amount %.2f", commission, amount)
	}
	if err := s.Repo.CaptureHold(customerID, amount); err != nil {
		return err
	}
	if err := s.Repo.RecordTransaction(&models.WalletTransaction{
		ID:        uuid.New().String(),
		UserID:    customerID,
		Type:      models.TxCapture,
		Amount:    -amount,
		Currency:  currency(),
		BookingID: bookingID,
	}); err != nil {
		return fmt.Errorf("failed to record capture: %w", err)
	}

	net := amount - commission
	if _, err := s.Repo.EnsureWallet(modelID, currency()); err != nil {
		return err
	}
	if err := s.Repo.Credit(modelID, net); err != nil {
		return fmt.Errorf("failed to credit model: %w", err)
	}
	return s.Repo.RecordTransaction(&models.WalletTransaction{
		ID:        uuid.New().String(),
		UserID:    modelID,
		Type:      models.TxCapture,
		Amount:    net,
		Currency:  currency(),
		BookingID: bookingID,
		Note:      fmt.Sprintf("booking earnings, commission %.2f", commission),
	})
}

// ChargeCall bills a completed call: customer debited, model credited net.
func (s *DefaultWalletService) ChargeCall(customerID, modelID, callID string, amount, commission float64) error {
	if amount <= 0 {
		return nil
	}
	if err := s.Repo.Debit(customerID, amount); err != nil {
		return err
	}
	if err := s.Repo.RecordTransaction(&models.WalletTransaction{
		ID:       uuid.New().String(),
		UserID:   customerID,
		Type:     models.TxFee,
		Amount:   -amount,
		Currency: currency(),
		CallID:   callID,
		Note:     "call charge",
	}); err != nil {
		return fmt.Errorf("failed to record call charge: %w", err)
	}

	net := amount - commission
	if net <= 0 {
		return nil
	}
	if _, err := s.Repo.EnsureWallet(modelID, currency()); err != nil {
		return err
	}
	if err := s.Repo.Credit(modelID, net); err != nil {
		return fmt.Errorf("failed to credit model for call: %w", err)
	}
	return s.Repo.RecordTransaction(&models.WalletTransaction{
		ID:       uuid.New().String(),
		UserID:   modelID,
		Type:     models.TxCapture,
		Amount:   net,
		Currency: currency(),
		CallID:   callID,
		Note:     fmt.Sprintf("call earnings, commission %.2f", commission),
	})
}

// ChargeSubscription debits a premium plan purchase.
func (s *DefaultWalletService) ChargeSubscription(userID, planID string, amount float64) error {
	if err := s.Repo.Debit(userID, amount); err != nil {
		return err
	}
	return s.Repo.RecordTransaction(&models.WalletTransaction{
		ID:       uuid.New().String(),
		UserID:   userID,
		Type:     models.TxFee,
		Amount:   -amount,
		Currency: currency(),
		Note:     fmt.Sprintf("subscription %s", planID),
	})
}

// RequestPayout debits the model's available balance for bank settlement.
func (s *DefaultWalletService) RequestPayout(userID string, amount float64) (*models.WalletTransaction, error) {
	if amount < minPayout {
		return nil, fmt.Errorf("minimum payout is %.0f", minPayout)
	}
	if err := s.Repo.Debit(userID, amount); err != nil {
		if err == walletRepo.ErrInsufficientFunds {
			return nil, err
		}
		return nil, fmt.Errorf("failed to debit payout: %w", err)
	}
	tx := &models.WalletTransaction{
		ID:           uuid.New().String(),
		UserID:       userID,
		Type:         models.TxPayout,
		Amount:       -amount,
		Currency:     currency(),
		Note:         "payout requested",
		PayoutStatus: models.PayoutPending,
	}
	if err := s.Repo.RecordTransaction(tx); err != nil {
		return nil, fmt.Errorf("failed to record payout: %w", err)
	}
	return tx, nil
}

// ListPendingPayouts returns payout requests awaiting bank settlement.
func (s *DefaultWalletService) ListPendingPayouts(limit int64) ([]models.WalletTransaction, error) {
	return s.Repo.ListPayouts(models.PayoutPending, limit)
}

// MarkPayoutPaid settles a pending payout after the bank transfer is done.
func (s *DefaultWalletService) MarkPayoutPaid(txID string) (*models.WalletTransaction, error) {
	tx, err := s.Repo.SetPayoutStatus(txID, models.PayoutPaid)
	if err != nil {
		return nil, err
	}
	utils.GetLogger().Info("Payout marked paid",
		zap.String("txId", tx.ID), zap.String("userId", tx.UserID), zap.Float64("amount", -tx.Amount))
	return tx, nil
}

// RefundToCustomer resolves a dispute in the customer's favour: the held
// amount goes back to their spendable balance.
func (s *DefaultWalletService) RefundToCustomer(customerID, bookingID string, amount float64) error {
	if err := s.Repo.ReleaseHold(customerID, amount); err != nil {
		return err
	}
	return s.Repo.RecordTransaction(&models.WalletTransaction{
		ID:        uuid.New().String(),
		UserID:    customerID,
		Type:      models.TxRefund,
		Amount:    amount,
		Currency:  currency(),
		BookingID: bookingID,
		Note:      "dispute refund",
	})
}
