package wallet

import (
	"errors"

	walletRepo "velora/database/repository/wallet"
	"velora/models"
)

// ErrTopUpNotSettled is returned when a top-up confirmation arrives before
// the Stripe payment intent has actually succeeded.
var ErrTopUpNotSettled = errors.New("payment has not succeeded yet")

// WalletService manages balances, Stripe top-ups, escrow holds and payouts.
type WalletService interface {
	GetWallet(userID string) (*models.Wallet, error)
	ListTransactions(userID string, limit int64) ([]models.WalletTransaction, error)

	// CreateTopUpIntent opens a Stripe payment intent for the given amount
	// and returns the client secret to drive the payment sheet.
	CreateTopUpIntent(userID string, amount float64) (*models.TopUpIntent, error)
	// ConfirmTopUp verifies the intent succeeded and credits the wallet.
	// Confirming the same intent twice is a no-op.
	ConfirmTopUp(userID, intentID string) (*models.Wallet, error)

	// Escrow primitives used by the booking and call services. Each records
	// a ledger entry alongside the guarded balance mutation.
	HoldFunds(userID, bookingID string, amount float64) (txID string, err error)
	ReleaseFunds(userID, bookingID string, amount float64) error
	CaptureToModel(customerID, modelID, bookingID string, amount, commission float64) error

	// ChargeCall debits the customer and credits the model for a completed
	// billable call, minus commission.
	ChargeCall(customerID, modelID, callID string, amount, commission float64) error

	// ChargeSubscription debits a premium plan purchase from the model's
	// available balance.
	ChargeSubscription(userID, planID string, amount float64) error

	// RequestPayout debits the model's available balance. Settlement to the
	// model's bank runs out of band; the entry stays pending until an
	// admin marks it paid.
	RequestPayout(userID string, amount float64) (*models.WalletTransaction, error)
	ListPendingPayouts(limit int64) ([]models.WalletTransaction, error)
	MarkPayoutPaid(txID string) (*models.WalletTransaction, error)

	// RefundToCustomer moves a disputed hold back to the customer.
	RefundToCustomer(customerID, bookingID string, amount float64) error
}

// DefaultWalletService is the production implementation.
type DefaultWalletService struct {
	Repo walletRepo.WalletRepository
}
