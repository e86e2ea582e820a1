package walletRepo

import (
	"errors"

	"velora/models"
)

// ErrInsufficientFunds is returned when a guarded balance mutation would
// take the available balance (or a hold) below zero.
var ErrInsufficientFunds = errors.New("insufficient wallet funds")

// ErrWalletNotFound is returned when no wallet exists for the user.
var ErrWalletNotFound = errors.New("wallet not found")

// ErrPayoutNotPending is returned when a payout entry does not exist or
// was already settled.
var ErrPayoutNotPending = errors.New("payout is not pending")

// ErrDuplicateTransaction is returned when a ledger entry with the same
// Stripe payment intent already exists.
var ErrDuplicateTransaction = errors.New("transaction already recorded")

// WalletRepository defines persistence operations for wallets and the
// transaction ledger. All balance mutations are guarded updates: the
// filter encodes the precondition, so a failed match means the invariant
// would have been violated.
type WalletRepository interface {
	EnsureWallet(userID, currency string) (*models.Wallet, error)
	GetWallet(userID string) (*models.Wallet, error)

	// Credit adds amount to the spendable balance.
	Credit(userID string, amount float64) error
	// Debit removes amount from the available balance (balance - held).
	Debit(userID string, amount float64) error
	// Hold escrows amount out of the available balance.
	Hold(userID string, amount float64) error
	// ReleaseHold returns a held amount to the available balance.
	ReleaseHold(userID string, amount float64) error
	// CaptureHold removes a held amount from the wallet entirely.
	CaptureHold(userID string, amount float64) error

	RecordTransaction(tx *models.WalletTransaction) error
	ListTransactions(userID string, limit int64) ([]models.WalletTransaction, error)
	// GetTransactionByStripeID returns the ledger entry for a Stripe payment
	// intent, or nil if none was recorded. Used for top-up idempotency.
	GetTransactionByStripeID(stripeID string) (*models.WalletTransaction, error)

	// ListPayouts returns payout entries in the given settlement state.
	ListPayouts(status models.PayoutStatus, limit int64) ([]models.WalletTransaction, error)
	// SetPayoutStatus settles a pending payout entry.
	SetPayoutStatus(txID string, status models.PayoutStatus) (*models.WalletTransaction, error)
}
