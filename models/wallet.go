// File: velora/models/wallet.go
package models

import "time"

// Wallet is the per-user balance document. Held covers escrowed booking
// funds and is not spendable; Available() is what new holds draw from.
type Wallet struct {
	UserID    string    `bson:"userId" json:"userId"`
	Balance   float64   `bson:"balance" json:"balance"`
	Held      float64   `bson:"held" json:"held"`
	Currency  string    `bson:"currency" json:"currency"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (w *Wallet) Available() float64 {
	return w.Balance - w.Held
}

// TxType classifies a wallet transaction.
type TxType string

const (
	TxTopUp   TxType = "topup"
	TxHold    TxType = "hold"
	TxRelease TxType = "release"
	TxCapture TxType = "capture"
	TxPayout  TxType = "payout"
	TxRefund  TxType = "refund"
	TxFee     TxType = "fee"
)

// WalletTransaction is an immutable ledger entry. Every movement of money
// through the platform leaves one.
type WalletTransaction struct {
	ID        string    `bson:"id" json:"id"`
	UserID    string    `bson:"userId" json:"userId"`
	Type      TxType    `bson:"type" json:"type"`
	Amount    float64   `bson:"amount" json:"amount"` // positive = credit, negative = debit
	Currency  string    `bson:"currency" json:"currency"`
	BookingID string    `bson:"bookingId,omitempty" json:"bookingId,omitempty"`
	CallID    string    `bson:"callId,omitempty" json:"callId,omitempty"`
	StripeID  string    `bson:"stripeId,omitempty" json:"stripeId,omitempty"`
	Note      string    `bson:"note,omitempty" json:"note,omitempty"`
	// PayoutStatus is set on payout entries only: pending until an admin
	// marks the bank transfer done.
	PayoutStatus PayoutStatus `bson:"payoutStatus,omitempty" json:"payoutStatus,omitempty"`
	CreatedAt    time.Time    `bson:"createdAt" json:"createdAt"`
}

// PayoutStatus tracks the settlement of a payout request.
type PayoutStatus string

const (
	PayoutPending PayoutStatus = "pending"
	PayoutPaid    PayoutStatus = "paid"
)

// TopUpIntent is returned to the client to drive the Stripe payment sheet.
type TopUpIntent struct {
	IntentID     string  `json:"intentId"`
	ClientSecret string  `json:"clientSecret"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
}
