package wallet

import (
	"testing"

	"velora/config"
	walletRepo "velora/database/repository/wallet"
	"velora/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWalletRepo mirrors the guarded-update semantics of the Mongo
// implementation in memory.
type fakeWalletRepo struct {
	wallets map[string]*models.Wallet
	ledger  []models.WalletTransaction
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{wallets: make(map[string]*models.Wallet)}
}

func (r *fakeWalletRepo) EnsureWallet(userID, currency string) (*models.Wallet, error) {
	if w, ok := r.wallets[userID]; ok {
		cp := *w
		return &cp, nil
	}
	w := &models.Wallet{UserID: userID, Currency: currency}
	r.wallets[userID] = w
	cp := *w
	return &cp, nil
}

func (r *fakeWalletRepo) GetWallet(userID string) (*models.Wallet, error) {
	w, ok := r.wallets[userID]
	if !ok {
		return nil, walletRepo.ErrWalletNotFound
	}
	cp := *w
	return &cp, nil
}

func (r *fakeWalletRepo) Credit(userID string, amount float64) error {
	w, ok := r.wallets[userID]
	if !ok {
		return walletRepo.ErrWalletNotFound
	}
	w.Balance += amount
	return nil
}

func (r *fakeWalletRepo) Debit(userID string, amount float64) error {
	w, ok := r.wallets[userID]
	if !ok {
		return walletRepo.ErrWalletNotFound
	}
	if w.Available() < amount {
		return walletRepo.ErrInsufficientFunds
	}
	w.Balance -= amount
	return nil
}

func (r *fakeWalletRepo) Hold(userID string, amount float64) error {
	w, ok := r.wallets[userID]
	if !ok {
		return walletRepo.ErrWalletNotFound
	}
	if w.Available() < amount {
		return walletRepo.ErrInsufficientFunds
	}
	w.Held += amount
	return nil
}

func (r *fakeWalletRepo) ReleaseHold(userID string, amount float64) error {
	w, ok := r.wallets[userID]
	if !ok {
		return walletRepo.ErrWalletNotFound
	}
	if w.Held < amount {
		return walletRepo.ErrInsufficientFunds
	}
	w.Held -= amount
	return nil
}

func (r *fakeWalletRepo) CaptureHold(userID string, amount float64) error {
	w, ok := r.wallets[userID]
	if !ok {
		return walletRepo.ErrWalletNotFound
	}
	if w.Held < amount {
		return walletRepo.ErrInsufficientFunds
	}
	w.Held -= amount
	w.Balance -= amount
	return nil
}

func (r *fakeWalletRepo) RecordTransaction(tx *models.WalletTransaction) error {
	if tx.StripeID != "" {
		for _, prev := range r.ledger {
			if prev.StripeID == tx.StripeID {
				return walletRepo.ErrDuplicateTransaction
			}
		}
	}
	r.ledger = append(r.ledger, *tx)
	return nil
}

func (r *fakeWalletRepo) ListTransactions(userID string, limit int64) ([]models.WalletTransaction, error) {
	var out []models.WalletTransaction
	for _, tx := range r.ledger {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (r *fakeWalletRepo) GetTransactionByStripeID(stripeID string) (*models.WalletTransaction, error) {
	for _, tx := range r.ledger {
		if tx.StripeID == stripeID {
			cp := tx
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeWalletRepo) ListPayouts(status models.PayoutStatus, limit int64) ([]models.WalletTransaction, error) {
	var out []models.WalletTransaction
	for _, tx := range r.ledger {
		if tx.Type == models.TxPayout && tx.PayoutStatus == status {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (r *fakeWalletRepo) SetPayoutStatus(txID string, status models.PayoutStatus) (*models.WalletTransaction, error) {
	for i := range r.ledger {
		if r.ledger[i].ID == txID && r.ledger[i].Type == models.TxPayout && r.ledger[i].PayoutStatus == models.PayoutPending {
			r.ledger[i].PayoutStatus = status
			cp := r.ledger[i]
			return &cp, nil
		}
	}
	return nil, walletRepo.ErrPayoutNotPending
}

func newTestWalletService(repo *fakeWalletRepo) *DefaultWalletService {
	config.AppConfig = config.Config{Currency: "eur"}
	return &DefaultWalletService{Repo: repo}
}

func fund(t *testing.T, repo *fakeWalletRepo, userID string, amount float64) {
	t.Helper()
	_, err := repo.EnsureWallet(userID, "eur")
	require.NoError(t, err)
	require.NoError(t, repo.Credit(userID, amount))
}

func TestHoldFundsEscrowsAndLedgers(t *testing.T) {
	repo := newFakeWalletRepo()
	svc := newTestWalletService(repo)
	fund(t, repo, "cust-1", 300)

	txID, err := svc.HoldFunds("cust-1", "bk-1", 200)
	require.NoError(t, err)
	assert.NotEmpty(t, txID)

	w, _ := repo.GetWallet("cust-1")
	assert.Equal(t, 300.0, w.Balance)
	assert.Equal(t, 200.0, w.Held)
	assert.Equal(t, 100.0, w.Available())

	require.Len(t, repo.ledger, 1)
	assert.Equal(t, models.TxHold, repo.ledger[0].Type)
	assert.Equal(t, -200.0, repo.ledger[0].Amount)
	assert.Equal(t, "bk-1", repo.ledger[0].BookingID)
}

func TestHoldFundsRejectsOverdraw(t *testing.T) {
	repo := newFakeWalletRepo()
	svc := newTestWalletService(repo)
	fund(t, repo, "cust-1", 100)

	_, err := svc.HoldFunds("cust-1", "bk-1", 200)
	assert.ErrorIs(t, err, walletRepo.ErrInsufficientFunds)
	assert.Empty(t, repo.ledger, "failed hold must not ledger")
}

func TestHeldFundsAreNotSpendable(t *testing.T) {
	repo := newFakeWalletRepo()
	svc := newTestWalletService(repo)
	fund(t, repo, "cust-1", 250)

	_, err := svc.HoldFunds("cust-1", "bk-1", 200)
	require.NoError(t, err)

	// Only 50 remains available, a second hold of 100 must fail.
	_, err = svc.HoldFunds("cust-1", "bk-2", 100)
	assert.ErrorIs(t, err, walletRepo.ErrInsufficientFunds)
}

func TestReleaseFundsRestoresBalance(t *testing.T) {
	repo := newFakeWalletRepo()
	svc := newTestWalletService(repo)
	fund(t, repo, "cust-1", 300)

	_, err := svc.HoldFunds("cust-1", "bk-1", 200)
	require.NoError(t, err)
	require.NoError(t, svc.ReleaseFunds("cust-1", "bk-1", 200))

	w, _ := repo.GetWallet("cust-1")
	assert.Equal(t, 300.0, w.Available())
}

func TestCaptureToModelSplitsCommission(t *testing.T) {
	repo := newFakeWalletRepo()
	svc := newTestWalletService(repo)
	fund(t, repo, "cust-1", 300)

	_, err := svc.HoldFunds("cust-1", "bk-1", 200)
	require.NoError(t, err)
	require.NoError(t, svc.CaptureToModel("cust-1", "model-1", "bk-1", 200, 30))

	cw, _ := repo.GetWallet("cust-1")
	assert.Equal(t, 100.0, cw.Balance)
	assert.Zero(t, cw.Held)

	mw, _ := repo.GetWallet("model-1")
	assert.Equal(t, 170.0, mw.Balance)

	// Hold, customer capture, model credit.
	require.Len(t, repo.ledger, 3)
	assert.Equal(t, -200.0, repo.ledger[1].Amount)
	assert.Equal(t, 170.0, repo.ledger[2].Amount)
	assert.Equal(t, "model-1", repo.ledger[2].UserID)
}

func TestCaptureToModelRejectsBadCommission(t *testing.T) {
	repo := newFakeWalletRepo()
	svc := newTestWalletService(repo)

	assert.Error(t, svc.CaptureToModel("cust-1", "model-1", "bk-1", 100, 100))
	assert.Error(t, svc.CaptureToModel("cust-1", "model-1", "bk-1", 100, -1))
}

func TestChargeCall(t *testing.T) {
	repo := newFakeWalletRepo()
	svc := newTestWalletService(repo)
	fund(t, repo, "cust-1", 50)

	require.NoError(t, svc.ChargeCall("cust-1", "model-1", "call-1", 3.0, 0.45))

	cw, _ := repo.GetWallet("cust-1")
	assert.InDelta(t, 47.0, cw.Balance, 0.001)
	mw, _ := repo.GetWallet("model-1")
	assert.InDelta(t, 2.55, mw.Balance, 0.001)

	// Zero amount is a no-op.
	require.NoError(t, svc.ChargeCall("cust-1", "model-1", "call-2", 0, 0))
	assert.Len(t, repo.ledger, 2)
}

func TestRequestPayout(t *testing.T) {
	repo := newFakeWalletRepo()
	svc := newTestWalletService(repo)
	fund(t, repo, "model-1", 80)

	tx, err := svc.RequestPayout("model-1", 50)
	require.NoError(t, err)
	assert.Equal(t, models.TxPayout, tx.Type)
	assert.Equal(t, -50.0, tx.Amount)

	w, _ := repo.GetWallet("model-1")
	assert.Equal(t, 30.0, w.Balance)

	_, err = svc.RequestPayout("model-1", 5)
	assert.Error(t, err, "below minimum payout")

	_, err = svc.RequestPayout("model-1", 100)
	assert.ErrorIs(t, err, walletRepo.ErrInsufficientFunds)
}

func TestPayoutSettlement(t *testing.T) {
	repo := newFakeWalletRepo()
	svc := newTestWalletService(repo)
	fund(t, repo, "model-1", 80)

	tx, err := svc.RequestPayout("model-1", 50)
	require.NoError(t, err)
	assert.Equal(t, models.PayoutPending, tx.PayoutStatus)

	pending, err := svc.ListPendingPayouts(50)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	paid, err := svc.MarkPayoutPaid(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PayoutPaid, paid.PayoutStatus)

	pending, _ = svc.ListPendingPayouts(50)
	assert.Empty(t, pending)

	// Settling twice fails.
	_, err = svc.MarkPayoutPaid(tx.ID)
	assert.ErrorIs(t, err, walletRepo.ErrPayoutNotPending)
}

func TestRefundToCustomer(t *testing.T) {
	repo := newFakeWalletRepo()
	svc := newTestWalletService(repo)
	fund(t, repo, "cust-1", 300)

	_, err := svc.HoldFunds("cust-1", "bk-1", 200)
	require.NoError(t, err)
	require.NoError(t, svc.RefundToCustomer("cust-1", "bk-1", 200))

	w, _ := repo.GetWallet("cust-1")
	assert.Equal(t, 300.0, w.Available())

	last := repo.ledger[len(repo.ledger)-1]
	assert.Equal(t, models.TxRefund, last.Type)
	assert.Equal(t, 200.0, last.Amount)
}

func TestTopUpAmountBounds(t *testing.T) {
	svc := newTestWalletService(newFakeWalletRepo())

	_, err := svc.CreateTopUpIntent("cust-1", 2)
	assert.Error(t, err)
	_, err = svc.CreateTopUpIntent("cust-1", 5000)
	assert.Error(t, err)
}

func TestConfirmTopUpIsIdempotent(t *testing.T) {
	repo := newFakeWalletRepo()
	svc := newTestWalletService(repo)
	fund(t, repo, "cust-1", 100)
	repo.RecordTransaction(&models.WalletTransaction{
		ID: "tx-1", UserID: "cust-1", Type: models.TxTopUp, Amount: 50, StripeID: "pi_123",
	})

	// A replayed confirmation returns the wallet without touching Stripe.
	w, err := svc.ConfirmTopUp("cust-1", "pi_123")
	require.NoError(t, err)
	assert.Equal(t, 100.0, w.Balance)
}

func TestSettleTopUpCreditsExactlyOnce(t *testing.T) {
	repo := newFakeWalletRepo()
	svc := newTestWalletService(repo)
	fund(t, repo, "cust-1", 100)

	w, err := svc.settleTopUp("cust-1", "pi_456", 50)
	require.NoError(t, err)
	assert.Equal(t, 150.0, w.Balance)

	// A racing settlement of the same intent loses the ledger insert and
	// must not credit a second time.
	w, err = svc.settleTopUp("cust-1", "pi_456", 50)
	require.NoError(t, err)
	assert.Equal(t, 150.0, w.Balance)

	var topUps int
	for _, tx := range repo.ledger {
		if tx.StripeID == "pi_456" {
			topUps++
		}
	}
	assert.Equal(t, 1, topUps)
}
