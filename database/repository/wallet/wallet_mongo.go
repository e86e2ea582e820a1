package walletRepo

import (
	"context"
	"fmt"
	"time"

	"velora/database"
	"velora/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoWalletRepo implements WalletRepository using MongoDB.
type MongoWalletRepo struct {
	walletColl *mongo.Collection
	txColl     *mongo.Collection
}

// NewMongoWalletRepo creates a new WalletRepository backed by MongoDB.
func NewMongoWalletRepo() WalletRepository {
	db := database.DB()
	repo := &MongoWalletRepo{
		walletColl: db.Collection("wallets"),
		txColl:     db.Collection("wallet_transactions"),
	}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoWalletRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	if _, err := r.walletColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("failed to create wallet indexes: %w", err)
	}

	_, err := r.txColl.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "bookingId", Value: 1}}},
		{Keys: bson.D{{Key: "stripeId", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
	})
	if err != nil {
		return fmt.Errorf("failed to create transaction indexes: %w", err)
	}
	return nil
}

// EnsureWallet returns the user's wallet, creating an empty one if absent.
func (r *MongoWalletRepo) EnsureWallet(userID, currency string) (*models.Wallet, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	update := bson.M{
		"$setOnInsert": bson.M{
			"userId":    userID,
			"balance":   0.0,
			"held":      0.0,
			"currency":  currency,
			"createdAt": now,
		},
		"$set": bson.M{"updatedAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var wallet models.Wallet
	if err := r.walletColl.FindOneAndUpdate(ctx, bson.M{"userId": userID}, update, opts).Decode(&wallet); err != nil {
		return nil, fmt.Errorf("failed to ensure wallet for user %s: %w", userID, err)
	}
	return &wallet, nil
}

// GetWallet retrieves the user's wallet.
func (r *MongoWalletRepo) GetWallet(userID string) (*models.Wallet, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var wallet models.Wallet
	if err := r.walletColl.FindOne(ctx, bson.M{"userId": userID}).Decode(&wallet); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to fetch wallet for user %s: %w", userID, err)
	}
	return &wallet, nil
}

// guardedUpdate runs an update whose filter encodes a balance precondition.
// A zero match with an existing wallet means the precondition failed.
func (r *MongoWalletRepo) guardedUpdate(userID string, filter, update bson.M) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter["userId"] = userID
	result, err := r.walletColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update wallet for user %s: %w", userID, err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	count, cErr := r.walletColl.CountDocuments(ctx, bson.M{"userId": userID})
	if cErr != nil {
		return fmt.Errorf("failed to update wallet for user %s: %w", userID, cErr)
	}
	if count == 0 {
		return ErrWalletNotFound
	}
	return ErrInsufficientFunds
}

// Credit adds amount to the spendable balance.
func (r *MongoWalletRepo) Credit(userID string, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("credit amount must be positive")
	}
	return r.guardedUpdate(userID,
		bson.M{},
		bson.M{"$inc": bson.M{"balance": amount}, "$set": bson.M{"updatedAt": time.Now()}},
	)
}

// availableAtLeast is the precondition balance - held >= amount.
func availableAtLeast(amount float64) bson.M {
	return bson.M{"$expr": bson.M{
		"$gte": bson.A{bson.M{"$subtract": bson.A{"$balance", "$held"}}, amount},
	}}
}

// Debit removes amount from the available balance.
func (r *MongoWalletRepo) Debit(userID string, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("debit amount must be positive")
	}
	return r.guardedUpdate(userID,
		availableAtLeast(amount),
		bson.M{"$inc": bson.M{"balance": -amount}, "$set": bson.M{"updatedAt": time.Now()}},
	)
}

// Hold escrows amount out of the available balance.
func (r *MongoWalletRepo) Hold(userID string, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("hold amount must be positive")
	}
	return r.guardedUpdate(userID,
		availableAtLeast(amount),
		bson.M{"$inc": bson.M{"held": amount}, "$set": bson.M{"updatedAt": time.Now()}},
	)
}

// ReleaseHold returns a held amount to the available balance.
func (r *MongoWalletRepo) ReleaseHold(userID string, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("release amount must be positive")
	}
	return r.guardedUpdate(userID,
		bson.M{"held": bson.M{"$gte": amount}},
		bson.M{"$inc": bson.M{"held": -amount}, "$set": bson.M{"updatedAt": time.Now()}},
	)
}

// CaptureHold removes a held amount from the wallet entirely.
func (r *MongoWalletRepo) CaptureHold(userID string, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("capture amount must be positive")
	}
	return r.guardedUpdate(userID,
		bson.M{"held": bson.M{"$gte": amount}},
		bson.M{"$inc": bson.M{"held": -amount, "balance": -amount}, "$set": bson.M{"updatedAt": time.Now()}},
	)
}

// RecordTransaction appends an immutable ledger entry.
func (r *MongoWalletRepo) RecordTransaction(tx *models.WalletTransaction) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	tx.CreatedAt = time.Now()
	if _, err := r.txColl.InsertOne(ctx, tx); err != nil {
		// The unique stripeId index rejects a second entry for the same
		// payment intent; callers treat that as already processed.
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateTransaction
		}
		return fmt.Errorf("failed to record wallet transaction: %w", err)
	}
	return nil
}

// GetTransactionByStripeID looks up a ledger entry by Stripe intent ID.
func (r *MongoWalletRepo) GetTransactionByStripeID(stripeID string) (*models.WalletTransaction, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var tx models.WalletTransaction
	if err := r.txColl.FindOne(ctx, bson.M{"stripeId": stripeID}).Decode(&tx); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch transaction for stripe id %s: %w", stripeID, err)
	}
	return &tx, nil
}

// ListPayouts returns payout ledger entries in the given settlement state.
func (r *MongoWalletRepo) ListPayouts(status models.PayoutStatus, limit int64) ([]models.WalletTransaction, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}).SetLimit(limit)

	cursor, err := r.txColl.Find(ctx, bson.M{"type": models.TxPayout, "payoutStatus": status}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list payouts: %w", err)
	}
	defer cursor.Close(ctx)

	var txs []models.WalletTransaction
	for cursor.Next(ctx) {
		var tx models.WalletTransaction
		if err := cursor.Decode(&tx); err != nil {
			return nil, fmt.Errorf("failed to decode payout: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// SetPayoutStatus flips a pending payout entry to the given state. The
// filter on the current status keeps the flip single-shot.
func (r *MongoWalletRepo) SetPayoutStatus(txID string, status models.PayoutStatus) (*models.WalletTransaction, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var tx models.WalletTransaction
	err := r.txColl.FindOneAndUpdate(ctx,
		bson.M{"id": txID, "type": models.TxPayout, "payoutStatus": models.PayoutPending},
		bson.M{"$set": bson.M{"payoutStatus": status}},
		opts,
	).Decode(&tx)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrPayoutNotPending
		}
		return nil, fmt.Errorf("failed to update payout %s: %w", txID, err)
	}
	return &tx, nil
}

// ListTransactions returns the user's most recent ledger entries.
func (r *MongoWalletRepo) ListTransactions(userID string, limit int64) ([]models.WalletTransaction, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)

	cursor, err := r.txColl.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallet transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var txs []models.WalletTransaction
	for cursor.Next(ctx) {
		var tx models.WalletTransaction
		if err := cursor.Decode(&tx); err != nil {
			return nil, fmt.Errorf("failed to decode wallet transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}
