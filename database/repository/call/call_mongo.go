package callRepo

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

// MongoCallRepo implements CallRepository using MongoDB.
type MongoCallRepo struct {
	coll *mongo.Collection
}

// NewMongoCallRepo creates a new CallRepository backed by MongoDB.
func NewMongoCallRepo() CallRepository {
	coll := database.DB().Collection("call_sessions")
	repo := &MongoCallRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoCallRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "callerId", Value: 1}, {Key: "startedAt", Value: -1}}},
		{Keys: bson.D{{Key: "calleeId", Value: 1}, {Key: "startedAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a new call session document.
func (r *MongoCallRepo) Create(session *models.CallSession) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("failed to create call session: %w", err)
	}
	return nil
}

// GetByID retrieves a call session by its unique ID.
func (r *MongoCallRepo) GetByID(id string) (*models.CallSession, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var session models.CallSession
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&session); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch call session %s: %w", id, err)
	}
	return &session, nil
}

// UpdateStatus moves the session to the target status only if its current
// status is one of from.
func (r *MongoCallRepo) UpdateStatus(id string, from []models.CallStatus, to models.CallStatus, set bson.M) (*models.CallSession, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{
		"id":     id,
		"status": bson.M{"$in": from},
	}

	if set == nil {
		set = bson.M{}
	}
	set["status"] = to

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.CallSession
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("failed to update call session %s: %w", id, err)
	}

	count, cErr := r.coll.CountDocuments(ctx, bson.M{"id": id})
	if cErr != nil {
		return nil, fmt.Errorf("failed to update call session %s: %w", id, cErr)
	}
	if count == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrStatusConflict
}

// RegisterPeer stores the participant's WebRTC peer ID on whichever side of
// the session the user occupies.
func (r *MongoCallRepo) RegisterPeer(id, userID, peerID string) (*models.CallSession, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	session, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	var field string
	switch userID {
	case session.CallerID:
		field = "callerPeerId"
	case session.CalleeID:
		field = "calleePeerId"
	default:
		return nil, fmt.Errorf("user %s is not a participant of call %s", userID, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.CallSession
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{field: peerID}}, opts).Decode(&updated); err != nil {
		return nil, fmt.Errorf("failed to register peer on call %s: %w", id, err)
	}
	return &updated, nil
}

// ListByUser returns the user's most recent call sessions on either side.
func (r *MongoCallRepo) ListByUser(userID string, limit int64) ([]models.CallSession, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	filter := bson.M{"$or": bson.A{
		bson.M{"callerId": userID},
		bson.M{"calleeId": userID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "startedAt", Value: -1}}).SetLimit(limit)

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list call sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []models.CallSession
	for cursor.Next(ctx) {
		var s models.CallSession
		if err := cursor.Decode(&s); err != nil {
			return nil, fmt.Errorf("failed to decode call session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}
