package profileRepo

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

// MongoProfileRepo implements ProfileRepository using MongoDB.
type MongoProfileRepo struct {
	coll *mongo.Collection
}

// NewMongoProfileRepo creates a new ProfileRepository backed by MongoDB.
func NewMongoProfileRepo() ProfileRepository {
	coll := database.DB().Collection("model_profiles")
	repo := &MongoProfileRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoProfileRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "city", Value: 1}}},
		{Keys: bson.D{{Key: "services.service", Value: 1}}},
		{Keys: bson.D{{Key: "online", Value: 1}}},
		{Keys: bson.D{{Key: "premiumUntil", Value: -1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a new model profile document.
func (r *MongoProfileRepo) Create(profile *models.ModelProfile) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, profile); err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of an existing profile.
func (r *MongoProfileRepo) Update(profile *models.ModelProfile) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	profile.UpdatedAt = time.Now()
	filter := bson.M{"userId": profile.UserID}
	update := bson.M{"$set": profile}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update profile for user %s: %w", profile.UserID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("profile for user %s not found", profile.UserID)
	}
	return nil
}

// UpdateSetDocument applies a partial $set update to a profile document.
func (r *MongoProfileRepo) UpdateSetDocument(userID string, updateDoc bson.M) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	updateDoc["updatedAt"] = time.Now()
	result, err := r.coll.UpdateOne(ctx, bson.M{"userId": userID}, bson.M{"$set": updateDoc})
	if err != nil {
		return fmt.Errorf("failed to update profile for user %s: %w", userID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("profile for user %s not found", userID)
	}
	return nil
}

// Delete removes a profile document by user ID.
func (r *MongoProfileRepo) Delete(userID string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"userId": userID})
	if err != nil {
		return fmt.Errorf("failed to delete profile for user %s: %w", userID, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("profile for user %s not found", userID)
	}
	return nil
}

// GetByUserID retrieves a profile by the owning user's ID.
func (r *MongoProfileRepo) GetByUserID(userID string) (*models.ModelProfile, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var profile models.ModelProfile
	if err := r.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&profile); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch profile for user %s: %w", userID, err)
	}
	return &profile, nil
}

// Search returns profiles matching the discovery filters, premium
// placements first, then by rating.
func (r *MongoProfileRepo) Search(query models.ProfileSearchQuery) ([]models.ModelProfile, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	filter := bson.M{}
	if query.City != "" {
		filter["city"] = query.City
	}
	if query.Service != "" {
		filter["services.service"] = query.Service
	}
	if query.Language != "" {
		filter["languages"] = query.Language
	}
	if query.OnlyOnline {
		filter["online"] = true
	}
	if query.MaxRate > 0 {
		filter["services"] = bson.M{"$elemMatch": bson.M{"pricePerHr": bson.M{"$lte": query.MaxRate}}}
		if query.Service != "" {
			filter["services"] = bson.M{"$elemMatch": bson.M{
				"service":    query.Service,
				"pricePerHr": bson.M{"$lte": query.MaxRate},
			}}
			delete(filter, "services.service")
		}
	}

	limit := query.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	// Premium placement is a live comparison, not field presence: an
	// expired premiumUntil stays on the document but ranks like any
	// other profile.
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$addFields", Value: bson.M{
			"premiumActive": bson.M{"$gt": bson.A{"$premiumUntil", time.Now()}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "premiumActive", Value: -1},
			{Key: "rating", Value: -1},
		}}},
		{{Key: "$skip", Value: query.Offset}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to search profiles: %w", err)
	}
	defer cursor.Close(ctx)

	var profiles []models.ModelProfile
	for cursor.Next(ctx) {
		var p models.ModelProfile
		if err := cursor.Decode(&p); err != nil {
			return nil, fmt.Errorf("failed to decode profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// AddGalleryURL appends a photo URL to the profile gallery.
func (r *MongoProfileRepo) AddGalleryURL(userID, url string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{
		"$addToSet": bson.M{"gallery": url},
		"$set":      bson.M{"updatedAt": time.Now()},
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"userId": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to add gallery photo for user %s: %w", userID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("profile for user %s not found", userID)
	}
	return nil
}

// RemoveGalleryURL removes a photo URL from the profile gallery.
func (r *MongoProfileRepo) RemoveGalleryURL(userID, url string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{
		"$pull": bson.M{"gallery": url},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"userId": userID}, update); err != nil {
		return fmt.Errorf("failed to remove gallery photo for user %s: %w", userID, err)
	}
	return nil
}

// SetPremiumUntil updates the premium placement expiry; nil clears it.
func (r *MongoProfileRepo) SetPremiumUntil(userID string, until *time.Time) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var update bson.M
	if until == nil {
		update = bson.M{
			"$unset": bson.M{"premiumUntil": ""},
			"$set":   bson.M{"updatedAt": time.Now()},
		}
	} else {
		update = bson.M{"$set": bson.M{
			"premiumUntil":  *until,
			"premiumLapsed": false,
			"updatedAt":     time.Now(),
		}}
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"userId": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to set premium expiry for user %s: %w", userID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("profile for user %s not found", userID)
	}
	return nil
}

// MarkPremiumLapsed flags the given premium window as swept. The filter pins
// the window, so a renewal that moved premiumUntil forward in the meantime
// makes this a no-op. Reports whether this call performed the transition.
func (r *MongoProfileRepo) MarkPremiumLapsed(userID string, until time.Time) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{
		"userId":        userID,
		"premiumUntil":  until,
		"premiumLapsed": bson.M{"$ne": true},
	}
	update := bson.M{"$set": bson.M{"premiumLapsed": true, "updatedAt": time.Now()}}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to mark premium lapsed for user %s: %w", userID, err)
	}
	return result.ModifiedCount > 0, nil
}
