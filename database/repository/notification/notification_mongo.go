package notificationRepo

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

// MongoNotificationRepo implements NotificationRepository using MongoDB.
type MongoNotificationRepo struct {
	notifColl *mongo.Collection
	pushColl  *mongo.Collection
}

// NewMongoNotificationRepo creates a new NotificationRepository backed by MongoDB.
func NewMongoNotificationRepo() NotificationRepository {
	db := database.DB()
	repo := &MongoNotificationRepo{
		notifColl: db.Collection("notifications"),
		pushColl:  db.Collection("push_subscriptions"),
	}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoNotificationRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	if _, err := r.notifColl.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "read", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("failed to create notification indexes: %w", err)
	}

	_, err := r.pushColl.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "endpoint", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create push subscription indexes: %w", err)
	}
	return nil
}

// Create inserts a new notification document.
func (r *MongoNotificationRepo) Create(n *models.Notification) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	n.CreatedAt = time.Now()
	if _, err := r.notifColl.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListByUser returns the user's most recent notifications.
func (r *MongoNotificationRepo) ListByUser(userID string, unreadOnly bool, limit int64) ([]models.Notification, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	filter := bson.M{"userId": userID}
	if unreadOnly {
		filter["read"] = false
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)

	cursor, err := r.notifColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	for cursor.Next(ctx) {
		var n models.Notification
		if err := cursor.Decode(&n); err != nil {
			return nil, fmt.Errorf("failed to decode notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

// MarkRead marks a single notification as read.
func (r *MongoNotificationRepo) MarkRead(userID, notificationID string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": notificationID, "userId": userID}
	result, err := r.notifColl.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("notification %s not found", notificationID)
	}
	return nil
}

// MarkAllRead marks all of the user's notifications as read.
func (r *MongoNotificationRepo) MarkAllRead(userID string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	_, err := r.notifColl.UpdateMany(ctx, bson.M{"userId": userID, "read": false}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

// SavePushSubscription upserts a browser push subscription by endpoint.
func (r *MongoNotificationRepo) SavePushSubscription(sub *models.PushSubscription) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	sub.CreatedAt = time.Now()
	opts := options.Replace().SetUpsert(true)
	if _, err := r.pushColl.ReplaceOne(ctx, bson.M{"endpoint": sub.Endpoint}, sub, opts); err != nil {
		return fmt.Errorf("failed to save push subscription: %w", err)
	}
	return nil
}

// ListPushSubscriptions returns all push subscriptions for the user.
func (r *MongoNotificationRepo) ListPushSubscriptions(userID string) ([]models.PushSubscription, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	cursor, err := r.pushColl.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list push subscriptions: %w", err)
	}
	defer cursor.Close(ctx)

	var subs []models.PushSubscription
	for cursor.Next(ctx) {
		var s models.PushSubscription
		if err := cursor.Decode(&s); err != nil {
			return nil, fmt.Errorf("failed to decode push subscription: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, nil
}

// DeletePushSubscription removes a subscription by endpoint. Used when the
// push service reports the subscription gone.
func (r *MongoNotificationRepo) DeletePushSubscription(endpoint string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if _, err := r.pushColl.DeleteOne(ctx, bson.M{"endpoint": endpoint}); err != nil {
		return fmt.Errorf("failed to delete push subscription: %w", err)
	}
	return nil
}
