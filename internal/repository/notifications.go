// internal/repository/notifications.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/centmarde/Eco-Barangay/internal/models"
)

// NotificationRepository spans the three notification collections:
// shared content, per-recipient read state, and the dispatch outbox.
type NotificationRepository struct {
	notifications     *mongo.Collection
	userNotifications *mongo.Collection
	outbox            *mongo.Collection
}

func NewNotificationRepository(notifications, userNotifications, outbox *mongo.Collection) *NotificationRepository {
	return &NotificationRepository{
		notifications:     notifications,
		userNotifications: userNotifications,
		outbox:            outbox,
	}
}

// ---------------------------------------------------------------------
// Outbox
// ---------------------------------------------------------------------

func (r *NotificationRepository) EnqueueOutbox(ctx context.Context, entry *models.OutboxEntry) error {
	now := time.Now()
	entry.Status = models.OutboxStatusPending
	entry.Attempts = 0
	entry.NextAttemptAt = now
	entry.CreatedAt = now
	entry.UpdatedAt = now

	result, err := r.outbox.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}
	entry.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// FetchDueOutbox returns pending entries whose retry time has arrived,
// oldest first. The dispatcher runs as a single worker, so fetching
// without a claim marker is safe.
func (r *NotificationRepository) FetchDueOutbox(ctx context.Context, now time.Time, limit int64) ([]models.OutboxEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "next_attempt_at", Value: 1}}).
		SetLimit(limit)

	cursor, err := r.outbox.Find(ctx, bson.M{
		"status":          models.OutboxStatusPending,
		"next_attempt_at": bson.M{"$lte": now},
	}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch outbox entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.OutboxEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode outbox entries: %w", err)
	}
	return entries, nil
}

func (r *NotificationRepository) MarkOutboxSent(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.outbox.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"status":     models.OutboxStatusSent,
			"updated_at": time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to mark outbox entry sent: %w", err)
	}
	return nil
}

func (r *NotificationRepository) MarkOutboxRetry(ctx context.Context, id primitive.ObjectID, attempts int, nextAttempt time.Time, lastErr string) error {
	_, err := r.outbox.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"attempts":        attempts,
			"next_attempt_at": nextAttempt,
			"last_error":      lastErr,
			"updated_at":      time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to mark outbox entry for retry: %w", err)
	}
	return nil
}

func (r *NotificationRepository) MarkOutboxFailed(ctx context.Context, id primitive.ObjectID, attempts int, lastErr string) error {
	_, err := r.outbox.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"status":     models.OutboxStatusFailed,
			"attempts":   attempts,
			"last_error": lastErr,
			"updated_at": time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to mark outbox entry failed: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------
// Content and per-recipient rows
// ---------------------------------------------------------------------

func (r *NotificationRepository) InsertNotification(ctx context.Context, n *models.Notification) error {
	n.CreatedAt = time.Now()

	result, err := r.notifications.InsertOne(ctx, n)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	n.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *NotificationRepository) InsertUserNotifications(ctx context.Context, rows []models.UserNotification) error {
	if len(rows) == 0 {
		return nil
	}

	docs := make([]interface{}, len(rows))
	now := time.Now()
	for i := range rows {
		rows[i].CreatedAt = now
		docs[i] = rows[i]
	}

	if _, err := r.userNotifications.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert user notifications: %w", err)
	}
	return nil
}

// ListByUser joins each per-recipient row with its shared content,
// newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, page, limit int64) ([]models.UserNotificationView, int64, error) {
	match := bson.M{"user_id": userID}
	if unreadOnly {
		match["is_read"] = false
	}

	total, err := r.userNotifications.CountDocuments(ctx, match)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count user notifications: %w", err)
	}

	pipeline := []bson.M{
		{"$match": match},
		{"$sort": bson.M{"created_at": -1}},
		{"$skip": (page - 1) * limit},
		{"$limit": limit},
		{"$lookup": bson.M{
			"from":         r.notifications.Name(),
			"localField":   "notification_id",
			"foreignField": "_id",
			"as":           "content",
		}},
		{"$unwind": "$content"},
		{"$addFields": bson.M{
			"title":       "$content.title",
			"description": "$content.description",
			"severity":    "$content.severity",
		}},
		{"$project": bson.M{"content": 0}},
	}

	cursor, err := r.userNotifications.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch user notifications: %w", err)
	}
	defer cursor.Close(ctx)

	var views []models.UserNotificationView
	if err := cursor.All(ctx, &views); err != nil {
		return nil, 0, fmt.Errorf("failed to decode user notifications: %w", err)
	}
	return views, total, nil
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	count, err := r.userNotifications.CountDocuments(ctx, bson.M{
		"user_id": userID,
		"is_read": false,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkAsRead flips the read flag on one row, scoped to the owner so a
// user cannot touch another recipient's state.
func (r *NotificationRepository) MarkAsRead(ctx context.Context, id, userID primitive.ObjectID) error {
	result, err := r.userNotifications.UpdateOne(
		ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{
			"is_read": true,
			"read_at": time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	result, err := r.userNotifications.UpdateMany(
		ctx,
		bson.M{"user_id": userID, "is_read": false},
		bson.M{"$set": bson.M{
			"is_read": true,
			"read_at": time.Now(),
		}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return result.ModifiedCount, nil
}

// Delete removes one per-recipient row. The shared Notification content
// is left untouched.
func (r *NotificationRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	result, err := r.userNotifications.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) ClearAll(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	result, err := r.userNotifications.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to clear notifications: %w", err)
	}
	return result.DeletedCount, nil
}

// FindByID returns a single per-recipient row with content; used by the
// read-state round-trip checks.
func (r *NotificationRepository) FindNotification(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	var n models.Notification
	err := r.notifications.FindOne(ctx, bson.M{"_id": id}).Decode(&n)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch notification: %w", err)
	}
	return &n, nil
}
