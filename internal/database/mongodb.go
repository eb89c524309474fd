// internal/database/mongodb.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/centmarde/Eco-Barangay/internal/config"
)

type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDB(cfg *config.Config) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.MongoTimeout)*time.Second)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(cfg.MongoURI).
		SetMaxPoolSize(100).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(30 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logrus.WithField("database", cfg.DatabaseName).Info("connected to MongoDB")

	return &MongoDB{
		Client:   client,
		Database: client.Database(cfg.DatabaseName),
	}, nil
}

func (m *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}

	logrus.Info("disconnected from MongoDB")
	return nil
}

// CreateIndexes creates the indexes for all collections.
// bson.D is used instead of maps to preserve key order.
func (m *MongoDB) CreateIndexes(ctx context.Context) error {
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "role", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}
	if _, err := m.Database.Collection("users").Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	collectionIndexes := []mongo.IndexModel{
		{
			// Compound index for the status-filtered list views
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "request_by", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "collector_assign", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "garbage_type", Value: 1}},
		},
	}
	if _, err := m.Database.Collection("collections").Indexes().CreateMany(ctx, collectionIndexes); err != nil {
		return fmt.Errorf("failed to create collection indexes: %w", err)
	}

	purokIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Sparse: only puroks with a live link carry collection_id
			Keys:    bson.D{{Key: "collection_id", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	if _, err := m.Database.Collection("puroks").Indexes().CreateMany(ctx, purokIndexes); err != nil {
		return fmt.Errorf("failed to create purok indexes: %w", err)
	}

	feedbackIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "collection_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}
	if _, err := m.Database.Collection("feedbacks").Indexes().CreateMany(ctx, feedbackIndexes); err != nil {
		return fmt.Errorf("failed to create feedback indexes: %w", err)
	}

	userNotificationIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "is_read", Value: 1},
			},
		},
	}
	if _, err := m.Database.Collection("user_notifications").Indexes().CreateMany(ctx, userNotificationIndexes); err != nil {
		return fmt.Errorf("failed to create user notification indexes: %w", err)
	}

	outboxIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "next_attempt_at", Value: 1},
			},
		},
	}
	if _, err := m.Database.Collection("notification_outbox").Indexes().CreateMany(ctx, outboxIndexes); err != nil {
		return fmt.Errorf("failed to create outbox indexes: %w", err)
	}

	announcementIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}
	if _, err := m.Database.Collection("announcements").Indexes().CreateMany(ctx, announcementIndexes); err != nil {
		return fmt.Errorf("failed to create announcement indexes: %w", err)
	}

	logrus.Info("database indexes created")
	return nil
}
