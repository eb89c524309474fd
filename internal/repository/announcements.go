// internal/repository/announcements.go
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

type AnnouncementRepository struct {
	coll *mongo.Collection
}

func NewAnnouncementRepository(coll *mongo.Collection) *AnnouncementRepository {
	return &AnnouncementRepository{coll: coll}
}

func (r *AnnouncementRepository) Insert(ctx context.Context, a *models.Announcement) error {
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	result, err := r.coll.InsertOne(ctx, a)
	if err != nil {
		return fmt.Errorf("failed to insert announcement: %w", err)
	}
	a.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *AnnouncementRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Announcement, error) {
	var a models.Announcement
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch announcement: %w", err)
	}
	return &a, nil
}

func (r *AnnouncementRepository) FindAll(ctx context.Context, limit int64) ([]models.Announcement, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch announcements: %w", err)
	}
	defer cursor.Close(ctx)

	var announcements []models.Announcement
	if err := cursor.All(ctx, &announcements); err != nil {
		return nil, fmt.Errorf("failed to decode announcements: %w", err)
	}
	return announcements, nil
}

func (r *AnnouncementRepository) Update(ctx context.Context, id primitive.ObjectID, title, description, image *string) (*models.Announcement, error) {
	set := bson.M{"updated_at": time.Now()}
	if title != nil {
		set["title"] = *title
	}
	if description != nil {
		set["description"] = *description
	}
	if image != nil {
		set["image"] = *image
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Announcement
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update announcement: %w", err)
	}
	return &updated, nil
}

func (r *AnnouncementRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete announcement: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
