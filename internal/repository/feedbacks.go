// internal/repository/feedbacks.go
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

type FeedbackRepository struct {
	coll *mongo.Collection
}

func NewFeedbackRepository(coll *mongo.Collection) *FeedbackRepository {
	return &FeedbackRepository{coll: coll}
}

func (r *FeedbackRepository) Insert(ctx context.Context, f *models.Feedback) error {
	f.CreatedAt = time.Now()
	if f.Status == "" {
		f.Status = models.FeedbackStatusNew
	}

	result, err := r.coll.InsertOne(ctx, f)
	if err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}
	f.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *FeedbackRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Feedback, error) {
	var f models.Feedback
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&f)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch feedback: %w", err)
	}
	return &f, nil
}

func (r *FeedbackRepository) find(ctx context.Context, filter bson.M) ([]models.Feedback, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feedbacks: %w", err)
	}
	defer cursor.Close(ctx)

	var feedbacks []models.Feedback
	if err := cursor.All(ctx, &feedbacks); err != nil {
		return nil, fmt.Errorf("failed to decode feedbacks: %w", err)
	}
	return feedbacks, nil
}

func (r *FeedbackRepository) FindAll(ctx context.Context) ([]models.Feedback, error) {
	return r.find(ctx, bson.M{})
}

func (r *FeedbackRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Feedback, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *FeedbackRepository) FindByCollection(ctx context.Context, collectionID primitive.ObjectID) ([]models.Feedback, error) {
	return r.find(ctx, bson.M{"collection_id": collectionID})
}

func (r *FeedbackRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.FeedbackStatus) (*models.Feedback, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Feedback
	err := r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}},
		opts,
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update feedback status: %w", err)
	}
	return &updated, nil
}

func (r *FeedbackRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete feedback: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByCollection cascades feedback removal when the owning
// collection is deleted.
func (r *FeedbackRepository) DeleteByCollection(ctx context.Context, collectionID primitive.ObjectID) (int64, error) {
	result, err := r.coll.DeleteMany(ctx, bson.M{"collection_id": collectionID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete collection feedbacks: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *FeedbackRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count feedbacks: %w", err)
	}
	return count, nil
}
