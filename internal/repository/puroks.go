// internal/repository/puroks.go
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

type PurokRepository struct {
	coll *mongo.Collection
}

func NewPurokRepository(coll *mongo.Collection) *PurokRepository {
	return &PurokRepository{coll: coll}
}

func (r *PurokRepository) Insert(ctx context.Context, p *models.Purok) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Version = 1
	if p.Status == "" {
		p.Status = models.PurokStatusPending
	}

	result, err := r.coll.InsertOne(ctx, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert purok: %w", err)
	}
	p.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *PurokRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Purok, error) {
	var p models.Purok
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch purok: %w", err)
	}
	return &p, nil
}

func (r *PurokRepository) FindAll(ctx context.Context) ([]models.Purok, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch puroks: %w", err)
	}
	defer cursor.Close(ctx)

	var puroks []models.Purok
	if err := cursor.All(ctx, &puroks); err != nil {
		return nil, fmt.Errorf("failed to decode puroks: %w", err)
	}
	return puroks, nil
}

func (r *PurokRepository) FindByCollection(ctx context.Context, collectionID primitive.ObjectID) (*models.Purok, error) {
	var p models.Purok
	err := r.coll.FindOne(ctx, bson.M{"collection_id": collectionID}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch purok by collection: %w", err)
	}
	return &p, nil
}

// Link attaches a collection to the purok and marks it pickup_scheduled.
// The filter requires an empty link, so two concurrent link attempts
// cannot both succeed.
func (r *PurokRepository) Link(ctx context.Context, purokID, collectionID primitive.ObjectID) (*models.Purok, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Purok
	err := r.coll.FindOneAndUpdate(
		ctx,
		bson.M{
			"_id":           purokID,
			"collection_id": bson.M{"$exists": false},
		},
		bson.M{
			"$set": bson.M{
				"status":        models.PurokStatusPickupScheduled,
				"collection_id": collectionID,
				"updated_at":    time.Now(),
			},
			"$inc": bson.M{"version": 1},
		},
		opts,
	).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to link purok: %w", err)
	}

	// No match: either the purok is missing or something is already linked.
	count, countErr := r.coll.CountDocuments(ctx, bson.M{"_id": purokID})
	if countErr != nil {
		return nil, fmt.Errorf("failed to link purok: %w", countErr)
	}
	if count == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrAlreadyLinked
}

// SetStatus is the manual survey override. A clean or needs_pickup
// status clears any live link; last_surveyed is always stamped.
func (r *PurokRepository) SetStatus(ctx context.Context, purokID primitive.ObjectID, status models.PurokStatus, notes *string) (*models.Purok, error) {
	now := time.Now()
	set := bson.M{
		"status":        status,
		"last_surveyed": now,
		"updated_at":    now,
	}
	if notes != nil {
		set["notes"] = *notes
	}

	update := bson.M{
		"$set": set,
		"$inc": bson.M{"version": 1},
	}
	if status.ClearsLink() {
		update["$unset"] = bson.M{"collection_id": ""}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Purok
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": purokID}, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to set purok status: %w", err)
	}
	return &updated, nil
}

// ReleaseByCollection detaches whichever purok is linked to the given
// collection and moves it to the target status in one conditional
// update, so a concurrent manual override cannot race the unlink.
// stampSurvey also sets last_surveyed (completion counts as a survey).
func (r *PurokRepository) ReleaseByCollection(ctx context.Context, collectionID primitive.ObjectID, status models.PurokStatus, stampSurvey bool) (*models.Purok, error) {
	now := time.Now()
	set := bson.M{
		"status":     status,
		"updated_at": now,
	}
	if stampSurvey {
		set["last_surveyed"] = now
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Purok
	err := r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"collection_id": collectionID},
		bson.M{
			"$set":   set,
			"$unset": bson.M{"collection_id": ""},
			"$inc":   bson.M{"version": 1},
		},
		opts,
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to release purok: %w", err)
	}
	return &updated, nil
}

func (r *PurokRepository) UpdateDetails(ctx context.Context, purokID primitive.ObjectID, name, notes *string) (*models.Purok, error) {
	set := bson.M{"updated_at": time.Now()}
	if name != nil {
		set["name"] = *name
	}
	if notes != nil {
		set["notes"] = *notes
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Purok
	err := r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": purokID},
		bson.M{"$set": set, "$inc": bson.M{"version": 1}},
		opts,
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to update purok: %w", err)
	}
	return &updated, nil
}

func (r *PurokRepository) Delete(ctx context.Context, purokID primitive.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": purokID})
	if err != nil {
		return fmt.Errorf("failed to delete purok: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
