// internal/repository/collections.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/centmarde/Eco-Barangay/internal/models"
)

// CollectionUpdate carries the optional mutable fields of a pickup
// request. Nil fields are left untouched.
type CollectionUpdate struct {
	Address     *string
	Purok       *string
	GarbageType *string
	Notes       *string
	Hazardous   *bool
}

type CollectionRepository struct {
	coll *mongo.Collection
}

func NewCollectionRepository(coll *mongo.Collection) *CollectionRepository {
	return &CollectionRepository{coll: coll}
}

func (r *CollectionRepository) Insert(ctx context.Context, c *models.Collection) error {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	c.Version = 1
	if c.Status == "" {
		c.Status = models.StatusPending
	}

	result, err := r.coll.InsertOne(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to insert collection: %w", err)
	}
	c.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *CollectionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Collection, error) {
	var c models.Collection
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch collection: %w", err)
	}
	return &c, nil
}

func (r *CollectionRepository) find(ctx context.Context, filter bson.M) ([]models.Collection, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch collections: %w", err)
	}
	defer cursor.Close(ctx)

	var collections []models.Collection
	if err := cursor.All(ctx, &collections); err != nil {
		return nil, fmt.Errorf("failed to decode collections: %w", err)
	}
	return collections, nil
}

func (r *CollectionRepository) FindAll(ctx context.Context) ([]models.Collection, error) {
	return r.find(ctx, bson.M{})
}

func (r *CollectionRepository) FindByRequester(ctx context.Context, userID primitive.ObjectID) ([]models.Collection, error) {
	return r.find(ctx, bson.M{"request_by": userID})
}

func (r *CollectionRepository) FindByCollector(ctx context.Context, userID primitive.ObjectID) ([]models.Collection, error) {
	return r.find(ctx, bson.M{"collector_assign": userID})
}

func (r *CollectionRepository) FindByStatus(ctx context.Context, status models.CollectionStatus) ([]models.Collection, error) {
	return r.find(ctx, bson.M{"status": status})
}

func (r *CollectionRepository) FindByGarbageType(ctx context.Context, garbageType string) ([]models.Collection, error) {
	return r.find(ctx, bson.M{"garbage_type": garbageType})
}

// FindByUser returns collections where the user appears on either side
// of the request.
func (r *CollectionRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Collection, error) {
	return r.find(ctx, bson.M{
		"$or": []bson.M{
			{"request_by": userID},
			{"collector_assign": userID},
		},
	})
}

func (r *CollectionRepository) SearchByAddress(ctx context.Context, term string) ([]models.Collection, error) {
	return r.find(ctx, bson.M{
		"address": bson.M{"$regex": regexp.QuoteMeta(term), "$options": "i"},
	})
}

// UpdateStatus persists the target status and bumps the version,
// returning the post-update record.
func (r *CollectionRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.CollectionStatus) (*models.Collection, error) {
	return r.applyUpdate(ctx, id, bson.M{"status": status})
}

// SetCollector persists the collector assignment.
func (r *CollectionRepository) SetCollector(ctx context.Context, id, collectorID primitive.ObjectID) (*models.Collection, error) {
	return r.applyUpdate(ctx, id, bson.M{"collector_assign": collectorID})
}

func (r *CollectionRepository) Update(ctx context.Context, id primitive.ObjectID, update CollectionUpdate) (*models.Collection, error) {
	set := bson.M{}
	if update.Address != nil {
		set["address"] = *update.Address
	}
	if update.Purok != nil {
		set["purok"] = *update.Purok
	}
	if update.GarbageType != nil {
		set["garbage_type"] = *update.GarbageType
	}
	if update.Notes != nil {
		set["notes"] = *update.Notes
	}
	if update.Hazardous != nil {
		set["hazardous"] = *update.Hazardous
	}
	return r.applyUpdate(ctx, id, set)
}

func (r *CollectionRepository) applyUpdate(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Collection, error) {
	set["updated_at"] = time.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Collection
	err := r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{
			"$set": set,
			"$inc": bson.M{"version": 1},
		},
		opts,
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update collection: %w", err)
	}
	return &updated, nil
}

func (r *CollectionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByUser removes every collection the user appears on, either as
// requester or assigned collector. Used by account teardown.
func (r *CollectionRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	result, err := r.coll.DeleteMany(ctx, bson.M{
		"$or": []bson.M{
			{"request_by": userID},
			{"collector_assign": userID},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete user collections: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *CollectionRepository) CountByStatus(ctx context.Context, status models.CollectionStatus) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"status": status})
	if err != nil {
		return 0, fmt.Errorf("failed to count collections: %w", err)
	}
	return count, nil
}

// StatsByCollector aggregates the status breakdown of one collector's
// assignments.
func (r *CollectionRepository) StatsByCollector(ctx context.Context, collectorID primitive.ObjectID) (*models.CollectionStats, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"collector_assign": collectorID}},
		{"$group": bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate collector stats: %w", err)
	}
	defer cursor.Close(ctx)

	stats := &models.CollectionStats{}
	for cursor.Next(ctx) {
		var row struct {
			ID    models.CollectionStatus `bson:"_id"`
			Count int64                   `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			continue
		}
		stats.Total += row.Count
		switch row.ID {
		case models.StatusPending:
			stats.Pending = row.Count
		case models.StatusInProgress:
			stats.InProgress = row.Count
		case models.StatusCompleted:
			stats.Completed = row.Count
		case models.StatusCancelled:
			stats.Cancelled = row.Count
		}
	}
	return stats, nil
}

// CompletedByTypeSince groups completed pickups created after the cutoff
// by garbage type. Feeds the report-analysis view.
func (r *CollectionRepository) CompletedByTypeSince(ctx context.Context, since time.Time) (map[string]int64, error) {
	pipeline := []bson.M{
		{"$match": bson.M{
			"status":     models.StatusCompleted,
			"created_at": bson.M{"$gte": since},
		}},
		{"$group": bson.M{
			"_id":   "$garbage_type",
			"count": bson.M{"$sum": 1},
		}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate completed pickups: %w", err)
	}
	defer cursor.Close(ctx)

	counts := make(map[string]int64)
	for cursor.Next(ctx) {
		var row struct {
			ID    string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			continue
		}
		counts[row.ID] = row.Count
	}
	return counts, nil
}
