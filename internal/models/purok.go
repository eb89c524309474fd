// internal/models/purok.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PurokStatus is the cleanliness state of a neighborhood unit.
type PurokStatus string

const (
	PurokStatusPending         PurokStatus = "pending"
	PurokStatusClean           PurokStatus = "clean"
	PurokStatusNeedsPickup     PurokStatus = "needs_pickup"
	PurokStatusPickupScheduled PurokStatus = "pickup_scheduled"
)

func (s PurokStatus) IsValid() bool {
	switch s {
	case PurokStatusPending, PurokStatusClean, PurokStatusNeedsPickup, PurokStatusPickupScheduled:
		return true
	}
	return false
}

// ClearsLink reports whether setting this status detaches any linked
// collection. A purok cannot be clean or needing pickup while still tied
// to an active collection.
func (s PurokStatus) ClearsLink() bool {
	return s == PurokStatusClean || s == PurokStatusNeedsPickup
}

// Purok is one monitored neighborhood unit. CollectionID is a weak
// reference: it is set only while the linked collection is non-terminal.
type Purok struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	Name         string              `bson:"name" json:"name"`
	Status       PurokStatus         `bson:"status" json:"status"`
	CollectionID *primitive.ObjectID `bson:"collection_id,omitempty" json:"collection_id,omitempty"`
	LastSurveyed *time.Time          `bson:"last_surveyed,omitempty" json:"last_surveyed,omitempty"`
	Notes        string              `bson:"notes,omitempty" json:"notes,omitempty"`
	Version      int64               `bson:"version" json:"version"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at" json:"updated_at"`
}
