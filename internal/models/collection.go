// internal/models/collection.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CollectionStatus is the lifecycle state of a pickup request.
type CollectionStatus string

const (
	StatusPending    CollectionStatus = "pending"
	StatusInProgress CollectionStatus = "in_progress"
	StatusCompleted  CollectionStatus = "completed"
	StatusCancelled  CollectionStatus = "cancelled"
)

// IsValid reports whether the status is one of the known lifecycle states.
func (s CollectionStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s CollectionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo enforces the forward-only transition set:
// pending -> in_progress -> completed, and pending|in_progress -> cancelled.
func (s CollectionStatus) CanTransitionTo(target CollectionStatus) bool {
	if !target.IsValid() || s.IsTerminal() {
		return false
	}
	switch s {
	case StatusPending:
		return target == StatusInProgress || target == StatusCompleted || target == StatusCancelled
	case StatusInProgress:
		return target == StatusCompleted || target == StatusCancelled
	}
	return false
}

func (s CollectionStatus) String() string {
	return string(s)
}

// DisplayText returns the human-readable label shown in notifications.
func (s CollectionStatus) DisplayText() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

// GarbageTypes lists the electronic-waste categories accepted on a request.
var GarbageTypes = []string{
	"Computers & Laptops",
	"Mobile Phones & Tablets",
	"Televisions & Monitors",
	"Printers & Scanners",
	"Kitchen Appliances",
	"Batteries & Chargers",
	"Audio & Video Equipment",
	"Gaming Consoles",
	"Other Electronics",
}

// IsValidGarbageType reports whether t is an accepted waste category.
func IsValidGarbageType(t string) bool {
	for _, gt := range GarbageTypes {
		if gt == t {
			return true
		}
	}
	return false
}

// Collection is a waste-pickup request tracked from submission to completion.
type Collection struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	Address         string              `bson:"address" json:"address"`
	Purok           string              `bson:"purok,omitempty" json:"purok,omitempty"`
	RequestBy       primitive.ObjectID  `bson:"request_by" json:"request_by"`
	CollectorAssign *primitive.ObjectID `bson:"collector_assign,omitempty" json:"collector_assign,omitempty"`
	Status          CollectionStatus    `bson:"status" json:"status"`
	GarbageType     string              `bson:"garbage_type" json:"garbage_type"`
	Notes           string              `bson:"notes,omitempty" json:"notes,omitempty"`
	Hazardous       bool                `bson:"hazardous,omitempty" json:"hazardous,omitempty"`

	// Version increases on every write; realtime consumers drop events
	// older than the version they already hold.
	Version   int64     `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// CollectionWithUsers is a collection enriched with requester/collector
// display data for list views.
type CollectionWithUsers struct {
	Collection `bson:",inline"`
	Requester  *DirectoryEntry `bson:"-" json:"requester,omitempty"`
	Collector  *DirectoryEntry `bson:"-" json:"collector,omitempty"`
}

// CollectionStats is the per-collector status breakdown.
type CollectionStats struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	Cancelled  int64 `json:"cancelled"`
}
