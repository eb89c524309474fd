// internal/models/feedback.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FeedbackStatus is the admin triage state of a feedback entry.
type FeedbackStatus string

const (
	FeedbackStatusNew      FeedbackStatus = "new"
	FeedbackStatusReviewed FeedbackStatus = "reviewed"
	FeedbackStatusResolved FeedbackStatus = "resolved"
)

func (s FeedbackStatus) IsValid() bool {
	switch s {
	case FeedbackStatusNew, FeedbackStatusReviewed, FeedbackStatusResolved:
		return true
	}
	return false
}

// Feedback rating bounds.
const (
	FeedbackRatingMin = 1
	FeedbackRatingMax = 5
)

// Feedback is a resident's rating of a completed pickup. It has an
// independent lifecycle but is removed when its owning collection is
// deleted.
type Feedback struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	UserID       primitive.ObjectID  `bson:"user_id" json:"user_id"`
	Title        string              `bson:"title,omitempty" json:"title,omitempty"`
	Rate         int                 `bson:"rate" json:"rate"`
	Description  string              `bson:"description,omitempty" json:"description,omitempty"`
	CollectionID *primitive.ObjectID `bson:"collection_id,omitempty" json:"collection_id,omitempty"`
	Status       FeedbackStatus      `bson:"status" json:"status"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
}

// FeedbackWithUser is a feedback entry enriched with the author's
// directory data for the admin triage view.
type FeedbackWithUser struct {
	Feedback `bson:",inline"`
	User     *DirectoryEntry `bson:"-" json:"user,omitempty"`
}
