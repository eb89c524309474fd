// internal/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification severities.
const (
	SeverityInfo    = "info"
	SeveritySuccess = "success"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Notification is shared content: one row may be referenced by many
// UserNotification rows. Content is immutable after creation.
type Notification struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Severity    string             `bson:"severity" json:"severity"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// UserNotification binds one notification to one recipient with an
// independent read flag. Deleting it never deletes the Notification.
type UserNotification struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	NotificationID primitive.ObjectID `bson:"notification_id" json:"notification_id"`
	UserID         primitive.ObjectID `bson:"user_id" json:"user_id"`
	IsRead         bool               `bson:"is_read" json:"is_read"`
	ReadAt         *time.Time         `bson:"read_at,omitempty" json:"read_at,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}

// UserNotificationView joins the per-recipient row with its content for
// inbox listings.
type UserNotificationView struct {
	UserNotification `bson:",inline"`
	Title            string `bson:"title" json:"title"`
	Description      string `bson:"description" json:"description"`
	Severity         string `bson:"severity" json:"severity"`
}

// Outbox entry states.
const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
	OutboxStatusFailed  = "failed"
)

// OutboxEntry is a durably stored fan-out intent. The dispatch worker
// turns it into one Notification plus one UserNotification per recipient,
// retrying until the attempt cap is reached.
type OutboxEntry struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	Recipients    []primitive.ObjectID `bson:"recipients" json:"recipients"`
	Title         string               `bson:"title" json:"title"`
	Message       string               `bson:"message" json:"message"`
	Severity      string               `bson:"severity" json:"severity"`
	Status        string               `bson:"status" json:"status"`
	Attempts      int                  `bson:"attempts" json:"attempts"`
	NextAttemptAt time.Time            `bson:"next_attempt_at" json:"next_attempt_at"`
	LastError     string               `bson:"last_error,omitempty" json:"last_error,omitempty"`
	CreatedAt     time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time            `bson:"updated_at" json:"updated_at"`
}
