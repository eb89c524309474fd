// internal/services/notification.go
package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/centmarde/Eco-Barangay/internal/models"
	"github.com/centmarde/Eco-Barangay/internal/realtime"
)

// outboxBatchSize caps how many due entries one worker pass drains.
const outboxBatchSize = 50

// retryBaseDelay is doubled per attempt when a dispatch fails.
const retryBaseDelay = 30 * time.Second

// NotificationStore is the slice of the notification repository the
// dispatcher and inbox operations need.
type NotificationStore interface {
	EnqueueOutbox(ctx context.Context, entry *models.OutboxEntry) error
	FetchDueOutbox(ctx context.Context, now time.Time, limit int64) ([]models.OutboxEntry, error)
	MarkOutboxSent(ctx context.Context, id primitive.ObjectID) error
	MarkOutboxRetry(ctx context.Context, id primitive.ObjectID, attempts int, nextAttempt time.Time, lastErr string) error
	MarkOutboxFailed(ctx context.Context, id primitive.ObjectID, attempts int, lastErr string) error
	InsertNotification(ctx context.Context, n *models.Notification) error
	InsertUserNotifications(ctx context.Context, rows []models.UserNotification) error
	ListByUser(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, page, limit int64) ([]models.UserNotificationView, int64, error)
	UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkAsRead(ctx context.Context, id, userID primitive.ObjectID) error
	MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) (int64, error)
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
	ClearAll(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// EventPublisher pushes change events to connected realtime clients.
type EventPublisher interface {
	Publish(event realtime.ChangeEvent)
}

// NotificationService owns the durable outbox and the per-user inbox.
// Enqueue is fire-and-forget for callers: delivery happens on a
// background worker with retry, so a slow or failing fan-out never
// blocks a pickup request operation.
type NotificationService struct {
	store       NotificationStore
	hub         EventPublisher
	log         *logrus.Logger
	interval    time.Duration
	maxAttempts int
	kick        chan struct{}
}

func NewNotificationService(store NotificationStore, hub EventPublisher, interval time.Duration, maxAttempts int, log *logrus.Logger) *NotificationService {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &NotificationService{
		store:       store,
		hub:         hub,
		log:         log,
		interval:    interval,
		maxAttempts: maxAttempts,
		kick:        make(chan struct{}, 1),
	}
}

// Enqueue records a fan-out intent for the given recipients. Failures
// are logged, never returned: notifications are a side effect and must
// not fail the operation that triggered them.
func (s *NotificationService) Enqueue(ctx context.Context, recipients []primitive.ObjectID, title, message, severity string) {
	if len(recipients) == 0 || title == "" {
		return
	}
	if severity == "" {
		severity = models.SeverityInfo
	}

	entry := &models.OutboxEntry{
		Recipients: recipients,
		Title:      title,
		Message:    message,
		Severity:   severity,
	}
	if err := s.store.EnqueueOutbox(ctx, entry); err != nil {
		s.log.WithError(err).WithField("title", title).Error("Failed to enqueue notification")
		return
	}

	// Nudge the worker so quiet periods still deliver promptly.
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Start runs the dispatch worker until ctx is cancelled.
func (s *NotificationService) Start(ctx context.Context) {
	s.log.WithField("interval", s.interval.String()).Info("Notification dispatcher started")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Notification dispatcher stopped")
			return
		case <-ticker.C:
		case <-s.kick:
		}
		s.processDue(ctx)
	}
}

func (s *NotificationService) processDue(ctx context.Context) {
	entries, err := s.store.FetchDueOutbox(ctx, time.Now(), outboxBatchSize)
	if err != nil {
		s.log.WithError(err).Error("Failed to fetch due outbox entries")
		return
	}

	for _, entry := range entries {
		if err := s.deliver(ctx, entry); err != nil {
			s.retryOrFail(ctx, entry, err)
			continue
		}
		if err := s.store.MarkOutboxSent(ctx, entry.ID); err != nil {
			s.log.WithError(err).WithField("outbox_id", entry.ID.Hex()).Error("Failed to mark outbox entry sent")
		}
	}
}

func (s *NotificationService) deliver(ctx context.Context, entry models.OutboxEntry) error {
	content := &models.Notification{
		Title:       entry.Title,
		Description: entry.Message,
		Severity:    entry.Severity,
	}
	if err := s.store.InsertNotification(ctx, content); err != nil {
		return err
	}

	now := time.Now()
	rows := make([]models.UserNotification, 0, len(entry.Recipients))
	for _, recipient := range entry.Recipients {
		rows = append(rows, models.UserNotification{
			NotificationID: content.ID,
			UserID:         recipient,
			CreatedAt:      now,
		})
	}
	if err := s.store.InsertUserNotifications(ctx, rows); err != nil {
		return err
	}

	for _, row := range rows {
		view := models.UserNotificationView{
			UserNotification: row,
			Title:            content.Title,
			Description:      content.Description,
			Severity:         content.Severity,
		}
		s.hub.Publish(realtime.ChangeEvent{
			Table:     realtime.TableNotifications,
			Action:    realtime.ActionInsert,
			After:     view,
			Recipient: row.UserID,
		})
	}

	s.log.WithFields(logrus.Fields{
		"title":      entry.Title,
		"recipients": len(entry.Recipients),
	}).Info("Notification delivered")
	return nil
}

func (s *NotificationService) retryOrFail(ctx context.Context, entry models.OutboxEntry, cause error) {
	attempts := entry.Attempts + 1
	if attempts >= s.maxAttempts {
		s.log.WithError(cause).WithFields(logrus.Fields{
			"outbox_id": entry.ID.Hex(),
			"attempts":  attempts,
		}).Error("Notification permanently failed")
		if err := s.store.MarkOutboxFailed(ctx, entry.ID, attempts, cause.Error()); err != nil {
			s.log.WithError(err).Error("Failed to mark outbox entry failed")
		}
		return
	}

	delay := retryBaseDelay << (attempts - 1)
	next := time.Now().Add(delay)
	s.log.WithError(cause).WithFields(logrus.Fields{
		"outbox_id":    entry.ID.Hex(),
		"attempts":     attempts,
		"next_attempt": next.Format(time.RFC3339),
	}).Warn("Notification delivery failed, will retry")
	if err := s.store.MarkOutboxRetry(ctx, entry.ID, attempts, next, cause.Error()); err != nil {
		s.log.WithError(err).Error("Failed to schedule outbox retry")
	}
}

// ListInbox returns one page of a user's notifications, newest first.
func (s *NotificationService) ListInbox(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, page, limit int64) ([]models.UserNotificationView, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.store.ListByUser(ctx, userID, unreadOnly, page, limit)
}

// UnreadCount returns the number of unread notifications for a user.
func (s *NotificationService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.store.UnreadCount(ctx, userID)
}

// MarkAsRead flips one of the user's own notifications to read.
func (s *NotificationService) MarkAsRead(ctx context.Context, id, userID primitive.ObjectID) error {
	return s.store.MarkAsRead(ctx, id, userID)
}

// MarkAllAsRead flips every unread notification for the user.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.store.MarkAllAsRead(ctx, userID)
}

// Delete removes one per-recipient row. Shared content stays intact.
func (s *NotificationService) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	return s.store.Delete(ctx, id, userID)
}

// ClearAll removes every per-recipient row for the user.
func (s *NotificationService) ClearAll(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.store.ClearAll(ctx, userID)
}
