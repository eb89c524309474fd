// internal/services/feedback.go
package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/centmarde/Eco-Barangay/internal/models"
)

// FeedbackStore is the slice of the feedback repository the service
// needs.
type FeedbackStore interface {
	Insert(ctx context.Context, f *models.Feedback) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Feedback, error)
	FindAll(ctx context.Context) ([]models.Feedback, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Feedback, error)
	FindByCollection(ctx context.Context, collectionID primitive.ObjectID) ([]models.Feedback, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.FeedbackStatus) (*models.Feedback, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// FeedbackService records resident pickup ratings and drives the admin
// triage queue. New entries alert every admin.
type FeedbackService struct {
	store       FeedbackStore
	collections CollectionReader
	notifier    Notifier
	directory   DirectoryReader
	log         *logrus.Logger
}

func NewFeedbackService(store FeedbackStore, collections CollectionReader, notifier Notifier, directory DirectoryReader, log *logrus.Logger) *FeedbackService {
	return &FeedbackService{
		store:       store,
		collections: collections,
		notifier:    notifier,
		directory:   directory,
		log:         log,
	}
}

// CreateFeedbackInput carries the resident-supplied feedback fields.
type CreateFeedbackInput struct {
	Title        string
	Rate         int
	Description  string
	CollectionID *primitive.ObjectID
}

// Create submits feedback. The rating must fall within 1..5; if the
// feedback references a pickup request, the request must exist.
func (s *FeedbackService) Create(ctx context.Context, userID primitive.ObjectID, input CreateFeedbackInput) (*models.Feedback, error) {
	if input.Rate < models.FeedbackRatingMin || input.Rate > models.FeedbackRatingMax {
		return nil, ErrInvalidRating
	}
	if input.CollectionID != nil {
		if _, err := s.collections.FindByID(ctx, *input.CollectionID); err != nil {
			return nil, err
		}
	}

	f := &models.Feedback{
		UserID:       userID,
		Title:        strings.TrimSpace(input.Title),
		Rate:         input.Rate,
		Description:  strings.TrimSpace(input.Description),
		CollectionID: input.CollectionID,
		Status:       models.FeedbackStatusNew,
	}
	if err := s.store.Insert(ctx, f); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"feedback_id": f.ID.Hex(),
		"rate":        f.Rate,
	}).Info("Feedback submitted")

	s.notifyAdmins(ctx, f)
	return f, nil
}

func (s *FeedbackService) notifyAdmins(ctx context.Context, f *models.Feedback) {
	admins, err := s.directory.ListByRole(ctx, models.RoleAdmin)
	if err != nil {
		s.log.WithError(err).Error("Failed to list admins for feedback notification")
		return
	}
	if len(admins) == 0 {
		return
	}

	recipients := make([]primitive.ObjectID, 0, len(admins))
	for _, admin := range admins {
		recipients = append(recipients, admin.ID)
	}
	severity := models.SeverityInfo
	if f.Rate <= 2 {
		severity = models.SeverityWarning
	}
	s.notifier.Enqueue(ctx, recipients,
		"New Resident Feedback",
		"A resident submitted new feedback for review.",
		severity)
}

// Get returns one feedback entry.
func (s *FeedbackService) Get(ctx context.Context, id primitive.ObjectID) (*models.Feedback, error) {
	return s.store.FindByID(ctx, id)
}

// List returns all feedback enriched with author identities for the
// triage view.
func (s *FeedbackService) List(ctx context.Context) ([]models.FeedbackWithUser, error) {
	rows, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, rows), nil
}

// ListByUser returns one resident's own feedback.
func (s *FeedbackService) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Feedback, error) {
	return s.store.FindByUser(ctx, userID)
}

// ListByCollection returns the feedback left for one pickup request.
func (s *FeedbackService) ListByCollection(ctx context.Context, collectionID primitive.ObjectID) ([]models.Feedback, error) {
	return s.store.FindByCollection(ctx, collectionID)
}

// UpdateStatus moves a feedback entry through triage.
func (s *FeedbackService) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.FeedbackStatus) (*models.Feedback, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	return s.store.UpdateStatus(ctx, id, status)
}

// Delete removes one feedback entry.
func (s *FeedbackService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.store.Delete(ctx, id)
}

func (s *FeedbackService) enrich(ctx context.Context, rows []models.Feedback) []models.FeedbackWithUser {
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, f := range rows {
		ids = append(ids, f.UserID)
	}

	entries, err := s.directory.ResolveMany(ctx, ids)
	if err != nil {
		s.log.WithError(err).Warn("Failed to resolve feedback authors")
		entries = map[primitive.ObjectID]models.DirectoryEntry{}
	}

	result := make([]models.FeedbackWithUser, 0, len(rows))
	for _, f := range rows {
		item := models.FeedbackWithUser{Feedback: f}
		if entry, ok := entries[f.UserID]; ok {
			e := entry
			item.User = &e
		}
		result = append(result, item)
	}
	return result
}
