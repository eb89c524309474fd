// internal/services/announcement.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/centmarde/Eco-Barangay/internal/models"
	"github.com/centmarde/Eco-Barangay/internal/realtime"
)

// AnnouncementStore is the slice of the announcement repository the
// service needs.
type AnnouncementStore interface {
	Insert(ctx context.Context, a *models.Announcement) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Announcement, error)
	FindAll(ctx context.Context, limit int64) ([]models.Announcement, error)
	Update(ctx context.Context, id primitive.ObjectID, title, description, image *string) (*models.Announcement, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// RecipientLister enumerates the accounts an announcement reaches.
type RecipientLister interface {
	ListActive(ctx context.Context) ([]models.DirectoryEntry, error)
}

// AnnouncementService publishes barangay-wide announcements. A new
// announcement is fanned out to every active account.
type AnnouncementService struct {
	store      AnnouncementStore
	notifier   Notifier
	recipients RecipientLister
	hub        EventPublisher
	log        *logrus.Logger
}

func NewAnnouncementService(store AnnouncementStore, notifier Notifier, recipients RecipientLister, hub EventPublisher, log *logrus.Logger) *AnnouncementService {
	return &AnnouncementService{
		store:      store,
		notifier:   notifier,
		recipients: recipients,
		hub:        hub,
		log:        log,
	}
}

// Create publishes an announcement authored by a staff member.
func (s *AnnouncementService) Create(ctx context.Context, authorID primitive.ObjectID, title, description, image string) (*models.Announcement, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("announcement title is required")
	}

	a := &models.Announcement{
		Title:       title,
		Description: strings.TrimSpace(description),
		Image:       strings.TrimSpace(image),
		AuthorID:    authorID,
	}
	if err := s.store.Insert(ctx, a); err != nil {
		return nil, err
	}
	s.log.WithField("title", a.Title).Info("Announcement published")

	s.fanOut(ctx, a)

	s.hub.Publish(realtime.ChangeEvent{
		Table:  realtime.TableAnnouncements,
		Action: realtime.ActionInsert,
		After:  a,
	})
	return a, nil
}

func (s *AnnouncementService) fanOut(ctx context.Context, a *models.Announcement) {
	entries, err := s.recipients.ListActive(ctx)
	if err != nil {
		s.log.WithError(err).Error("Failed to list recipients for announcement")
		return
	}
	recipients := make([]primitive.ObjectID, 0, len(entries))
	for _, entry := range entries {
		if entry.ID == a.AuthorID {
			continue
		}
		recipients = append(recipients, entry.ID)
	}
	s.notifier.Enqueue(ctx, recipients, "New Barangay Announcement", a.Title, models.SeverityInfo)
}

// Get returns one announcement.
func (s *AnnouncementService) Get(ctx context.Context, id primitive.ObjectID) (*models.Announcement, error) {
	return s.store.FindByID(ctx, id)
}

// List returns recent announcements, newest first.
func (s *AnnouncementService) List(ctx context.Context, limit int64) ([]models.Announcement, error) {
	return s.store.FindAll(ctx, limit)
}

// Update edits an announcement's content.
func (s *AnnouncementService) Update(ctx context.Context, id primitive.ObjectID, title, description, image *string) (*models.Announcement, error) {
	if title != nil && strings.TrimSpace(*title) == "" {
		return nil, fmt.Errorf("announcement title is required")
	}

	a, err := s.store.Update(ctx, id, title, description, image)
	if err != nil {
		return nil, err
	}
	s.hub.Publish(realtime.ChangeEvent{
		Table:  realtime.TableAnnouncements,
		Action: realtime.ActionUpdate,
		After:  a,
	})
	return a, nil
}

// Delete removes an announcement.
func (s *AnnouncementService) Delete(ctx context.Context, id primitive.ObjectID) error {
	a, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.hub.Publish(realtime.ChangeEvent{
		Table:  realtime.TableAnnouncements,
		Action: realtime.ActionDelete,
		Before: a,
	})
	return nil
}
