// internal/services/collection.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/centmarde/Eco-Barangay/internal/models"
	"github.com/centmarde/Eco-Barangay/internal/realtime"
	"github.com/centmarde/Eco-Barangay/internal/repository"
)

// CollectionStore is the slice of the collection repository the
// lifecycle service needs.
type CollectionStore interface {
	Insert(ctx context.Context, c *models.Collection) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Collection, error)
	FindAll(ctx context.Context) ([]models.Collection, error)
	FindByRequester(ctx context.Context, userID primitive.ObjectID) ([]models.Collection, error)
	FindByCollector(ctx context.Context, userID primitive.ObjectID) ([]models.Collection, error)
	FindByStatus(ctx context.Context, status models.CollectionStatus) ([]models.Collection, error)
	FindByGarbageType(ctx context.Context, garbageType string) ([]models.Collection, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Collection, error)
	SearchByAddress(ctx context.Context, term string) ([]models.Collection, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.CollectionStatus) (*models.Collection, error)
	SetCollector(ctx context.Context, id, collectorID primitive.ObjectID) (*models.Collection, error)
	Update(ctx context.Context, id primitive.ObjectID, update repository.CollectionUpdate) (*models.Collection, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountByStatus(ctx context.Context, status models.CollectionStatus) (int64, error)
	StatsByCollector(ctx context.Context, collectorID primitive.ObjectID) (*models.CollectionStats, error)
}

// PurokLinkStore is the slice of the purok repository the lifecycle
// service uses for reconciliation.
type PurokLinkStore interface {
	FindByCollection(ctx context.Context, collectionID primitive.ObjectID) (*models.Purok, error)
	ReleaseByCollection(ctx context.Context, collectionID primitive.ObjectID, status models.PurokStatus, stampSurvey bool) (*models.Purok, error)
}

// FeedbackCascade removes feedback tied to a deleted pickup request.
type FeedbackCascade interface {
	DeleteByCollection(ctx context.Context, collectionID primitive.ObjectID) (int64, error)
}

// Notifier records notification fan-out intents.
type Notifier interface {
	Enqueue(ctx context.Context, recipients []primitive.ObjectID, title, message, severity string)
}

// DirectoryReader resolves user identities for enrichment and
// staff-change fan-out.
type DirectoryReader interface {
	Resolve(ctx context.Context, id primitive.ObjectID) (*models.DirectoryEntry, error)
	ResolveMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.DirectoryEntry, error)
	ListByRole(ctx context.Context, role models.UserRole) ([]models.DirectoryEntry, error)
}

// CollectionService owns the pickup request lifecycle: creation, status
// transitions, collector assignment, purok reconciliation and the
// notification side effects of each change.
type CollectionService struct {
	store     CollectionStore
	puroks    PurokLinkStore
	feedbacks FeedbackCascade
	notifier  Notifier
	directory DirectoryReader
	hub       EventPublisher
	log       *logrus.Logger
}

func NewCollectionService(
	store CollectionStore,
	puroks PurokLinkStore,
	feedbacks FeedbackCascade,
	notifier Notifier,
	directory DirectoryReader,
	hub EventPublisher,
	log *logrus.Logger,
) *CollectionService {
	return &CollectionService{
		store:     store,
		puroks:    puroks,
		feedbacks: feedbacks,
		notifier:  notifier,
		directory: directory,
		hub:       hub,
		log:       log,
	}
}

// CreateCollectionInput carries the resident-supplied request fields.
type CreateCollectionInput struct {
	Address     string
	Purok       string
	GarbageType string
	Notes       string
	Hazardous   bool
}

// Create submits a new pickup request for the given resident. Hazardous
// requests additionally alert every admin.
func (s *CollectionService) Create(ctx context.Context, requesterID primitive.ObjectID, input CreateCollectionInput) (*models.Collection, error) {
	address := strings.TrimSpace(input.Address)
	if address == "" {
		return nil, fmt.Errorf("address is required")
	}
	if !models.IsValidGarbageType(input.GarbageType) {
		return nil, ErrInvalidGarbageType
	}

	c := &models.Collection{
		Address:     address,
		Purok:       strings.TrimSpace(input.Purok),
		RequestBy:   requesterID,
		Status:      models.StatusPending,
		GarbageType: input.GarbageType,
		Notes:       strings.TrimSpace(input.Notes),
		Hazardous:   input.Hazardous,
	}
	if err := s.store.Insert(ctx, c); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"collection_id": c.ID.Hex(),
		"garbage_type":  c.GarbageType,
		"hazardous":     c.Hazardous,
	}).Info("Pickup request created")

	if c.Hazardous {
		s.notifyAdmins(ctx,
			"Hazardous Pickup Requested",
			fmt.Sprintf("A hazardous %s pickup was requested at %s.", c.GarbageType, c.Address),
			models.SeverityWarning)
	}

	s.hub.Publish(realtime.ChangeEvent{
		Table:   realtime.TableCollections,
		Action:  realtime.ActionInsert,
		After:   c,
		Version: c.Version,
	})
	return c, nil
}

// UpdateStatus moves a pickup request along its lifecycle. Transitions
// only run forward: pending to in_progress to completed, with
// cancellation allowed from any non-terminal state. On success the
// linked purok is reconciled and the requester is always notified, even
// when reconciliation fails.
func (s *CollectionService) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.CollectionStatus, actorID primitive.ObjectID, actorRole models.UserRole) (*models.Collection, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	current, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == status {
		return current, nil
	}
	if !current.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, status)
	}

	updated, err := s.store.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"collection_id": id.Hex(),
		"from":          string(current.Status),
		"to":            string(status),
	}).Info("Pickup request status changed")

	s.reconcilePurok(ctx, id, status)

	s.notifier.Enqueue(ctx,
		[]primitive.ObjectID{updated.RequestBy},
		"Pickup Request Updated",
		fmt.Sprintf("Your pickup request at %s is now %s.", updated.Address, status.DisplayText()),
		statusSeverity(status))

	if actorRole.IsStaff() {
		s.notifyAdmins(ctx,
			"Pickup Request Updated",
			fmt.Sprintf("Request at %s was moved to %s.", updated.Address, status.DisplayText()),
			models.SeverityInfo)
	}

	s.hub.Publish(realtime.ChangeEvent{
		Table:   realtime.TableCollections,
		Action:  realtime.ActionUpdate,
		Before:  current,
		After:   updated,
		Version: updated.Version,
	})
	return updated, nil
}

// reconcilePurok releases any purok linked to the request when it
// reaches a terminal state. Reconciliation failures are logged only:
// the status change has already been persisted.
func (s *CollectionService) reconcilePurok(ctx context.Context, collectionID primitive.ObjectID, status models.CollectionStatus) {
	var (
		target      models.PurokStatus
		stampSurvey bool
	)
	switch status {
	case models.StatusCompleted:
		target = models.PurokStatusClean
		stampSurvey = true
	case models.StatusCancelled:
		target = models.PurokStatusNeedsPickup
	default:
		return
	}

	purok, err := s.puroks.ReleaseByCollection(ctx, collectionID, target, stampSurvey)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.WithError(err).WithField("collection_id", collectionID.Hex()).Error("Failed to reconcile purok")
		}
		return
	}

	s.hub.Publish(realtime.ChangeEvent{
		Table:   realtime.TablePuroks,
		Action:  realtime.ActionUpdate,
		After:   purok,
		Version: purok.Version,
	})
}

// AssignCollector sets the responsible collector. The collector is
// always notified; the requester is notified too unless they are the
// actor assigning themselves.
func (s *CollectionService) AssignCollector(ctx context.Context, id, collectorID, actorID primitive.ObjectID) (*models.Collection, error) {
	collector, err := s.directory.Resolve(ctx, collectorID)
	if err != nil {
		return nil, err
	}
	if collector == nil {
		return nil, repository.ErrNotFound
	}

	updated, err := s.store.SetCollector(ctx, id, collectorID)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"collection_id": id.Hex(),
		"collector_id":  collectorID.Hex(),
	}).Info("Collector assigned")

	s.notifier.Enqueue(ctx,
		[]primitive.ObjectID{collectorID},
		"New Pickup Assignment",
		fmt.Sprintf("You have been assigned a %s pickup at %s.", updated.GarbageType, updated.Address),
		models.SeverityInfo)

	if updated.RequestBy != actorID {
		s.notifier.Enqueue(ctx,
			[]primitive.ObjectID{updated.RequestBy},
			"Collector Assigned",
			fmt.Sprintf("%s will handle your pickup request at %s.", collector.DisplayName, updated.Address),
			models.SeverityInfo)
	}

	s.hub.Publish(realtime.ChangeEvent{
		Table:   realtime.TableCollections,
		Action:  realtime.ActionUpdate,
		After:   updated,
		Version: updated.Version,
	})
	return updated, nil
}

// Update edits the request's descriptive fields without touching the
// lifecycle.
func (s *CollectionService) Update(ctx context.Context, id primitive.ObjectID, update repository.CollectionUpdate) (*models.Collection, error) {
	if update.GarbageType != nil && !models.IsValidGarbageType(*update.GarbageType) {
		return nil, ErrInvalidGarbageType
	}
	updated, err := s.store.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}
	s.hub.Publish(realtime.ChangeEvent{
		Table:   realtime.TableCollections,
		Action:  realtime.ActionUpdate,
		After:   updated,
		Version: updated.Version,
	})
	return updated, nil
}

// Delete removes a pickup request. The linked purok is resolved before
// the delete so it can be released afterwards; feedback rows tied to
// the request are removed as well. Cleanup failures are logged only.
func (s *CollectionService) Delete(ctx context.Context, id primitive.ObjectID) error {
	before, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}

	linked, err := s.puroks.FindByCollection(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.log.WithError(err).WithField("collection_id", id.Hex()).Error("Failed to resolve linked purok before delete")
		linked = nil
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithField("collection_id", id.Hex()).Info("Pickup request deleted")

	if _, err := s.feedbacks.DeleteByCollection(ctx, id); err != nil {
		s.log.WithError(err).WithField("collection_id", id.Hex()).Error("Failed to delete feedback for removed request")
	}

	if linked != nil {
		purok, err := s.puroks.ReleaseByCollection(ctx, id, models.PurokStatusNeedsPickup, false)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				s.log.WithError(err).WithField("purok_id", linked.ID.Hex()).Error("Failed to release purok after delete")
			}
		} else {
			s.hub.Publish(realtime.ChangeEvent{
				Table:   realtime.TablePuroks,
				Action:  realtime.ActionUpdate,
				After:   purok,
				Version: purok.Version,
			})
		}
	}

	s.hub.Publish(realtime.ChangeEvent{
		Table:   realtime.TableCollections,
		Action:  realtime.ActionDelete,
		Before:  before,
		Version: before.Version,
	})
	return nil
}

// Get returns one request enriched with requester/collector identities.
func (s *CollectionService) Get(ctx context.Context, id primitive.ObjectID) (*models.CollectionWithUsers, error) {
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	enriched := s.enrich(ctx, []models.Collection{*c})
	return &enriched[0], nil
}

// List returns all requests, optionally filtered, enriched with user
// identities.
func (s *CollectionService) List(ctx context.Context, status models.CollectionStatus, garbageType string) ([]models.CollectionWithUsers, error) {
	var (
		rows []models.Collection
		err  error
	)
	switch {
	case status != "":
		if !status.IsValid() {
			return nil, ErrInvalidStatus
		}
		rows, err = s.store.FindByStatus(ctx, status)
	case garbageType != "":
		rows, err = s.store.FindByGarbageType(ctx, garbageType)
	default:
		rows, err = s.store.FindAll(ctx)
	}
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, rows), nil
}

// ListByRequester returns a resident's own requests.
func (s *CollectionService) ListByRequester(ctx context.Context, userID primitive.ObjectID) ([]models.CollectionWithUsers, error) {
	rows, err := s.store.FindByRequester(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, rows), nil
}

// ListByCollector returns the requests assigned to a collector.
func (s *CollectionService) ListByCollector(ctx context.Context, userID primitive.ObjectID) ([]models.CollectionWithUsers, error) {
	rows, err := s.store.FindByCollector(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, rows), nil
}

// ListByUser returns every request the user requested or collects.
func (s *CollectionService) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.CollectionWithUsers, error) {
	rows, err := s.store.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, rows), nil
}

// SearchByAddress finds requests whose address contains the term.
func (s *CollectionService) SearchByAddress(ctx context.Context, term string) ([]models.CollectionWithUsers, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("search term is required")
	}
	rows, err := s.store.SearchByAddress(ctx, term)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, rows), nil
}

// CollectorStats returns the per-status breakdown for one collector.
func (s *CollectionService) CollectorStats(ctx context.Context, collectorID primitive.ObjectID) (*models.CollectionStats, error) {
	return s.store.StatsByCollector(ctx, collectorID)
}

func (s *CollectionService) enrich(ctx context.Context, rows []models.Collection) []models.CollectionWithUsers {
	ids := make([]primitive.ObjectID, 0, len(rows)*2)
	for _, c := range rows {
		ids = append(ids, c.RequestBy)
		if c.CollectorAssign != nil {
			ids = append(ids, *c.CollectorAssign)
		}
	}

	entries, err := s.directory.ResolveMany(ctx, ids)
	if err != nil {
		s.log.WithError(err).Warn("Failed to resolve user identities for listing")
		entries = map[primitive.ObjectID]models.DirectoryEntry{}
	}

	result := make([]models.CollectionWithUsers, 0, len(rows))
	for _, c := range rows {
		item := models.CollectionWithUsers{Collection: c}
		if entry, ok := entries[c.RequestBy]; ok {
			e := entry
			item.Requester = &e
		}
		if c.CollectorAssign != nil {
			if entry, ok := entries[*c.CollectorAssign]; ok {
				e := entry
				item.Collector = &e
			}
		}
		result = append(result, item)
	}
	return result
}

func (s *CollectionService) notifyAdmins(ctx context.Context, title, message, severity string) {
	admins, err := s.directory.ListByRole(ctx, models.RoleAdmin)
	if err != nil {
		s.log.WithError(err).Error("Failed to list admins for notification")
		return
	}
	if len(admins) == 0 {
		return
	}
	recipients := make([]primitive.ObjectID, 0, len(admins))
	for _, admin := range admins {
		recipients = append(recipients, admin.ID)
	}
	s.notifier.Enqueue(ctx, recipients, title, message, severity)
}

func statusSeverity(status models.CollectionStatus) string {
	switch status {
	case models.StatusCompleted:
		return models.SeveritySuccess
	case models.StatusCancelled:
		return models.SeverityWarning
	default:
		return models.SeverityInfo
	}
}
