// internal/services/purok.go
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

// PurokStore is the slice of the purok repository the service needs.
type PurokStore interface {
	Insert(ctx context.Context, p *models.Purok) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Purok, error)
	FindAll(ctx context.Context) ([]models.Purok, error)
	FindByCollection(ctx context.Context, collectionID primitive.ObjectID) (*models.Purok, error)
	Link(ctx context.Context, purokID, collectionID primitive.ObjectID) (*models.Purok, error)
	SetStatus(ctx context.Context, purokID primitive.ObjectID, status models.PurokStatus, notes *string) (*models.Purok, error)
	UpdateDetails(ctx context.Context, purokID primitive.ObjectID, name, notes *string) (*models.Purok, error)
	Delete(ctx context.Context, purokID primitive.ObjectID) error
}

// CollectionReader verifies pickup requests referenced by purok links.
type CollectionReader interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Collection, error)
}

// PurokService manages neighborhood cleanliness records and their weak
// link to pickup requests.
type PurokService struct {
	store       PurokStore
	collections CollectionReader
	hub         EventPublisher
	log         *logrus.Logger
}

func NewPurokService(store PurokStore, collections CollectionReader, hub EventPublisher, log *logrus.Logger) *PurokService {
	return &PurokService{
		store:       store,
		collections: collections,
		hub:         hub,
		log:         log,
	}
}

// Create registers a new purok, starting in the pending state.
func (s *PurokService) Create(ctx context.Context, name, notes string) (*models.Purok, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("purok name is required")
	}

	p := &models.Purok{
		Name:   name,
		Notes:  strings.TrimSpace(notes),
		Status: models.PurokStatusPending,
	}
	if err := s.store.Insert(ctx, p); err != nil {
		return nil, err
	}
	s.log.WithField("purok", p.Name).Info("Purok registered")

	s.hub.Publish(realtime.ChangeEvent{
		Table:   realtime.TablePuroks,
		Action:  realtime.ActionInsert,
		After:   p,
		Version: p.Version,
	})
	return p, nil
}

// Get returns one purok.
func (s *PurokService) Get(ctx context.Context, id primitive.ObjectID) (*models.Purok, error) {
	return s.store.FindByID(ctx, id)
}

// List returns every purok.
func (s *PurokService) List(ctx context.Context) ([]models.Purok, error) {
	return s.store.FindAll(ctx)
}

// LinkCollection attaches a pickup request to a purok, scheduling it.
// The link is exclusive: a purok already tracking a request rejects a
// second one until the first is released.
func (s *PurokService) LinkCollection(ctx context.Context, purokID, collectionID primitive.ObjectID) (*models.Purok, error) {
	c, err := s.collections.FindByID(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	// A finished request will never release the link again.
	if c.Status.IsTerminal() {
		return nil, ErrInvalidStatus
	}

	p, err := s.store.Link(ctx, purokID, collectionID)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"purok":         p.Name,
		"collection_id": collectionID.Hex(),
	}).Info("Pickup scheduled for purok")

	s.hub.Publish(realtime.ChangeEvent{
		Table:   realtime.TablePuroks,
		Action:  realtime.ActionUpdate,
		After:   p,
		Version: p.Version,
	})
	return p, nil
}

// SetStatus is the manual override used by officials during surveys.
// Moving to clean or needs_pickup detaches any tracked request.
func (s *PurokService) SetStatus(ctx context.Context, purokID primitive.ObjectID, status models.PurokStatus, notes *string) (*models.Purok, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	p, err := s.store.SetStatus(ctx, purokID, status, notes)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"purok":  p.Name,
		"status": string(status),
	}).Info("Purok status surveyed")

	s.hub.Publish(realtime.ChangeEvent{
		Table:   realtime.TablePuroks,
		Action:  realtime.ActionUpdate,
		After:   p,
		Version: p.Version,
	})
	return p, nil
}

// UpdateDetails edits the purok's name or notes.
func (s *PurokService) UpdateDetails(ctx context.Context, purokID primitive.ObjectID, name, notes *string) (*models.Purok, error) {
	if name != nil && strings.TrimSpace(*name) == "" {
		return nil, fmt.Errorf("purok name is required")
	}

	p, err := s.store.UpdateDetails(ctx, purokID, name, notes)
	if err != nil {
		return nil, err
	}
	s.hub.Publish(realtime.ChangeEvent{
		Table:   realtime.TablePuroks,
		Action:  realtime.ActionUpdate,
		After:   p,
		Version: p.Version,
	})
	return p, nil
}

// Delete removes a purok record.
func (s *PurokService) Delete(ctx context.Context, purokID primitive.ObjectID) error {
	p, err := s.store.FindByID(ctx, purokID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, purokID); err != nil {
		return err
	}
	s.log.WithField("purok", p.Name).Info("Purok removed")

	s.hub.Publish(realtime.ChangeEvent{
		Table:   realtime.TablePuroks,
		Action:  realtime.ActionDelete,
		Before:  p,
		Version: p.Version,
	})
	return nil
}
