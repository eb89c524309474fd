// internal/services/purok_test.go
package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/centmarde/Eco-Barangay/internal/models"
	"github.com/centmarde/Eco-Barangay/internal/realtime"
	"github.com/centmarde/Eco-Barangay/internal/repository"
)

func newPurokFixture() (*PurokService, *MockPurokStore, *MockCollectionStore, *FakePublisher) {
	store := new(MockPurokStore)
	collections := new(MockCollectionStore)
	publisher := new(FakePublisher)
	svc := NewPurokService(store, collections, publisher, testLogger())
	return svc, store, collections, publisher
}

func TestCreatePurokStartsPending(t *testing.T) {
	svc, store, _, publisher := newPurokFixture()

	store.On("Insert", mock.Anything, mock.MatchedBy(func(p *models.Purok) bool {
		return p.Name == "Purok 7" && p.Status == models.PurokStatusPending
	})).Return(nil)

	p, err := svc.Create(context.Background(), "  Purok 7 ", "")
	assert.NoError(t, err)
	assert.Equal(t, "Purok 7", p.Name)
	assert.Len(t, publisher.EventsFor(realtime.TablePuroks), 1)
}

func TestCreatePurokRequiresName(t *testing.T) {
	svc, _, _, _ := newPurokFixture()

	_, err := svc.Create(context.Background(), "   ", "")
	assert.Error(t, err)
}

func TestLinkCollectionSchedulesPickup(t *testing.T) {
	svc, store, collections, publisher := newPurokFixture()
	purokID := primitive.NewObjectID()
	collection := pendingCollection(primitive.NewObjectID())

	linked := &models.Purok{
		ID:           purokID,
		Name:         "Purok 2",
		Status:       models.PurokStatusPickupScheduled,
		CollectionID: &collection.ID,
		Version:      2,
	}

	collections.On("FindByID", mock.Anything, collection.ID).Return(collection, nil)
	store.On("Link", mock.Anything, purokID, collection.ID).Return(linked, nil)

	p, err := svc.LinkCollection(context.Background(), purokID, collection.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.PurokStatusPickupScheduled, p.Status)
	assert.Len(t, publisher.EventsFor(realtime.TablePuroks), 1)
}

func TestLinkCollectionRejectsMissingRequest(t *testing.T) {
	svc, store, collections, _ := newPurokFixture()
	collectionID := primitive.NewObjectID()

	collections.On("FindByID", mock.Anything, collectionID).Return(nil, repository.ErrNotFound)

	_, err := svc.LinkCollection(context.Background(), primitive.NewObjectID(), collectionID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	store.AssertNotCalled(t, "Link", mock.Anything, mock.Anything, mock.Anything)
}

func TestLinkCollectionRejectsFinishedRequest(t *testing.T) {
	svc, store, collections, publisher := newPurokFixture()
	collection := pendingCollection(primitive.NewObjectID())
	collection.Status = models.StatusCompleted

	collections.On("FindByID", mock.Anything, collection.ID).Return(collection, nil)

	_, err := svc.LinkCollection(context.Background(), primitive.NewObjectID(), collection.ID)
	assert.ErrorIs(t, err, ErrInvalidStatus)
	store.AssertNotCalled(t, "Link", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, publisher.EventsFor(realtime.TablePuroks))
}

func TestLinkCollectionPropagatesAlreadyLinked(t *testing.T) {
	svc, store, collections, _ := newPurokFixture()
	purokID := primitive.NewObjectID()
	collection := pendingCollection(primitive.NewObjectID())

	collections.On("FindByID", mock.Anything, collection.ID).Return(collection, nil)
	store.On("Link", mock.Anything, purokID, collection.ID).Return(nil, repository.ErrAlreadyLinked)

	_, err := svc.LinkCollection(context.Background(), purokID, collection.ID)
	assert.ErrorIs(t, err, repository.ErrAlreadyLinked)
}

func TestSetStatusRejectsUnknownState(t *testing.T) {
	svc, store, _, _ := newPurokFixture()

	_, err := svc.SetStatus(context.Background(), primitive.NewObjectID(), models.PurokStatus("spotless"), nil)
	assert.ErrorIs(t, err, ErrInvalidStatus)
	store.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSetStatusSurveysPurok(t *testing.T) {
	svc, store, _, publisher := newPurokFixture()
	purokID := primitive.NewObjectID()
	surveyed := &models.Purok{ID: purokID, Name: "Purok 5", Status: models.PurokStatusClean, Version: 6}

	store.On("SetStatus", mock.Anything, purokID, models.PurokStatusClean, (*string)(nil)).Return(surveyed, nil)

	p, err := svc.SetStatus(context.Background(), purokID, models.PurokStatusClean, nil)
	assert.NoError(t, err)
	assert.Equal(t, models.PurokStatusClean, p.Status)
	assert.Len(t, publisher.EventsFor(realtime.TablePuroks), 1)
}
