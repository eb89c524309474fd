// internal/services/collection_test.go
package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/centmarde/Eco-Barangay/internal/models"
	"github.com/centmarde/Eco-Barangay/internal/realtime"
	"github.com/centmarde/Eco-Barangay/internal/repository"
)

func newCollectionFixture() (*CollectionService, *MockCollectionStore, *MockPurokStore, *MockFeedbackCascade, *MockNotifier, *MockDirectory, *FakePublisher) {
	store := new(MockCollectionStore)
	puroks := new(MockPurokStore)
	feedbacks := new(MockFeedbackCascade)
	notifier := new(MockNotifier)
	directory := new(MockDirectory)
	publisher := new(FakePublisher)
	svc := NewCollectionService(store, puroks, feedbacks, notifier, directory, publisher, testLogger())
	return svc, store, puroks, feedbacks, notifier, directory, publisher
}

func pendingCollection(requester primitive.ObjectID) *models.Collection {
	return &models.Collection{
		ID:          primitive.NewObjectID(),
		Address:     "Purok 3, Brgy. San Isidro",
		RequestBy:   requester,
		Status:      models.StatusPending,
		GarbageType: "Batteries & Chargers",
		Version:     1,
	}
}

func TestCreateRejectsUnknownGarbageType(t *testing.T) {
	svc, _, _, _, _, _, _ := newCollectionFixture()

	_, err := svc.Create(context.Background(), primitive.NewObjectID(), CreateCollectionInput{
		Address:     "Purok 1, Brgy. San Isidro",
		GarbageType: "Plutonium",
	})
	assert.ErrorIs(t, err, ErrInvalidGarbageType)
}

func TestCreateHazardousAlertsAdmins(t *testing.T) {
	svc, store, _, _, notifier, directory, publisher := newCollectionFixture()
	admin := models.DirectoryEntry{ID: primitive.NewObjectID(), Role: models.RoleAdmin}

	store.On("Insert", mock.Anything, mock.Anything).Return(nil)
	directory.On("ListByRole", mock.Anything, models.RoleAdmin).Return([]models.DirectoryEntry{admin}, nil)
	notifier.On("Enqueue", mock.Anything, []primitive.ObjectID{admin.ID}, "Hazardous Pickup Requested", mock.Anything, models.SeverityWarning).Return()

	c, err := svc.Create(context.Background(), primitive.NewObjectID(), CreateCollectionInput{
		Address:     "Purok 1, Brgy. San Isidro",
		GarbageType: "Batteries & Chargers",
		Hazardous:   true,
	})
	assert.NoError(t, err)
	assert.Equal(t, models.StatusPending, c.Status)
	notifier.AssertExpectations(t)
	assert.Len(t, publisher.EventsFor(realtime.TableCollections), 1)
}

func TestUpdateStatusCompletedMarksPurokClean(t *testing.T) {
	svc, store, puroks, _, notifier, _, publisher := newCollectionFixture()
	requester := primitive.NewObjectID()
	current := pendingCollection(requester)
	current.Status = models.StatusInProgress

	updated := *current
	updated.Status = models.StatusCompleted
	updated.Version = 2

	released := &models.Purok{ID: primitive.NewObjectID(), Name: "Purok 3", Status: models.PurokStatusClean, Version: 4}

	store.On("FindByID", mock.Anything, current.ID).Return(current, nil)
	store.On("UpdateStatus", mock.Anything, current.ID, models.StatusCompleted).Return(&updated, nil)
	puroks.On("ReleaseByCollection", mock.Anything, current.ID, models.PurokStatusClean, true).Return(released, nil)
	notifier.On("Enqueue", mock.Anything, []primitive.ObjectID{requester}, "Pickup Request Updated", mock.Anything, models.SeveritySuccess).Return()

	got, err := svc.UpdateStatus(context.Background(), current.ID, models.StatusCompleted, requester, models.RoleResident)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)

	puroks.AssertExpectations(t)
	notifier.AssertExpectations(t)
	assert.Len(t, publisher.EventsFor(realtime.TablePuroks), 1)
	assert.Len(t, publisher.EventsFor(realtime.TableCollections), 1)
}

func TestUpdateStatusCancelledMarksPurokNeedsPickup(t *testing.T) {
	svc, store, puroks, _, notifier, _, _ := newCollectionFixture()
	requester := primitive.NewObjectID()
	current := pendingCollection(requester)

	updated := *current
	updated.Status = models.StatusCancelled
	updated.Version = 2

	released := &models.Purok{ID: primitive.NewObjectID(), Status: models.PurokStatusNeedsPickup, Version: 2}

	store.On("FindByID", mock.Anything, current.ID).Return(current, nil)
	store.On("UpdateStatus", mock.Anything, current.ID, models.StatusCancelled).Return(&updated, nil)
	puroks.On("ReleaseByCollection", mock.Anything, current.ID, models.PurokStatusNeedsPickup, false).Return(released, nil)
	notifier.On("Enqueue", mock.Anything, []primitive.ObjectID{requester}, "Pickup Request Updated", mock.Anything, models.SeverityWarning).Return()

	_, err := svc.UpdateStatus(context.Background(), current.ID, models.StatusCancelled, requester, models.RoleResident)
	assert.NoError(t, err)
	puroks.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestUpdateStatusRejectsBackwardTransition(t *testing.T) {
	svc, store, _, _, _, _, _ := newCollectionFixture()
	current := pendingCollection(primitive.NewObjectID())
	current.Status = models.StatusCompleted

	store.On("FindByID", mock.Anything, current.ID).Return(current, nil)

	_, err := svc.UpdateStatus(context.Background(), current.ID, models.StatusPending, primitive.NewObjectID(), models.RoleAdmin)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	store.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatusNotifiesRequesterWhenReconciliationFails(t *testing.T) {
	svc, store, puroks, _, notifier, _, publisher := newCollectionFixture()
	requester := primitive.NewObjectID()
	current := pendingCollection(requester)
	current.Status = models.StatusInProgress

	updated := *current
	updated.Status = models.StatusCompleted
	updated.Version = 2

	store.On("FindByID", mock.Anything, current.ID).Return(current, nil)
	store.On("UpdateStatus", mock.Anything, current.ID, models.StatusCompleted).Return(&updated, nil)
	puroks.On("ReleaseByCollection", mock.Anything, current.ID, models.PurokStatusClean, true).Return(nil, errors.New("write conflict"))
	notifier.On("Enqueue", mock.Anything, []primitive.ObjectID{requester}, "Pickup Request Updated", mock.Anything, models.SeveritySuccess).Return()

	_, err := svc.UpdateStatus(context.Background(), current.ID, models.StatusCompleted, requester, models.RoleResident)
	assert.NoError(t, err)
	notifier.AssertExpectations(t)
	assert.Empty(t, publisher.EventsFor(realtime.TablePuroks))
}

func TestUpdateStatusByStaffAlsoAlertsAdmins(t *testing.T) {
	svc, store, _, _, notifier, directory, _ := newCollectionFixture()
	requester := primitive.NewObjectID()
	actor := primitive.NewObjectID()
	admin := models.DirectoryEntry{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
	current := pendingCollection(requester)

	updated := *current
	updated.Status = models.StatusInProgress
	updated.Version = 2

	store.On("FindByID", mock.Anything, current.ID).Return(current, nil)
	store.On("UpdateStatus", mock.Anything, current.ID, models.StatusInProgress).Return(&updated, nil)
	directory.On("ListByRole", mock.Anything, models.RoleAdmin).Return([]models.DirectoryEntry{admin}, nil)
	notifier.On("Enqueue", mock.Anything, []primitive.ObjectID{requester}, "Pickup Request Updated", mock.Anything, models.SeverityInfo).Return()
	notifier.On("Enqueue", mock.Anything, []primitive.ObjectID{admin.ID}, "Pickup Request Updated", mock.Anything, models.SeverityInfo).Return()

	_, err := svc.UpdateStatus(context.Background(), current.ID, models.StatusInProgress, actor, models.RoleOfficial)
	assert.NoError(t, err)
	notifier.AssertExpectations(t)
}

func TestAssignCollectorNotifiesBothParties(t *testing.T) {
	svc, store, _, _, notifier, directory, _ := newCollectionFixture()
	requester := primitive.NewObjectID()
	collectorID := primitive.NewObjectID()
	actor := primitive.NewObjectID()
	current := pendingCollection(requester)

	updated := *current
	updated.CollectorAssign = &collectorID
	updated.Version = 2

	directory.On("Resolve", mock.Anything, collectorID).Return(&models.DirectoryEntry{ID: collectorID, DisplayName: "Juan Dela Cruz"}, nil)
	store.On("SetCollector", mock.Anything, current.ID, collectorID).Return(&updated, nil)
	notifier.On("Enqueue", mock.Anything, []primitive.ObjectID{collectorID}, "New Pickup Assignment", mock.Anything, models.SeverityInfo).Return()
	notifier.On("Enqueue", mock.Anything, []primitive.ObjectID{requester}, "Collector Assigned", mock.Anything, models.SeverityInfo).Return()

	_, err := svc.AssignCollector(context.Background(), current.ID, collectorID, actor)
	assert.NoError(t, err)
	notifier.AssertExpectations(t)
}

func TestAssignCollectorSelfAssignmentSkipsRequesterNotice(t *testing.T) {
	svc, store, _, _, notifier, directory, _ := newCollectionFixture()
	requester := primitive.NewObjectID()
	collectorID := primitive.NewObjectID()
	current := pendingCollection(requester)
	current.RequestBy = requester

	updated := *current
	updated.CollectorAssign = &collectorID

	directory.On("Resolve", mock.Anything, collectorID).Return(&models.DirectoryEntry{ID: collectorID}, nil)
	store.On("SetCollector", mock.Anything, current.ID, collectorID).Return(&updated, nil)
	notifier.On("Enqueue", mock.Anything, []primitive.ObjectID{collectorID}, "New Pickup Assignment", mock.Anything, models.SeverityInfo).Return()

	// The requester assigns a collector to their own request: only the
	// collector hears about it.
	_, err := svc.AssignCollector(context.Background(), current.ID, collectorID, requester)
	assert.NoError(t, err)
	notifier.AssertExpectations(t)
	notifier.AssertNumberOfCalls(t, "Enqueue", 1)
}

func TestAssignCollectorUnknownCollector(t *testing.T) {
	svc, store, _, _, _, directory, _ := newCollectionFixture()
	collectorID := primitive.NewObjectID()

	directory.On("Resolve", mock.Anything, collectorID).Return(nil, nil)

	_, err := svc.AssignCollector(context.Background(), primitive.NewObjectID(), collectorID, primitive.NewObjectID())
	assert.ErrorIs(t, err, repository.ErrNotFound)
	store.AssertNotCalled(t, "SetCollector", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteReleasesLinkedPurokAndCascades(t *testing.T) {
	svc, store, puroks, feedbacks, _, _, publisher := newCollectionFixture()
	current := pendingCollection(primitive.NewObjectID())
	linked := &models.Purok{ID: primitive.NewObjectID(), Status: models.PurokStatusPickupScheduled, CollectionID: &current.ID}
	released := &models.Purok{ID: linked.ID, Status: models.PurokStatusNeedsPickup, Version: 3}

	store.On("FindByID", mock.Anything, current.ID).Return(current, nil)
	puroks.On("FindByCollection", mock.Anything, current.ID).Return(linked, nil)
	store.On("Delete", mock.Anything, current.ID).Return(nil)
	feedbacks.On("DeleteByCollection", mock.Anything, current.ID).Return(int64(2), nil)
	puroks.On("ReleaseByCollection", mock.Anything, current.ID, models.PurokStatusNeedsPickup, false).Return(released, nil)

	err := svc.Delete(context.Background(), current.ID)
	assert.NoError(t, err)
	puroks.AssertExpectations(t)
	feedbacks.AssertExpectations(t)
	assert.Len(t, publisher.EventsFor(realtime.TablePuroks), 1)

	deletes := publisher.EventsFor(realtime.TableCollections)
	assert.Len(t, deletes, 1)
	assert.Equal(t, realtime.ActionDelete, deletes[0].Action)
}

func TestDeleteWithoutLinkedPurok(t *testing.T) {
	svc, store, puroks, feedbacks, _, _, publisher := newCollectionFixture()
	current := pendingCollection(primitive.NewObjectID())

	store.On("FindByID", mock.Anything, current.ID).Return(current, nil)
	puroks.On("FindByCollection", mock.Anything, current.ID).Return(nil, repository.ErrNotFound)
	store.On("Delete", mock.Anything, current.ID).Return(nil)
	feedbacks.On("DeleteByCollection", mock.Anything, current.ID).Return(int64(0), nil)

	err := svc.Delete(context.Background(), current.ID)
	assert.NoError(t, err)
	puroks.AssertNotCalled(t, "ReleaseByCollection", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, publisher.EventsFor(realtime.TablePuroks))
}

func TestListEnrichesWithDirectoryEntries(t *testing.T) {
	svc, store, _, _, _, directory, _ := newCollectionFixture()
	requester := primitive.NewObjectID()
	collectorID := primitive.NewObjectID()

	rows := []models.Collection{
		{ID: primitive.NewObjectID(), RequestBy: requester, CollectorAssign: &collectorID},
		{ID: primitive.NewObjectID(), RequestBy: requester},
	}
	entries := map[primitive.ObjectID]models.DirectoryEntry{
		requester:   {ID: requester, DisplayName: "Maria Santos"},
		collectorID: {ID: collectorID, DisplayName: "Juan Dela Cruz"},
	}

	store.On("FindAll", mock.Anything).Return(rows, nil)
	directory.On("ResolveMany", mock.Anything, mock.Anything).Return(entries, nil)

	got, err := svc.List(context.Background(), "", "")
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "Maria Santos", got[0].Requester.DisplayName)
	assert.Equal(t, "Juan Dela Cruz", got[0].Collector.DisplayName)
	assert.Nil(t, got[1].Collector)
}
