// internal/services/notification_test.go
package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/centmarde/Eco-Barangay/internal/models"
	"github.com/centmarde/Eco-Barangay/internal/realtime"
)

func newNotificationFixture(maxAttempts int) (*NotificationService, *MockNotificationStore, *FakePublisher) {
	store := new(MockNotificationStore)
	publisher := new(FakePublisher)
	svc := NewNotificationService(store, publisher, time.Minute, maxAttempts, testLogger())
	return svc, store, publisher
}

func TestEnqueuePersistsOutboxEntry(t *testing.T) {
	svc, store, _ := newNotificationFixture(5)
	recipient := primitive.NewObjectID()

	store.On("EnqueueOutbox", mock.Anything, mock.MatchedBy(func(entry *models.OutboxEntry) bool {
		return entry.Title == "Pickup Request Updated" &&
			entry.Severity == models.SeveritySuccess &&
			len(entry.Recipients) == 1
	})).Return(nil)

	svc.Enqueue(context.Background(), []primitive.ObjectID{recipient}, "Pickup Request Updated", "done", models.SeveritySuccess)
	store.AssertExpectations(t)
}

func TestEnqueueSkipsEmptyRecipients(t *testing.T) {
	svc, store, _ := newNotificationFixture(5)

	svc.Enqueue(context.Background(), nil, "Anything", "msg", models.SeverityInfo)
	store.AssertNotCalled(t, "EnqueueOutbox", mock.Anything, mock.Anything)
}

func TestEnqueueSwallowsStoreErrors(t *testing.T) {
	svc, store, _ := newNotificationFixture(5)

	store.On("EnqueueOutbox", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	// Must not panic or surface the error to the caller.
	svc.Enqueue(context.Background(), []primitive.ObjectID{primitive.NewObjectID()}, "Title", "msg", "")
	store.AssertExpectations(t)
}

func TestProcessDueDeliversToEveryRecipient(t *testing.T) {
	svc, store, publisher := newNotificationFixture(5)
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()
	entry := models.OutboxEntry{
		ID:         primitive.NewObjectID(),
		Recipients: []primitive.ObjectID{first, second},
		Title:      "New Barangay Announcement",
		Message:    "Coastal cleanup this Saturday",
		Severity:   models.SeverityInfo,
		Status:     models.OutboxStatusPending,
	}

	store.On("FetchDueOutbox", mock.Anything, mock.Anything, int64(outboxBatchSize)).Return([]models.OutboxEntry{entry}, nil)
	store.On("InsertNotification", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.Title == entry.Title && n.Description == entry.Message
	})).Return(nil)
	store.On("InsertUserNotifications", mock.Anything, mock.MatchedBy(func(rows []models.UserNotification) bool {
		return len(rows) == 2
	})).Return(nil)
	store.On("MarkOutboxSent", mock.Anything, entry.ID).Return(nil)

	svc.processDue(context.Background())
	store.AssertExpectations(t)

	events := publisher.EventsFor(realtime.TableNotifications)
	assert.Len(t, events, 2)
	assert.Equal(t, first, events[0].Recipient)
	assert.Equal(t, second, events[1].Recipient)
}

func TestProcessDueSchedulesRetryOnFailure(t *testing.T) {
	svc, store, publisher := newNotificationFixture(5)
	entry := models.OutboxEntry{
		ID:         primitive.NewObjectID(),
		Recipients: []primitive.ObjectID{primitive.NewObjectID()},
		Title:      "Pickup Request Updated",
		Attempts:   0,
	}

	store.On("FetchDueOutbox", mock.Anything, mock.Anything, int64(outboxBatchSize)).Return([]models.OutboxEntry{entry}, nil)
	store.On("InsertNotification", mock.Anything, mock.Anything).Return(errors.New("primary stepped down"))
	store.On("MarkOutboxRetry", mock.Anything, entry.ID, 1, mock.Anything, "primary stepped down").Return(nil)

	svc.processDue(context.Background())
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "MarkOutboxSent", mock.Anything, mock.Anything)
	assert.Empty(t, publisher.Events)
}

func TestProcessDueGivesUpAtAttemptCap(t *testing.T) {
	svc, store, _ := newNotificationFixture(3)
	entry := models.OutboxEntry{
		ID:         primitive.NewObjectID(),
		Recipients: []primitive.ObjectID{primitive.NewObjectID()},
		Title:      "Pickup Request Updated",
		Attempts:   2,
	}

	store.On("FetchDueOutbox", mock.Anything, mock.Anything, int64(outboxBatchSize)).Return([]models.OutboxEntry{entry}, nil)
	store.On("InsertNotification", mock.Anything, mock.Anything).Return(errors.New("still down"))
	store.On("MarkOutboxFailed", mock.Anything, entry.ID, 3, "still down").Return(nil)

	svc.processDue(context.Background())
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "MarkOutboxRetry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkAsReadScopedToOwner(t *testing.T) {
	svc, store, _ := newNotificationFixture(5)
	id := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	store.On("MarkAsRead", mock.Anything, id, userID).Return(nil)

	err := svc.MarkAsRead(context.Background(), id, userID)
	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestListInboxClampsPagination(t *testing.T) {
	svc, store, _ := newNotificationFixture(5)
	userID := primitive.NewObjectID()

	store.On("ListByUser", mock.Anything, userID, false, int64(1), int64(20)).
		Return([]models.UserNotificationView{}, int64(0), nil)

	_, _, err := svc.ListInbox(context.Background(), userID, false, -3, 5000)
	assert.NoError(t, err)
	store.AssertExpectations(t)
}
