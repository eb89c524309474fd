// internal/services/mocks_test.go
package services

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/centmarde/Eco-Barangay/internal/models"
	"github.com/centmarde/Eco-Barangay/internal/realtime"
	"github.com/centmarde/Eco-Barangay/internal/repository"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// Mock repositories

type MockCollectionStore struct {
	mock.Mock
}

func (m *MockCollectionStore) Insert(ctx context.Context, c *models.Collection) error {
	args := m.Called(ctx, c)
	if c != nil && c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
		c.Version = 1
	}
	return args.Error(0)
}

func (m *MockCollectionStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Collection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Collection), args.Error(1)
}

func (m *MockCollectionStore) FindAll(ctx context.Context) ([]models.Collection, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Collection), args.Error(1)
}

func (m *MockCollectionStore) FindByRequester(ctx context.Context, userID primitive.ObjectID) ([]models.Collection, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Collection), args.Error(1)
}

func (m *MockCollectionStore) FindByCollector(ctx context.Context, userID primitive.ObjectID) ([]models.Collection, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Collection), args.Error(1)
}

func (m *MockCollectionStore) FindByStatus(ctx context.Context, status models.CollectionStatus) ([]models.Collection, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Collection), args.Error(1)
}

func (m *MockCollectionStore) FindByGarbageType(ctx context.Context, garbageType string) ([]models.Collection, error) {
	args := m.Called(ctx, garbageType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Collection), args.Error(1)
}

func (m *MockCollectionStore) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Collection, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Collection), args.Error(1)
}

func (m *MockCollectionStore) SearchByAddress(ctx context.Context, term string) ([]models.Collection, error) {
	args := m.Called(ctx, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Collection), args.Error(1)
}

func (m *MockCollectionStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.CollectionStatus) (*models.Collection, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Collection), args.Error(1)
}

func (m *MockCollectionStore) SetCollector(ctx context.Context, id, collectorID primitive.ObjectID) (*models.Collection, error) {
	args := m.Called(ctx, id, collectorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Collection), args.Error(1)
}

func (m *MockCollectionStore) Update(ctx context.Context, id primitive.ObjectID, update repository.CollectionUpdate) (*models.Collection, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Collection), args.Error(1)
}

func (m *MockCollectionStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCollectionStore) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCollectionStore) CountByStatus(ctx context.Context, status models.CollectionStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCollectionStore) StatsByCollector(ctx context.Context, collectorID primitive.ObjectID) (*models.CollectionStats, error) {
	args := m.Called(ctx, collectorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CollectionStats), args.Error(1)
}

type MockPurokStore struct {
	mock.Mock
}

func (m *MockPurokStore) Insert(ctx context.Context, p *models.Purok) error {
	args := m.Called(ctx, p)
	if p != nil && p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
		p.Version = 1
	}
	return args.Error(0)
}

func (m *MockPurokStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Purok, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Purok), args.Error(1)
}

func (m *MockPurokStore) FindAll(ctx context.Context) ([]models.Purok, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Purok), args.Error(1)
}

func (m *MockPurokStore) FindByCollection(ctx context.Context, collectionID primitive.ObjectID) (*models.Purok, error) {
	args := m.Called(ctx, collectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Purok), args.Error(1)
}

func (m *MockPurokStore) Link(ctx context.Context, purokID, collectionID primitive.ObjectID) (*models.Purok, error) {
	args := m.Called(ctx, purokID, collectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Purok), args.Error(1)
}

func (m *MockPurokStore) SetStatus(ctx context.Context, purokID primitive.ObjectID, status models.PurokStatus, notes *string) (*models.Purok, error) {
	args := m.Called(ctx, purokID, status, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Purok), args.Error(1)
}

func (m *MockPurokStore) ReleaseByCollection(ctx context.Context, collectionID primitive.ObjectID, status models.PurokStatus, stampSurvey bool) (*models.Purok, error) {
	args := m.Called(ctx, collectionID, status, stampSurvey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Purok), args.Error(1)
}

func (m *MockPurokStore) UpdateDetails(ctx context.Context, purokID primitive.ObjectID, name, notes *string) (*models.Purok, error) {
	args := m.Called(ctx, purokID, name, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Purok), args.Error(1)
}

func (m *MockPurokStore) Delete(ctx context.Context, purokID primitive.ObjectID) error {
	args := m.Called(ctx, purokID)
	return args.Error(0)
}

type MockFeedbackCascade struct {
	mock.Mock
}

func (m *MockFeedbackCascade) DeleteByCollection(ctx context.Context, collectionID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, collectionID)
	return args.Get(0).(int64), args.Error(1)
}

// MockNotifier records every fan-out intent.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Enqueue(ctx context.Context, recipients []primitive.ObjectID, title, message, severity string) {
	m.Called(ctx, recipients, title, message, severity)
}

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) Resolve(ctx context.Context, id primitive.ObjectID) (*models.DirectoryEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DirectoryEntry), args.Error(1)
}

func (m *MockDirectory) ResolveMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.DirectoryEntry, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[primitive.ObjectID]models.DirectoryEntry), args.Error(1)
}

func (m *MockDirectory) ListByRole(ctx context.Context, role models.UserRole) ([]models.DirectoryEntry, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DirectoryEntry), args.Error(1)
}

// FakePublisher collects published change events.
type FakePublisher struct {
	Events []realtime.ChangeEvent
}

func (p *FakePublisher) Publish(event realtime.ChangeEvent) {
	p.Events = append(p.Events, event)
}

func (p *FakePublisher) EventsFor(table string) []realtime.ChangeEvent {
	var out []realtime.ChangeEvent
	for _, event := range p.Events {
		if event.Table == table {
			out = append(out, event)
		}
	}
	return out
}

type MockNotificationStore struct {
	mock.Mock
}

func (m *MockNotificationStore) EnqueueOutbox(ctx context.Context, entry *models.OutboxEntry) error {
	args := m.Called(ctx, entry)
	if entry != nil && entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockNotificationStore) FetchDueOutbox(ctx context.Context, now time.Time, limit int64) ([]models.OutboxEntry, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.OutboxEntry), args.Error(1)
}

func (m *MockNotificationStore) MarkOutboxSent(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockNotificationStore) MarkOutboxRetry(ctx context.Context, id primitive.ObjectID, attempts int, nextAttempt time.Time, lastErr string) error {
	args := m.Called(ctx, id, attempts, nextAttempt, lastErr)
	return args.Error(0)
}

func (m *MockNotificationStore) MarkOutboxFailed(ctx context.Context, id primitive.ObjectID, attempts int, lastErr string) error {
	args := m.Called(ctx, id, attempts, lastErr)
	return args.Error(0)
}

func (m *MockNotificationStore) InsertNotification(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	if n != nil && n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockNotificationStore) InsertUserNotifications(ctx context.Context, rows []models.UserNotification) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockNotificationStore) ListByUser(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, page, limit int64) ([]models.UserNotificationView, int64, error) {
	args := m.Called(ctx, userID, unreadOnly, page, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.UserNotificationView), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationStore) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationStore) MarkAsRead(ctx context.Context, id, userID primitive.ObjectID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockNotificationStore) MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationStore) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockNotificationStore) ClearAll(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockAccountStore struct {
	mock.Mock
}

func (m *MockAccountStore) Insert(ctx context.Context, u *models.User) error {
	args := m.Called(ctx, u)
	if u != nil && u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockAccountStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAccountStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAccountStore) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockAccountStore) TouchLastLogin(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockAdminUserStore struct {
	mock.Mock
}

func (m *MockAdminUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAdminUserStore) List(ctx context.Context, role models.UserRole, page, limit int64) ([]models.User, int64, error) {
	args := m.Called(ctx, role, page, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockAdminUserStore) UpdateRole(ctx context.Context, id primitive.ObjectID, role models.UserRole) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

func (m *MockAdminUserStore) SetBlocked(ctx context.Context, id primitive.ObjectID, blocked bool) error {
	args := m.Called(ctx, id, blocked)
	return args.Error(0)
}

func (m *MockAdminUserStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
