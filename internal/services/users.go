// internal/services/users.go
package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/centmarde/Eco-Barangay/internal/models"
)

// AdminUserStore is the slice of the user repository the admin user
// management service needs.
type AdminUserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	List(ctx context.Context, role models.UserRole, page, limit int64) ([]models.User, int64, error)
	UpdateRole(ctx context.Context, id primitive.ObjectID, role models.UserRole) error
	SetBlocked(ctx context.Context, id primitive.ObjectID, blocked bool) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// UserCollectionCleanup removes a deleted account's pickup requests.
type UserCollectionCleanup interface {
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// UserService is the admin surface for account management. Role changes
// that grant or revoke staff standing are broadcast to every admin.
type UserService struct {
	store       AdminUserStore
	collections UserCollectionCleanup
	notifier    Notifier
	directory   DirectoryReader
	log         *logrus.Logger
}

func NewUserService(store AdminUserStore, collections UserCollectionCleanup, notifier Notifier, directory DirectoryReader, log *logrus.Logger) *UserService {
	return &UserService{
		store:       store,
		collections: collections,
		notifier:    notifier,
		directory:   directory,
		log:         log,
	}
}

// Get returns one account.
func (s *UserService) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.store.FindByID(ctx, id)
}

// List returns one page of accounts, optionally filtered by role.
func (s *UserService) List(ctx context.Context, role models.UserRole, page, limit int64) ([]models.User, int64, error) {
	if role != "" && !role.IsValid() {
		return nil, 0, fmt.Errorf("unknown role %q", role)
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.store.List(ctx, role, page, limit)
}

// UpdateRole changes an account's role. The affected user is always
// notified; when staff standing changes, every admin is alerted too.
func (s *UserService) UpdateRole(ctx context.Context, id primitive.ObjectID, role models.UserRole) (*models.User, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role == role {
		return user, nil
	}

	if err := s.store.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"user_id": id.Hex(),
		"from":    string(user.Role),
		"to":      string(role),
	}).Info("User role changed")

	s.notifier.Enqueue(ctx,
		[]primitive.ObjectID{id},
		"Role Updated",
		fmt.Sprintf("Your account role is now %s.", role),
		models.SeverityInfo)

	if user.Role.IsStaff() != role.IsStaff() {
		s.broadcastStaffChange(ctx, user, role)
	}

	user.Role = role
	return user, nil
}

func (s *UserService) broadcastStaffChange(ctx context.Context, user *models.User, role models.UserRole) {
	admins, err := s.directory.ListByRole(ctx, models.RoleAdmin)
	if err != nil {
		s.log.WithError(err).Error("Failed to list admins for staff change broadcast")
		return
	}
	recipients := make([]primitive.ObjectID, 0, len(admins))
	for _, admin := range admins {
		if admin.ID == user.ID {
			continue
		}
		recipients = append(recipients, admin.ID)
	}

	verb := "granted"
	if !role.IsStaff() {
		verb = "revoked"
	}
	s.notifier.Enqueue(ctx, recipients,
		"Staff Access Changed",
		fmt.Sprintf("Staff access was %s for %s (now %s).", verb, user.GetFullName(), role),
		models.SeverityWarning)
}

// SetBlocked blocks or unblocks an account. Blocked users are notified
// so the next login explains itself.
func (s *UserService) SetBlocked(ctx context.Context, id primitive.ObjectID, blocked bool) error {
	if err := s.store.SetBlocked(ctx, id, blocked); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{
		"user_id": id.Hex(),
		"blocked": blocked,
	}).Info("User block state changed")

	if !blocked {
		s.notifier.Enqueue(ctx,
			[]primitive.ObjectID{id},
			"Account Restored",
			"Your account has been unblocked.",
			models.SeveritySuccess)
	}
	return nil
}

// Delete removes an account along with its pickup requests. Request
// cleanup failures are logged, not returned: the account is already
// gone.
func (s *UserService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithField("user_id", id.Hex()).Info("User account deleted")

	if _, err := s.collections.DeleteByUser(ctx, id); err != nil {
		s.log.WithError(err).WithField("user_id", id.Hex()).Error("Failed to delete requests for removed account")
	}
	return nil
}
