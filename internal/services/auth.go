// internal/services/auth.go
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/centmarde/Eco-Barangay/internal/models"
	"github.com/centmarde/Eco-Barangay/internal/repository"
	"github.com/centmarde/Eco-Barangay/pkg/auth"
)

// AccountStore is the slice of the user repository auth needs.
type AccountStore interface {
	Insert(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
	TouchLastLogin(ctx context.Context, id primitive.ObjectID) error
}

// AuthService registers accounts and issues JWT access tokens.
type AuthService struct {
	store AccountStore
	jwt   *auth.JWTManager
	log   *logrus.Logger
}

func NewAuthService(store AccountStore, jwt *auth.JWTManager, log *logrus.Logger) *AuthService {
	return &AuthService{store: store, jwt: jwt, log: log}
}

// RegisterInput carries the signup fields.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Purok     string
}

// Register creates a resident account and returns a signed token.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Role:         models.RoleResident,
		Purok:        strings.TrimSpace(input.Purok),
	}
	if err := s.store.Insert(ctx, user); err != nil {
		return nil, "", err
	}
	s.log.WithField("email", email).Info("Account registered")

	token, err := s.jwt.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies credentials and returns the account with a fresh token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if user.IsBlocked {
		return nil, "", ErrAccountBlocked
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", err
	}

	if err := s.store.TouchLastLogin(ctx, user.ID); err != nil {
		s.log.WithError(err).WithField("email", email).Warn("Failed to record login time")
	}
	s.log.WithField("email", email).Info("User logged in")
	return user, token, nil
}

// ChangePassword replaces the user's password after verifying the old one.
func (s *AuthService) ChangePassword(ctx context.Context, userID primitive.ObjectID, oldPassword, newPassword string) error {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.store.UpdatePassword(ctx, userID, string(hash))
}

// Profile returns the account for the authenticated user.
func (s *AuthService) Profile(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	return s.store.FindByID(ctx, userID)
}
