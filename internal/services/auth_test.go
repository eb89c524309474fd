// internal/services/auth_test.go
package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/centmarde/Eco-Barangay/internal/models"
	"github.com/centmarde/Eco-Barangay/internal/repository"
	"github.com/centmarde/Eco-Barangay/pkg/auth"
)

func newAuthFixture() (*AuthService, *MockAccountStore) {
	store := new(MockAccountStore)
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	return NewAuthService(store, jwtManager, testLogger()), store
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(hash)
}

func TestRegisterCreatesResidentWithToken(t *testing.T) {
	svc, store := newAuthFixture()

	store.On("Insert", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.Email == "maria@example.com" &&
			u.Role == models.RoleResident &&
			u.PasswordHash != "" &&
			u.PasswordHash != "s3cretpass"
	})).Return(nil)

	user, token, err := svc.Register(context.Background(), RegisterInput{
		Email:     "  Maria@Example.com ",
		Password:  "s3cretpass",
		FirstName: "Maria",
		LastName:  "Santos",
		Purok:     "Purok 3",
	})
	assert.NoError(t, err)
	assert.Equal(t, "maria@example.com", user.Email)
	assert.NotEmpty(t, token)
	store.AssertExpectations(t)
}

func TestLoginHappyPath(t *testing.T) {
	svc, store := newAuthFixture()
	user := &models.User{
		ID:           primitive.NewObjectID(),
		Email:        "juan@example.com",
		PasswordHash: hashOf(t, "correct-horse"),
		Role:         models.RoleCollector,
	}

	store.On("FindByEmail", mock.Anything, "juan@example.com").Return(user, nil)
	store.On("TouchLastLogin", mock.Anything, user.ID).Return(nil)

	got, token, err := svc.Login(context.Background(), "juan@example.com", "correct-horse")
	assert.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotEmpty(t, token)
	store.AssertExpectations(t)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, store := newAuthFixture()
	user := &models.User{
		ID:           primitive.NewObjectID(),
		Email:        "juan@example.com",
		PasswordHash: hashOf(t, "correct-horse"),
	}

	store.On("FindByEmail", mock.Anything, "juan@example.com").Return(user, nil)

	_, _, err := svc.Login(context.Background(), "juan@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	store.AssertNotCalled(t, "TouchLastLogin", mock.Anything, mock.Anything)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, store := newAuthFixture()

	store.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, repository.ErrNotFound)

	_, _, err := svc.Login(context.Background(), "ghost@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginBlockedAccount(t *testing.T) {
	svc, store := newAuthFixture()
	user := &models.User{
		ID:           primitive.NewObjectID(),
		Email:        "blocked@example.com",
		PasswordHash: hashOf(t, "correct-horse"),
		IsBlocked:    true,
	}

	store.On("FindByEmail", mock.Anything, "blocked@example.com").Return(user, nil)

	_, _, err := svc.Login(context.Background(), "blocked@example.com", "correct-horse")
	assert.ErrorIs(t, err, ErrAccountBlocked)
}

func TestChangePasswordVerifiesOldOne(t *testing.T) {
	svc, store := newAuthFixture()
	user := &models.User{
		ID:           primitive.NewObjectID(),
		PasswordHash: hashOf(t, "old-password"),
	}

	store.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	err := svc.ChangePassword(context.Background(), user.ID, "not-the-old-one", "new-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	store.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)

	store.On("UpdatePassword", mock.Anything, user.ID, mock.Anything).Return(nil)
	err = svc.ChangePassword(context.Background(), user.ID, "old-password", "new-password")
	assert.NoError(t, err)
}
