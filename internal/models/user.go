// internal/models/user.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account in the local identity store.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email        string             `bson:"email" json:"email" validate:"required,email"`
	PasswordHash string             `bson:"password_hash" json:"-"`

	FirstName string   `bson:"first_name" json:"first_name" validate:"required,min=2,max=50"`
	LastName  string   `bson:"last_name" json:"last_name" validate:"required,min=2,max=50"`
	Role      UserRole `bson:"role" json:"role"`
	Purok     string   `bson:"purok,omitempty" json:"purok,omitempty"`
	IsBlocked bool     `bson:"is_blocked" json:"is_blocked"`

	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
	LastLoginAt *time.Time `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
}

// GetFullName returns the display name, falling back to the email local
// part when the name fields are empty.
func (u *User) GetFullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	if at := strings.Index(u.Email, "@"); at > 0 {
		return u.Email[:at]
	}
	return "User"
}

// DirectoryEntry is the read-only projection handed out by directory
// lookups: just enough to render a requester or collector in a list.
type DirectoryEntry struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Email       string             `bson:"email" json:"email"`
	DisplayName string             `json:"display_name"`
	Role        UserRole           `bson:"role" json:"role"`
}
