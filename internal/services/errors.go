// internal/services/errors.go
package services

import "errors"

var (
	// ErrInvalidTransition is returned when a pickup request is moved
	// backwards or out of a terminal state.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidStatus is returned for status values outside the lifecycle.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidGarbageType is returned for garbage types outside the catalog.
	ErrInvalidGarbageType = errors.New("invalid garbage type")

	// ErrInvalidRating is returned for feedback ratings outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrInvalidCredentials is returned on login with a wrong email or password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountBlocked is returned on login for a blocked account.
	ErrAccountBlocked = errors.New("account is blocked")
)
