// internal/repository/errors.go
package repository

import "errors"

var (
	// ErrNotFound is returned when a requested row is absent. Handlers map
	// it to a 404 / null-result response rather than a 500.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyLinked is returned when a purok already carries a live
	// collection link. At most one active collection may be linked to a
	// purok at a time.
	ErrAlreadyLinked = errors.New("purok already linked to an active collection")

	// ErrDuplicate is returned on unique-key violations (user email,
	// purok name).
	ErrDuplicate = errors.New("duplicate key")
)
