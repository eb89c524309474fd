// internal/models/collection_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitionsRunForwardOnly(t *testing.T) {
	cases := []struct {
		from    CollectionStatus
		to      CollectionStatus
		allowed bool
	}{
		{StatusPending, StatusInProgress, true},
		{StatusPending, StatusCompleted, true},
		{StatusPending, StatusCancelled, true},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusCancelled, true},
		{StatusInProgress, StatusPending, false},
		{StatusCompleted, StatusPending, false},
		{StatusCompleted, StatusInProgress, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusCompleted, false},
	}

	for _, tc := range cases {
		assert.Equalf(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestTerminalStates(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusInProgress.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
}

func TestGarbageTypeCatalog(t *testing.T) {
	for _, gt := range GarbageTypes {
		assert.True(t, IsValidGarbageType(gt))
	}
	assert.False(t, IsValidGarbageType("Plutonium"))
	assert.False(t, IsValidGarbageType(""))
}

func TestPurokStatusClearsLink(t *testing.T) {
	assert.True(t, PurokStatusClean.ClearsLink())
	assert.True(t, PurokStatusNeedsPickup.ClearsLink())
	assert.False(t, PurokStatusPending.ClearsLink())
	assert.False(t, PurokStatusPickupScheduled.ClearsLink())
}

func TestRoleLadder(t *testing.T) {
	assert.True(t, RoleAdmin.IsHigherOrEqual(RoleResident))
	assert.True(t, RoleOfficial.IsHigherOrEqual(RoleCollector))
	assert.True(t, RoleCollector.IsHigherOrEqual(RoleCollector))
	assert.False(t, RoleResident.IsHigherOrEqual(RoleCollector))
	assert.False(t, RoleCollector.IsHigherOrEqual(RoleAdmin))
}

func TestStaffRoles(t *testing.T) {
	assert.False(t, RoleResident.IsStaff())
	assert.False(t, RoleCollector.IsStaff())
	assert.True(t, RoleOfficial.IsStaff())
	assert.True(t, RoleAdmin.IsStaff())
}

func TestGetFullNameFallsBackToEmail(t *testing.T) {
	u := User{FirstName: "Maria", LastName: "Santos", Email: "maria@example.com"}
	assert.Equal(t, "Maria Santos", u.GetFullName())

	anon := User{Email: "anon@example.com"}
	assert.Equal(t, "anon", anon.GetFullName())
}
