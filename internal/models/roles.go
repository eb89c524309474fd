// internal/models/roles.go
package models

// UserRole identifies what a user is allowed to do in the system.
type UserRole string

const (
	RoleResident  UserRole = "RESIDENT"
	RoleCollector UserRole = "COLLECTOR"
	RoleOfficial  UserRole = "OFFICIAL"
	RoleAdmin     UserRole = "ADMIN"
)

// IsValid reports whether the role is one of the known roles.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleResident, RoleCollector, RoleOfficial, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether the role carries barangay-official or admin
// privileges. Status changes made by staff additionally fan out to all
// admin directory entries.
func (r UserRole) IsStaff() bool {
	return r == RoleOfficial || r == RoleAdmin
}

// IsHigherOrEqual compares roles on the resident < collector < official
// < admin ladder.
func (r UserRole) IsHigherOrEqual(target UserRole) bool {
	levels := map[UserRole]int{
		RoleResident:  0,
		RoleCollector: 1,
		RoleOfficial:  2,
		RoleAdmin:     3,
	}

	current, ok1 := levels[r]
	required, ok2 := levels[target]
	if !ok1 || !ok2 {
		return false
	}
	return current >= required
}

func (r UserRole) String() string {
	return string(r)
}

// AllRoles returns every assignable role.
func AllRoles() []UserRole {
	return []UserRole{RoleResident, RoleCollector, RoleOfficial, RoleAdmin}
}

// RoleFromString converts a raw string into a UserRole.
func RoleFromString(role string) (UserRole, bool) {
	r := UserRole(role)
	if r.IsValid() {
		return r, true
	}
	return "", false
}
