// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

package sec

import "fmt"

// # User Roles

// UserRole represents the authorization level granted to an account.
//
// The set is closed: every decision point matches on it exhaustively and
// treats anything else as denied. Roles are NOT a strict hierarchy —
// fine-grained access also depends on ownership and assignment facts,
// which live in the authz package.
type UserRole string

const (
	// Full user and system administration
	RoleAdmin UserRole = "admin"

	// Owns projects and manages the tasks inside them
	RoleManager UserRole = "manager"

	// Default role; works on tasks assigned to them
	RoleDeveloper UserRole = "developer"
)

// Roles lists every valid role, useful for validation messages.
func Roles() []string {
	return []string{string(RoleAdmin), string(RoleManager), string(RoleDeveloper)}
}

// ParseRole converts a raw string into a [UserRole].
// Unknown values are rejected rather than passed through.
func ParseRole(value string) (UserRole, error) {
	switch UserRole(value) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleManager:
		return RoleManager, nil
	case RoleDeveloper:
		return RoleDeveloper, nil
	default:
		return "", fmt.Errorf("sec: unknown role %q", value)
	}
}

// Valid reports whether the role is one of the closed set.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleDeveloper:
		return true
	default:
		return false
	}
}

// In reports whether the role is a member of the given set.
func (r UserRole) In(roles ...UserRole) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}
