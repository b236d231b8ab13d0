// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

/*
Package account implements the admin-facing user management surface.

It owns the full account lifecycle that sits above self-registration:
provisioning users with explicit roles, profile updates, role changes,
activation toggles, and removal. The [auth.User] entity is shared with the
authentication layer; this package only adds management operations on top.
*/
package account

import (
	"context"
	"time"

	"github.com/ducpham/taskora/internal/users/auth"
	"github.com/ducpham/taskora/pkg/pagination"
)

// # Filters

// Filter narrows a user listing. Zero values mean "no filter".
type Filter struct {
	Role     string
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time
}

// # Data Access

// Repository defines the data access contract for user management.
type Repository interface {

	/*
		List returns a filtered, paginated page of users, newest first.

		Parameters:
		  - context: context.Context
		  - filter: Filter
		  - params: pagination.Params

		Returns:
		  - []auth.User: The requested page
		  - int: Total row count matching the filter
		  - error: Database retrieval failures
	*/
	List(context context.Context, filter Filter, params pagination.Params) ([]auth.User, int, error)

	/*
		FindByID returns the account with the given ID.
	*/
	FindByID(context context.Context, id string) (*auth.User, error)

	/*
		Update persists changes to mutable profile fields.
	*/
	Update(context context.Context, user *auth.User) error

	/*
		UpdateRole replaces only the user's role.
	*/
	UpdateRole(context context.Context, userID, role string) error

	/*
		SetActive toggles the account's active flag.
	*/
	SetActive(context context.Context, userID string, active bool) error

	/*
		Delete permanently removes the account. Sessions and task
		assignments are detached by the schema's FK actions.
	*/
	Delete(context context.Context, id string) error
}

// SessionRevoker is the slice of the session store the account service
// needs: deactivating an account must kill its live sessions.
type SessionRevoker interface {
	DeactivateAll(context context.Context, userID string) (int, error)
}
