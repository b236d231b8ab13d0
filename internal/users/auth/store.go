// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

package auth

import (
	"context"
	"time"

	"github.com/ducpham/taskora/pkg/pagination"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByUsername returns the account with the given username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures (Conflict on duplicate email/username)
	*/
	Create(context context.Context, user *User) error
}

// # Session Data Access

// SessionFilter narrows a session listing. Zero values mean "no filter".
type SessionFilter struct {
	UserID          string
	DeviceName      string
	DeviceOS        string
	IPAddress       string
	Search          string
	DateFrom        *time.Time
	DateTo          *time.Time
	IncludeInactive bool
}

// SessionRepository defines the data access contract for refresh-token sessions.
type SessionRepository interface {

	/*
		Create persists a new tracking session for an authenticated login.

		Parameters:
		  - context: context.Context
		  - session: *Session

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, session *Session) error

	/*
		FindByID returns the session with the given ID, active or not.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Session: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*Session, error)

	/*
		RotateTokenHash atomically replaces the refresh-token hash on a session.

		The update is conditional on the current hash still matching oldHash
		(compare-and-swap). When two refresh calls race on the same session,
		exactly one wins; the loser observes zero affected rows and receives
		an error.

		Parameters:
		  - context: context.Context
		  - sessionID: string
		  - oldHash: string (hash the caller verified against)
		  - newHash: string (replacement hash)
		  - newExpiry: time.Time (extended refresh-token deadline)

		Returns:
		  - error: dberr.ErrNotFound when the CAS condition fails, or persistence failures
	*/
	RotateTokenHash(context context.Context, sessionID, oldHash, newHash string, newExpiry time.Time) error

	/*
		Deactivate marks a specific session as logged out.

		Parameters:
		  - context: context.Context
		  - sessionID: string

		Returns:
		  - error: Persistence failures
	*/
	Deactivate(context context.Context, sessionID string) error

	/*
		DeactivateAll marks every session belonging to the userID as logged out.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - int: Number of sessions deactivated
		  - error: Persistence failures
	*/
	DeactivateAll(context context.Context, userID string) (int, error)

	/*
		TouchLastUsed updates the session's last_used_at timestamp.

		Best-effort: callers may ignore the error.

		Parameters:
		  - context: context.Context
		  - sessionID: string

		Returns:
		  - error: Persistence failures
	*/
	TouchLastUsed(context context.Context, sessionID string) error

	/*
		ListByUser returns every session belonging to the userID, newest first.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - []Session: Hydrated entities
		  - error: Database retrieval failures
	*/
	ListByUser(context context.Context, userID string) ([]Session, error)

	/*
		ListFiltered returns a filtered, paginated page of sessions.

		Parameters:
		  - context: context.Context
		  - filter: SessionFilter
		  - params: pagination.Params

		Returns:
		  - []Session: The requested page, newest first
		  - int: Total row count matching the filter
		  - error: Database retrieval failures
	*/
	ListFiltered(context context.Context, filter SessionFilter, params pagination.Params) ([]Session, int, error)
}
