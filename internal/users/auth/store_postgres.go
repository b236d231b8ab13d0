// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

// PostgreSQL implementations of the auth storage contracts.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types to avoid leaking storage implementation details.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ducpham/taskora/internal/platform/apperr"
	"github.com/ducpham/taskora/internal/platform/dberr"
	"github.com/ducpham/taskora/pkg/pagination"
)

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = `id, email, username, full_name, password_hash, role, is_active, created_at, updated_at`

// scanUser hydrates a User from a pgx row.
func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.FullName,
		&user.PasswordHash,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

/*
Create persists a new user record into the users table.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: Conflict on duplicate email/username, or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users (
			id, email, username, full_name, password_hash, role, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Email,
		user.Username,
		user.FullName,
		user.PasswordHash,
		user.Role,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "user_create")
	}

	return nil
}

/*
FindByID retrieves a user record by primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

/*
FindByEmail retrieves a user record by their unique email address.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

	user, err := scanUser(repository.pool.QueryRow(context, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err)
	}

	return user, nil
}

/*
FindByUsername retrieves a user record by their unique username.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(repository.pool.QueryRow(context, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_username_failed: %w", err)
	}

	return user, nil
}

// # Session Repository

// PostgresSessionRepository implements the SessionRepository interface using pgx.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new PostgreSQL implementation of the SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

const sessionColumns = `id, user_id, refresh_token_hash, device_name, device_os, user_agent,
	ip_address, is_active, refresh_token_expires_at, created_at, last_used_at`

// scanSession hydrates a Session from a pgx row.
func scanSession(row pgx.Row) (*Session, error) {
	session := &Session{}
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.RefreshTokenHash,
		&session.DeviceName,
		&session.DeviceOS,
		&session.UserAgent,
		&session.IPAddress,
		&session.IsActive,
		&session.RefreshTokenExpiresAt,
		&session.CreatedAt,
		&session.LastUsedAt,
	)
	if err != nil {
		return nil, err
	}
	return session, nil
}

/*
Create persists a new tracking session for an authenticated login.

Parameters:
  - context: context.Context
  - session: *Session

Returns:
  - error: Persistence failures
*/
func (repository *PostgresSessionRepository) Create(context context.Context, session *Session) error {
	const query = `
		INSERT INTO sessions (
			id, user_id, refresh_token_hash, device_name, device_os, user_agent,
			ip_address, is_active, refresh_token_expires_at, created_at, last_used_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := repository.pool.Exec(context, query,
		session.ID,
		session.UserID,
		session.RefreshTokenHash,
		session.DeviceName,
		session.DeviceOS,
		session.UserAgent,
		session.IPAddress,
		session.IsActive,
		session.RefreshTokenExpiresAt,
		session.CreatedAt,
		session.LastUsedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "session_create")
	}

	return nil
}

/*
FindByID retrieves a session by primary key, active or not.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Session: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresSessionRepository) FindByID(context context.Context, id string) (*Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`

	session, err := scanSession(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Session")
		}
		return nil, fmt.Errorf("postgres_session_repo_find_by_id_failed: %w", err)
	}

	return session, nil
}

/*
RotateTokenHash atomically replaces the refresh-token hash on a session.

The UPDATE is conditional on the stored hash still matching oldHash and on
the session being active. Zero affected rows means the caller lost a
rotation race and is reported as NotFound so the service maps it to an
invalid-token error.

Parameters:
  - context: context.Context
  - sessionID: string
  - oldHash: string
  - newHash: string
  - newExpiry: time.Time

Returns:
  - error: dberr.ErrNotFound when the CAS condition fails, or persistence failures
*/
func (repository *PostgresSessionRepository) RotateTokenHash(context context.Context, sessionID, oldHash, newHash string, newExpiry time.Time) error {
	const query = `
		UPDATE sessions
		SET refresh_token_hash = $3,
		    refresh_token_expires_at = $4,
		    last_used_at = now(),
		    is_active = TRUE
		WHERE id = $1 AND refresh_token_hash = $2 AND is_active = TRUE`

	tag, err := repository.pool.Exec(context, query, sessionID, oldHash, newHash, newExpiry)
	if err != nil {
		return dberr.Wrap(err, "session_rotate")
	}

	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

/*
Deactivate marks a specific session as logged out.

Parameters:
  - context: context.Context
  - sessionID: string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresSessionRepository) Deactivate(context context.Context, sessionID string) error {
	const query = `UPDATE sessions SET is_active = FALSE WHERE id = $1`

	if _, err := repository.pool.Exec(context, query, sessionID); err != nil {
		return dberr.Wrap(err, "session_deactivate")
	}

	return nil
}

/*
DeactivateAll marks every session of the user as logged out.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - int: Number of sessions deactivated
  - error: Persistence failures
*/
func (repository *PostgresSessionRepository) DeactivateAll(context context.Context, userID string) (int, error) {
	const query = `UPDATE sessions SET is_active = FALSE WHERE user_id = $1 AND is_active = TRUE`

	tag, err := repository.pool.Exec(context, query, userID)
	if err != nil {
		return 0, dberr.Wrap(err, "session_deactivate_all")
	}

	return int(tag.RowsAffected()), nil
}

// TouchLastUsed updates the session's last_used_at timestamp.
func (repository *PostgresSessionRepository) TouchLastUsed(context context.Context, sessionID string) error {
	const query = `UPDATE sessions SET last_used_at = now() WHERE id = $1`

	if _, err := repository.pool.Exec(context, query, sessionID); err != nil {
		return dberr.Wrap(err, "session_touch")
	}

	return nil
}

/*
ListByUser returns every session belonging to the user, newest first.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []Session: Hydrated entities
  - error: Database retrieval failures
*/
func (repository *PostgresSessionRepository) ListByUser(context context.Context, userID string) ([]Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres_session_repo_list_by_user_failed: %w", err)
	}
	defer rows.Close()

	sessions := make([]Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_session_repo_scan_failed: %w", err)
		}
		sessions = append(sessions, *session)
	}

	return sessions, rows.Err()
}

/*
ListFiltered returns a filtered, paginated page of sessions.

The WHERE clause is assembled dynamically from the non-zero filter fields
using positional parameters only; no user input is ever interpolated into
the SQL text.

Parameters:
  - context: context.Context
  - filter: SessionFilter
  - params: pagination.Params

Returns:
  - []Session: The requested page, newest first
  - int: Total row count matching the filter
  - error: Database retrieval failures
*/
func (repository *PostgresSessionRepository) ListFiltered(context context.Context, filter SessionFilter, params pagination.Params) ([]Session, int, error) {
	conditions := make([]string, 0, 8)
	args := make([]any, 0, 8)

	addCondition := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.UserID != "" {
		addCondition("user_id = $%d", filter.UserID)
	}
	if filter.DeviceName != "" {
		addCondition("device_name ILIKE $%d", "%"+filter.DeviceName+"%")
	}
	if filter.DeviceOS != "" {
		addCondition("device_os ILIKE $%d", "%"+filter.DeviceOS+"%")
	}
	if filter.IPAddress != "" {
		addCondition("ip_address ILIKE $%d", "%"+filter.IPAddress+"%")
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(lower(device_name) LIKE $%d OR lower(device_os) LIKE $%d OR lower(user_agent) LIKE $%d OR lower(ip_address) LIKE $%d)",
			n, n, n, n,
		))
	}
	if filter.DateFrom != nil {
		addCondition("created_at >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		addCondition("created_at <= $%d", *filter.DateTo)
	}
	if !filter.IncludeInactive {
		conditions = append(conditions, "is_active = TRUE")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	// 1. Count matching rows
	var total int
	countQuery := `SELECT count(*) FROM sessions` + whereClause
	if err := repository.pool.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_session_repo_count_failed: %w", err)
	}

	// 2. Fetch the requested page
	pageQuery := fmt.Sprintf(
		`SELECT %s FROM sessions%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		sessionColumns, whereClause, len(args)+1, len(args)+2,
	)
	args = append(args, params.Limit, params.Offset())

	rows, err := repository.pool.Query(context, pageQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_session_repo_list_failed: %w", err)
	}
	defer rows.Close()

	sessions := make([]Session, 0, params.Limit)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_session_repo_scan_failed: %w", err)
		}
		sessions = append(sessions, *session)
	}

	return sessions, total, rows.Err()
}
