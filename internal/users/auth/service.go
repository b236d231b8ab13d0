// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/ducpham/taskora/internal/platform/apperr"
	"github.com/ducpham/taskora/internal/platform/authz"
	"github.com/ducpham/taskora/internal/platform/metrics"
	"github.com/ducpham/taskora/internal/platform/sec"
	"github.com/ducpham/taskora/internal/platform/validate"
	"github.com/ducpham/taskora/pkg/pagination"
	"github.com/ducpham/taskora/pkg/uuid"
)

// # Contracts & Types

// TokenIssuer defines the contract for minting and decoding access tokens.
type TokenIssuer interface {
	// Generate creates a signed access token bound to a user and session.
	Generate(userID, sessionID string) (string, error)

	// Decode verifies the token signature and returns its claims.
	// Expiry is NOT validated; session liveness is the revocation mechanism.
	Decode(tokenString string) (*sec.AccessClaims, error)
}

// Service implements authentication and session management use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, rotation,
// or login logic must be reviewed by the security team.
type Service struct {
	userRepository    UserRepository
	sessionRepository SessionRepository
	passwordHasher    *sec.PasswordHasher
	tokenIssuer       TokenIssuer
	refreshTokenTTL   time.Duration
	recorder          metrics.Recorder
}

// NewService constructs an auth [Service] with its dependencies.
func NewService(
	userRepo UserRepository,
	sessionRepo SessionRepository,
	hasher *sec.PasswordHasher,
	issuer TokenIssuer,
	refreshTTL time.Duration,
	recorder metrics.Recorder,
) *Service {
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &Service{
		userRepository:    userRepo,
		sessionRepository: sessionRepo,
		passwordHasher:    hasher,
		tokenIssuer:       issuer,
		refreshTokenTTL:   refreshTTL,
		recorder:          recorder,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Email    string
	Username string
	FullName string
	Password string
}

/*
Register validates, hashes, and persists a brand new user account.

Self-registration always produces a developer account; elevated roles are
granted only by an admin through the user-management surface. Registration
does NOT log the user in — the client must call Login afterwards.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - error: Validation, Conflict (if identity exists), or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {

	// Validate the payload before touching storage.
	v := &validate.Validator{}
	v.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)
	v.Required(FieldUsername, input.Username).MinLen(FieldUsername, input.Username, 3).MaxLen(FieldUsername, input.Username, 50)
	if input.Username != "" {
		v.Username(FieldUsername, input.Username)
	}
	v.Required(FieldFullName, input.FullName).MaxLen(FieldFullName, input.FullName, 120)
	v.Required(FieldPassword, input.Password).MinLen(FieldPassword, input.Password, 8).MaxLen(FieldPassword, input.Password, 72)
	if err := v.Err(); err != nil {
		return nil, err
	}

	// Verify email uniqueness. Return a client-safe Conflict error.
	if _, err := service.userRepository.FindByEmail(context, input.Email); err == nil {
		return nil, apperr.Conflict("Email already registered")
	}

	// Verify username uniqueness. Return a client-safe Conflict error.
	if _, err := service.userRepository.FindByUsername(context, input.Username); err == nil {
		return nil, apperr.Conflict("Username already taken")
	}

	// Prevent storing plain-text passwords.
	hashedPassword, err := service.passwordHasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuid.New(),
		Email:        input.Email,
		Username:     input.Username,
		FullName:     input.FullName,
		PasswordHash: hashedPassword,
		Role:         sec.RoleDeveloper,
		IsActive:     true,
	}

	// Persist the user to the database. A unique-index race still surfaces
	// as Conflict through the storage layer.
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
	Device   DeviceInfo
}

/*
Login validates user credentials and opens a new device session.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *TokenPair: Access token, refresh token, and the new session ID
  - error: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*TokenPair, error) {

	// Look up the account. Generic message to prevent enumeration.
	user, err := service.userRepository.FindByEmail(context, input.Email)
	if err != nil {
		service.recorder.RecordLogin(false)
		return nil, apperr.Unauthorized("Invalid email or password")
	}

	// Verify password hash. bcrypt performs the comparison in constant time.
	if !service.passwordHasher.Verify(input.Password, user.PasswordHash) {
		service.recorder.RecordLogin(false)
		return nil, apperr.Unauthorized("Invalid email or password")
	}

	// Deactivated accounts keep their credentials but cannot sign in.
	if !user.IsActive {
		service.recorder.RecordLogin(false)
		return nil, apperr.Unauthorized("Account is deactivated")
	}

	// Generate the long-lived refresh token. Only its hash is stored.
	refreshToken, err := sec.GenerateOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	// Create and persist the tracking session.
	now := time.Now().UTC()
	session := &Session{
		ID:                    uuid.New(),
		UserID:                user.ID,
		RefreshTokenHash:      sec.HashToken(refreshToken),
		DeviceName:            input.Device.DeviceName,
		DeviceOS:              input.Device.DeviceOS,
		UserAgent:             input.Device.UserAgent,
		IPAddress:             input.Device.IPAddress,
		IsActive:              true,
		RefreshTokenExpiresAt: now.Add(service.refreshTokenTTL),
		CreatedAt:             now,
		LastUsedAt:            now,
	}

	if err := service.sessionRepository.Create(context, session); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	// Mint the access token bound to both the user and the session.
	accessToken, err := service.tokenIssuer.Generate(user.ID, session.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	service.recorder.RecordLogin(true)

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		SessionID:    session.ID,
		TokenType:    TokenTypeBearer,
	}, nil
}

// # Refresh Rotation

/*
Refresh implements in-place refresh-token rotation.

The client presents the session ID alongside the refresh token. On success
the SAME session row receives a new token hash and an extended expiry, so
the session ID remains stable across rotations. The swap is a storage-level
compare-and-swap on the previous hash: when two refresh calls race, exactly
one wins and the other is rejected as an invalid token.

Parameters:
  - context: context.Context
  - sessionID: string
  - refreshToken: string

Returns:
  - *TokenPair: Fresh access and refresh tokens for the same session
  - error: Unauthorized when the session or token is invalid
*/
func (service *Service) Refresh(context context.Context, sessionID, refreshToken string) (*TokenPair, error) {
	invalid := apperr.Unauthorized("Invalid or expired refresh token")

	// 1. Load and validate the session.
	session, err := service.sessionRepository.FindByID(context, sessionID)
	if err != nil {
		service.recorder.RecordTokenRefresh(false)
		return nil, invalid
	}
	if !session.IsActive || time.Now().After(session.RefreshTokenExpiresAt) {
		service.recorder.RecordTokenRefresh(false)
		return nil, invalid
	}

	// 2. Verify the presented token against the stored hash (constant time).
	if !sec.CompareTokenHash(refreshToken, session.RefreshTokenHash) {
		service.recorder.RecordTokenRefresh(false)
		return nil, invalid
	}

	// 3. Rotate: swap the hash in place, conditional on the old hash.
	newRefreshToken, err := sec.GenerateOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("auth_service_rotate_token_failed: %w", err)
	}

	newExpiry := time.Now().UTC().Add(service.refreshTokenTTL)
	err = service.sessionRepository.RotateTokenHash(
		context, session.ID, session.RefreshTokenHash, sec.HashToken(newRefreshToken), newExpiry,
	)
	if err != nil {
		// Lost the rotation race, or the session vanished. Either way the
		// presented token is no longer the current one.
		service.recorder.RecordTokenRefresh(false)
		return nil, invalid
	}

	// 4. Issue a fresh access token for the surviving session.
	accessToken, err := service.tokenIssuer.Generate(session.UserID, session.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_access_token_failed: %w", err)
	}

	service.recorder.RecordTokenRefresh(true)

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		SessionID:    session.ID,
		TokenType:    TokenTypeBearer,
	}, nil
}

// # Session Management

/*
Logout deactivates one of the requester's sessions.

A user may only revoke sessions they own; attempting to log out someone
else's session is Forbidden. Logging out an already inactive session is a
no-op success (idempotent).

Parameters:
  - context: context.Context
  - requesterID: string (authenticated user)
  - sessionID: string (session to revoke)

Returns:
  - error: NotFound, Forbidden, or persistence failures
*/
func (service *Service) Logout(context context.Context, requesterID, sessionID string) error {
	session, err := service.sessionRepository.FindByID(context, sessionID)
	if err != nil {
		return apperr.NotFound("Session")
	}

	if err := authz.CanRevokeSession(requesterID, session.UserID); err != nil {
		return err
	}

	if err := service.sessionRepository.Deactivate(context, session.ID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	service.recorder.RecordSessionRevoked(1)
	return nil
}

/*
LogoutAll deactivates every session belonging to the requester.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - int: Number of sessions deactivated
  - error: Persistence failures
*/
func (service *Service) LogoutAll(context context.Context, userID string) (int, error) {
	count, err := service.sessionRepository.DeactivateAll(context, userID)
	if err != nil {
		return 0, fmt.Errorf("auth_service_logout_all_failed: %w", err)
	}

	service.recorder.RecordSessionRevoked(count)
	return count, nil
}

/*
ListUserSessions returns every session of the given user, newest first.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []Session: All sessions including inactive ones
  - error: Retrieval failures
*/
func (service *Service) ListUserSessions(context context.Context, userID string) ([]Session, error) {
	sessions, err := service.sessionRepository.ListByUser(context, userID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_list_sessions_failed: %w", err)
	}
	return sessions, nil
}

/*
ListSessions returns a filtered, paginated page of the requester's sessions.

This is the device monitoring surface: it supports narrowing by device,
IP fragment, free-text search, and creation date range. The scope is always
the requester's own sessions — no role widens it, so the filter's UserID is
overwritten here rather than trusted from the caller.

Parameters:
  - context: context.Context
  - requesterID: string (the authenticated user whose sessions are listed)
  - filter: SessionFilter
  - params: pagination.Params

Returns:
  - []Session: The requested page, newest first
  - pagination.Meta: Total counts for the filter
  - error: Retrieval failures
*/
func (service *Service) ListSessions(context context.Context, requesterID string, filter SessionFilter, params pagination.Params) ([]Session, pagination.Meta, error) {
	filter.UserID = requesterID

	sessions, total, err := service.sessionRepository.ListFiltered(context, filter, params)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("auth_service_list_all_sessions_failed: %w", err)
	}
	return sessions, pagination.NewMeta(params.Page, params.Limit, total), nil
}

/*
Me returns the profile of the authenticated user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *User: Hydrated entity
  - error: Retrieval failures
*/
func (service *Service) Me(context context.Context, userID string) (*User, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// # Request Authentication

/*
ResolveAccessToken turns a bearer token into a live [sec.Identity].

This is the per-request verification path behind the Authenticate
middleware. The token's signature is checked but its expiry is not:
instead, the session named in the claims must still be active and the
account must still exist and be enabled. Revoking a session therefore
kills its access tokens immediately, without waiting for any clock.

Parameters:
  - context: context.Context
  - token: string (compact JWS from the Authorization header)

Returns:
  - *sec.Identity: The authenticated principal
  - error: apperr.Unauthorized for every failure mode
*/
func (service *Service) ResolveAccessToken(context context.Context, token string) (*sec.Identity, error) {
	claims, err := service.tokenIssuer.Decode(token)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid token")
	}

	// The session must still be alive.
	session, err := service.sessionRepository.FindByID(context, claims.SessionID)
	if err != nil || !session.IsActive {
		return nil, apperr.Unauthorized("Session is inactive")
	}

	// The account must still exist and be enabled.
	user, err := service.userRepository.FindByID(context, claims.UserID)
	if err != nil || !user.IsActive {
		return nil, apperr.Unauthorized("User not found or deactivated")
	}

	// Record session activity. Best-effort only.
	_ = service.sessionRepository.TouchLastUsed(context, session.ID)

	return &sec.Identity{
		UserID:    user.ID,
		SessionID: session.ID,
		Email:     user.Email,
		Username:  user.Username,
		FullName:  user.FullName,
		Role:      user.Role,
	}, nil
}

