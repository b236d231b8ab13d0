// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducpham/taskora/internal/platform/apperr"
	"github.com/ducpham/taskora/internal/platform/sec"
	"github.com/ducpham/taskora/pkg/pagination"
)

// # In-Memory Fakes

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*User)}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepo) Create(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*Session)}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *session
	r.sessions[session.ID] = &clone
	return nil
}

func (r *fakeSessionRepo) FindByID(_ context.Context, id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[id]; ok {
		clone := *session
		return &clone, nil
	}
	return nil, apperr.NotFound("Session")
}

// RotateTokenHash mirrors the SQL compare-and-swap: the update only lands
// when the stored hash still equals oldHash.
func (r *fakeSessionRepo) RotateTokenHash(_ context.Context, sessionID, oldHash, newHash string, newExpiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	if !ok || !session.IsActive || session.RefreshTokenHash != oldHash {
		return apperr.NotFound("Session")
	}
	session.RefreshTokenHash = newHash
	session.RefreshTokenExpiresAt = newExpiry
	session.LastUsedAt = time.Now()
	return nil
}

func (r *fakeSessionRepo) Deactivate(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[sessionID]; ok {
		session.IsActive = false
	}
	return nil
}

func (r *fakeSessionRepo) DeactivateAll(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, session := range r.sessions {
		if session.UserID == userID && session.IsActive {
			session.IsActive = false
			count++
		}
	}
	return count, nil
}

func (r *fakeSessionRepo) TouchLastUsed(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[sessionID]; ok {
		session.LastUsedAt = time.Now()
	}
	return nil
}

func (r *fakeSessionRepo) ListByUser(_ context.Context, userID string) ([]Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Session, 0)
	for _, session := range r.sessions {
		if session.UserID == userID {
			out = append(out, *session)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) ListFiltered(_ context.Context, filter SessionFilter, _ pagination.Params) ([]Session, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Session, 0)
	for _, session := range r.sessions {
		if filter.UserID != "" && session.UserID != filter.UserID {
			continue
		}
		if filter.DeviceName != "" && session.DeviceName != filter.DeviceName {
			continue
		}
		if !filter.IncludeInactive && !session.IsActive {
			continue
		}
		out = append(out, *session)
	}
	return out, len(out), nil
}

// # Test Fixture

type authFixture struct {
	service  *Service
	users    *fakeUserRepo
	sessions *fakeSessionRepo
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	issuer, err := sec.NewTokenService("test-secret", "HS256", 15*time.Minute)
	require.NoError(t, err)

	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	service := NewService(users, sessions, sec.NewPasswordHasher(4), issuer, DefaultRefreshTokenTTL, nil)

	return &authFixture{service: service, users: users, sessions: sessions}
}

func (f *authFixture) registerAndLogin(t *testing.T, email string) *TokenPair {
	t.Helper()

	_, err := f.service.Register(context.Background(), RegisterInput{
		Email:    email,
		Username: "user_" + email[:3],
		FullName: "Test User",
		Password: "password-123",
	})
	require.NoError(t, err)

	tokens, err := f.service.Login(context.Background(), LoginInput{
		Email:    email,
		Password: "password-123",
	})
	require.NoError(t, err)
	return tokens
}

// # Registration

func TestRegister_DefaultsToDeveloperRole(t *testing.T) {
	f := newAuthFixture(t)

	user, err := f.service.Register(context.Background(), RegisterInput{
		Email:    "dev@taskora.dev",
		Username: "dev_one",
		FullName: "Dev One",
		Password: "password-123",
	})

	require.NoError(t, err)
	assert.Equal(t, sec.RoleDeveloper, user.Role)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "password-123", user.PasswordHash)
}

func TestRegister_DuplicateIdentity(t *testing.T) {
	f := newAuthFixture(t)

	base := RegisterInput{
		Email:    "dev@taskora.dev",
		Username: "dev_one",
		FullName: "Dev One",
		Password: "password-123",
	}
	_, err := f.service.Register(context.Background(), base)
	require.NoError(t, err)

	// Same email, different username
	dup := base
	dup.Username = "dev_two"
	_, err = f.service.Register(context.Background(), dup)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)

	// Same username, different email
	dup = base
	dup.Email = "other@taskora.dev"
	_, err = f.service.Register(context.Background(), dup)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
}

func TestRegister_ValidationFailures(t *testing.T) {
	f := newAuthFixture(t)

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"bad_email", RegisterInput{Email: "nope", Username: "valid_name", FullName: "X", Password: "password-123"}},
		{"short_username", RegisterInput{Email: "a@b.co", Username: "ab", FullName: "X", Password: "password-123"}},
		{"short_password", RegisterInput{Email: "a@b.co", Username: "valid_name", FullName: "X", Password: "short"}},
		{"bad_username_chars", RegisterInput{Email: "a@b.co", Username: "nope!", FullName: "X", Password: "password-123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Register(context.Background(), tt.input)
			require.Error(t, err)
			assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
		})
	}
}

// # Login

func TestLogin_Success(t *testing.T) {
	f := newAuthFixture(t)
	tokens := f.registerAndLogin(t, "dev@taskora.dev")

	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.NotEmpty(t, tokens.SessionID)
	assert.Equal(t, TokenTypeBearer, tokens.TokenType)

	session, err := f.sessions.FindByID(context.Background(), tokens.SessionID)
	require.NoError(t, err)
	assert.True(t, session.IsActive)
	// Only the hash is stored, never the plaintext
	assert.Equal(t, sec.HashToken(tokens.RefreshToken), session.RefreshTokenHash)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	f.registerAndLogin(t, "dev@taskora.dev")

	_, err := f.service.Login(context.Background(), LoginInput{
		Email:    "dev@taskora.dev",
		Password: "wrong-password",
	})
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

func TestLogin_UnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.service.Login(context.Background(), LoginInput{
		Email:    "ghost@taskora.dev",
		Password: "password-123",
	})
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

func TestLogin_DeactivatedAccount(t *testing.T) {
	f := newAuthFixture(t)
	f.registerAndLogin(t, "dev@taskora.dev")

	for _, user := range f.users.users {
		user.IsActive = false
	}

	_, err := f.service.Login(context.Background(), LoginInput{
		Email:    "dev@taskora.dev",
		Password: "password-123",
	})
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

func TestLogin_EachLoginOpensNewSession(t *testing.T) {
	f := newAuthFixture(t)
	first := f.registerAndLogin(t, "dev@taskora.dev")

	second, err := f.service.Login(context.Background(), LoginInput{
		Email:    "dev@taskora.dev",
		Password: "password-123",
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.SessionID, second.SessionID)
}

// # Refresh Rotation

func TestRefresh_RotatesInPlace(t *testing.T) {
	f := newAuthFixture(t)
	tokens := f.registerAndLogin(t, "dev@taskora.dev")

	before, err := f.sessions.FindByID(context.Background(), tokens.SessionID)
	require.NoError(t, err)

	rotated, err := f.service.Refresh(context.Background(), tokens.SessionID, tokens.RefreshToken)
	require.NoError(t, err)

	// Same session, new secret
	assert.Equal(t, tokens.SessionID, rotated.SessionID)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	after, err := f.sessions.FindByID(context.Background(), tokens.SessionID)
	require.NoError(t, err)
	assert.NotEqual(t, before.RefreshTokenHash, after.RefreshTokenHash)
	assert.True(t, after.RefreshTokenExpiresAt.After(before.CreatedAt))
	assert.True(t, after.IsActive)
}

func TestRefresh_OldTokenRejectedAfterRotation(t *testing.T) {
	f := newAuthFixture(t)
	tokens := f.registerAndLogin(t, "dev@taskora.dev")

	_, err := f.service.Refresh(context.Background(), tokens.SessionID, tokens.RefreshToken)
	require.NoError(t, err)

	// Replaying the consumed token must fail
	_, err = f.service.Refresh(context.Background(), tokens.SessionID, tokens.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

func TestRefresh_WrongToken(t *testing.T) {
	f := newAuthFixture(t)
	tokens := f.registerAndLogin(t, "dev@taskora.dev")

	_, err := f.service.Refresh(context.Background(), tokens.SessionID, "forged-token")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

func TestRefresh_InactiveSession(t *testing.T) {
	f := newAuthFixture(t)
	tokens := f.registerAndLogin(t, "dev@taskora.dev")

	require.NoError(t, f.sessions.Deactivate(context.Background(), tokens.SessionID))

	_, err := f.service.Refresh(context.Background(), tokens.SessionID, tokens.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

// Expired sessions are rejected for refresh but stay on record: the row is
// never removed, it just can no longer authenticate anything.
func TestRefresh_ExpiredSessionRejectedButKept(t *testing.T) {
	f := newAuthFixture(t)
	tokens := f.registerAndLogin(t, "dev@taskora.dev")

	f.sessions.mu.Lock()
	f.sessions.sessions[tokens.SessionID].RefreshTokenExpiresAt = time.Now().Add(-time.Hour)
	f.sessions.mu.Unlock()

	_, err := f.service.Refresh(context.Background(), tokens.SessionID, tokens.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)

	session, err := f.sessions.FindByID(context.Background(), tokens.SessionID)
	require.NoError(t, err)
	assert.Equal(t, tokens.SessionID, session.ID)
}

func TestRefresh_UnknownSession(t *testing.T) {
	f := newAuthFixture(t)
	f.registerAndLogin(t, "dev@taskora.dev")

	_, err := f.service.Refresh(context.Background(), "00000000-0000-0000-0000-000000000000", "whatever")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

// Two concurrent refreshes with the same token: the compare-and-swap in
// the store guarantees exactly one winner.
func TestRefresh_ConcurrentRotationSingleWinner(t *testing.T) {
	f := newAuthFixture(t)
	tokens := f.registerAndLogin(t, "dev@taskora.dev")

	const attempts = 8
	results := make(chan error, attempts)

	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < attempts; i++ {
		go func() {
			start.Wait()
			_, err := f.service.Refresh(context.Background(), tokens.SessionID, tokens.RefreshToken)
			results <- err
		}()
	}
	start.Done()

	winners := 0
	for i := 0; i < attempts; i++ {
		if err := <-results; err == nil {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "exactly one rotation may win")
}

// # Logout

func TestLogout_OwnSession(t *testing.T) {
	f := newAuthFixture(t)
	tokens := f.registerAndLogin(t, "dev@taskora.dev")

	session, err := f.sessions.FindByID(context.Background(), tokens.SessionID)
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(context.Background(), session.UserID, tokens.SessionID))

	after, err := f.sessions.FindByID(context.Background(), tokens.SessionID)
	require.NoError(t, err)
	assert.False(t, after.IsActive)

	// Idempotent: logging out again still succeeds
	assert.NoError(t, f.service.Logout(context.Background(), session.UserID, tokens.SessionID))
}

func TestLogout_ForeignSessionForbidden(t *testing.T) {
	f := newAuthFixture(t)
	tokens := f.registerAndLogin(t, "dev@taskora.dev")

	err := f.service.Logout(context.Background(), "someone-else", tokens.SessionID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	// The session must remain untouched
	session, err := f.sessions.FindByID(context.Background(), tokens.SessionID)
	require.NoError(t, err)
	assert.True(t, session.IsActive)
}

func TestLogout_UnknownSession(t *testing.T) {
	f := newAuthFixture(t)
	tokens := f.registerAndLogin(t, "dev@taskora.dev")

	session, err := f.sessions.FindByID(context.Background(), tokens.SessionID)
	require.NoError(t, err)

	err = f.service.Logout(context.Background(), session.UserID, "00000000-0000-0000-0000-000000000000")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

func TestLogoutAll(t *testing.T) {
	f := newAuthFixture(t)
	tokens := f.registerAndLogin(t, "dev@taskora.dev")

	_, err := f.service.Login(context.Background(), LoginInput{
		Email:    "dev@taskora.dev",
		Password: "password-123",
	})
	require.NoError(t, err)

	session, err := f.sessions.FindByID(context.Background(), tokens.SessionID)
	require.NoError(t, err)

	count, err := f.service.LogoutAll(context.Background(), session.UserID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	sessions, err := f.service.ListUserSessions(context.Background(), session.UserID)
	require.NoError(t, err)
	for _, s := range sessions {
		assert.False(t, s.IsActive)
	}
}

// # Session Listing

func TestListSessions_ScopedToRequester(t *testing.T) {
	f := newAuthFixture(t)
	aliceTokens := f.registerAndLogin(t, "alice@taskora.dev")
	bobTokens := f.registerAndLogin(t, "bob@taskora.dev")

	alice, err := f.sessions.FindByID(context.Background(), aliceTokens.SessionID)
	require.NoError(t, err)
	bob, err := f.sessions.FindByID(context.Background(), bobTokens.SessionID)
	require.NoError(t, err)

	sessions, meta, err := f.service.ListSessions(
		context.Background(), alice.UserID, SessionFilter{}, pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, alice.UserID, sessions[0].UserID)
	assert.Equal(t, 1, meta.Total)

	// A caller-supplied user filter must not widen the scope to other users.
	sessions, _, err = f.service.ListSessions(
		context.Background(), alice.UserID, SessionFilter{UserID: bob.UserID}, pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, alice.UserID, sessions[0].UserID)
}

func TestListSessions_DeviceFilterWithinOwnScope(t *testing.T) {
	f := newAuthFixture(t)
	tokens := f.registerAndLogin(t, "dev@taskora.dev")

	session, err := f.sessions.FindByID(context.Background(), tokens.SessionID)
	require.NoError(t, err)

	_, err = f.service.Login(context.Background(), LoginInput{
		Email:    "dev@taskora.dev",
		Password: "password-123",
		Device:   DeviceInfo{DeviceName: "iPhone", DeviceOS: "iOS"},
	})
	require.NoError(t, err)

	sessions, _, err := f.service.ListSessions(
		context.Background(), session.UserID,
		SessionFilter{DeviceName: "iPhone"}, pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "iPhone", sessions[0].DeviceName)
}

// # Access Token Resolution

func TestResolveAccessToken_Success(t *testing.T) {
	f := newAuthFixture(t)
	tokens := f.registerAndLogin(t, "dev@taskora.dev")

	identity, err := f.service.ResolveAccessToken(context.Background(), tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, tokens.SessionID, identity.SessionID)
	assert.Equal(t, "dev@taskora.dev", identity.Email)
	assert.Equal(t, sec.RoleDeveloper, identity.Role)
}

func TestResolveAccessToken_InactiveSessionKillsToken(t *testing.T) {
	f := newAuthFixture(t)
	tokens := f.registerAndLogin(t, "dev@taskora.dev")

	require.NoError(t, f.sessions.Deactivate(context.Background(), tokens.SessionID))

	_, err := f.service.ResolveAccessToken(context.Background(), tokens.AccessToken)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

func TestResolveAccessToken_DeactivatedUserRejected(t *testing.T) {
	f := newAuthFixture(t)
	tokens := f.registerAndLogin(t, "dev@taskora.dev")

	for _, user := range f.users.users {
		user.IsActive = false
	}

	_, err := f.service.ResolveAccessToken(context.Background(), tokens.AccessToken)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

// An access token past its exp still resolves as long as the session is
// alive: session liveness, not the clock, is the revocation mechanism.
func TestResolveAccessToken_ExpiredButSessionAlive(t *testing.T) {
	issuer, err := sec.NewTokenService("test-secret", "HS256", -1*time.Minute)
	require.NoError(t, err)

	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	service := NewService(users, sessions, sec.NewPasswordHasher(4), issuer, DefaultRefreshTokenTTL, nil)

	_, err = service.Register(context.Background(), RegisterInput{
		Email:    "dev@taskora.dev",
		Username: "dev_one",
		FullName: "Dev One",
		Password: "password-123",
	})
	require.NoError(t, err)

	tokens, err := service.Login(context.Background(), LoginInput{
		Email:    "dev@taskora.dev",
		Password: "password-123",
	})
	require.NoError(t, err)

	identity, err := service.ResolveAccessToken(context.Background(), tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, tokens.SessionID, identity.SessionID)
}

func TestResolveAccessToken_Garbage(t *testing.T) {
	f := newAuthFixture(t)
	f.registerAndLogin(t, "dev@taskora.dev")

	_, err := f.service.ResolveAccessToken(context.Background(), "not-a-token")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}
