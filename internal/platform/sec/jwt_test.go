// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducpham/taskora/internal/platform/sec"
)

const testSecret = "unit-test-signing-secret"

func newTestTokenService(t *testing.T, ttl time.Duration) *sec.TokenService {
	t.Helper()
	service, err := sec.NewTokenService(testSecret, "HS256", ttl)
	require.NoError(t, err)
	return service
}

func TestNewTokenService_Validation(t *testing.T) {
	tests := []struct {
		name      string
		secret    string
		algorithm string
		wantErr   bool
	}{
		{"hs256_ok", "secret", "HS256", false},
		{"hs384_ok", "secret", "HS384", false},
		{"hs512_ok", "secret", "HS512", false},
		{"empty_secret", "", "HS256", true},
		{"asymmetric_rejected", "secret", "RS256", true},
		{"none_rejected", "secret", "none", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sec.NewTokenService(tt.secret, tt.algorithm, time.Minute)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTokenService_RoundTrip(t *testing.T) {
	service := newTestTokenService(t, 15*time.Minute)

	signed, err := service.Generate("user-123", "session-456")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := service.Decode(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "session-456", claims.SessionID)
	assert.Equal(t, "user-123", claims.Subject)
}

func TestTokenService_Decode_RejectsTampering(t *testing.T) {
	service := newTestTokenService(t, 15*time.Minute)

	signed, err := service.Generate("user-123", "session-456")
	require.NoError(t, err)

	tampered := signed[:len(signed)-2] + "xx"
	_, err = service.Decode(tampered)
	assert.Error(t, err)
}

func TestTokenService_Decode_RejectsWrongKey(t *testing.T) {
	service := newTestTokenService(t, 15*time.Minute)
	other, err := sec.NewTokenService("a-different-secret", "HS256", 15*time.Minute)
	require.NoError(t, err)

	signed, err := other.Generate("user-123", "session-456")
	require.NoError(t, err)

	_, err = service.Decode(signed)
	assert.Error(t, err)
}

// Expired tokens still decode: session liveness, checked per request
// against the session registry, is the revocation mechanism.
func TestTokenService_Decode_AcceptsExpired(t *testing.T) {
	service := newTestTokenService(t, -1*time.Minute)

	signed, err := service.Generate("user-123", "session-456")
	require.NoError(t, err)

	claims, err := service.Decode(signed)
	require.NoError(t, err)
	assert.Equal(t, "session-456", claims.SessionID)
	assert.True(t, claims.ExpiresAt.Before(time.Now()))
}

func TestTokenService_Decode_RejectsGarbage(t *testing.T) {
	service := newTestTokenService(t, 15*time.Minute)

	for _, input := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := service.Decode(input)
		assert.Error(t, err, "input %q should be rejected", input)
	}
}
