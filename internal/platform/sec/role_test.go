// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducpham/taskora/internal/platform/sec"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    sec.UserRole
		wantErr bool
	}{
		{"admin", "admin", sec.RoleAdmin, false},
		{"manager", "manager", sec.RoleManager, false},
		{"developer", "developer", sec.RoleDeveloper, false},
		{"unknown", "superuser", "", true},
		{"case_sensitive", "Admin", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, err := sec.ParseRole(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, role)
		})
	}
}

func TestUserRole_In(t *testing.T) {
	assert.True(t, sec.RoleAdmin.In(sec.RoleAdmin, sec.RoleManager))
	assert.False(t, sec.RoleDeveloper.In(sec.RoleAdmin, sec.RoleManager))
	assert.False(t, sec.RoleAdmin.In())
}

func TestPasswordHasher_RoundTrip(t *testing.T) {
	hasher := sec.NewPasswordHasher(4) // minimum cost keeps the test fast

	hash, err := hasher.Hash("s3cret-passw0rd")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-passw0rd", hash)

	assert.True(t, hasher.Verify("s3cret-passw0rd", hash))
	assert.False(t, hasher.Verify("wrong-password", hash))
}
