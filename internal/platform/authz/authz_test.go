// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducpham/taskora/internal/platform/apperr"
	"github.com/ducpham/taskora/internal/platform/authz"
	"github.com/ducpham/taskora/internal/platform/sec"
)

// assertForbidden checks that err is a 403 AppError.
func assertForbidden(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "FORBIDDEN", ae.Code)
}

/*
TestCanCreateProject verifies that only managers can create projects.
Admins are deliberately excluded: projects belong to managers.
*/
func TestCanCreateProject(t *testing.T) {
	tests := []struct {
		name    string
		role    sec.UserRole
		allowed bool
	}{
		{"manager_allowed", sec.RoleManager, true},
		{"admin_denied", sec.RoleAdmin, false},
		{"developer_denied", sec.RoleDeveloper, false},
		{"unknown_role_denied", sec.UserRole("intern"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authz.CanCreateProject(tt.role)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assertForbidden(t, err)
			}
		})
	}
}

func TestCanModifyProject(t *testing.T) {
	tests := []struct {
		name    string
		role    sec.UserRole
		isOwner bool
		allowed bool
	}{
		{"owning_manager_allowed", sec.RoleManager, true, true},
		{"non_owning_manager_denied", sec.RoleManager, false, false},
		{"admin_denied_even_as_owner", sec.RoleAdmin, true, false},
		{"developer_denied", sec.RoleDeveloper, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authz.CanModifyProject(tt.role, tt.isOwner)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assertForbidden(t, err)
			}
		})
	}
}

func TestCanViewProject(t *testing.T) {
	tests := []struct {
		name       string
		role       sec.UserRole
		isOwner    bool
		isAssigned bool
		allowed    bool
	}{
		{"admin_sees_everything", sec.RoleAdmin, false, false, true},
		{"owning_manager_allowed", sec.RoleManager, true, false, true},
		{"other_manager_denied", sec.RoleManager, false, false, false},
		{"assigned_developer_allowed", sec.RoleDeveloper, false, true, true},
		{"unassigned_developer_denied", sec.RoleDeveloper, false, false, false},
		{"unknown_role_denied", sec.UserRole(""), true, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authz.CanViewProject(tt.role, tt.isOwner, tt.isAssigned)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assertForbidden(t, err)
			}
		})
	}
}

func TestCanManageProjectTasks(t *testing.T) {
	tests := []struct {
		name    string
		role    sec.UserRole
		isOwner bool
		allowed bool
	}{
		{"admin_allowed_anywhere", sec.RoleAdmin, false, true},
		{"owning_manager_allowed", sec.RoleManager, true, true},
		{"other_manager_denied", sec.RoleManager, false, false},
		{"developer_denied", sec.RoleDeveloper, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authz.CanManageProjectTasks(tt.role, tt.isOwner)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assertForbidden(t, err)
			}
		})
	}
}

func TestCanAccessTask(t *testing.T) {
	tests := []struct {
		name           string
		role           sec.UserRole
		isProjectOwner bool
		isAssignee     bool
		allowed        bool
	}{
		{"admin_allowed", sec.RoleAdmin, false, false, true},
		{"owning_manager_allowed", sec.RoleManager, true, false, true},
		{"other_manager_denied", sec.RoleManager, false, true, false},
		{"assignee_developer_allowed", sec.RoleDeveloper, false, true, true},
		{"other_developer_denied", sec.RoleDeveloper, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authz.CanAccessTask(tt.role, tt.isProjectOwner, tt.isAssignee)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assertForbidden(t, err)
			}
		})
	}
}

func TestCanMutateTask(t *testing.T) {
	assert.NoError(t, authz.CanMutateTask(sec.RoleAdmin))
	assert.NoError(t, authz.CanMutateTask(sec.RoleManager))
	assertForbidden(t, authz.CanMutateTask(sec.RoleDeveloper))
	assertForbidden(t, authz.CanMutateTask(sec.UserRole("guest")))
}

func TestCanRevokeSession(t *testing.T) {
	assert.NoError(t, authz.CanRevokeSession("user-1", "user-1"))
	assertForbidden(t, authz.CanRevokeSession("user-1", "user-2"))
}
