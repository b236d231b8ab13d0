// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

/*
Package authz is the central authorization engine for Taskora.

It encodes the role policy as pure decision functions: callers gather the
facts (ownership, assignment) and the engine returns either nil or a
[apperr.Forbidden] error. Keeping decisions free of I/O makes the full
policy table directly unit-testable.

Policy summary:

  - Admins see everything but do not own projects; project create, update,
    and delete are manager-only operations gated on ownership.
  - Managers operate strictly within projects they own.
  - Developers are read-mostly: they see only projects and tasks they are
    assigned to, and may move their own tasks across the board.

Every switch is exhaustive over [sec.UserRole] with a default deny, so an
unknown role can never slip through as an allow.
*/
package authz

import (
	"github.com/ducpham/taskora/internal/platform/apperr"
	"github.com/ducpham/taskora/internal/platform/sec"
)

// # Project Decisions

// CanCreateProject permits project creation for managers only.
func CanCreateProject(role sec.UserRole) error {
	switch role {
	case sec.RoleManager:
		return nil
	case sec.RoleAdmin, sec.RoleDeveloper:
		return apperr.Forbidden("Permission denied")
	default:
		return apperr.Forbidden("Permission denied")
	}
}

// CanModifyProject permits project update and delete for the owning manager only.
func CanModifyProject(role sec.UserRole, isOwner bool) error {
	switch role {
	case sec.RoleManager:
		if !isOwner {
			return apperr.Forbidden("You do not own this project")
		}
		return nil
	case sec.RoleAdmin, sec.RoleDeveloper:
		return apperr.Forbidden("Permission denied")
	default:
		return apperr.Forbidden("Permission denied")
	}
}

// CanViewProject permits read access to a single project.
//
// Admins see all projects, managers see projects they own, developers see
// projects holding at least one task assigned to them.
func CanViewProject(role sec.UserRole, isOwner, isAssigned bool) error {
	switch role {
	case sec.RoleAdmin:
		return nil
	case sec.RoleManager:
		if !isOwner {
			return apperr.Forbidden("Managers can access only their own projects")
		}
		return nil
	case sec.RoleDeveloper:
		if !isAssigned {
			return apperr.Forbidden("Developers can access only assigned projects")
		}
		return nil
	default:
		return apperr.Forbidden("Access denied")
	}
}

// # Task Decisions

// CanManageProjectTasks permits creating tasks under a project.
//
// Admins may create tasks anywhere; managers only under projects they own.
func CanManageProjectTasks(role sec.UserRole, isOwner bool) error {
	switch role {
	case sec.RoleAdmin:
		return nil
	case sec.RoleManager:
		if !isOwner {
			return apperr.Forbidden("Only project owners can manage tasks")
		}
		return nil
	case sec.RoleDeveloper:
		return apperr.Forbidden("Only project owners can manage tasks")
	default:
		return apperr.Forbidden("Only project owners can manage tasks")
	}
}

// CanAccessTask permits read and status-move access to a single task.
func CanAccessTask(role sec.UserRole, isProjectOwner, isAssignee bool) error {
	switch role {
	case sec.RoleAdmin:
		return nil
	case sec.RoleManager:
		if !isProjectOwner {
			return apperr.Forbidden("Managers can access only their tasks")
		}
		return nil
	case sec.RoleDeveloper:
		if !isAssignee {
			return apperr.Forbidden("Developers can access only their tasks")
		}
		return nil
	default:
		return apperr.Forbidden("Access denied")
	}
}

// CanMutateTask permits full updates and deletion of a task.
//
// Developers may move their own tasks across the board via status updates,
// but never edit or delete them.
func CanMutateTask(role sec.UserRole) error {
	switch role {
	case sec.RoleAdmin, sec.RoleManager:
		return nil
	case sec.RoleDeveloper:
		return apperr.Forbidden("Developers cannot modify tasks")
	default:
		return apperr.Forbidden("Access denied")
	}
}

// # Session Decisions

// CanRevokeSession permits logging out a session.
//
// A session may only be revoked by the user who owns it.
func CanRevokeSession(requesterID, sessionOwnerID string) error {
	if requesterID != sessionOwnerID {
		return apperr.Forbidden("Not authorized to revoke this session")
	}
	return nil
}
