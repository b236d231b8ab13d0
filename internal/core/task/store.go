// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

package task

import (
	"context"

	"github.com/ducpham/taskora/internal/core/project"
	"github.com/ducpham/taskora/pkg/pagination"
)

// Repository defines the data access contract for tasks.
type Repository interface {

	/*
		Create persists a new task.
	*/
	Create(context context.Context, task *Task) error

	/*
		FindByID returns the task with the given ID, or dberr.ErrNotFound
		when no row matches.
	*/
	FindByID(context context.Context, id string) (*Task, error)

	/*
		Update persists changes to a task's mutable fields.
	*/
	Update(context context.Context, task *Task) error

	/*
		Delete removes a task.
	*/
	Delete(context context.Context, id string) error

	/*
		List returns a filtered, role-scoped page of tasks ordered by
		creation time descending.

		Parameters:
		  - context: context.Context
		  - filter: Filter with optional project, assignee, status,
		    priority, search, and date bounds
		  - scope: Scope carrying the requester's role and ID
		  - params: pagination.Params

		Returns:
		  - []Task: The requested page
		  - int: Total row count matching filter and scope
		  - error: Database retrieval failures
	*/
	List(context context.Context, filter Filter, scope Scope, params pagination.Params) ([]Task, int, error)

	/*
		ListByProject returns every task in a project. When assigneeID is
		non-empty the result is narrowed to that assignee. Unpaginated;
		feeds the per-project listing and the board.
	*/
	ListByProject(context context.Context, projectID, assigneeID string) ([]Task, error)

	/*
		ListByAssignee returns every task currently assigned to a user,
		across all projects.
	*/
	ListByAssignee(context context.Context, userID string) ([]Task, error)
}

// ProjectSource is the slice of the project domain task authorization
// needs: existence, ownership, and assignment facts.
type ProjectSource interface {
	FindByID(context context.Context, id string) (*project.Project, error)
	HasAssignment(context context.Context, projectID, userID string) (bool, error)
}
