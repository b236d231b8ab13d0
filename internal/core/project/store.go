// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

package project

import (
	"context"
	"time"

	"github.com/ducpham/taskora/pkg/pagination"
)

// TaskStats is the raw aggregate material for a project summary, computed
// in a single store round trip.
type TaskStats struct {
	Total                   int
	ByStatus                map[string]int
	Overdue                 int
	DueNext7Days            int
	TotalEstimatedHours     float64
	CompletedEstimatedHours float64
}

// Repository defines the data access contract for projects.
type Repository interface {

	/*
		Create persists a new project.

		Parameters:
		  - context: context.Context
		  - project: *Project with all fields populated

		Returns:
		  - error: Database persistence failures
	*/
	Create(context context.Context, project *Project) error

	/*
		FindByID returns the project with the given ID, or
		dberr.ErrNotFound when no row matches.
	*/
	FindByID(context context.Context, id string) (*Project, error)

	/*
		Update persists changes to a project's mutable fields.
	*/
	Update(context context.Context, project *Project) error

	/*
		Delete removes a project. Its tasks are removed by the schema's
		cascade rule.
	*/
	Delete(context context.Context, id string) error

	/*
		List returns a filtered, role-scoped page of projects ordered by
		creation time descending.

		Parameters:
		  - context: context.Context
		  - filter: Filter with optional status, search, and date bounds
		  - scope: Scope carrying the requester's role and ID
		  - params: pagination.Params

		Returns:
		  - []Project: The requested page
		  - int: Total row count matching filter and scope
		  - error: Database retrieval failures
	*/
	List(context context.Context, filter Filter, scope Scope, params pagination.Params) ([]Project, int, error)

	/*
		HasAssignment reports whether the user has at least one task
		assigned within the project. Used for developer visibility.
	*/
	HasAssignment(context context.Context, projectID, userID string) (bool, error)

	/*
		TaskStats aggregates the project's task workload as of the given
		reference time.
	*/
	TaskStats(context context.Context, projectID string, now time.Time) (*TaskStats, error)
}
