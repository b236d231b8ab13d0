// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

/*
Package stats produces the admin dashboard aggregates: user growth,
project and task volume, workflow distribution, and live session count.

The dashboard is a cross-table snapshot, so it is computed in the store
as one aggregate pass and cached in Redis for a short window.
*/
package stats

import (
	"context"
	"time"
)

// Dashboard is the admin overview of the whole workspace.
type Dashboard struct {
	Users    UserStats    `json:"users"`
	Projects ProjectStats `json:"projects"`
	Tasks    TaskStats    `json:"tasks"`
	Sessions SessionStats `json:"sessions"`
}

// UserStats summarizes the user population.
type UserStats struct {
	Total         int `json:"total"`
	NewLast30Days int `json:"new_last_30_days"`
}

// ProjectStats summarizes project volume.
type ProjectStats struct {
	Total int `json:"total"`
}

// TaskStats summarizes task volume and workflow distribution.
type TaskStats struct {
	Total    int            `json:"total"`
	Overdue  int            `json:"overdue"`
	ByStatus map[string]int `json:"by_status"`
}

// SessionStats summarizes authentication activity.
type SessionStats struct {
	Active int `json:"active"`
}

// Repository defines the aggregate queries behind the dashboard.
type Repository interface {

	/*
		Dashboard computes the full dashboard snapshot as of the given
		reference time. "New" users are accounts created within the
		trailing 30 days; overdue tasks are unfinished tasks past their
		due date.
	*/
	Dashboard(context context.Context, now time.Time) (*Dashboard, error)
}
