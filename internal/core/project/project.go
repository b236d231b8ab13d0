// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

/*
Package project implements the project lifecycle domain.

Projects are owned by managers. Access is scoped by role: admins see
everything, managers see the projects they own, developers see the
projects where at least one task is assigned to them.
*/
package project

import (
	"time"

	"github.com/ducpham/taskora/internal/platform/apperr"
	"github.com/ducpham/taskora/internal/platform/sec"
)

// # Status

// Status is the lifecycle state of a project.
type Status string

const (
	StatusPlanning  Status = "planning"
	StatusActive    Status = "active"
	StatusOnHold    Status = "on_hold"
	StatusCompleted Status = "completed"
)

// Statuses returns every valid project status.
func Statuses() []Status {
	return []Status{StatusPlanning, StatusActive, StatusOnHold, StatusCompleted}
}

// ParseStatus validates and normalizes a raw status string.
func ParseStatus(raw string) (Status, error) {
	candidate := Status(raw)
	for _, status := range Statuses() {
		if candidate == status {
			return status, nil
		}
	}
	return "", apperr.ValidationError("Invalid project status")
}

// # Entity

// Project is a unit of work grouping tasks under a managing owner.
type Project struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	OwnerID     string     `json:"owner_id"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// # Listing

// Filter narrows a project listing. Zero values mean "no filter".
type Filter struct {
	Status   string
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time
}

// Scope carries the requester facts the store needs to apply role-based
// visibility: managers are restricted to owned projects, developers to
// projects holding one of their task assignments.
type Scope struct {
	Role   sec.UserRole
	UserID string
}

// # Summary

// TaskOverview aggregates the task workload of a single project.
type TaskOverview struct {
	Total               int            `json:"total"`
	ByStatus            map[string]int `json:"by_status"`
	CompletedPercentage float64        `json:"completed_percentage"`
	Overdue             int            `json:"overdue"`
	DueNext7Days        int            `json:"due_next_7_days"`
}

// Estimates aggregates estimated effort over a project's tasks.
type Estimates struct {
	TotalEstimatedHours     float64 `json:"total_estimated_hours"`
	CompletedEstimatedHours float64 `json:"completed_estimated_hours"`
}

// Summary is the dashboard view of a single project.
type Summary struct {
	ProjectID    string       `json:"project_id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Status       Status       `json:"status"`
	StartDate    *time.Time   `json:"start_date"`
	EndDate      *time.Time   `json:"end_date"`
	TaskOverview TaskOverview `json:"task_overview"`
	Estimates    Estimates    `json:"estimates"`
}
