// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

/*
Package task implements the task domain: creation and assignment inside
projects, workflow status transitions, filtered listings, and the kanban
board view.

Access mirrors the project rules. Admins reach everything, managers reach
tasks inside projects they own, developers reach only tasks assigned to
them. Developers cannot create, update, or delete tasks, with one
exception: they may move the status of their own tasks.
*/
package task

import (
	"time"

	"github.com/ducpham/taskora/internal/platform/apperr"
	"github.com/ducpham/taskora/internal/platform/sec"
)

// # Status

// Status is a task's position in the workflow.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
)

// Statuses returns every valid task status in board-column order.
func Statuses() []Status {
	return []Status{StatusTodo, StatusInProgress, StatusReview, StatusDone}
}

// ParseStatus validates and normalizes a raw status string.
func ParseStatus(raw string) (Status, error) {
	candidate := Status(raw)
	for _, status := range Statuses() {
		if candidate == status {
			return status, nil
		}
	}
	return "", apperr.ValidationError("Invalid task status")
}

// # Priority

// Priority expresses scheduling urgency.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Priorities returns every valid task priority.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
}

// ParsePriority validates and normalizes a raw priority string.
func ParsePriority(raw string) (Priority, error) {
	candidate := Priority(raw)
	for _, priority := range Priorities() {
		if candidate == priority {
			return priority, nil
		}
	}
	return "", apperr.ValidationError("Invalid task priority")
}

// # Entity

// Task is a unit of work inside a project, optionally assigned to a user.
type Task struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         Status     `json:"status"`
	Priority       Priority   `json:"priority"`
	ProjectID      string     `json:"project_id"`
	AssignedTo     *string    `json:"assigned_to"`
	CreatedBy      string     `json:"created_by"`
	DueDate        *time.Time `json:"due_date"`
	EstimatedHours *float64   `json:"estimated_hours"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// AssignedToUser reports whether the task is assigned to the given user.
func (t *Task) AssignedToUser(userID string) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID
}

// # Listing

// Filter narrows a task listing. Zero values mean "no filter".
type Filter struct {
	ProjectID  string
	AssignedTo string
	Status     string
	Priority   string
	Search     string
	DateFrom   *time.Time
	DateTo     *time.Time
}

// Scope carries the requester facts the store needs for role-based
// visibility: managers see tasks in owned projects, developers see their
// assignments.
type Scope struct {
	Role   sec.UserRole
	UserID string
}

// Board is the kanban view of one project's tasks, keyed by workflow
// column.
type Board map[Status][]Task

// NewBoard returns a board with every column present, so empty columns
// serialize as [] rather than disappearing.
func NewBoard() Board {
	board := make(Board, len(Statuses()))
	for _, status := range Statuses() {
		board[status] = []Task{}
	}
	return board
}
