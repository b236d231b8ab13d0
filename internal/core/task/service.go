// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

package task

import (
	"context"
	"strings"
	"time"

	"github.com/ducpham/taskora/internal/platform/apperr"
	"github.com/ducpham/taskora/internal/platform/authz"
	"github.com/ducpham/taskora/internal/platform/sec"
	"github.com/ducpham/taskora/internal/platform/validate"
	"github.com/ducpham/taskora/pkg/pagination"
	"github.com/ducpham/taskora/pkg/pointer"
	"github.com/ducpham/taskora/pkg/uuid"
)

// Validated field names reported in error details.
const (
	FieldTitle          = "title"
	FieldDescription    = "description"
	FieldStatus         = "status"
	FieldPriority       = "priority"
	FieldProjectID      = "project_id"
	FieldAssignedTo     = "assigned_to"
	FieldEstimatedHours = "estimated_hours"
)

// # Inputs

// CreateInput carries the fields for task creation.
type CreateInput struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority"`
	ProjectID      string     `json:"project_id"`
	AssignedTo     *string    `json:"assigned_to"`
	DueDate        *time.Time `json:"due_date"`
	EstimatedHours *float64   `json:"estimated_hours"`
}

// UpdateInput carries a partial task update. Nil fields are untouched.
// Status is deliberately absent: workflow moves go through UpdateStatus,
// which has its own, looser access rule.
type UpdateInput struct {
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	Priority       *string    `json:"priority"`
	AssignedTo     *string    `json:"assigned_to"`
	DueDate        *time.Time `json:"due_date"`
	EstimatedHours *float64   `json:"estimated_hours"`
}

// # Service

// Service implements the task domain operations.
type Service struct {
	taskRepository Repository
	projectSource  ProjectSource
	clock          func() time.Time
}

// NewService wires a task service.
func NewService(taskRepository Repository, projectSource ProjectSource) *Service {
	return &Service{
		taskRepository: taskRepository,
		projectSource:  projectSource,
		clock:          func() time.Time { return time.Now().UTC() },
	}
}

/*
Create persists a new task in a project the requester manages: admins
anywhere, managers only inside projects they own.

Parameters:
  - ctx: context.Context
  - identity: *sec.Identity of the requester
  - input: CreateInput

Returns:
  - *Task: The created task
  - error: Authorization, validation, or persistence failures
*/
func (service *Service) Create(ctx context.Context, identity *sec.Identity, input CreateInput) (*Task, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)

	validator := validate.New().
		Required(FieldTitle, input.Title).
		MaxLen(FieldTitle, input.Title, 255).
		MaxLen(FieldDescription, input.Description, 2000).
		Required(FieldStatus, input.Status).
		Required(FieldPriority, input.Priority).
		Required(FieldProjectID, input.ProjectID).
		UUID(FieldProjectID, input.ProjectID)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	status, err := ParseStatus(input.Status)
	if err != nil {
		return nil, err
	}
	priority, err := ParsePriority(input.Priority)
	if err != nil {
		return nil, err
	}
	if input.AssignedTo != nil && !uuid.IsValid(*input.AssignedTo) {
		return nil, apperr.ValidationError("Invalid assignee")
	}
	if input.EstimatedHours != nil && *input.EstimatedHours < 0 {
		return nil, apperr.ValidationError("Estimated hours must not be negative")
	}

	parent, err := service.projectSource.FindByID(ctx, input.ProjectID)
	if err != nil {
		return nil, apperr.NotFound("Project")
	}
	if err := authz.CanManageProjectTasks(identity.Role, parent.OwnerID == identity.UserID); err != nil {
		return nil, err
	}

	now := service.clock()
	newTask := &Task{
		ID:             uuid.New(),
		Title:          input.Title,
		Description:    input.Description,
		Status:         status,
		Priority:       priority,
		ProjectID:      parent.ID,
		AssignedTo:     input.AssignedTo,
		CreatedBy:      identity.UserID,
		DueDate:        input.DueDate,
		EstimatedHours: input.EstimatedHours,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := service.taskRepository.Create(ctx, newTask); err != nil {
		return nil, err
	}
	return newTask, nil
}

/*
Get returns a single task after an access check: admins always pass,
managers must own the parent project, developers must be the assignee.
*/
func (service *Service) Get(ctx context.Context, identity *sec.Identity, id string) (*Task, error) {
	return service.findAccessible(ctx, identity, id)
}

/*
List returns a filtered page of tasks visible to the requester.
*/
func (service *Service) List(
	ctx context.Context,
	identity *sec.Identity,
	filter Filter,
	params pagination.Params,
) ([]Task, pagination.Meta, error) {
	if filter.Status != "" {
		if _, err := ParseStatus(filter.Status); err != nil {
			return nil, pagination.Meta{}, err
		}
	}
	if filter.Priority != "" {
		if _, err := ParsePriority(filter.Priority); err != nil {
			return nil, pagination.Meta{}, err
		}
	}

	scope := Scope{Role: identity.Role, UserID: identity.UserID}
	tasks, total, err := service.taskRepository.List(ctx, filter, scope, params)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return tasks, pagination.NewMeta(params.Page, params.Limit, total), nil
}

/*
Update applies a partial update. Developers cannot update tasks at all;
managers must own the parent project.
*/
func (service *Service) Update(ctx context.Context, identity *sec.Identity, id string, input UpdateInput) (*Task, error) {
	if err := authz.CanMutateTask(identity.Role); err != nil {
		return nil, err
	}
	existing, err := service.findAccessible(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(pointer.Fallback(input.Title, existing.Title))
	description := strings.TrimSpace(pointer.Fallback(input.Description, existing.Description))

	validator := validate.New().
		Required(FieldTitle, title).
		MaxLen(FieldTitle, title, 255).
		MaxLen(FieldDescription, description, 2000)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	priority := existing.Priority
	if input.Priority != nil {
		priority, err = ParsePriority(*input.Priority)
		if err != nil {
			return nil, err
		}
	}
	if input.AssignedTo != nil {
		if !uuid.IsValid(*input.AssignedTo) {
			return nil, apperr.ValidationError("Invalid assignee")
		}
		existing.AssignedTo = input.AssignedTo
	}
	if input.EstimatedHours != nil {
		if *input.EstimatedHours < 0 {
			return nil, apperr.ValidationError("Estimated hours must not be negative")
		}
		existing.EstimatedHours = input.EstimatedHours
	}
	if input.DueDate != nil {
		existing.DueDate = input.DueDate
	}

	existing.Title = title
	existing.Description = description
	existing.Priority = priority
	existing.UpdatedAt = service.clock()

	if err := service.taskRepository.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

/*
UpdateStatus moves a task through the workflow. Unlike Update, this is
open to every role that can access the task, so developers can move
their own work across the board.
*/
func (service *Service) UpdateStatus(ctx context.Context, identity *sec.Identity, id, rawStatus string) (*Task, error) {
	status, err := ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	existing, err := service.findAccessible(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	existing.Status = status
	existing.UpdatedAt = service.clock()
	if err := service.taskRepository.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

/*
Delete removes a task. Developers cannot delete; managers must own the
parent project.
*/
func (service *Service) Delete(ctx context.Context, identity *sec.Identity, id string) error {
	if err := authz.CanMutateTask(identity.Role); err != nil {
		return err
	}
	existing, err := service.findAccessible(ctx, identity, id)
	if err != nil {
		return err
	}
	return service.taskRepository.Delete(ctx, existing.ID)
}

/*
ListProjectTasks returns every visible task in one project, unpaginated.
Developers see only their own assignments.
*/
func (service *Service) ListProjectTasks(ctx context.Context, identity *sec.Identity, projectID string) ([]Task, error) {
	if err := service.ensureProjectVisibility(ctx, identity, projectID); err != nil {
		return nil, err
	}

	assigneeID := ""
	if identity.Role == sec.RoleDeveloper {
		assigneeID = identity.UserID
	}
	return service.taskRepository.ListByProject(ctx, projectID, assigneeID)
}

/*
Board returns the kanban view of one project, grouped by workflow column.
An optional assignee filter narrows every column; developers are always
narrowed to themselves.

Returns:
  - Board: All four columns, each possibly empty
  - error: Not-found, authorization, or retrieval failures
*/
func (service *Service) Board(ctx context.Context, identity *sec.Identity, projectID, assignedTo string) (Board, error) {
	if err := service.ensureProjectVisibility(ctx, identity, projectID); err != nil {
		return nil, err
	}

	assigneeID := assignedTo
	if identity.Role == sec.RoleDeveloper {
		assigneeID = identity.UserID
	}

	tasks, err := service.taskRepository.ListByProject(ctx, projectID, assigneeID)
	if err != nil {
		return nil, err
	}

	board := NewBoard()
	for _, item := range tasks {
		board[item.Status] = append(board[item.Status], item)
	}
	return board, nil
}

/*
ListByAssignee returns every task assigned to a user across all
projects. Callers are expected to gate access; the user admin surface
restricts this to administrators.
*/
func (service *Service) ListByAssignee(ctx context.Context, userID string) ([]Task, error) {
	return service.taskRepository.ListByAssignee(ctx, userID)
}

// # Internal Helpers

func (service *Service) find(ctx context.Context, id string) (*Task, error) {
	if !uuid.IsValid(id) {
		return nil, apperr.NotFound("Task")
	}
	found, err := service.taskRepository.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("Task")
	}
	return found, nil
}

func (service *Service) findAccessible(ctx context.Context, identity *sec.Identity, id string) (*Task, error) {
	found, err := service.find(ctx, id)
	if err != nil {
		return nil, err
	}

	isProjectOwner := false
	if identity.Role == sec.RoleManager {
		parent, err := service.projectSource.FindByID(ctx, found.ProjectID)
		if err != nil {
			return nil, apperr.NotFound("Project")
		}
		isProjectOwner = parent.OwnerID == identity.UserID
	}
	if err := authz.CanAccessTask(identity.Role, isProjectOwner, found.AssignedToUser(identity.UserID)); err != nil {
		return nil, err
	}
	return found, nil
}

func (service *Service) ensureProjectVisibility(ctx context.Context, identity *sec.Identity, projectID string) error {
	if !uuid.IsValid(projectID) {
		return apperr.NotFound("Project")
	}
	parent, err := service.projectSource.FindByID(ctx, projectID)
	if err != nil {
		return apperr.NotFound("Project")
	}

	isAssigned := false
	if identity.Role == sec.RoleDeveloper {
		isAssigned, err = service.projectSource.HasAssignment(ctx, projectID, identity.UserID)
		if err != nil {
			return err
		}
	}
	return authz.CanViewProject(identity.Role, parent.OwnerID == identity.UserID, isAssigned)
}
