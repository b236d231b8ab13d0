// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

package project

import (
	"context"
	"math"
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
	FieldName        = "name"
	FieldDescription = "description"
	FieldStatus      = "status"
)

// # Inputs

// CreateInput carries the fields for project creation.
type CreateInput struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// UpdateInput carries a partial project update. Nil fields are untouched.
type UpdateInput struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// # Service

// Service implements the project lifecycle operations.
type Service struct {
	projectRepository Repository
	clock             func() time.Time
}

// NewService wires a project service.
func NewService(projectRepository Repository) *Service {
	return &Service{
		projectRepository: projectRepository,
		clock:             func() time.Time { return time.Now().UTC() },
	}
}

/*
Create persists a new project owned by the requester. Creation is a
manager capability; admins administer projects without owning them.

Parameters:
  - ctx: context.Context
  - identity: *sec.Identity of the requester
  - input: CreateInput

Returns:
  - *Project: The created project
  - error: Authorization, validation, or persistence failures
*/
func (service *Service) Create(ctx context.Context, identity *sec.Identity, input CreateInput) (*Project, error) {
	if err := authz.CanCreateProject(identity.Role); err != nil {
		return nil, err
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)

	validator := validate.New().
		Required(FieldName, input.Name).
		MaxLen(FieldName, input.Name, 255).
		MaxLen(FieldDescription, input.Description, 2000).
		Required(FieldStatus, input.Status)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	status, err := ParseStatus(input.Status)
	if err != nil {
		return nil, err
	}
	if err := validateDateRange(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}

	now := service.clock()
	newProject := &Project{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		Status:      status,
		OwnerID:     identity.UserID,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := service.projectRepository.Create(ctx, newProject); err != nil {
		return nil, err
	}
	return newProject, nil
}

/*
Get returns a single project after an access check: admins always pass,
managers must own it, developers must hold a task assignment in it.
*/
func (service *Service) Get(ctx context.Context, identity *sec.Identity, id string) (*Project, error) {
	return service.findAccessible(ctx, identity, id)
}

/*
Update applies a partial update. Only the owning manager may modify a
project.
*/
func (service *Service) Update(ctx context.Context, identity *sec.Identity, id string, input UpdateInput) (*Project, error) {
	existing, err := service.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.CanModifyProject(identity.Role, existing.OwnerID == identity.UserID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(pointer.Fallback(input.Name, existing.Name))
	description := strings.TrimSpace(pointer.Fallback(input.Description, existing.Description))

	validator := validate.New().
		Required(FieldName, name).
		MaxLen(FieldName, name, 255).
		MaxLen(FieldDescription, description, 2000)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	status := existing.Status
	if input.Status != nil {
		status, err = ParseStatus(*input.Status)
		if err != nil {
			return nil, err
		}
	}

	startDate := existing.StartDate
	if input.StartDate != nil {
		startDate = input.StartDate
	}
	endDate := existing.EndDate
	if input.EndDate != nil {
		endDate = input.EndDate
	}
	if err := validateDateRange(startDate, endDate); err != nil {
		return nil, err
	}

	existing.Name = name
	existing.Description = description
	existing.Status = status
	existing.StartDate = startDate
	existing.EndDate = endDate
	existing.UpdatedAt = service.clock()

	if err := service.projectRepository.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

/*
Delete removes a project and, through the schema cascade, its tasks.
Only the owning manager may delete.
*/
func (service *Service) Delete(ctx context.Context, identity *sec.Identity, id string) error {
	existing, err := service.find(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.CanModifyProject(identity.Role, existing.OwnerID == identity.UserID); err != nil {
		return err
	}
	return service.projectRepository.Delete(ctx, existing.ID)
}

/*
List returns a filtered page of projects visible to the requester.
*/
func (service *Service) List(
	ctx context.Context,
	identity *sec.Identity,
	filter Filter,
	params pagination.Params,
) ([]Project, pagination.Meta, error) {
	if filter.Status != "" {
		if _, err := ParseStatus(filter.Status); err != nil {
			return nil, pagination.Meta{}, err
		}
	}

	scope := Scope{Role: identity.Role, UserID: identity.UserID}
	projects, total, err := service.projectRepository.List(ctx, filter, scope, params)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return projects, pagination.NewMeta(params.Page, params.Limit, total), nil
}

/*
Summary returns the aggregated task workload of a project the requester
can access.

Returns:
  - *Summary: Totals, per-status counts, completion rate, overdue and
    upcoming counts, and estimated-hours rollups
  - error: Not-found, authorization, or retrieval failures
*/
func (service *Service) Summary(ctx context.Context, identity *sec.Identity, id string) (*Summary, error) {
	accessible, err := service.findAccessible(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	stats, err := service.projectRepository.TaskStats(ctx, accessible.ID, service.clock())
	if err != nil {
		return nil, err
	}

	completionRate := 0.0
	if stats.Total > 0 {
		completed := stats.ByStatus["done"]
		completionRate = math.Round(float64(completed)/float64(stats.Total)*100*100) / 100
	}

	return &Summary{
		ProjectID:   accessible.ID,
		Name:        accessible.Name,
		Description: accessible.Description,
		Status:      accessible.Status,
		StartDate:   accessible.StartDate,
		EndDate:     accessible.EndDate,
		TaskOverview: TaskOverview{
			Total:               stats.Total,
			ByStatus:            stats.ByStatus,
			CompletedPercentage: completionRate,
			Overdue:             stats.Overdue,
			DueNext7Days:        stats.DueNext7Days,
		},
		Estimates: Estimates{
			TotalEstimatedHours:     stats.TotalEstimatedHours,
			CompletedEstimatedHours: stats.CompletedEstimatedHours,
		},
	}, nil
}

// # Internal Helpers

func (service *Service) find(ctx context.Context, id string) (*Project, error) {
	if !uuid.IsValid(id) {
		return nil, apperr.NotFound("Project")
	}
	found, err := service.projectRepository.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("Project")
	}
	return found, nil
}

func (service *Service) findAccessible(ctx context.Context, identity *sec.Identity, id string) (*Project, error) {
	found, err := service.find(ctx, id)
	if err != nil {
		return nil, err
	}

	isOwner := found.OwnerID == identity.UserID
	isAssigned := false
	if identity.Role == sec.RoleDeveloper {
		isAssigned, err = service.projectRepository.HasAssignment(ctx, found.ID, identity.UserID)
		if err != nil {
			return nil, err
		}
	}
	if err := authz.CanViewProject(identity.Role, isOwner, isAssigned); err != nil {
		return nil, err
	}
	return found, nil
}

func validateDateRange(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return apperr.ValidationError("End date must not precede start date")
	}
	return nil
}
