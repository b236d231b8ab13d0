// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

package project

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducpham/taskora/internal/platform/apperr"
	"github.com/ducpham/taskora/internal/platform/sec"
	"github.com/ducpham/taskora/pkg/pagination"
	"github.com/ducpham/taskora/pkg/pointer"
	"github.com/ducpham/taskora/pkg/uuid"
)

// # Fakes

type fakeTask struct {
	projectID      string
	assignedTo     string
	status         string
	dueDate        *time.Time
	estimatedHours float64
}

type fakeProjectRepo struct {
	mu       sync.Mutex
	projects map[string]Project
	tasks    []fakeTask
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[string]Project)}
}

func (repo *fakeProjectRepo) Create(_ context.Context, record *Project) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.projects[record.ID] = *record
	return nil
}

func (repo *fakeProjectRepo) FindByID(_ context.Context, id string) (*Project, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if record, ok := repo.projects[id]; ok {
		clone := record
		return &clone, nil
	}
	return nil, apperr.NotFound("Project")
}

func (repo *fakeProjectRepo) Update(_ context.Context, record *Project) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if _, ok := repo.projects[record.ID]; !ok {
		return apperr.NotFound("Project")
	}
	repo.projects[record.ID] = *record
	return nil
}

func (repo *fakeProjectRepo) Delete(_ context.Context, id string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if _, ok := repo.projects[id]; !ok {
		return apperr.NotFound("Project")
	}
	delete(repo.projects, id)
	return nil
}

func (repo *fakeProjectRepo) List(
	_ context.Context,
	filter Filter,
	scope Scope,
	params pagination.Params,
) ([]Project, int, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	matched := make([]Project, 0, len(repo.projects))
	for _, record := range repo.projects {
		switch scope.Role {
		case sec.RoleManager:
			if record.OwnerID != scope.UserID {
				continue
			}
		case sec.RoleDeveloper:
			if !repo.assignedLocked(record.ID, scope.UserID) {
				continue
			}
		}
		if filter.Status != "" && string(record.Status) != filter.Status {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(record.Name), needle) &&
				!strings.Contains(strings.ToLower(record.Description), needle) {
				continue
			}
		}
		matched = append(matched, record)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := min(params.Offset(), total)
	end := min(start+params.Limit, total)
	return matched[start:end], total, nil
}

func (repo *fakeProjectRepo) assignedLocked(projectID, userID string) bool {
	for _, task := range repo.tasks {
		if task.projectID == projectID && task.assignedTo == userID {
			return true
		}
	}
	return false
}

func (repo *fakeProjectRepo) HasAssignment(_ context.Context, projectID, userID string) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return repo.assignedLocked(projectID, userID), nil
}

func (repo *fakeProjectRepo) TaskStats(_ context.Context, projectID string, now time.Time) (*TaskStats, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	stats := TaskStats{ByStatus: map[string]int{"todo": 0, "in_progress": 0, "review": 0, "done": 0}}
	weekAhead := now.Add(7 * 24 * time.Hour)
	for _, task := range repo.tasks {
		if task.projectID != projectID {
			continue
		}
		stats.Total++
		stats.ByStatus[task.status]++
		stats.TotalEstimatedHours += task.estimatedHours
		if task.status == "done" {
			stats.CompletedEstimatedHours += task.estimatedHours
			continue
		}
		if task.dueDate != nil {
			if task.dueDate.Before(now) {
				stats.Overdue++
			} else if !task.dueDate.After(weekAhead) {
				stats.DueNext7Days++
			}
		}
	}
	return &stats, nil
}

// # Fixture

func identityWithRole(role sec.UserRole) *sec.Identity {
	return &sec.Identity{UserID: uuid.New(), SessionID: uuid.New(), Role: role}
}

func newProjectService(t *testing.T) (*Service, *fakeProjectRepo) {
	t.Helper()
	repo := newFakeProjectRepo()
	return NewService(repo), repo
}

func createProject(t *testing.T, service *Service, owner *sec.Identity) *Project {
	t.Helper()
	created, err := service.Create(context.Background(), owner, CreateInput{
		Name:   "Billing Revamp",
		Status: "active",
	})
	require.NoError(t, err)
	return created
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, code, appError.Code)
}

// # Tests

func TestCreate_ManagerBecomesOwner(t *testing.T) {
	service, _ := newProjectService(t)
	manager := identityWithRole(sec.RoleManager)

	created := createProject(t, service, manager)

	assert.Equal(t, manager.UserID, created.OwnerID)
	assert.Equal(t, StatusActive, created.Status)
}

func TestCreate_AdminAndDeveloperDenied(t *testing.T) {
	service, _ := newProjectService(t)

	for _, role := range []sec.UserRole{sec.RoleAdmin, sec.RoleDeveloper} {
		_, err := service.Create(context.Background(), identityWithRole(role), CreateInput{
			Name:   "Billing Revamp",
			Status: "active",
		})
		assertCode(t, err, "FORBIDDEN")
	}
}

func TestCreate_Validation(t *testing.T) {
	service, _ := newProjectService(t)
	manager := identityWithRole(sec.RoleManager)
	start := time.Now().UTC()
	end := start.Add(-time.Hour)

	tests := []struct {
		name  string
		input CreateInput
	}{
		{"missing_name", CreateInput{Status: "active"}},
		{"unknown_status", CreateInput{Name: "P", Status: "archived"}},
		{"end_before_start", CreateInput{Name: "P", Status: "active", StartDate: &start, EndDate: &end}},
	}
	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := service.Create(context.Background(), manager, testCase.input)
			assertCode(t, err, "VALIDATION_ERROR")
		})
	}
}

func TestGet_AccessMatrix(t *testing.T) {
	service, repo := newProjectService(t)
	owner := identityWithRole(sec.RoleManager)
	created := createProject(t, service, owner)

	developer := identityWithRole(sec.RoleDeveloper)
	repo.tasks = append(repo.tasks, fakeTask{
		projectID: created.ID, assignedTo: developer.UserID, status: "todo",
	})

	_, err := service.Get(context.Background(), identityWithRole(sec.RoleAdmin), created.ID)
	assert.NoError(t, err)

	_, err = service.Get(context.Background(), owner, created.ID)
	assert.NoError(t, err)

	_, err = service.Get(context.Background(), identityWithRole(sec.RoleManager), created.ID)
	assertCode(t, err, "FORBIDDEN")

	_, err = service.Get(context.Background(), developer, created.ID)
	assert.NoError(t, err)

	_, err = service.Get(context.Background(), identityWithRole(sec.RoleDeveloper), created.ID)
	assertCode(t, err, "FORBIDDEN")
}

func TestGet_UnknownProject(t *testing.T) {
	service, _ := newProjectService(t)

	_, err := service.Get(context.Background(), identityWithRole(sec.RoleAdmin), uuid.New())
	assertCode(t, err, "NOT_FOUND")

	_, err = service.Get(context.Background(), identityWithRole(sec.RoleAdmin), "not-a-uuid")
	assertCode(t, err, "NOT_FOUND")
}

func TestUpdate_OwnerOnly(t *testing.T) {
	service, _ := newProjectService(t)
	owner := identityWithRole(sec.RoleManager)
	created := createProject(t, service, owner)

	updated, err := service.Update(context.Background(), owner, created.ID, UpdateInput{
		Status: pointer.To("completed"),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, updated.Status)
	assert.Equal(t, "Billing Revamp", updated.Name)

	_, err = service.Update(context.Background(), identityWithRole(sec.RoleManager), created.ID, UpdateInput{
		Status: pointer.To("on_hold"),
	})
	assertCode(t, err, "FORBIDDEN")

	_, err = service.Update(context.Background(), identityWithRole(sec.RoleAdmin), created.ID, UpdateInput{
		Status: pointer.To("on_hold"),
	})
	assertCode(t, err, "FORBIDDEN")
}

func TestDelete_OwnerOnly(t *testing.T) {
	service, repo := newProjectService(t)
	owner := identityWithRole(sec.RoleManager)
	created := createProject(t, service, owner)

	err := service.Delete(context.Background(), identityWithRole(sec.RoleManager), created.ID)
	assertCode(t, err, "FORBIDDEN")

	require.NoError(t, service.Delete(context.Background(), owner, created.ID))
	assert.Empty(t, repo.projects)
}

func TestList_RoleScoping(t *testing.T) {
	service, repo := newProjectService(t)
	first := identityWithRole(sec.RoleManager)
	second := identityWithRole(sec.RoleManager)
	createProject(t, service, first)
	createProject(t, service, first)
	foreign := createProject(t, service, second)

	developer := identityWithRole(sec.RoleDeveloper)
	repo.tasks = append(repo.tasks, fakeTask{
		projectID: foreign.ID, assignedTo: developer.UserID, status: "todo",
	})

	params := pagination.Params{Page: 1, Limit: 20}

	_, meta, err := service.List(context.Background(), identityWithRole(sec.RoleAdmin), Filter{}, params)
	require.NoError(t, err)
	assert.Equal(t, 3, meta.Total)

	_, meta, err = service.List(context.Background(), first, Filter{}, params)
	require.NoError(t, err)
	assert.Equal(t, 2, meta.Total)

	visible, meta, err := service.List(context.Background(), developer, Filter{}, params)
	require.NoError(t, err)
	assert.Equal(t, 1, meta.Total)
	assert.Equal(t, foreign.ID, visible[0].ID)
}

func TestList_InvalidStatusFilter(t *testing.T) {
	service, _ := newProjectService(t)

	_, _, err := service.List(context.Background(), identityWithRole(sec.RoleAdmin),
		Filter{Status: "archived"}, pagination.Params{Page: 1, Limit: 20})
	assertCode(t, err, "VALIDATION_ERROR")
}

func TestSummary_Aggregation(t *testing.T) {
	service, repo := newProjectService(t)
	owner := identityWithRole(sec.RoleManager)
	created := createProject(t, service, owner)

	now := time.Now().UTC()
	yesterday := now.Add(-24 * time.Hour)
	inThreeDays := now.Add(3 * 24 * time.Hour)
	repo.tasks = append(repo.tasks,
		fakeTask{projectID: created.ID, status: "done", estimatedHours: 8},
		fakeTask{projectID: created.ID, status: "todo", dueDate: &yesterday, estimatedHours: 4},
		fakeTask{projectID: created.ID, status: "in_progress", dueDate: &inThreeDays, estimatedHours: 2},
	)

	summary, err := service.Summary(context.Background(), owner, created.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TaskOverview.Total)
	assert.Equal(t, 1, summary.TaskOverview.ByStatus["done"])
	assert.Equal(t, 1, summary.TaskOverview.ByStatus["todo"])
	assert.Equal(t, 0, summary.TaskOverview.ByStatus["review"])
	assert.InDelta(t, 33.33, summary.TaskOverview.CompletedPercentage, 0.001)
	assert.Equal(t, 1, summary.TaskOverview.Overdue)
	assert.Equal(t, 1, summary.TaskOverview.DueNext7Days)
	assert.InDelta(t, 14, summary.Estimates.TotalEstimatedHours, 0.001)
	assert.InDelta(t, 8, summary.Estimates.CompletedEstimatedHours, 0.001)
}

func TestSummary_EmptyProject(t *testing.T) {
	service, _ := newProjectService(t)
	owner := identityWithRole(sec.RoleManager)
	created := createProject(t, service, owner)

	summary, err := service.Summary(context.Background(), owner, created.ID)
	require.NoError(t, err)

	assert.Zero(t, summary.TaskOverview.Total)
	assert.Zero(t, summary.TaskOverview.CompletedPercentage)
	assert.Equal(t, map[string]int{"todo": 0, "in_progress": 0, "review": 0, "done": 0},
		summary.TaskOverview.ByStatus)
}
