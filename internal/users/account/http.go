// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

package account

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ducpham/taskora/internal/core/task"
	"github.com/ducpham/taskora/internal/platform/middleware"
	requestutil "github.com/ducpham/taskora/internal/platform/request"
	"github.com/ducpham/taskora/internal/platform/respond"
	"github.com/ducpham/taskora/internal/platform/sec"
	"github.com/ducpham/taskora/pkg/pagination"
	"github.com/ducpham/taskora/pkg/query"
)

// TaskSource exposes the slice of the task domain the user endpoints
// need: everything currently assigned to a given user.
type TaskSource interface {
	ListByAssignee(ctx context.Context, userID string) ([]task.Task, error)
}

// Handler exposes the user management endpoints.
type Handler struct {
	accountService *Service
	taskSource     TaskSource
}

// NewHandler wires the user management handler.
func NewHandler(accountService *Service, taskSource TaskSource) *Handler {
	return &Handler{accountService: accountService, taskSource: taskSource}
}

// Routes mounts the user management surface. Listing and reads are open
// to managers; every mutation is admin only.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Group(func(read chi.Router) {
		read.Use(middleware.RequireRoles(sec.RoleAdmin, sec.RoleManager))
		read.Get("/", handler.list)
		read.Get("/{userID}", handler.get)
	})

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRoles(sec.RoleAdmin))
		admin.Post("/", handler.create)
		admin.Put("/{userID}", handler.update)
		admin.Delete("/{userID}", handler.delete)
		admin.Put("/{userID}/role", handler.changeRole)
		admin.Patch("/{userID}/active", handler.setActive)
		admin.Get("/{userID}/tasks", handler.listTasks)
	})

	return router
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	filter := Filter{
		Role:     query.String(request, "role"),
		Search:   query.String(request, "search"),
		DateFrom: query.Time(request, "date_from"),
		DateTo:   query.Time(request, "date_to"),
	}

	users, meta, err := handler.accountService.List(
		request.Context(), filter, pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, users, meta)
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	user, err := handler.accountService.Get(
		request.Context(), requestutil.Param(request, "userID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, user)
}

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.Create(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, user)
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var input UpdateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.Update(
		request.Context(), requestutil.Param(request, "userID"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, user)
}

func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	err := handler.accountService.Delete(
		request.Context(), requestutil.Param(request, "userID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

type roleChangeRequest struct {
	Role string `json:"role"`
}

func (handler *Handler) changeRole(writer http.ResponseWriter, request *http.Request) {
	var payload roleChangeRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	change, err := handler.accountService.ChangeRole(
		request.Context(), requestutil.Param(request, "userID"), payload.Role)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, change)
}

type activeRequest struct {
	IsActive bool `json:"is_active"`
}

func (handler *Handler) setActive(writer http.ResponseWriter, request *http.Request) {
	var payload activeRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.SetActive(
		request.Context(), requestutil.Param(request, "userID"), payload.IsActive)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, user)
}

func (handler *Handler) listTasks(writer http.ResponseWriter, request *http.Request) {
	userID := requestutil.Param(request, "userID")
	if _, err := handler.accountService.Get(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tasks, err := handler.taskSource.ListByAssignee(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, tasks)
}
