// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

package task

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ducpham/taskora/internal/platform/apperr"
	"github.com/ducpham/taskora/internal/platform/middleware"
	requestutil "github.com/ducpham/taskora/internal/platform/request"
	"github.com/ducpham/taskora/internal/platform/respond"
	"github.com/ducpham/taskora/internal/platform/sec"
	"github.com/ducpham/taskora/pkg/pagination"
	"github.com/ducpham/taskora/pkg/query"
)

// Handler exposes the task endpoints.
type Handler struct {
	taskService *Service
}

// NewHandler wires the task handler.
func NewHandler(taskService *Service) *Handler {
	return &Handler{taskService: taskService}
}

// Routes mounts the task surface. Creation, updates, and deletion are
// admin or manager routes; status moves and reads are open to every
// authenticated role, with fine-grained checks in the service.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.list)
	router.Get("/board", handler.board)
	router.Get("/project/{projectID}", handler.listProjectTasks)
	router.Get("/{taskID}", handler.get)
	router.Patch("/{taskID}/status", handler.updateStatus)

	router.Group(func(managers chi.Router) {
		managers.Use(middleware.RequireRoles(sec.RoleAdmin, sec.RoleManager))
		managers.Post("/", handler.create)
		managers.Patch("/{taskID}", handler.update)
		managers.Delete("/{taskID}", handler.delete)
	})

	return router
}

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.taskService.Create(request.Context(), identity, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, created)
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	found, err := handler.taskService.Get(
		request.Context(), identity, requestutil.Param(request, "taskID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, found)
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	filter := Filter{
		ProjectID:  query.String(request, "project_id"),
		AssignedTo: query.String(request, "assigned_to"),
		Status:     query.String(request, "status"),
		Priority:   query.String(request, "priority"),
		Search:     query.String(request, "search"),
		DateFrom:   query.Time(request, "date_from"),
		DateTo:     query.Time(request, "date_to"),
	}

	tasks, meta, err := handler.taskService.List(
		request.Context(), identity, filter, pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, tasks, meta)
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input UpdateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.taskService.Update(
		request.Context(), identity, requestutil.Param(request, "taskID"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, updated)
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

func (handler *Handler) updateStatus(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload statusUpdateRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.taskService.UpdateStatus(
		request.Context(), identity, requestutil.Param(request, "taskID"), payload.Status)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, updated)
}

func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.taskService.Delete(
		request.Context(), identity, requestutil.Param(request, "taskID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) listProjectTasks(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	tasks, err := handler.taskService.ListProjectTasks(
		request.Context(), identity, requestutil.Param(request, "projectID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, tasks)
}

func (handler *Handler) board(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	projectID := query.String(request, "project_id")
	if projectID == "" {
		respond.Error(writer, request, apperr.ValidationError("project_id is required"))
		return
	}

	board, err := handler.taskService.Board(
		request.Context(), identity, projectID, query.String(request, "assigned_to"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, board)
}
