// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

package project

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ducpham/taskora/internal/platform/middleware"
	requestutil "github.com/ducpham/taskora/internal/platform/request"
	"github.com/ducpham/taskora/internal/platform/respond"
	"github.com/ducpham/taskora/internal/platform/sec"
	"github.com/ducpham/taskora/pkg/pagination"
	"github.com/ducpham/taskora/pkg/query"
)

// Handler exposes the project endpoints.
type Handler struct {
	projectService *Service
}

// NewHandler wires the project handler.
func NewHandler(projectService *Service) *Handler {
	return &Handler{projectService: projectService}
}

// Routes mounts the project surface. Mutations are manager routes; the
// service layer additionally enforces ownership.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.list)
	router.Get("/{projectID}", handler.get)
	router.Get("/{projectID}/summary", handler.summary)

	router.Group(func(managers chi.Router) {
		managers.Use(middleware.RequireRoles(sec.RoleManager))
		managers.Post("/", handler.create)
		managers.Put("/{projectID}", handler.update)
		managers.Delete("/{projectID}", handler.delete)
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

	created, err := handler.projectService.Create(request.Context(), identity, input)
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

	found, err := handler.projectService.Get(
		request.Context(), identity, requestutil.Param(request, "projectID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, found)
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

	updated, err := handler.projectService.Update(
		request.Context(), identity, requestutil.Param(request, "projectID"), input)
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

	err = handler.projectService.Delete(
		request.Context(), identity, requestutil.Param(request, "projectID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	filter := Filter{
		Status:   query.String(request, "status"),
		Search:   query.String(request, "search"),
		DateFrom: query.Time(request, "date_from"),
		DateTo:   query.Time(request, "date_to"),
	}

	projects, meta, err := handler.projectService.List(
		request.Context(), identity, filter, pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, projects, meta)
}

func (handler *Handler) summary(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	projectSummary, err := handler.projectService.Summary(
		request.Context(), identity, requestutil.Param(request, "projectID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, projectSummary)
}
