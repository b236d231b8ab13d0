// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

package stats

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ducpham/taskora/internal/platform/middleware"
	"github.com/ducpham/taskora/internal/platform/respond"
	"github.com/ducpham/taskora/internal/platform/sec"
)

// Handler exposes the stats endpoints.
type Handler struct {
	statsService *Service
}

// NewHandler wires the stats handler.
func NewHandler(statsService *Service) *Handler {
	return &Handler{statsService: statsService}
}

// Routes mounts the stats surface. The dashboard is admin only.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)
	router.Use(middleware.RequireRoles(sec.RoleAdmin))

	router.Get("/dashboard", handler.dashboard)
	return router
}

func (handler *Handler) dashboard(writer http.ResponseWriter, request *http.Request) {
	dashboard, err := handler.statsService.Dashboard(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, dashboard)
}
