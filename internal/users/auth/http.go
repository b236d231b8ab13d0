// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

/*
HTTP delivery layer for the authentication lifecycle.

The handler acts as a thin mediation layer between the web and domain services:
  - Protocol: Standard RESTful JSON interface.
  - Security: Issues the access/refresh token pair and manages device sessions.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes, headers, JSON).
*/
package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ducpham/taskora/internal/platform/middleware"
	"github.com/ducpham/taskora/internal/platform/respond"
	"github.com/ducpham/taskora/internal/platform/validate"
	"github.com/ducpham/taskora/pkg/pagination"
	"github.com/ducpham/taskora/pkg/query"

	requestutil "github.com/ducpham/taskora/internal/platform/request"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] with the authentication endpoints.
//
// # Endpoints
//   - POST /register   : Creates a new developer account.
//   - POST /login      : Authenticates and opens a device session.
//   - POST /refresh    : Rotates the refresh token in place.
//   - POST /logout     : Deactivates one owned session.
//   - POST /logout_all : Deactivates every session of the requester.
//   - GET  /sessions   : Lists the requester's device sessions.
//   - GET  /me         : Returns the authenticated profile.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
		r.Post("/logout_all", handler.logoutAll)
		r.Get("/sessions", handler.listOwnSessions)
		r.Get("/me", handler.me)
	})

	return router
}

// SessionRoutes returns the filtered session monitoring routes, intended to
// be mounted at /sessions. Every role sees only its own sessions.
func (handler *Handler) SessionRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)
	router.Get("/", handler.listSessions)
	return router
}

// # Request Payloads

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	SessionID    string `json:"session_id"`
	RefreshToken string `json:"refresh_token"`
}

type logoutRequest struct {
	SessionID string `json:"session_id"`
}

// # Handlers

/*
register handles the creation of a new user account.

POST /api/v1/auth/register

Description: Validates input and persists a new developer profile. The
account is NOT logged in automatically; the client must call /login.

Response:
  - 201: User: Created user profile
  - 400: Bad input or validation failure
  - 409: Email or username already exists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	user, err := handler.authService.Register(request.Context(), RegisterInput{
		Email:    input.Email,
		Username: input.Username,
		FullName: input.FullName,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
login authenticates a user and opens a new device session.

POST /api/v1/auth/login

Response:
  - 200: TokenPair: access_token, refresh_token, session_id
  - 401: Invalid credentials or deactivated account
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tokens, err := handler.authService.Login(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
		Device:   ExtractDeviceInfo(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, tokens)
}

/*
refresh rotates the refresh token of an existing session.

POST /api/v1/auth/refresh

Response:
  - 200: TokenPair: fresh access and refresh tokens, same session_id
  - 401: Invalid session, token mismatch, or lost rotation race
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldSessionID, input.SessionID).
		UUID(FieldSessionID, input.SessionID).
		Required(FieldRefreshToken, input.RefreshToken)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tokens, err := handler.authService.Refresh(request.Context(), input.SessionID, input.RefreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, tokens)
}

/*
logout deactivates one of the requester's device sessions.

POST /api/v1/auth/logout

Response:
  - 200: message confirmation
  - 403: Session belongs to another user
  - 404: Session does not exist
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input logoutRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldSessionID, input.SessionID).UUID(FieldSessionID, input.SessionID)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Logout(request.Context(), identity.UserID, input.SessionID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{"message": "Logged out from this device"})
}

/*
logoutAll deactivates every session belonging to the requester.

POST /api/v1/auth/logout_all
*/
func (handler *Handler) logoutAll(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	count, err := handler.authService.LogoutAll(request.Context(), identity.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		"message":          "Logged out from all devices",
		"sessions_revoked": count,
	})
}

/*
listOwnSessions returns the requester's device sessions, newest first.

GET /api/v1/auth/sessions
*/
func (handler *Handler) listOwnSessions(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	sessions, err := handler.authService.ListUserSessions(request.Context(), identity.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, sessions)
}

/*
me returns the authenticated user's profile.

GET /api/v1/auth/me
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Me(request.Context(), identity.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
listSessions returns a filtered, paginated page of the requester's sessions.

GET /api/v1/sessions

The scope is always the caller's own sessions, regardless of role.

Query parameters: device_name, device_os, ip, search, date_from, date_to
(RFC 3339), include_inactive, page, limit.
*/
func (handler *Handler) listSessions(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	filter := SessionFilter{
		DeviceName:      query.String(request, "device_name"),
		DeviceOS:        query.String(request, "device_os"),
		IPAddress:       query.String(request, "ip"),
		Search:          query.String(request, "search"),
		DateFrom:        query.Time(request, "date_from"),
		DateTo:          query.Time(request, "date_to"),
		IncludeInactive: query.Bool(request, "include_inactive"),
	}

	params := pagination.FromRequest(request)

	sessions, meta, err := handler.authService.ListSessions(request.Context(), identity.UserID, filter, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, sessions, meta)
}
