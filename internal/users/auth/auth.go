// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

/*
Package auth implements the user identity and session management layer.

It defines the core domain entities (User, Session) and logic for
authentication, refresh-token rotation, and session lifecycle.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to user identity.
*/
package auth

import (
	"time"

	"github.com/ducpham/taskora/internal/platform/sec"
)

// # Domain Entities

// User represents a registered member of the Taskora platform.
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	Username     string       `json:"username"`
	FullName     string       `json:"full_name"`
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	Role         sec.UserRole `json:"role"`
	IsActive     bool         `json:"is_active"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Session represents a device login tracked by a rotating refresh token.
//
// The refresh token itself is never stored; only its SHA-256 hash. Rotation
// replaces the hash in place on the same row, so the session ID stays
// stable for the whole lifetime of the device login.
type Session struct {
	ID                    string    `json:"id"`
	UserID                string    `json:"user_id"`
	RefreshTokenHash      string    `json:"-"` // Hashed value of the refresh token. Omitted for security.
	DeviceName            string    `json:"device_name"`
	DeviceOS              string    `json:"device_os"`
	UserAgent             string    `json:"user_agent"`
	IPAddress             string    `json:"ip_address"`
	IsActive              bool      `json:"is_active"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	CreatedAt             time.Time `json:"created_at"`
	LastUsedAt            time.Time `json:"last_used_at"`
}

// TokenPair is the transport-ready result of a login or refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	SessionID    string `json:"session_id"`
	TokenType    string `json:"token_type"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldEmail        = "email"
	FieldUsername     = "username"
	FieldFullName     = "full_name"
	FieldPassword     = "password"
	FieldSessionID    = "session_id"
	FieldRefreshToken = "refresh_token"
)
