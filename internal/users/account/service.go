// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

package account

import (
	"context"
	"strings"
	"time"

	"github.com/ducpham/taskora/internal/platform/apperr"
	"github.com/ducpham/taskora/internal/platform/sec"
	"github.com/ducpham/taskora/internal/platform/validate"
	"github.com/ducpham/taskora/internal/users/auth"
	"github.com/ducpham/taskora/pkg/pagination"
	"github.com/ducpham/taskora/pkg/pointer"
	"github.com/ducpham/taskora/pkg/uuid"
)

// # Inputs

// CreateInput carries the fields for admin user provisioning. Unlike
// self-registration, the role is taken from the payload.
type CreateInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UpdateInput carries a partial profile update. Nil fields are untouched.
type UpdateInput struct {
	Email    *string `json:"email"`
	Username *string `json:"username"`
	FullName *string `json:"full_name"`
}

// RoleChange reports the outcome of a role update.
type RoleChange struct {
	ID      string       `json:"id"`
	OldRole sec.UserRole `json:"old_role"`
	NewRole sec.UserRole `json:"new_role"`
}

// # Service

// Service implements user management on top of the shared users table.
type Service struct {
	userRepository    auth.UserRepository
	accountRepository Repository
	sessionRevoker    SessionRevoker
	passwordHasher    *sec.PasswordHasher
}

/*
NewService wires a user management service.

Parameters:
  - userRepository: auth.UserRepository for creation and uniqueness checks
  - accountRepository: Repository for management operations
  - sessionRevoker: SessionRevoker used when deactivating accounts
  - passwordHasher: *sec.PasswordHasher

Returns:
  - *Service: The configured service
*/
func NewService(
	userRepository auth.UserRepository,
	accountRepository Repository,
	sessionRevoker SessionRevoker,
	passwordHasher *sec.PasswordHasher,
) *Service {
	return &Service{
		userRepository:    userRepository,
		accountRepository: accountRepository,
		sessionRevoker:    sessionRevoker,
		passwordHasher:    passwordHasher,
	}
}

/*
List returns a filtered page of users with pagination metadata.
*/
func (service *Service) List(
	ctx context.Context,
	filter Filter,
	params pagination.Params,
) ([]auth.User, pagination.Meta, error) {
	if filter.Role != "" {
		if _, err := sec.ParseRole(filter.Role); err != nil {
			return nil, pagination.Meta{}, apperr.ValidationError("Invalid role filter")
		}
	}

	users, total, err := service.accountRepository.List(ctx, filter, params)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return users, pagination.NewMeta(params.Page, params.Limit, total), nil
}

/*
Get returns a single user by ID.
*/
func (service *Service) Get(ctx context.Context, id string) (*auth.User, error) {
	if !uuid.IsValid(id) {
		return nil, apperr.NotFound("User")
	}
	user, err := service.accountRepository.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("User")
	}
	return user, nil
}

/*
Create provisions a user with an explicit role.

Parameters:
  - ctx: context.Context
  - input: CreateInput

Returns:
  - *auth.User: The created account
  - error: Validation, uniqueness, or persistence failures
*/
func (service *Service) Create(ctx context.Context, input CreateInput) (*auth.User, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	input.Username = strings.TrimSpace(input.Username)
	input.FullName = strings.TrimSpace(input.FullName)

	validator := validate.New().
		Required(auth.FieldEmail, input.Email).
		Email(auth.FieldEmail, input.Email).
		Required(auth.FieldUsername, input.Username).
		MinLen(auth.FieldUsername, input.Username, 3).
		MaxLen(auth.FieldUsername, input.Username, 50).
		Username(auth.FieldUsername, input.Username).
		Required(auth.FieldFullName, input.FullName).
		MaxLen(auth.FieldFullName, input.FullName, 255).
		Required(auth.FieldPassword, input.Password).
		MinLen(auth.FieldPassword, input.Password, 8).
		Required("role", input.Role)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	role, err := sec.ParseRole(input.Role)
	if err != nil {
		return nil, apperr.ValidationError("Invalid role")
	}

	if existing, _ := service.userRepository.FindByEmail(ctx, input.Email); existing != nil {
		return nil, apperr.Conflict("Email already registered")
	}
	if existing, _ := service.userRepository.FindByUsername(ctx, input.Username); existing != nil {
		return nil, apperr.Conflict("Username already taken")
	}

	passwordHash, err := service.passwordHasher.Hash(input.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	now := time.Now().UTC()
	user := &auth.User{
		ID:           uuid.New(),
		Email:        input.Email,
		Username:     input.Username,
		FullName:     input.FullName,
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := service.userRepository.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

/*
Update applies a partial profile update and returns the fresh record.
*/
func (service *Service) Update(ctx context.Context, id string, input UpdateInput) (*auth.User, error) {
	user, err := service.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	email := strings.TrimSpace(strings.ToLower(pointer.Fallback(input.Email, user.Email)))
	username := strings.TrimSpace(pointer.Fallback(input.Username, user.Username))
	fullName := strings.TrimSpace(pointer.Fallback(input.FullName, user.FullName))

	validator := validate.New().
		Required(auth.FieldEmail, email).
		Email(auth.FieldEmail, email).
		Required(auth.FieldUsername, username).
		MinLen(auth.FieldUsername, username, 3).
		MaxLen(auth.FieldUsername, username, 50).
		Username(auth.FieldUsername, username).
		Required(auth.FieldFullName, fullName).
		MaxLen(auth.FieldFullName, fullName, 255)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if email != user.Email {
		if existing, _ := service.userRepository.FindByEmail(ctx, email); existing != nil {
			return nil, apperr.Conflict("Email already registered")
		}
	}
	if username != user.Username {
		if existing, _ := service.userRepository.FindByUsername(ctx, username); existing != nil {
			return nil, apperr.Conflict("Username already taken")
		}
	}

	user.Email = email
	user.Username = username
	user.FullName = fullName
	user.UpdatedAt = time.Now().UTC()

	if err := service.accountRepository.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

/*
ChangeRole replaces a user's role and reports the transition.
*/
func (service *Service) ChangeRole(ctx context.Context, id, newRole string) (*RoleChange, error) {
	role, err := sec.ParseRole(newRole)
	if err != nil {
		return nil, apperr.ValidationError("Invalid role")
	}

	user, err := service.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	oldRole := user.Role
	if err := service.accountRepository.UpdateRole(ctx, user.ID, string(role)); err != nil {
		return nil, err
	}
	return &RoleChange{ID: user.ID, OldRole: oldRole, NewRole: role}, nil
}

/*
SetActive toggles an account. Deactivation revokes every live session so
existing access tokens die with the account.
*/
func (service *Service) SetActive(ctx context.Context, id string, active bool) (*auth.User, error) {
	user, err := service.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if user.IsActive == active {
		return user, nil
	}
	if err := service.accountRepository.SetActive(ctx, user.ID, active); err != nil {
		return nil, err
	}
	if !active && service.sessionRevoker != nil {
		if _, err := service.sessionRevoker.DeactivateAll(ctx, user.ID); err != nil {
			return nil, err
		}
	}
	user.IsActive = active
	user.UpdatedAt = time.Now().UTC()
	return user, nil
}

/*
Delete permanently removes an account.
*/
func (service *Service) Delete(ctx context.Context, id string) error {
	user, err := service.Get(ctx, id)
	if err != nil {
		return err
	}
	return service.accountRepository.Delete(ctx, user.ID)
}
