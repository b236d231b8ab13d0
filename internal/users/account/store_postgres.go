// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ducpham/taskora/internal/platform/dberr"
	"github.com/ducpham/taskora/internal/users/auth"
	"github.com/ducpham/taskora/pkg/pagination"
)

const accountColumns = `id, email, username, full_name, password_hash, role, is_active, created_at, updated_at`

// PostgresRepository implements Repository backed by the shared users table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns a Postgres-backed account repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func scanAccount(row pgx.Row) (*auth.User, error) {
	var user auth.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.FullName,
		&user.PasswordHash,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (repository *PostgresRepository) List(
	ctx context.Context,
	filter Filter,
	params pagination.Params,
) ([]auth.User, int, error) {
	conditions := make([]string, 0, 4)
	arguments := make([]any, 0, 4)

	addCondition := func(clause string, value any) {
		arguments = append(arguments, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(arguments)))
	}

	if filter.Role != "" {
		addCondition("role = $%d", filter.Role)
	}
	if filter.Search != "" {
		arguments = append(arguments, "%"+strings.ToLower(filter.Search)+"%")
		placeholder := len(arguments)
		conditions = append(conditions, fmt.Sprintf(
			"(lower(email) LIKE $%d OR lower(username) LIKE $%d OR lower(full_name) LIKE $%d)",
			placeholder, placeholder, placeholder,
		))
	}
	if filter.DateFrom != nil {
		addCondition("created_at >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		addCondition("created_at <= $%d", *filter.DateTo)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := `SELECT count(*) FROM users` + whereClause
	if err := repository.pool.QueryRow(ctx, countQuery, arguments...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "account_count_failed")
	}

	pageQuery := fmt.Sprintf(
		`SELECT %s FROM users%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		accountColumns, whereClause, len(arguments)+1, len(arguments)+2,
	)
	arguments = append(arguments, params.Limit, params.Offset())

	rows, err := repository.pool.Query(ctx, pageQuery, arguments...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "account_list_failed")
	}
	defer rows.Close()

	users := make([]auth.User, 0, params.Limit)
	for rows.Next() {
		user, err := scanAccount(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "account_scan_failed")
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "account_list_failed")
	}
	return users, total, nil
}

func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*auth.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, accountColumns)
	user, err := scanAccount(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "account_find_failed")
	}
	return user, nil
}

func (repository *PostgresRepository) Update(ctx context.Context, user *auth.User) error {
	query := `
		UPDATE users
		SET email = $2, username = $3, full_name = $4, updated_at = $5
		WHERE id = $1`
	tag, err := repository.pool.Exec(ctx, query,
		user.ID, user.Email, user.Username, user.FullName, user.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "account_update_failed")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) UpdateRole(ctx context.Context, userID, role string) error {
	query := `UPDATE users SET role = $2, updated_at = now() WHERE id = $1`
	tag, err := repository.pool.Exec(ctx, query, userID, role)
	if err != nil {
		return dberr.Wrap(err, "account_role_update_failed")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) SetActive(ctx context.Context, userID string, active bool) error {
	query := `UPDATE users SET is_active = $2, updated_at = now() WHERE id = $1`
	tag, err := repository.pool.Exec(ctx, query, userID, active)
	if err != nil {
		return dberr.Wrap(err, "account_activate_failed")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := repository.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return dberr.Wrap(err, "account_delete_failed")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
