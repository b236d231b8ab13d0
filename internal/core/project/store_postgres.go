// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

package project

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ducpham/taskora/internal/platform/dberr"
	"github.com/ducpham/taskora/internal/platform/sec"
	"github.com/ducpham/taskora/pkg/pagination"
)

const projectColumns = `id, name, description, status, owner_id, start_date, end_date, created_at, updated_at`

// PostgresRepository implements Repository backed by pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns a Postgres-backed project repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func scanProject(row pgx.Row) (*Project, error) {
	var record Project
	err := row.Scan(
		&record.ID,
		&record.Name,
		&record.Description,
		&record.Status,
		&record.OwnerID,
		&record.StartDate,
		&record.EndDate,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (repository *PostgresRepository) Create(ctx context.Context, record *Project) error {
	query := `
		INSERT INTO projects (id, name, description, status, owner_id, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repository.pool.Exec(ctx, query,
		record.ID, record.Name, record.Description, record.Status, record.OwnerID,
		record.StartDate, record.EndDate, record.CreatedAt, record.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "project_create_failed")
	}
	return nil
}

func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM projects WHERE id = $1`, projectColumns)
	record, err := scanProject(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "project_find_failed")
	}
	return record, nil
}

func (repository *PostgresRepository) Update(ctx context.Context, record *Project) error {
	query := `
		UPDATE projects
		SET name = $2, description = $3, status = $4, start_date = $5, end_date = $6, updated_at = $7
		WHERE id = $1`
	tag, err := repository.pool.Exec(ctx, query,
		record.ID, record.Name, record.Description, record.Status,
		record.StartDate, record.EndDate, record.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "project_update_failed")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := repository.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return dberr.Wrap(err, "project_delete_failed")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) List(
	ctx context.Context,
	filter Filter,
	scope Scope,
	params pagination.Params,
) ([]Project, int, error) {
	conditions := make([]string, 0, 5)
	arguments := make([]any, 0, 5)

	addCondition := func(clause string, value any) {
		arguments = append(arguments, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(arguments)))
	}

	// Role scoping comes first so every later filter narrows an already
	// authorized set.
	switch scope.Role {
	case sec.RoleManager:
		addCondition("owner_id = $%d", scope.UserID)
	case sec.RoleDeveloper:
		addCondition("id IN (SELECT project_id FROM tasks WHERE assigned_to = $%d)", scope.UserID)
	}

	if filter.Status != "" {
		addCondition("status = $%d", filter.Status)
	}
	if filter.Search != "" {
		arguments = append(arguments, "%"+strings.ToLower(filter.Search)+"%")
		placeholder := len(arguments)
		conditions = append(conditions, fmt.Sprintf(
			"(lower(name) LIKE $%d OR lower(description) LIKE $%d)",
			placeholder, placeholder,
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
	countQuery := `SELECT count(*) FROM projects` + whereClause
	if err := repository.pool.QueryRow(ctx, countQuery, arguments...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "project_count_failed")
	}

	pageQuery := fmt.Sprintf(
		`SELECT %s FROM projects%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		projectColumns, whereClause, len(arguments)+1, len(arguments)+2,
	)
	arguments = append(arguments, params.Limit, params.Offset())

	rows, err := repository.pool.Query(ctx, pageQuery, arguments...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "project_list_failed")
	}
	defer rows.Close()

	projects := make([]Project, 0, params.Limit)
	for rows.Next() {
		record, err := scanProject(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "project_scan_failed")
		}
		projects = append(projects, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "project_list_failed")
	}
	return projects, total, nil
}

func (repository *PostgresRepository) HasAssignment(ctx context.Context, projectID, userID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM tasks WHERE project_id = $1 AND assigned_to = $2)`
	var assigned bool
	if err := repository.pool.QueryRow(ctx, query, projectID, userID).Scan(&assigned); err != nil {
		return false, dberr.Wrap(err, "project_assignment_check_failed")
	}
	return assigned, nil
}

func (repository *PostgresRepository) TaskStats(ctx context.Context, projectID string, now time.Time) (*TaskStats, error) {
	// One round trip with FILTER aggregates instead of seven queries.
	query := `
		SELECT
			count(*),
			count(*) FILTER (WHERE status = 'todo'),
			count(*) FILTER (WHERE status = 'in_progress'),
			count(*) FILTER (WHERE status = 'review'),
			count(*) FILTER (WHERE status = 'done'),
			count(*) FILTER (WHERE due_date < $2 AND status <> 'done'),
			count(*) FILTER (WHERE due_date >= $2 AND due_date <= $2 + interval '7 days' AND status <> 'done'),
			coalesce(sum(estimated_hours), 0),
			coalesce(sum(estimated_hours) FILTER (WHERE status = 'done'), 0)
		FROM tasks
		WHERE project_id = $1`

	var (
		stats      TaskStats
		todo       int
		inProgress int
		review     int
		done       int
	)
	err := repository.pool.QueryRow(ctx, query, projectID, now).Scan(
		&stats.Total,
		&todo,
		&inProgress,
		&review,
		&done,
		&stats.Overdue,
		&stats.DueNext7Days,
		&stats.TotalEstimatedHours,
		&stats.CompletedEstimatedHours,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "project_stats_failed")
	}

	stats.ByStatus = map[string]int{
		"todo":        todo,
		"in_progress": inProgress,
		"review":      review,
		"done":        done,
	}
	return &stats, nil
}
