// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

package task

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ducpham/taskora/internal/platform/dberr"
	"github.com/ducpham/taskora/internal/platform/sec"
	"github.com/ducpham/taskora/pkg/pagination"
)

const taskColumns = `id, title, description, status, priority, project_id, assigned_to, created_by, due_date, estimated_hours, created_at, updated_at`

// PostgresRepository implements Repository backed by pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns a Postgres-backed task repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func scanTask(row pgx.Row) (*Task, error) {
	var record Task
	err := row.Scan(
		&record.ID,
		&record.Title,
		&record.Description,
		&record.Status,
		&record.Priority,
		&record.ProjectID,
		&record.AssignedTo,
		&record.CreatedBy,
		&record.DueDate,
		&record.EstimatedHours,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (repository *PostgresRepository) Create(ctx context.Context, record *Task) error {
	query := `
		INSERT INTO tasks (id, title, description, status, priority, project_id, assigned_to, created_by, due_date, estimated_hours, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := repository.pool.Exec(ctx, query,
		record.ID, record.Title, record.Description, record.Status, record.Priority,
		record.ProjectID, record.AssignedTo, record.CreatedBy, record.DueDate,
		record.EstimatedHours, record.CreatedAt, record.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "task_create_failed")
	}
	return nil
}

func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE id = $1`, taskColumns)
	record, err := scanTask(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "task_find_failed")
	}
	return record, nil
}

func (repository *PostgresRepository) Update(ctx context.Context, record *Task) error {
	query := `
		UPDATE tasks
		SET title = $2, description = $3, status = $4, priority = $5, assigned_to = $6,
		    due_date = $7, estimated_hours = $8, updated_at = $9
		WHERE id = $1`
	tag, err := repository.pool.Exec(ctx, query,
		record.ID, record.Title, record.Description, record.Status, record.Priority,
		record.AssignedTo, record.DueDate, record.EstimatedHours, record.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "task_update_failed")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := repository.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return dberr.Wrap(err, "task_delete_failed")
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
) ([]Task, int, error) {
	conditions := make([]string, 0, 8)
	arguments := make([]any, 0, 8)

	addCondition := func(clause string, value any) {
		arguments = append(arguments, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(arguments)))
	}

	switch scope.Role {
	case sec.RoleManager:
		addCondition("project_id IN (SELECT id FROM projects WHERE owner_id = $%d)", scope.UserID)
	case sec.RoleDeveloper:
		addCondition("assigned_to = $%d", scope.UserID)
	}

	if filter.ProjectID != "" {
		addCondition("project_id = $%d", filter.ProjectID)
	}
	if filter.AssignedTo != "" {
		addCondition("assigned_to = $%d", filter.AssignedTo)
	}
	if filter.Status != "" {
		addCondition("status = $%d", filter.Status)
	}
	if filter.Priority != "" {
		addCondition("priority = $%d", filter.Priority)
	}
	if filter.Search != "" {
		arguments = append(arguments, "%"+strings.ToLower(filter.Search)+"%")
		placeholder := len(arguments)
		conditions = append(conditions, fmt.Sprintf(
			"(lower(title) LIKE $%d OR lower(description) LIKE $%d)",
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
	countQuery := `SELECT count(*) FROM tasks` + whereClause
	if err := repository.pool.QueryRow(ctx, countQuery, arguments...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "task_count_failed")
	}

	pageQuery := fmt.Sprintf(
		`SELECT %s FROM tasks%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		taskColumns, whereClause, len(arguments)+1, len(arguments)+2,
	)
	arguments = append(arguments, params.Limit, params.Offset())

	rows, err := repository.pool.Query(ctx, pageQuery, arguments...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "task_list_failed")
	}
	defer rows.Close()

	tasks := make([]Task, 0, params.Limit)
	for rows.Next() {
		record, err := scanTask(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "task_scan_failed")
		}
		tasks = append(tasks, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "task_list_failed")
	}
	return tasks, total, nil
}

func (repository *PostgresRepository) ListByProject(ctx context.Context, projectID, assigneeID string) ([]Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE project_id = $1`, taskColumns)
	arguments := []any{projectID}
	if assigneeID != "" {
		query += ` AND assigned_to = $2`
		arguments = append(arguments, assigneeID)
	}
	query += ` ORDER BY created_at DESC`

	return repository.queryTasks(ctx, query, arguments...)
}

func (repository *PostgresRepository) ListByAssignee(ctx context.Context, userID string) ([]Task, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM tasks WHERE assigned_to = $1 ORDER BY created_at DESC`, taskColumns)
	return repository.queryTasks(ctx, query, userID)
}

func (repository *PostgresRepository) queryTasks(ctx context.Context, query string, arguments ...any) ([]Task, error) {
	rows, err := repository.pool.Query(ctx, query, arguments...)
	if err != nil {
		return nil, dberr.Wrap(err, "task_list_failed")
	}
	defer rows.Close()

	tasks := make([]Task, 0)
	for rows.Next() {
		record, err := scanTask(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "task_scan_failed")
		}
		tasks = append(tasks, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "task_list_failed")
	}
	return tasks, nil
}
