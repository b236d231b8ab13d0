// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

package stats

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ducpham/taskora/internal/platform/dberr"
)

// PostgresRepository implements Repository backed by pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns a Postgres-backed stats repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (repository *PostgresRepository) Dashboard(ctx context.Context, now time.Time) (*Dashboard, error) {
	// Scalar subselects collapse the whole snapshot into one round trip.
	query := `
		SELECT
			(SELECT count(*) FROM users),
			(SELECT count(*) FROM users WHERE created_at >= $1 - interval '30 days'),
			(SELECT count(*) FROM projects),
			(SELECT count(*) FROM tasks),
			(SELECT count(*) FROM tasks WHERE due_date < $1 AND status <> 'done'),
			(SELECT count(*) FROM tasks WHERE status = 'todo'),
			(SELECT count(*) FROM tasks WHERE status = 'in_progress'),
			(SELECT count(*) FROM tasks WHERE status = 'review'),
			(SELECT count(*) FROM tasks WHERE status = 'done'),
			(SELECT count(*) FROM sessions WHERE is_active = TRUE)`

	var (
		dashboard  Dashboard
		todo       int
		inProgress int
		review     int
		done       int
	)
	err := repository.pool.QueryRow(ctx, query, now).Scan(
		&dashboard.Users.Total,
		&dashboard.Users.NewLast30Days,
		&dashboard.Projects.Total,
		&dashboard.Tasks.Total,
		&dashboard.Tasks.Overdue,
		&todo,
		&inProgress,
		&review,
		&done,
		&dashboard.Sessions.Active,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "stats_dashboard_failed")
	}

	dashboard.Tasks.ByStatus = map[string]int{
		"todo":        todo,
		"in_progress": inProgress,
		"review":      review,
		"done":        done,
	}
	return &dashboard, nil
}
