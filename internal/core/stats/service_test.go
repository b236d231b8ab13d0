// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStatsRepo struct {
	calls     int
	dashboard Dashboard
}

func (repo *fakeStatsRepo) Dashboard(_ context.Context, _ time.Time) (*Dashboard, error) {
	repo.calls++
	clone := repo.dashboard
	return &clone, nil
}

func TestDashboard_PassesThroughAggregates(t *testing.T) {
	repo := &fakeStatsRepo{dashboard: Dashboard{
		Users:    UserStats{Total: 12, NewLast30Days: 3},
		Projects: ProjectStats{Total: 4},
		Tasks: TaskStats{
			Total:    40,
			Overdue:  5,
			ByStatus: map[string]int{"todo": 10, "in_progress": 20, "review": 4, "done": 6},
		},
		Sessions: SessionStats{Active: 7},
	}}
	service := NewService(repo, nil)

	dashboard, err := service.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 12, dashboard.Users.Total)
	assert.Equal(t, 3, dashboard.Users.NewLast30Days)
	assert.Equal(t, 4, dashboard.Projects.Total)
	assert.Equal(t, 5, dashboard.Tasks.Overdue)
	assert.Equal(t, 20, dashboard.Tasks.ByStatus["in_progress"])
	assert.Equal(t, 7, dashboard.Sessions.Active)
}

func TestDashboard_NoCacheRecomputesEveryCall(t *testing.T) {
	repo := &fakeStatsRepo{}
	service := NewService(repo, nil)

	_, err := service.Dashboard(context.Background())
	require.NoError(t, err)
	_, err = service.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, repo.calls)
}
