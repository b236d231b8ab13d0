// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

package stats

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ducpham/taskora/internal/platform/constants"
	"github.com/ducpham/taskora/internal/platform/ctxutil"
)

// CacheTTL bounds dashboard staleness. The aggregates span four tables,
// so a short cache keeps the admin dashboard off the hot path.
const CacheTTL = 30 * time.Second

const cacheKey = constants.RedisPrefixStats + "v1"

// Service computes and caches the admin dashboard.
type Service struct {
	statsRepository Repository
	cache           *redis.Client
	clock           func() time.Time
}

// NewService wires a stats service. A nil cache disables caching.
func NewService(statsRepository Repository, cache *redis.Client) *Service {
	return &Service{
		statsRepository: statsRepository,
		cache:           cache,
		clock:           func() time.Time { return time.Now().UTC() },
	}
}

/*
Dashboard returns the workspace snapshot, serving from Redis when a
fresh copy exists. Cache failures degrade to a direct computation.

Returns:
  - *Dashboard: The aggregated snapshot
  - error: Aggregate query failures
*/
func (service *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	if cached := service.readCache(ctx); cached != nil {
		return cached, nil
	}

	dashboard, err := service.statsRepository.Dashboard(ctx, service.clock())
	if err != nil {
		return nil, err
	}

	service.writeCache(ctx, dashboard)
	return dashboard, nil
}

func (service *Service) readCache(ctx context.Context) *Dashboard {
	if service.cache == nil {
		return nil
	}

	payload, err := service.cache.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			ctxutil.GetLogger(ctx).Warn("stats cache read failed", "error", err)
		}
		return nil
	}

	var dashboard Dashboard
	if err := json.Unmarshal(payload, &dashboard); err != nil {
		return nil
	}
	return &dashboard
}

func (service *Service) writeCache(ctx context.Context, dashboard *Dashboard) {
	if service.cache == nil {
		return
	}

	payload, err := json.Marshal(dashboard)
	if err != nil {
		return
	}
	if err := service.cache.Set(ctx, cacheKey, payload, CacheTTL).Err(); err != nil {
		ctxutil.GetLogger(ctx).Warn("stats cache write failed", "error", err)
	}
}
