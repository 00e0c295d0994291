// Package cache provides optional redis-backed memoization for mock data
// lookups and dashboard statistics, with noop fallbacks when redis is
// disabled or unreachable.
package cache

import (
	"context"

	"github.com/andresuchdata/inventory-agent/internal/domain"
)

// SupplyCache memoizes mock data-supplier lookups.
type SupplyCache interface {
	Get(ctx context.Context, productID string) (domain.DemandContext, bool, error)
	Set(ctx context.Context, productID string, dc domain.DemandContext) error
}

// DashboardCache memoizes dashboard statistics queries.
type DashboardCache interface {
	GetStats(ctx context.Context) (*domain.DashboardStats, bool, error)
	SetStats(ctx context.Context, stats *domain.DashboardStats) error
	Invalidate(ctx context.Context) error
}

type noopSupplyCache struct{}

// NewNoopSupplyCache returns a cache that never hits.
func NewNoopSupplyCache() SupplyCache { return noopSupplyCache{} }

func (noopSupplyCache) Get(context.Context, string) (domain.DemandContext, bool, error) {
	return domain.DemandContext{}, false, nil
}

func (noopSupplyCache) Set(context.Context, string, domain.DemandContext) error { return nil }

type noopDashboardCache struct{}

// NewNoopDashboardCache returns a cache that never hits.
func NewNoopDashboardCache() DashboardCache { return noopDashboardCache{} }

func (noopDashboardCache) GetStats(context.Context) (*domain.DashboardStats, bool, error) {
	return nil, false, nil
}

func (noopDashboardCache) SetStats(context.Context, *domain.DashboardStats) error { return nil }

func (noopDashboardCache) Invalidate(context.Context) error { return nil }
