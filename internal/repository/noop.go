package repository

import (
	"context"

	"github.com/andresuchdata/inventory-agent/internal/domain"
)

type noopOrderRepository struct{}

// NewNoopOrderRepository returns a store that discards writes and serves
// empty reads. Used when the service runs without a database.
func NewNoopOrderRepository() OrderRepository { return noopOrderRepository{} }

func (noopOrderRepository) SaveOrder(context.Context, *domain.OrderRecord) error { return nil }

func (noopOrderRepository) ListOrders(context.Context, domain.OrderFilter) ([]domain.OrderRecord, error) {
	return nil, nil
}

func (noopOrderRepository) GetOrder(context.Context, string) (*domain.OrderRecord, error) {
	return nil, nil
}

func (noopOrderRepository) ReviewOrder(context.Context, string, string, string, string) error {
	return nil
}

func (noopOrderRepository) GetDashboardStats(context.Context) (*domain.DashboardStats, error) {
	return &domain.DashboardStats{StatusBreakdown: map[string]int{}}, nil
}

func (noopOrderRepository) LogAudit(context.Context, *domain.AuditEvent) error { return nil }
