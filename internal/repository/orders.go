// Package repository defines the persistence contracts for finished
// decisions.
package repository

import (
	"context"

	"github.com/andresuchdata/inventory-agent/internal/domain"
)

// OrderRepository persists generated orders and their approval lifecycle.
type OrderRepository interface {
	SaveOrder(ctx context.Context, record *domain.OrderRecord) error
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.OrderRecord, error)
	GetOrder(ctx context.Context, orderID string) (*domain.OrderRecord, error)

	// ReviewOrder applies an approval decision (approved or rejected) and
	// writes its audit row atomically.
	ReviewOrder(ctx context.Context, orderID, status, approvedBy, userIP string) error

	GetDashboardStats(ctx context.Context) (*domain.DashboardStats, error)
	LogAudit(ctx context.Context, event *domain.AuditEvent) error
}
