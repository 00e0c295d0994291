package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/inventory-agent/internal/domain"
)

type orderRepository struct {
	db *DB
}

// NewOrderRepository creates the postgres-backed order store.
func NewOrderRepository(db *DB) *orderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) SaveOrder(ctx context.Context, record *domain.OrderRecord) error {
	query := `
		INSERT INTO orders (
			order_id, product_id, action, quantity, confidence, status,
			llm_provider, reasoning, safety_stock, reorder_point,
			current_stock, shortage, estimated_cost, created_at, executed_at
		) VALUES (
			:order_id, :product_id, :action, :quantity, :confidence, :status,
			:llm_provider, :reasoning, :safety_stock, :reorder_point,
			:current_stock, :shortage, :estimated_cost, :created_at, :executed_at
		)
		ON CONFLICT (order_id) DO NOTHING
	`

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if record.Status == domain.StatusExecuted && record.ExecutedAt == nil {
		now := time.Now().UTC()
		record.ExecutedAt = &now
	}

	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("failed to save order %s: %w", record.OrderID, err)
	}

	return nil
}

func (r *orderRepository) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.OrderRecord, error) {
	query := `SELECT * FROM orders WHERE 1=1`
	args := []interface{}{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.ProductID != "" {
		args = append(args, filter.ProductID)
		query += fmt.Sprintf(" AND product_id = $%d", len(args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	orders := []domain.OrderRecord{}
	if err := r.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, nil
}

func (r *orderRepository) GetOrder(ctx context.Context, orderID string) (*domain.OrderRecord, error) {
	var record domain.OrderRecord
	err := r.db.GetContext(ctx, &record, `SELECT * FROM orders WHERE order_id = $1`, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order %s: %w", orderID, err)
	}

	return &record, nil
}

// ReviewOrder applies the approval decision and its audit row in one
// transaction, so a crash between the two never leaves an unaudited
// status change.
func (r *orderRepository) ReviewOrder(ctx context.Context, orderID, status, approvedBy, userIP string) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE orders SET status = $1, approved_by = $2, approved_at = $3 WHERE order_id = $4`,
			status, approvedBy, time.Now().UTC(), orderID)
		if err != nil {
			return fmt.Errorf("failed to update order %s: %w", orderID, err)
		}
		if rows, err := res.RowsAffected(); err == nil && rows == 0 {
			return fmt.Errorf("order %s not found", orderID)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO audit_log (event_type, order_id, details, user_ip, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			"order_"+status, orderID, "by "+approvedBy, userIP, time.Now().UTC()); err != nil {
			return fmt.Errorf("failed to log review audit for order %s: %w", orderID, err)
		}

		return nil
	})
}

func (r *orderRepository) GetDashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	stats := &domain.DashboardStats{
		StatusBreakdown: make(map[string]int),
		RecentOrders:    []domain.OrderRecord{},
	}

	if err := r.db.GetContext(ctx, &stats.TotalOrders, `SELECT COUNT(*) FROM orders`); err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	rows, err := r.db.QueryxContext(ctx, `SELECT status, COUNT(*) AS count FROM orders GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to query status breakdown: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status breakdown: %w", err)
		}
		stats.StatusBreakdown[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate status breakdown: %w", err)
	}

	if err := r.db.SelectContext(ctx, &stats.RecentOrders,
		`SELECT * FROM orders ORDER BY created_at DESC LIMIT 10`); err != nil {
		return nil, fmt.Errorf("failed to query recent orders: %w", err)
	}

	var avg sql.NullFloat64
	if err := r.db.GetContext(ctx, &avg, `SELECT AVG(confidence) FROM orders`); err != nil {
		return nil, fmt.Errorf("failed to query average confidence: %w", err)
	}
	if avg.Valid {
		stats.AverageConfidence = avg.Float64
	}

	return stats, nil
}

func (r *orderRepository) LogAudit(ctx context.Context, event *domain.AuditEvent) error {
	query := `
		INSERT INTO audit_log (event_type, order_id, product_id, details, user_ip, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		event.EventType, event.OrderID, event.ProductID, event.Details, event.UserIP, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to log audit event: %w", err)
	}

	return nil
}
