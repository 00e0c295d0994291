package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/inventory-agent/internal/domain"
)

type reviewCall struct {
	orderID    string
	status     string
	approvedBy string
	userIP     string
}

// fakeOrderRepo serves a fixed order set and records review calls.
type fakeOrderRepo struct {
	orders  map[string]*domain.OrderRecord
	reviews []reviewCall
	stats   *domain.DashboardStats
}

func (r *fakeOrderRepo) SaveOrder(context.Context, *domain.OrderRecord) error { return nil }

func (r *fakeOrderRepo) ListOrders(_ context.Context, filter domain.OrderFilter) ([]domain.OrderRecord, error) {
	var out []domain.OrderRecord
	for _, o := range r.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func (r *fakeOrderRepo) GetOrder(_ context.Context, orderID string) (*domain.OrderRecord, error) {
	return r.orders[orderID], nil
}

func (r *fakeOrderRepo) ReviewOrder(_ context.Context, orderID, status, approvedBy, userIP string) error {
	order, ok := r.orders[orderID]
	if !ok {
		return fmt.Errorf("order %s not found", orderID)
	}
	order.Status = status
	r.reviews = append(r.reviews, reviewCall{orderID, status, approvedBy, userIP})
	return nil
}

func (r *fakeOrderRepo) GetDashboardStats(context.Context) (*domain.DashboardStats, error) {
	return r.stats, nil
}

func (r *fakeOrderRepo) LogAudit(context.Context, *domain.AuditEvent) error { return nil }

// countingDashboardCache memoizes stats in memory and counts hits.
type countingDashboardCache struct {
	stats *domain.DashboardStats
	gets  int
	sets  int
}

func (c *countingDashboardCache) GetStats(context.Context) (*domain.DashboardStats, bool, error) {
	c.gets++
	return c.stats, c.stats != nil, nil
}

func (c *countingDashboardCache) SetStats(_ context.Context, stats *domain.DashboardStats) error {
	c.sets++
	c.stats = stats
	return nil
}

func (c *countingDashboardCache) Invalidate(context.Context) error {
	c.stats = nil
	return nil
}

func orderTestRouter(t *testing.T, repo *fakeOrderRepo, dashCache *countingDashboardCache) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewOrderHandler(repo, dashCache)
	router := gin.New()
	router.GET("/orders", h.List)
	router.GET("/orders/:order_id", h.Get)
	router.POST("/orders/:order_id/approve", h.Approve)
	router.POST("/orders/:order_id/reject", h.Reject)
	router.GET("/dashboard/stats", h.DashboardStats)
	return router
}

func pendingOrder() *domain.OrderRecord {
	return &domain.OrderRecord{
		OrderID:   "PO-20250115-103000-STEEL_SHEETS",
		ProductID: "STEEL_SHEETS",
		Action:    domain.ActionRestock,
		Quantity:  750,
		Status:    domain.StatusPendingReview,
	}
}

func TestOrderGet(t *testing.T) {
	order := pendingOrder()
	repo := &fakeOrderRepo{orders: map[string]*domain.OrderRecord{order.OrderID: order}}
	router := orderTestRouter(t, repo, &countingDashboardCache{})

	req := httptest.NewRequest(http.MethodGet, "/orders/"+order.OrderID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var got domain.OrderRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "STEEL_SHEETS", got.ProductID)
}

func TestOrderGetNotFound(t *testing.T) {
	router := orderTestRouter(t, &fakeOrderRepo{orders: map[string]*domain.OrderRecord{}}, &countingDashboardCache{})

	req := httptest.NewRequest(http.MethodGet, "/orders/PO-unknown", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderApprove(t *testing.T) {
	order := pendingOrder()
	repo := &fakeOrderRepo{orders: map[string]*domain.OrderRecord{order.OrderID: order}}
	dashCache := &countingDashboardCache{stats: &domain.DashboardStats{TotalOrders: 1}}
	router := orderTestRouter(t, repo, dashCache)

	req := httptest.NewRequest(http.MethodPost, "/orders/"+order.OrderID+"/approve",
		strings.NewReader(`{"approved_by": "ops@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.Len(t, repo.reviews, 1)
	assert.Equal(t, "approved", repo.reviews[0].status)
	assert.Equal(t, "ops@example.com", repo.reviews[0].approvedBy)
	assert.NotEmpty(t, repo.reviews[0].userIP)
	assert.Equal(t, "approved", order.Status)
	assert.Nil(t, dashCache.stats, "stale dashboard stats are invalidated on review")
}

func TestOrderRejectUnknown(t *testing.T) {
	repo := &fakeOrderRepo{orders: map[string]*domain.OrderRecord{}}
	router := orderTestRouter(t, repo, &countingDashboardCache{})

	req := httptest.NewRequest(http.MethodPost, "/orders/PO-unknown/reject",
		strings.NewReader(`{"approved_by": "ops@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, repo.reviews)
}

func TestOrderApproveRequiresApprover(t *testing.T) {
	order := pendingOrder()
	repo := &fakeOrderRepo{orders: map[string]*domain.OrderRecord{order.OrderID: order}}
	router := orderTestRouter(t, repo, &countingDashboardCache{})

	req := httptest.NewRequest(http.MethodPost, "/orders/"+order.OrderID+"/approve",
		strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, repo.reviews)
}

func TestDashboardStatsUsesCache(t *testing.T) {
	repo := &fakeOrderRepo{stats: &domain.DashboardStats{TotalOrders: 3}}
	dashCache := &countingDashboardCache{}
	router := orderTestRouter(t, repo, dashCache)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/dashboard/stats", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var stats domain.DashboardStats
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
		assert.Equal(t, 3, stats.TotalOrders)
	}

	assert.Equal(t, 2, dashCache.gets)
	assert.Equal(t, 1, dashCache.sets, "second request is served from cache")
}
