package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/inventory-agent/internal/cache"
	"github.com/andresuchdata/inventory-agent/internal/domain"
	"github.com/andresuchdata/inventory-agent/internal/repository"
)

// OrderHandler serves the persisted-order and approval endpoints.
type OrderHandler struct {
	repo  repository.OrderRepository
	cache cache.DashboardCache
}

func NewOrderHandler(repo repository.OrderRepository, dashCache cache.DashboardCache) *OrderHandler {
	if dashCache == nil {
		dashCache = cache.NewNoopDashboardCache()
	}
	return &OrderHandler{repo: repo, cache: dashCache}
}

// List returns persisted orders, optionally filtered by status and product.
// GET /api/v1/orders
func (h *OrderHandler) List(c *gin.Context) {
	filter := domain.OrderFilter{
		Status:    strings.TrimSpace(c.Query("status")),
		ProductID: strings.TrimSpace(c.Query("product_id")),
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil && limit > 0 {
		filter.Limit = limit
	}

	orders, err := h.repo.ListOrders(c.Request.Context(), filter)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to list orders: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

// Get returns a single order by its generated ID.
// GET /api/v1/orders/:order_id
func (h *OrderHandler) Get(c *gin.Context) {
	orderID := c.Param("order_id")

	order, err := h.repo.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load order: "+err.Error())
		return
	}
	if order == nil {
		errorResponse(c, http.StatusNotFound, "order not found")
		return
	}

	c.JSON(http.StatusOK, order)
}

type approvalRequest struct {
	ApprovedBy string `json:"approved_by" binding:"required"`
}

// Approve marks a pending order as approved.
// POST /api/v1/orders/:order_id/approve
func (h *OrderHandler) Approve(c *gin.Context) {
	h.review(c, "approved")
}

// Reject marks a pending order as rejected.
// POST /api/v1/orders/:order_id/reject
func (h *OrderHandler) Reject(c *gin.Context) {
	h.review(c, "rejected")
}

func (h *OrderHandler) review(c *gin.Context, status string) {
	orderID := c.Param("order_id")

	var req approvalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "approved_by is required")
		return
	}

	ctx := c.Request.Context()
	if err := h.repo.ReviewOrder(ctx, orderID, status, req.ApprovedBy, c.ClientIP()); err != nil {
		errorResponse(c, http.StatusNotFound, err.Error())
		return
	}

	if err := h.cache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate dashboard cache")
	}

	c.JSON(http.StatusOK, gin.H{"order_id": orderID, "status": status})
}

// DashboardStats summarizes persisted orders, cached briefly.
// GET /api/v1/dashboard/stats
func (h *OrderHandler) DashboardStats(c *gin.Context) {
	ctx := c.Request.Context()

	if stats, hit, err := h.cache.GetStats(ctx); err == nil && hit {
		c.JSON(http.StatusOK, stats)
		return
	} else if err != nil {
		log.Warn().Err(err).Msg("dashboard cache read failed")
	}

	stats, err := h.repo.GetDashboardStats(ctx)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to compute dashboard stats: "+err.Error())
		return
	}

	if err := h.cache.SetStats(ctx, stats); err != nil {
		log.Warn().Err(err).Msg("dashboard cache write failed")
	}

	c.JSON(http.StatusOK, stats)
}
