package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/inventory-agent/internal/domain"
	"github.com/andresuchdata/inventory-agent/internal/service"
	"github.com/andresuchdata/inventory-agent/internal/supply"
)

// InventoryHandler serves the decision trigger endpoints.
type InventoryHandler struct {
	service *service.DecisionService
}

func NewInventoryHandler(service *service.DecisionService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

type triggerRequest struct {
	ProductID     string    `json:"product_id" binding:"required"`
	Mode          string    `json:"mode"`
	CurrentStock  *float64  `json:"current_stock"`
	DemandHistory []float64 `json:"demand_history"`
	LeadTimeDays  *int      `json:"lead_time_days"`
	ServiceLevel  *float64  `json:"service_level"`
	UnitPrice     *float64  `json:"unit_price"`
	CallbackURL   string    `json:"callback_url"`
}

type batchRequest struct {
	ProductIDs []string `json:"product_ids" binding:"required,min=1"`
	Mode       string   `json:"mode"`
}

// Trigger runs one replenishment decision.
// POST /api/v1/inventory-trigger
func (h *InventoryHandler) Trigger(c *gin.Context) {
	var req triggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	mode := req.Mode
	if mode == "" {
		mode = supply.ModeMock
	}
	if mode != supply.ModeMock && mode != supply.ModeInput {
		errorResponse(c, http.StatusBadRequest, "mode must be 'mock' or 'input'")
		return
	}

	trigger := service.TriggerRequest{
		ProductID:   req.ProductID,
		Mode:        mode,
		CallbackURL: req.CallbackURL,
		ClientIP:    c.ClientIP(),
	}
	if mode == supply.ModeInput {
		trigger.Input = &supply.InputRequest{
			ProductID:     req.ProductID,
			CurrentStock:  req.CurrentStock,
			DemandHistory: req.DemandHistory,
			LeadTimeDays:  req.LeadTimeDays,
			ServiceLevel:  req.ServiceLevel,
			UnitPrice:     req.UnitPrice,
		}
	}

	result := h.service.Process(c.Request.Context(), trigger)
	if !result.OK() {
		errorResponse(c, decisionStatus(result.Err), result.Err.Error())
		return
	}

	c.JSON(http.StatusOK, result)
}

// TriggerBatch runs decisions for multiple products concurrently.
// POST /api/v1/inventory-trigger-batch
func (h *InventoryHandler) TriggerBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	mode := req.Mode
	if mode == "" {
		mode = supply.ModeMock
	}
	if mode != supply.ModeMock {
		errorResponse(c, http.StatusBadRequest, "batch triggers support mock mode only")
		return
	}

	result := h.service.ProcessBatch(c.Request.Context(), req.ProductIDs, mode)
	c.JSON(http.StatusOK, result)
}

// Debug returns the demand context and derived thresholds for a product
// without invoking a reasoning provider.
// GET /api/v1/debug/:product_id
func (h *InventoryHandler) Debug(c *gin.Context) {
	productID := c.Param("product_id")

	dc, metrics, err := h.service.DebugCalculation(c.Request.Context(), productID, supply.ModeMock)
	if err != nil {
		var derr *domain.DecisionError
		if errors.As(err, &derr) {
			errorResponse(c, decisionStatus(derr), derr.Error())
			return
		}
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product_id": productID,
		"context":    dc,
		"metrics":    metrics,
	})
}

func decisionStatus(err *domain.DecisionError) int {
	switch {
	case errors.Is(err, supply.ErrProductNotFound):
		return http.StatusNotFound
	case err.ClientError():
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
