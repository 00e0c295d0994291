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

	"github.com/andresuchdata/inventory-agent/internal/action"
	"github.com/andresuchdata/inventory-agent/internal/domain"
	"github.com/andresuchdata/inventory-agent/internal/service"
	"github.com/andresuchdata/inventory-agent/internal/supply"
	"github.com/andresuchdata/inventory-agent/internal/workflow"
)

type stubReasoner struct {
	rec domain.Recommendation
}

func (s stubReasoner) Recommend(ctx context.Context, dc domain.DemandContext, m domain.SafetyMetrics) (domain.Recommendation, error) {
	return s.rec, nil
}

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	supplier := workflow.SupplierFunc(func(ctx context.Context, productID, mode string) (domain.DemandContext, error) {
		if productID != "STEEL_SHEETS" {
			return domain.DemandContext{}, fmt.Errorf("%w: %s", supply.ErrProductNotFound, productID)
		}
		return domain.DemandContext{
			ProductID:     productID,
			DemandHistory: []float64{100, 120, 110, 130, 125, 115, 140},
			LeadTimeDays:  7,
			ServiceLevel:  0.95,
			CurrentStock:  150,
			UnitPrice:     500,
		}, nil
	})
	reasoner := stubReasoner{rec: domain.Recommendation{
		Action:     domain.ActionRestock,
		Quantity:   750,
		Confidence: 0.85,
	}}
	wf := workflow.New(supplier, reasoner, action.NewBuilder(100), 0.6)
	svc := service.NewDecisionService(wf, nil, nil)

	h := NewInventoryHandler(svc)
	router := gin.New()
	router.POST("/inventory-trigger", h.Trigger)
	router.POST("/inventory-trigger-batch", h.TriggerBatch)
	router.GET("/debug/:product_id", h.Debug)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTriggerMockMode(t *testing.T) {
	router := testRouter(t)

	w := postJSON(router, "/inventory-trigger", `{"product_id": "STEEL_SHEETS"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result domain.DecisionResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, domain.StatusExecuted, result.Status)
	assert.Equal(t, domain.ActionRestock, result.RecommendedAction)
	require.NotNil(t, result.Order)
	assert.True(t, strings.HasPrefix(result.Order.OrderID, "PO-"))
}

func TestTriggerUnknownProduct(t *testing.T) {
	router := testRouter(t)

	w := postJSON(router, "/inventory-trigger", `{"product_id": "UNOBTAINIUM"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTriggerMissingProductID(t *testing.T) {
	router := testRouter(t)

	w := postJSON(router, "/inventory-trigger", `{"mode": "mock"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTriggerInvalidMode(t *testing.T) {
	router := testRouter(t)

	w := postJSON(router, "/inventory-trigger", `{"product_id": "STEEL_SHEETS", "mode": "prod"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTriggerInputMode(t *testing.T) {
	router := testRouter(t)

	body := `{
		"product_id": "CUSTOM_PART",
		"mode": "input",
		"current_stock": 150,
		"demand_history": [100, 120, 110, 130, 125, 115, 140],
		"lead_time_days": 7
	}`
	w := postJSON(router, "/inventory-trigger", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result domain.DecisionResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.InDelta(t, 897.57, result.ReorderPoint, 0.01)
}

func TestTriggerInputModeValidation(t *testing.T) {
	router := testRouter(t)

	// current_stock missing.
	body := `{
		"product_id": "CUSTOM_PART",
		"mode": "input",
		"demand_history": [100, 120, 110],
		"lead_time_days": 7
	}`
	w := postJSON(router, "/inventory-trigger", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTriggerBatch(t *testing.T) {
	router := testRouter(t)

	w := postJSON(router, "/inventory-trigger-batch", `{"product_ids": ["STEEL_SHEETS", "MISSING"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var batch service.BatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &batch))
	assert.Equal(t, 2, batch.Total)
	assert.Equal(t, 1, batch.Successful)
	assert.Equal(t, 1, batch.Failed)
}

func TestTriggerBatchRejectsEmptyList(t *testing.T) {
	router := testRouter(t)

	w := postJSON(router, "/inventory-trigger-batch", `{"product_ids": []}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDebugEndpoint(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/debug/STEEL_SHEETS", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		ProductID string               `json:"product_id"`
		Metrics   domain.SafetyMetrics `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, "STEEL_SHEETS", payload.ProductID)
	assert.InDelta(t, 897.57, payload.Metrics.ReorderPoint, 0.01)
	assert.True(t, payload.Metrics.NeedsRestock)
}

func TestDebugUnknownProduct(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/debug/UNOBTAINIUM", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
