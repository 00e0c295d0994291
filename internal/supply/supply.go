// Package supply provides demand-context suppliers: a CSV-backed mock
// source for demos and a request-backed source for production input.
package supply

import (
	"context"
	"errors"
	"fmt"

	"github.com/andresuchdata/inventory-agent/internal/domain"
)

// Data source modes.
const (
	ModeMock  = "mock"
	ModeInput = "input"
)

// Defaults applied when optional fields are absent.
const (
	DefaultServiceLevel = 0.95
	DefaultUnitPrice    = 100.0
)

var (
	// ErrProductNotFound signals an unknown product in mock mode.
	ErrProductNotFound = errors.New("product not found in mock inventory data")

	// ErrNoDemandHistory signals a product without demand observations.
	ErrNoDemandHistory = errors.New("no demand history found for product")
)

// Supplier loads the demand context for a product.
type Supplier interface {
	Supply(ctx context.Context, productID, mode string) (domain.DemandContext, error)
}

// Static returns a supplier that always yields the given context. Used for
// input-mode requests that carry their own data.
type Static struct {
	Context domain.DemandContext
}

func (s Static) Supply(ctx context.Context, productID, mode string) (domain.DemandContext, error) {
	return s.Context, nil
}

// InputRequest is the caller-provided data for input mode. Pointer fields
// distinguish absent from zero.
type InputRequest struct {
	ProductID     string    `json:"product_id"`
	CurrentStock  *float64  `json:"current_stock"`
	DemandHistory []float64 `json:"demand_history"`
	LeadTimeDays  *int      `json:"lead_time_days"`
	ServiceLevel  *float64  `json:"service_level"`
	UnitPrice     *float64  `json:"unit_price"`
}

// FromRequest validates an input-mode request and builds the context.
func FromRequest(req InputRequest) (domain.DemandContext, error) {
	if req.CurrentStock == nil {
		return domain.DemandContext{}, fmt.Errorf("current_stock is required in input mode")
	}
	if len(req.DemandHistory) < 3 {
		return domain.DemandContext{}, fmt.Errorf("demand_history must have at least 3 data points")
	}
	if req.LeadTimeDays == nil {
		return domain.DemandContext{}, fmt.Errorf("lead_time_days is required in input mode")
	}

	dc := domain.DemandContext{
		ProductID:     req.ProductID,
		DemandHistory: req.DemandHistory,
		LeadTimeDays:  *req.LeadTimeDays,
		CurrentStock:  *req.CurrentStock,
		ServiceLevel:  DefaultServiceLevel,
		UnitPrice:     DefaultUnitPrice,
	}
	if req.ServiceLevel != nil {
		dc.ServiceLevel = *req.ServiceLevel
	}
	if req.UnitPrice != nil {
		dc.UnitPrice = *req.UnitPrice
	}

	return dc, nil
}
