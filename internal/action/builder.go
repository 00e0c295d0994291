// Package action turns a validated recommendation into an order payload
// with a human-traceable, time-stamped identifier.
package action

import (
	"fmt"
	"time"

	"github.com/andresuchdata/inventory-agent/internal/domain"
)

// Default warehouse tags for transfer orders.
const (
	TransferSource      = "WAREHOUSE_B"
	TransferDestination = "WAREHOUSE_A"
)

const orderIDTimeFormat = "20060102-150405"

// Builder generates purchase-order and transfer actions. Pure given its
// inputs plus wall-clock time.
type Builder struct {
	defaultUnitPrice float64
	now              func() time.Time
}

// NewBuilder creates a Builder. defaultUnitPrice is used when the demand
// context carries no unit price.
func NewBuilder(defaultUnitPrice float64) *Builder {
	return &Builder{
		defaultUnitPrice: defaultUnitPrice,
		now:              time.Now,
	}
}

// Build converts a recommendation into an order payload. Purchase orders
// cost quantity x unit price; transfers cost nothing.
func (b *Builder) Build(productID string, rec domain.Recommendation, unitPrice float64) (domain.OrderAction, error) {
	if rec.Quantity < 0 {
		return domain.OrderAction{}, fmt.Errorf("recommendation quantity must be non-negative, got %v", rec.Quantity)
	}

	if unitPrice <= 0 {
		unitPrice = b.defaultUnitPrice
	}

	now := b.now().UTC()
	stamp := now.Format(orderIDTimeFormat)

	switch rec.Action {
	case domain.ActionRestock:
		return domain.OrderAction{
			OrderID: fmt.Sprintf("PO-%s-%s", stamp, productID),
			Type:    domain.OrderTypePurchase,
			Items: []domain.OrderItem{
				{MaterialID: productID, Quantity: rec.Quantity},
			},
			EstimatedCost: rec.Quantity * unitPrice,
			CreatedAt:     now,
		}, nil

	case domain.ActionTransfer:
		return domain.OrderAction{
			OrderID: fmt.Sprintf("TR-%s-%s", stamp, productID),
			Type:    domain.OrderTypeTransfer,
			Items: []domain.OrderItem{
				{
					MaterialID:  productID,
					Quantity:    rec.Quantity,
					Source:      TransferSource,
					Destination: TransferDestination,
				},
			},
			EstimatedCost: 0,
			CreatedAt:     now,
		}, nil

	default:
		return domain.OrderAction{}, fmt.Errorf("unsupported recommendation action %q", rec.Action)
	}
}
