package domain

import "time"

// DemandContext is the immutable input for a single replenishment decision.
// It is produced by a data supplier (mock CSV or request payload) and never
// mutated afterwards.
type DemandContext struct {
	ProductID     string    `json:"product_id"`
	DemandHistory []float64 `json:"demand_history"`
	LeadTimeDays  int       `json:"lead_time_days"`
	ServiceLevel  float64   `json:"service_level"`
	CurrentStock  float64   `json:"current_stock"`
	UnitPrice     float64   `json:"unit_price"`
}

// SafetyMetrics holds the derived inventory thresholds for a DemandContext.
// Invariant: ReorderPoint >= SafetyStock >= 0.
type SafetyMetrics struct {
	AvgDemand    float64 `json:"avg_demand"`
	StdDev       float64 `json:"std_dev"`
	ZScore       float64 `json:"z_score"`
	SafetyStock  float64 `json:"safety_stock"`
	ReorderPoint float64 `json:"reorder_point"`
	CurrentStock float64 `json:"current_stock"`
	Shortage     float64 `json:"shortage"`
	NeedsRestock bool    `json:"needs_restock"`
}

// Recommendation actions. "hold" is synthesized by the workflow when no
// shortage exists and never comes from a provider.
const (
	ActionRestock  = "restock"
	ActionTransfer = "transfer"
	ActionHold     = "hold"
)

// Recommendation is the structured output recovered from a text-generation
// provider, plus the provenance tag of the provider that produced it.
type Recommendation struct {
	Action     string  `json:"action"`
	Quantity   float64 `json:"quantity"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
	Provider   string  `json:"provider,omitempty"`
}

// Order action types.
const (
	OrderTypePurchase = "purchase_order"
	OrderTypeTransfer = "transfer"
)

// OrderItem is a single line item on a generated order.
type OrderItem struct {
	MaterialID  string  `json:"material_id"`
	Quantity    float64 `json:"quantity"`
	Source      string  `json:"source,omitempty"`
	Destination string  `json:"destination,omitempty"`
}

// OrderAction is the final, immutable payload handed to persistence and
// notification sinks.
type OrderAction struct {
	OrderID       string      `json:"order_id"`
	Type          string      `json:"type"`
	Items         []OrderItem `json:"items"`
	EstimatedCost float64     `json:"estimated_cost"`
	CreatedAt     time.Time   `json:"created_at"`
}

// Decision routing outcomes from the confidence gate.
const (
	StatusExecuted      = "executed"
	StatusPendingReview = "pending_review"
)

// DecisionResult is the sole contract exposed to the HTTP and batch layers.
// Either Err is set (failure) or the remaining fields are fully populated.
type DecisionResult struct {
	Status              string         `json:"status"`
	SafetyStock         float64        `json:"safety_stock"`
	ReorderPoint        float64        `json:"reorder_point"`
	CurrentStock        float64        `json:"current_stock"`
	Shortage            float64        `json:"shortage"`
	RecommendedAction   string         `json:"recommended_action"`
	RecommendedQuantity float64        `json:"recommended_quantity"`
	ConfidenceScore     float64        `json:"confidence_score"`
	Order               *OrderAction   `json:"order,omitempty"`
	Reasoning           string         `json:"reasoning"`
	Err                 *DecisionError `json:"error,omitempty"`
}

// OK reports whether the decision completed without a terminal error.
func (r DecisionResult) OK() bool { return r.Err == nil }

// OrderRecord is the persisted form of a finished decision.
type OrderRecord struct {
	ID            int64      `json:"id" db:"id"`
	OrderID       string     `json:"order_id" db:"order_id"`
	ProductID     string     `json:"product_id" db:"product_id"`
	Action        string     `json:"action" db:"action"`
	Quantity      float64    `json:"quantity" db:"quantity"`
	Confidence    float64    `json:"confidence" db:"confidence"`
	Status        string     `json:"status" db:"status"`
	LLMProvider   string     `json:"llm_provider" db:"llm_provider"`
	Reasoning     string     `json:"reasoning" db:"reasoning"`
	SafetyStock   float64    `json:"safety_stock" db:"safety_stock"`
	ReorderPoint  float64    `json:"reorder_point" db:"reorder_point"`
	CurrentStock  float64    `json:"current_stock" db:"current_stock"`
	Shortage      float64    `json:"shortage" db:"shortage"`
	EstimatedCost float64    `json:"estimated_cost" db:"estimated_cost"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	ExecutedAt    *time.Time `json:"executed_at,omitempty" db:"executed_at"`
	ApprovedBy    *string    `json:"approved_by,omitempty" db:"approved_by"`
	ApprovedAt    *time.Time `json:"approved_at,omitempty" db:"approved_at"`
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	Status    string
	ProductID string
	Limit     int
}

// AuditEvent is a single row in the audit log.
type AuditEvent struct {
	ID        int64     `json:"id" db:"id"`
	EventType string    `json:"event_type" db:"event_type"`
	OrderID   string    `json:"order_id" db:"order_id"`
	ProductID string    `json:"product_id" db:"product_id"`
	Details   string    `json:"details" db:"details"`
	UserIP    string    `json:"user_ip" db:"user_ip"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DashboardStats summarizes persisted orders for the dashboard endpoint.
type DashboardStats struct {
	TotalOrders       int            `json:"total_orders"`
	StatusBreakdown   map[string]int `json:"status_breakdown"`
	RecentOrders      []OrderRecord  `json:"recent_orders"`
	AverageConfidence float64        `json:"average_confidence"`
}
