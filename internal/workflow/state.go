// Package workflow sequences data loading, safety calculation, reasoning,
// confidence-gated routing and action generation as an explicit state
// machine over an immutable, copy-on-write decision state.
package workflow

import (
	"time"

	"github.com/andresuchdata/inventory-agent/internal/domain"
)

// Status is the workflow position of a DecisionState.
type Status string

const (
	StatusStart           Status = "start"
	StatusDataLoaded      Status = "data_loaded"
	StatusMetricsComputed Status = "metrics_computed"
	StatusRecommended     Status = "recommended"
	StatusRouted          Status = "routed"
	StatusActionGenerated Status = "action_generated"
	StatusFailed          Status = "failed"
)

// DecisionState is the single carrier threaded through the stages. Each
// transition produces a new value; once Err is set no later stage writes
// any other field.
type DecisionState struct {
	Status    Status
	ProductID string
	Mode      string

	Context        *domain.DemandContext
	Metrics        *domain.SafetyMetrics
	Recommendation *domain.Recommendation
	Action         *domain.OrderAction

	// Route is the confidence-gate outcome: executed or pending_review.
	Route string

	Err *domain.DecisionError

	TraceID   string
	Timestamp time.Time
}

// Terminal reports whether the workflow has reached an absorbing state.
func (s DecisionState) Terminal() bool {
	return s.Status == StatusActionGenerated || s.Status == StatusFailed
}

// fail transitions to the absorbing Failed state, preserving every
// previously populated field for tracing.
func (s DecisionState) fail(kind domain.ErrorKind, err error) DecisionState {
	next := s
	next.Status = StatusFailed
	next.Err = domain.NewDecisionError(kind, err)
	return next
}

// Result projects a terminal state onto the DecisionResult contract.
func (s DecisionState) Result() domain.DecisionResult {
	if s.Err != nil {
		return domain.DecisionResult{Err: s.Err}
	}

	result := domain.DecisionResult{
		Status:              s.Route,
		SafetyStock:         s.Metrics.SafetyStock,
		ReorderPoint:        s.Metrics.ReorderPoint,
		CurrentStock:        s.Metrics.CurrentStock,
		Shortage:            s.Metrics.Shortage,
		RecommendedAction:   s.Recommendation.Action,
		RecommendedQuantity: s.Recommendation.Quantity,
		ConfidenceScore:     s.Recommendation.Confidence,
		Reasoning:           s.Recommendation.Reasoning,
	}

	// Orders awaiting review are persisted but not handed back for
	// execution.
	if s.Route == domain.StatusExecuted {
		result.Order = s.Action
	}

	return result
}
