package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/inventory-agent/internal/action"
	"github.com/andresuchdata/inventory-agent/internal/domain"
	"github.com/andresuchdata/inventory-agent/internal/stats"
)

// Supplier loads the demand context for a product. Mode selects the data
// source ("mock" or "input"); unknown products surface a data error.
type Supplier interface {
	Supply(ctx context.Context, productID, mode string) (domain.DemandContext, error)
}

// SupplierFunc adapts a function to the Supplier interface.
type SupplierFunc func(ctx context.Context, productID, mode string) (domain.DemandContext, error)

func (f SupplierFunc) Supply(ctx context.Context, productID, mode string) (domain.DemandContext, error) {
	return f(ctx, productID, mode)
}

// Reasoner produces a recommendation from numeric context. Implemented by
// llm.Client; tests inject fakes.
type Reasoner interface {
	Recommend(ctx context.Context, dc domain.DemandContext, m domain.SafetyMetrics) (domain.Recommendation, error)
}

// Policy optionally adjusts a recommendation after the shortage computation,
// e.g. suppressing a restock on a declining demand trend. The default is a
// pass-through.
type Policy func(dc domain.DemandContext, m domain.SafetyMetrics, rec domain.Recommendation) domain.Recommendation

// Workflow is the orchestrating state machine. It holds no mutable state
// across invocations; concurrent Decide calls are independent.
type Workflow struct {
	supply    Supplier
	reasoner  Reasoner
	builder   *action.Builder
	threshold float64
	policy    Policy
}

// Option customizes a Workflow.
type Option func(*Workflow)

// WithPolicy installs a recommendation policy hook.
func WithPolicy(p Policy) Option {
	return func(w *Workflow) { w.policy = p }
}

// New creates a Workflow. threshold is the auto-execute confidence gate.
func New(supply Supplier, reasoner Reasoner, builder *action.Builder, threshold float64, opts ...Option) *Workflow {
	w := &Workflow{
		supply:    supply,
		reasoner:  reasoner,
		builder:   builder,
		threshold: threshold,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WithSupplier returns a copy of the workflow bound to a different data
// supplier. Used for input-mode requests that carry their own data.
func (w *Workflow) WithSupplier(s Supplier) *Workflow {
	c := *w
	c.supply = s
	return &c
}

// Decide runs the full state machine and returns the result contract.
func (w *Workflow) Decide(ctx context.Context, productID, mode string) domain.DecisionResult {
	return w.Run(ctx, productID, mode).Result()
}

// Inspect runs only the data and calculation stages, without reasoning or
// action generation. Backs the debug endpoint.
func (w *Workflow) Inspect(ctx context.Context, productID, mode string) (domain.DemandContext, domain.SafetyMetrics, error) {
	dc, err := w.supply.Supply(ctx, productID, mode)
	if err != nil {
		return domain.DemandContext{}, domain.SafetyMetrics{}, domain.NewDecisionError(domain.ErrDataKind, err)
	}

	metrics, err := stats.Summarize(dc.DemandHistory, dc.LeadTimeDays, dc.ServiceLevel)
	if err != nil {
		return dc, domain.SafetyMetrics{}, domain.NewDecisionError(domain.ErrCalculationKind, err)
	}

	metrics.CurrentStock = dc.CurrentStock
	metrics.Shortage = max(0, metrics.ReorderPoint-dc.CurrentStock)
	metrics.NeedsRestock = metrics.Shortage > 0

	return dc, metrics, nil
}

// Run executes the state machine and returns the terminal state, including
// partial fields on failure, for tracing and persistence.
func (w *Workflow) Run(ctx context.Context, productID, mode string) DecisionState {
	state := DecisionState{
		Status:    StatusStart,
		ProductID: productID,
		Mode:      mode,
		TraceID:   uuid.NewString(),
		Timestamp: time.Now().UTC(),
	}

	for !state.Terminal() {
		state = w.step(ctx, state)
	}

	if state.Err != nil {
		log.Warn().
			Str("trace_id", state.TraceID).
			Str("product_id", state.ProductID).
			Str("kind", string(state.Err.Kind)).
			Msg("decision workflow failed")
	}

	return state
}

func (w *Workflow) step(ctx context.Context, state DecisionState) DecisionState {
	switch state.Status {
	case StatusStart:
		return w.loadData(ctx, state)
	case StatusDataLoaded:
		return w.computeMetrics(state)
	case StatusMetricsComputed:
		return w.recommend(ctx, state)
	case StatusRecommended:
		return w.route(state)
	case StatusRouted:
		return w.generateAction(state)
	default:
		return state.fail(domain.ErrActionKind, fmt.Errorf("unexpected workflow status %q", state.Status))
	}
}

func (w *Workflow) loadData(ctx context.Context, state DecisionState) DecisionState {
	dc, err := w.supply.Supply(ctx, state.ProductID, state.Mode)
	if err != nil {
		return state.fail(domain.ErrDataKind, err)
	}

	next := state
	next.Status = StatusDataLoaded
	next.Context = &dc
	return next
}

func (w *Workflow) computeMetrics(state DecisionState) DecisionState {
	dc := state.Context

	metrics, err := stats.Summarize(dc.DemandHistory, dc.LeadTimeDays, dc.ServiceLevel)
	if err != nil {
		return state.fail(domain.ErrCalculationKind, err)
	}

	metrics.CurrentStock = dc.CurrentStock
	metrics.Shortage = max(0, metrics.ReorderPoint-dc.CurrentStock)
	metrics.NeedsRestock = metrics.Shortage > 0

	next := state
	next.Status = StatusMetricsComputed
	next.Metrics = &metrics
	return next
}

// recommend invokes the reasoning client, unless there is no shortage, in
// which case a deterministic hold is synthesized without spending a
// provider call.
func (w *Workflow) recommend(ctx context.Context, state DecisionState) DecisionState {
	next := state
	next.Status = StatusRecommended

	if !state.Metrics.NeedsRestock {
		next.Recommendation = &domain.Recommendation{
			Action:     domain.ActionHold,
			Quantity:   0,
			Confidence: 1.0,
			Reasoning: fmt.Sprintf("Stock level (%.0f) is at or above reorder point (%.0f). No action needed.",
				state.Metrics.CurrentStock, state.Metrics.ReorderPoint),
		}
		return next
	}

	rec, err := w.reasoner.Recommend(ctx, *state.Context, *state.Metrics)
	if err != nil {
		return state.fail(domain.ErrReasoningKind, err)
	}

	if w.policy != nil {
		rec = w.policy(*state.Context, *state.Metrics, rec)
	}

	next.Recommendation = &rec
	return next
}

// route applies the confidence gate. Pure and total.
func (w *Workflow) route(state DecisionState) DecisionState {
	next := state
	next.Status = StatusRouted
	if state.Recommendation.Confidence >= w.threshold {
		next.Route = domain.StatusExecuted
	} else {
		next.Route = domain.StatusPendingReview
	}
	return next
}

func (w *Workflow) generateAction(state DecisionState) DecisionState {
	next := state
	next.Status = StatusActionGenerated

	// A hold produces no order.
	if state.Recommendation.Action == domain.ActionHold {
		return next
	}

	order, err := w.builder.Build(state.ProductID, *state.Recommendation, state.Context.UnitPrice)
	if err != nil {
		return state.fail(domain.ErrActionKind, err)
	}

	next.Action = &order
	return next
}
