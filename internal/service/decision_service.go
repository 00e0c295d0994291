// Package service orchestrates decisions end to end: workflow execution,
// order persistence, audit logging and notification fan-out.
package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/inventory-agent/internal/domain"
	"github.com/andresuchdata/inventory-agent/internal/notify"
	"github.com/andresuchdata/inventory-agent/internal/repository"
	"github.com/andresuchdata/inventory-agent/internal/supply"
	"github.com/andresuchdata/inventory-agent/internal/workflow"
)

// TriggerRequest is one decision request as received from the HTTP or CLI
// layer.
type TriggerRequest struct {
	ProductID   string
	Mode        string
	Input       *supply.InputRequest
	CallbackURL string
	ClientIP    string
}

// DecisionService runs the workflow and hands finished decisions to the
// persistence and notification collaborators. Repo and notifier may be nil
// (e.g. in the CLI); the decision itself never depends on them.
type DecisionService struct {
	wf       *workflow.Workflow
	repo     repository.OrderRepository
	notifier *notify.Notifier
}

// NewDecisionService wires the service. A nil repo is replaced with a
// no-op store so callers without a database never trip persistence.
func NewDecisionService(wf *workflow.Workflow, repo repository.OrderRepository, notifier *notify.Notifier) *DecisionService {
	if repo == nil {
		repo = repository.NewNoopOrderRepository()
	}
	return &DecisionService{wf: wf, repo: repo, notifier: notifier}
}

// Process runs one decision. It always returns a DecisionResult, success
// or failure; it never raises past its boundary.
func (s *DecisionService) Process(ctx context.Context, req TriggerRequest) domain.DecisionResult {
	wf := s.wf
	if req.Mode == supply.ModeInput {
		if req.Input == nil {
			return domain.DecisionResult{Err: &domain.DecisionError{
				Kind:    domain.ErrDataKind,
				Message: "input mode requires a request payload",
			}}
		}
		dc, err := supply.FromRequest(*req.Input)
		if err != nil {
			return domain.DecisionResult{Err: domain.NewDecisionError(domain.ErrDataKind, err)}
		}
		wf = wf.WithSupplier(supply.Static{Context: dc})
	}

	s.audit(ctx, &domain.AuditEvent{
		EventType: "inventory_trigger",
		ProductID: req.ProductID,
		Details:   "mode=" + req.Mode,
		UserIP:    req.ClientIP,
	})

	state := wf.Run(ctx, req.ProductID, req.Mode)
	result := state.Result()

	if result.OK() && state.Action != nil {
		record := recordFromState(state)
		s.persist(ctx, record)
		s.dispatch(ctx, record, req.CallbackURL)
	}

	return result
}

// DebugCalculation runs only the data and calculation stages, without
// spending a provider call.
func (s *DecisionService) DebugCalculation(ctx context.Context, productID, mode string) (domain.DemandContext, domain.SafetyMetrics, error) {
	return s.wf.Inspect(ctx, productID, mode)
}

// BatchItem is the per-product outcome of a batch run.
type BatchItem struct {
	ProductID string                 `json:"product_id"`
	Success   bool                   `json:"success"`
	Result    *domain.DecisionResult `json:"result,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// BatchResult aggregates a batch run.
type BatchResult struct {
	Total      int         `json:"total"`
	Successful int         `json:"successful"`
	Failed     int         `json:"failed"`
	Results    []BatchItem `json:"results"`
}

const batchConcurrency = 8

// ProcessBatch fans out one workflow invocation per product and collects
// per-product outcomes independently. Worker funcs always return nil so a
// failed product never cancels its siblings.
func (s *DecisionService) ProcessBatch(ctx context.Context, productIDs []string, mode string) BatchResult {
	results := make([]BatchItem, len(productIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for i, id := range productIDs {
		g.Go(func() error {
			result := s.Process(gctx, TriggerRequest{ProductID: id, Mode: mode})
			if result.OK() {
				results[i] = BatchItem{ProductID: id, Success: true, Result: &result}
			} else {
				results[i] = BatchItem{ProductID: id, Success: false, Error: result.Err.Error()}
			}
			return nil
		})
	}
	_ = g.Wait()

	out := BatchResult{Total: len(productIDs), Results: results}
	for _, r := range results {
		if r.Success {
			out.Successful++
		} else {
			out.Failed++
		}
	}

	return out
}

func recordFromState(state workflow.DecisionState) *domain.OrderRecord {
	rec := state.Recommendation
	return &domain.OrderRecord{
		OrderID:       state.Action.OrderID,
		ProductID:     state.ProductID,
		Action:        rec.Action,
		Quantity:      rec.Quantity,
		Confidence:    rec.Confidence,
		Status:        state.Route,
		LLMProvider:   rec.Provider,
		Reasoning:     rec.Reasoning,
		SafetyStock:   state.Metrics.SafetyStock,
		ReorderPoint:  state.Metrics.ReorderPoint,
		CurrentStock:  state.Metrics.CurrentStock,
		Shortage:      state.Metrics.Shortage,
		EstimatedCost: state.Action.EstimatedCost,
		CreatedAt:     state.Timestamp,
	}
}

func (s *DecisionService) persist(ctx context.Context, record *domain.OrderRecord) {
	if err := s.repo.SaveOrder(ctx, record); err != nil {
		log.Error().Err(err).Str("order_id", record.OrderID).Msg("failed to persist order")
	}
}

func (s *DecisionService) audit(ctx context.Context, event *domain.AuditEvent) {
	if err := s.repo.LogAudit(ctx, event); err != nil {
		log.Warn().Err(err).Str("event_type", event.EventType).Msg("failed to log audit event")
	}
}

// dispatch fans notifications out in the background, detached from the
// request context so a client disconnect does not drop them.
func (s *DecisionService) dispatch(ctx context.Context, record *domain.OrderRecord, callbackURL string) {
	if s.notifier == nil {
		return
	}

	bg := context.WithoutCancel(ctx)
	go func() {
		nctx, cancel := context.WithTimeout(bg, 30*time.Second)
		defer cancel()

		if record.Status == domain.StatusExecuted {
			s.notifier.OrderExecuted(nctx, record)
		} else {
			s.notifier.OrderPendingReview(nctx, record)
		}
		s.notifier.Callback(nctx, callbackURL, record)
	}()
}
