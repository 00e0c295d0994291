package llm

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/inventory-agent/internal/config"
	"github.com/andresuchdata/inventory-agent/internal/domain"
)

const restockPrompt = `You are an inventory management AI agent. Analyze the following inventory situation and recommend an action.

## Current Status:
- Product: %s
- Current Stock: %.0f units
- Safety Stock: %.0f units
- Reorder Point: %.0f units
- Shortage: %.0f units below ROP
- Average Daily Demand: %.0f units
- Lead Time: %d days purchase, 1-2 days transfer

## Demand Trend (most recent last):
%s

## Decision Rules:
1. **Use "transfer"** if:
   - The other warehouse can plausibly cover a moderate shortage (<500 units)
   - This is faster and costs nothing

2. **Use "restock"** if:
   - Emergency shortage (>500 units OR critical stockout)
   - Need a large quantity a transfer can't provide

3. **Confidence scoring**:
   - High (>0.90): Clear shortage + demand data supports action
   - Medium (0.70-0.90): Some uncertainty in demand trend
   - Low (<0.70): Declining demand or unclear situation

## Response Format (JSON only, no markdown):
{
    "action": "restock" or "transfer",
    "quantity": <number>,
    "confidence": <0.0-1.0>,
    "reasoning": "<brief explanation including why transfer/restock was chosen>"
}
`

const maxProductIDLen = 100

var productIDSanitizer = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// sanitizeProductID restricts the identifier to alphanumeric, underscore
// and hyphen and truncates it, so attacker-controlled control sequences
// never reach the prompt.
func sanitizeProductID(id string) string {
	cleaned := productIDSanitizer.ReplaceAllString(id, "")
	if len(cleaned) > maxProductIDLen {
		cleaned = cleaned[:maxProductIDLen]
	}
	return cleaned
}

// Client obtains exactly one Recommendation per call by walking the
// provider chain with bounded per-provider retry.
type Client struct {
	registry      *Registry
	retryAttempts int
	retryBackoff  time.Duration
	jitterCeiling time.Duration
}

// NewClient wires the client from configuration.
func NewClient(registry *Registry, cfg config.LLMConfig) *Client {
	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}

	return &Client{
		registry:      registry,
		retryAttempts: attempts,
		retryBackoff:  backoff,
		jitterCeiling: 250 * time.Millisecond,
	}
}

// Recommend renders the prompt from the sanitized context and walks the
// provider chain in order. The first provider to yield a valid structured
// recommendation wins; its identity is recorded on the result.
func (c *Client) Recommend(ctx context.Context, dc domain.DemandContext, m domain.SafetyMetrics) (domain.Recommendation, error) {
	chain := c.registry.Chain()
	if len(chain) == 0 {
		return domain.Recommendation{}, ErrNoProviderConfigured
	}

	prompt := renderPrompt(dc, m)

	var (
		attempted []string
		lastErr   error
	)
	for _, provider := range chain {
		attempted = append(attempted, provider.Name())

		rec, err := c.tryProvider(ctx, provider, prompt)
		if err == nil {
			rec.Provider = provider.Name()
			log.Info().
				Str("provider", provider.Name()).
				Str("action", rec.Action).
				Float64("confidence", rec.Confidence).
				Msg("llm recommendation received")
			return rec, nil
		}

		lastErr = err
		log.Warn().Err(err).Str("provider", provider.Name()).Msg("llm provider failed, trying next")

		if ctx.Err() != nil {
			break
		}
	}

	return domain.Recommendation{}, &AllProvidersFailedError{Attempted: attempted, LastErr: lastErr}
}

// tryProvider runs the full generate-extract-validate attempt with bounded
// retry and exponential backoff. Permanent configuration errors skip the
// remaining attempts.
func (c *Client) tryProvider(ctx context.Context, provider Provider, prompt string) (domain.Recommendation, error) {
	var lastErr error
	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, attempt); err != nil {
				return domain.Recommendation{}, err
			}
		}

		raw, err := provider.Generate(ctx, prompt)
		if err != nil {
			lastErr = err
			if IsPermanent(err) {
				return domain.Recommendation{}, err
			}
			continue
		}

		obj, err := extractJSON(raw)
		if err != nil {
			lastErr = err
			continue
		}

		rec, err := validateRecommendation(obj)
		if err != nil {
			lastErr = err
			continue
		}

		return rec, nil
	}

	return domain.Recommendation{}, lastErr
}

// sleep waits for the exponential backoff of the given attempt, plus a
// small jitter, honoring context cancellation.
func (c *Client) sleep(ctx context.Context, attempt int) error {
	delay := c.retryBackoff << (attempt - 1)
	delay += time.Duration(rand.Int63n(int64(c.jitterCeiling)))

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// validateRecommendation checks the parsed object semantically. A
// structurally valid but semantically wrong object is operationally
// equivalent to a bad provider response, so failure here triggers failover.
func validateRecommendation(obj map[string]any) (domain.Recommendation, error) {
	action, _ := obj["action"].(string)
	if action != domain.ActionRestock && action != domain.ActionTransfer {
		return domain.Recommendation{}, fmt.Errorf("invalid recommendation action %q", action)
	}

	quantity, ok := obj["quantity"].(float64)
	if !ok || quantity < 0 {
		return domain.Recommendation{}, fmt.Errorf("invalid recommendation quantity %v", obj["quantity"])
	}

	confidence, ok := obj["confidence"].(float64)
	if !ok || confidence < 0 || confidence > 1 {
		return domain.Recommendation{}, fmt.Errorf("invalid recommendation confidence %v", obj["confidence"])
	}

	reasoning, _ := obj["reasoning"].(string)

	return domain.Recommendation{
		Action:     action,
		Quantity:   quantity,
		Confidence: confidence,
		Reasoning:  reasoning,
	}, nil
}

func renderPrompt(dc domain.DemandContext, m domain.SafetyMetrics) string {
	history := make([]string, len(dc.DemandHistory))
	for i, v := range dc.DemandHistory {
		history[i] = fmt.Sprintf("%.0f", v)
	}

	return fmt.Sprintf(restockPrompt,
		sanitizeProductID(dc.ProductID),
		m.CurrentStock,
		m.SafetyStock,
		m.ReorderPoint,
		m.Shortage,
		m.AvgDemand,
		dc.LeadTimeDays,
		strings.Join(history, ", "),
	)
}
