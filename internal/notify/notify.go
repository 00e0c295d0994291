// Package notify delivers finished decisions to Slack, Telegram and
// caller-provided webhook callbacks. Delivery failures are logged and
// never fail the decision.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/inventory-agent/internal/config"
	"github.com/andresuchdata/inventory-agent/internal/domain"
)

// Notifier fans a finished order out to the configured channels.
type Notifier struct {
	cfg    config.NotifyConfig
	client *http.Client
}

// New creates a Notifier. Channels without configuration are skipped
// silently.
func New(cfg config.NotifyConfig) *Notifier {
	return &Notifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// OrderExecuted announces an auto-executed order on Telegram.
func (n *Notifier) OrderExecuted(ctx context.Context, record *domain.OrderRecord) {
	text := fmt.Sprintf("✅ Order executed\n%s\n%s x %.0f (confidence %.2f, est. cost %.2f)",
		record.OrderID, record.ProductID, record.Quantity, record.Confidence, record.EstimatedCost)
	n.sendTelegram(ctx, text)
}

// OrderPendingReview alerts reviewers on Slack and Telegram.
func (n *Notifier) OrderPendingReview(ctx context.Context, record *domain.OrderRecord) {
	n.sendSlack(ctx, record)
	text := fmt.Sprintf("⚠️ Order pending review\n%s\n%s x %.0f (confidence %.2f)\nReasoning: %s",
		record.OrderID, record.ProductID, record.Quantity, record.Confidence, truncate(record.Reasoning, 500))
	n.sendTelegram(ctx, text)
}

// Callback POSTs the order record to a caller-provided URL.
func (n *Notifier) Callback(ctx context.Context, url string, record *domain.OrderRecord) {
	if url == "" {
		return
	}
	if err := n.postJSON(ctx, url, record); err != nil {
		log.Error().Err(err).Str("order_id", record.OrderID).Msg("webhook callback failed")
		return
	}
	log.Info().Str("order_id", record.OrderID).Str("url", url).Msg("webhook callback sent")
}

func (n *Notifier) postJSON(ctx context.Context, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, respBody)
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
