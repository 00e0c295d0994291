package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/inventory-agent/internal/domain"
)

type slackMessage struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks,omitempty"`
}

type slackBlock struct {
	Type string     `json:"type"`
	Text *slackText `json:"text,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// sendSlack posts a review request to the configured incoming webhook.
func (n *Notifier) sendSlack(ctx context.Context, record *domain.OrderRecord) {
	if n.cfg.SlackWebhookURL == "" {
		return
	}

	msg := slackMessage{
		Text: fmt.Sprintf("Order %s requires review", record.OrderID),
		Blocks: []slackBlock{
			{
				Type: "section",
				Text: &slackText{
					Type: "mrkdwn",
					Text: fmt.Sprintf("*Order pending review*\n*Order:* `%s`\n*Product:* %s\n*Action:* %s\n*Quantity:* %.0f\n*Confidence:* %.2f",
						record.OrderID, record.ProductID, record.Action, record.Quantity, record.Confidence),
				},
			},
			{
				Type: "section",
				Text: &slackText{
					Type: "mrkdwn",
					Text: fmt.Sprintf("*AI Reasoning:*\n_%s_", truncate(record.Reasoning, 500)),
				},
			},
		},
	}

	if err := n.postJSON(ctx, n.cfg.SlackWebhookURL, msg); err != nil {
		log.Error().Err(err).Str("order_id", record.OrderID).Msg("slack notification failed")
		return
	}
	log.Info().Str("order_id", record.OrderID).Msg("slack notification sent")
}
