package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

const telegramAPIBase = "https://api.telegram.org"

type telegramMessage struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// sendTelegram delivers a plain-text message to the configured chat.
func (n *Notifier) sendTelegram(ctx context.Context, text string) {
	if n.cfg.TelegramToken == "" || n.cfg.TelegramChatID == "" {
		return
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", telegramAPIBase, n.cfg.TelegramToken)
	msg := telegramMessage{ChatID: n.cfg.TelegramChatID, Text: text}

	if err := n.postJSON(ctx, url, msg); err != nil {
		log.Error().Err(err).Msg("telegram notification failed")
		return
	}
	log.Debug().Msg("telegram notification sent")
}
