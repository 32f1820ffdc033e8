package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Moeabdelaziz007/WideWear/internal/util"

	"go.uber.org/zap"
)

// Telegram sends operator-facing messages through the Bot API. Delivery is
// strictly best-effort: callers never block a checkout on it and failures
// are logged, not propagated.
type Telegram struct {
	botToken   string
	chatID     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewTelegram creates a Telegram notifier. An empty token or chat id
// disables sending; Send then logs a warning and returns nil.
func NewTelegram(botToken, chatID string) *Telegram {
	return &Telegram{
		botToken:   botToken,
		chatID:     chatID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     util.GetLogger(),
	}
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// Send posts an HTML-formatted message to the operator chat.
func (t *Telegram) Send(ctx context.Context, message string) error {
	if t.botToken == "" || t.chatID == "" {
		t.logger.Warn("Telegram not configured, skipping notification")
		return nil
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:    t.chatID,
		Text:      message,
		ParseMode: "HTML",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal telegram message: %w", err)
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		util.NotificationsSentTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("telegram request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		util.NotificationsSentTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("telegram rejected message: status=%d", resp.StatusCode)
	}

	util.NotificationsSentTotal.WithLabelValues("ok").Inc()
	return nil
}
