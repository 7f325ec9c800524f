package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const DefaultTelegramAPI = "https://api.telegram.org"

// TelegramEndpoint sends alerts via the Telegram Bot API and can poll it for commands.
type TelegramEndpoint struct {
	name      string
	apiBase   string
	botToken  string
	chatID    string
	parseMode string
	proxyURL  string
	client    *resty.Client
	logger    *zap.Logger

	// PollTimeout is the long-polling window passed to getUpdates.
	PollTimeout time.Duration
	// PollBackoff is the pause after a failed getUpdates call.
	PollBackoff time.Duration
}

// NewTelegramEndpoint creates an endpoint with optional proxy support.
// An empty apiBase uses DefaultTelegramAPI.
func NewTelegramEndpoint(name, apiBase, botToken, chatID, parseMode, proxyURL string, timeout time.Duration, logger *zap.Logger) *TelegramEndpoint {
	if apiBase == "" {
		apiBase = DefaultTelegramAPI
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TelegramEndpoint{
		name:        name,
		apiBase:     strings.TrimRight(apiBase, "/"),
		botToken:    botToken,
		chatID:      chatID,
		parseMode:   parseMode,
		proxyURL:    proxyURL,
		client:      newRESTClient(timeout, proxyURL),
		logger:      logger,
		PollTimeout: 30 * time.Second,
		PollBackoff: 5 * time.Second,
	}
}

func (t *TelegramEndpoint) Name() string { return t.name }

// Target names the chat without exposing the bot token.
func (t *TelegramEndpoint) Target() string { return "telegram chat " + t.chatID }

func (t *TelegramEndpoint) method(name string) string {
	return fmt.Sprintf("%s/bot%s/%s", t.apiBase, t.botToken, name)
}

type telegramReply struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send posts title and body as a single message to the configured chat.
func (t *TelegramEndpoint) Send(ctx context.Context, title, body string) error {
	return t.SendText(ctx, title+"\n\n"+body)
}

// SendText posts raw text to the configured chat.
func (t *TelegramEndpoint) SendText(ctx context.Context, text string) error {
	payload := map[string]string{
		"chat_id": t.chatID,
		"text":    text,
	}
	if t.parseMode != "" {
		payload["parse_mode"] = t.parseMode
	}

	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(t.method("sendMessage"))
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode(), resp.String())
	}

	var reply telegramReply
	if err := json.Unmarshal(resp.Body(), &reply); err == nil && !reply.OK {
		return fmt.Errorf("telegram API error: %s", reply.Description)
	}
	return nil
}
