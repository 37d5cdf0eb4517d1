package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/doctorbookings/homevisit-api/pkg/logging"
)

const defaultTelegramBaseURL = "https://api.telegram.org"

// ErrNotConfigured is returned when bot credentials are absent. Callers treat
// this as a soft-disable, not a failure worth surfacing.
var ErrNotConfigured = errors.New("notify: telegram credentials not configured")

// TelegramConfig controls how the bot client behaves.
type TelegramConfig struct {
	BotToken   string
	ChatID     string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// TelegramClient posts alert messages to the Telegram Bot API. One delivery
// attempt per call; retries are the caller's problem and deliberately absent.
type TelegramClient struct {
	botToken   string
	chatID     string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewTelegramClient creates a configured client with sane defaults. A client
// without credentials is still valid; Configured reports false and every send
// is skipped.
func NewTelegramClient(cfg TelegramConfig, logger *logging.Logger) *TelegramClient {
	if logger == nil {
		logger = logging.Default()
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultTelegramBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &TelegramClient{
		botToken:   strings.TrimSpace(cfg.BotToken),
		chatID:     strings.TrimSpace(cfg.ChatID),
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Configured reports whether both bot credentials are present.
func (c *TelegramClient) Configured() bool {
	return c.botToken != "" && c.chatID != ""
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// SendMessage delivers one Markdown-formatted message to the configured chat.
func (c *TelegramClient) SendMessage(ctx context.Context, text string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	payload, err := json.Marshal(telegramMessage{
		ChatID:    c.chatID,
		Text:      text,
		ParseMode: "Markdown",
	})
	if err != nil {
		return fmt.Errorf("notify: marshal telegram message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("notify: build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: telegram request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notify: telegram API returned status %d", resp.StatusCode)
	}
	return nil
}
