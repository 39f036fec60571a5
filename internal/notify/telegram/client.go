package telegram

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	jsoniter "github.com/json-iterator/go"

	"github.com/hidecraft/storefront-webhooks/internal/config"
	ierr "github.com/hidecraft/storefront-webhooks/internal/errors"
	"github.com/hidecraft/storefront-webhooks/internal/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const apiBaseURL = "https://api.telegram.org"

// Notifier is the notification sink for order alerts
type Notifier interface {
	IsEnabled() bool
	Send(ctx context.Context, text string) error
}

// Client sends messages through the Telegram Bot API. Delivery is best-effort
// with a few transport-level retries; callers treat failures as a degraded
// notification, never as a request failure.
type Client struct {
	client   *retryablehttp.Client
	enabled  bool
	botToken string
	chatID   string
	logger   *logger.Logger
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// NewClient creates a new Telegram client
func NewClient(cfg *config.Configuration, log *logger.Logger) Notifier {
	if !cfg.Telegram.Enabled || cfg.Telegram.BotToken == "" || cfg.Telegram.ChatID == "" {
		return &Client{
			enabled: false,
			logger:  log,
		}
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.HTTPClient.Timeout = 10 * time.Second
	client.Logger = nil

	return &Client{
		client:   client,
		enabled:  true,
		botToken: cfg.Telegram.BotToken,
		chatID:   cfg.Telegram.ChatID,
		logger:   log,
	}
}

// IsEnabled returns whether the Telegram client is enabled
func (c *Client) IsEnabled() bool {
	return c.enabled
}

// Send posts a text message to the configured chat
func (c *Client) Send(ctx context.Context, text string) error {
	if !c.enabled {
		return ierr.NewError("telegram client is disabled").
			WithHint("Notification sink is not configured").
			Mark(ierr.ErrInvalidOperation)
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID: c.chatID,
		Text:   text,
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to build Telegram request").
			Mark(ierr.ErrInternal)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", apiBaseURL, c.botToken)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to build Telegram request").
			Mark(ierr.ErrInternal)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to reach Telegram").
			Mark(ierr.ErrHTTPClient)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		c.logger.Errorw("telegram send failed",
			"status_code", resp.StatusCode,
			"response", string(respBody))
		return ierr.NewError("telegram send failed").
			WithHintf("Telegram responded with status %d", resp.StatusCode).
			Mark(ierr.ErrHTTPClient)
	}

	return nil
}
