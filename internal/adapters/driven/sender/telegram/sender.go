// Package telegram provides a message sender using the Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
	"github.com/custodia-labs/newsdesk/internal/core/ports/driven"
)

// Ensure Sender implements the interfaces.
var (
	_ driven.Sender        = (*Sender)(nil)
	_ driven.HealthChecker = (*Sender)(nil)
)

// Default configuration values.
const (
	DefaultAPIURL  = "https://api.telegram.org"
	DefaultTimeout = 30 * time.Second

	// defaultRetryAfter applies when a 429 carries no retry_after.
	defaultRetryAfter = 30 * time.Second
)

// Config holds configuration for the Telegram sender.
type Config struct {
	// Token is the bot token from @BotFather (required).
	Token string

	// APIURL is the Bot API base URL (default: https://api.telegram.org).
	APIURL string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration
}

// Sender posts messages to Telegram chats and channels.
type Sender struct {
	client  *http.Client
	baseURL string
}

// RateLimitError is returned when Telegram throttles the bot.
type RateLimitError struct {
	RetryAfter  time.Duration
	Description string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("telegram: rate limited, retry after %s: %s", e.RetryAfter, e.Description)
}

// Is matches domain.ErrRateLimited.
func (e *RateLimitError) Is(target error) bool { return target == domain.ErrRateLimited }

// RetryDelay reports how long the platform asked callers to wait.
func (e *RateLimitError) RetryDelay() time.Duration { return e.RetryAfter }

// sendMessageRequest is the /sendMessage request format.
type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// apiResponse is the envelope of every Bot API response.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
	Parameters  *struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters,omitempty"`
}

// NewSender creates a new Telegram sender.
func NewSender(cfg Config) (*Sender, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram: bot token is required")
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Sender{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.APIURL, "/") + "/bot" + cfg.Token,
	}, nil
}

// Name identifies the sender in health reports.
func (s *Sender) Name() string {
	return "telegram"
}

// Send posts text to channelID using Markdown formatting.
func (s *Sender) Send(ctx context.Context, channelID, text string) (string, error) {
	reqBody := sendMessageRequest{
		ChatID:                channelID,
		Text:                  text,
		ParseMode:             "MarkdownV2",
		DisableWebPagePreview: true,
	}

	var msg struct {
		MessageID int64 `json:"message_id"`
	}
	if err := s.call(ctx, http.MethodPost, "sendMessage", reqBody, &msg); err != nil {
		return "", err
	}
	return strconv.FormatInt(msg.MessageID, 10), nil
}

// Check verifies the token with getMe.
func (s *Sender) Check(ctx context.Context) error {
	var me struct {
		IsBot    bool   `json:"is_bot"`
		Username string `json:"username"`
	}
	if err := s.call(ctx, http.MethodGet, "getMe", nil, &me); err != nil {
		return err
	}
	if !me.IsBot {
		return fmt.Errorf("telegram: token does not belong to a bot")
	}
	return nil
}

// call performs one Bot API method and decodes its result into out.
func (s *Sender) call(ctx context.Context, method, name string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+"/"+name, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(data, &apiResp); err != nil {
		return fmt.Errorf("telegram %s: decode response (status %d): %w", name, resp.StatusCode, err)
	}

	if !apiResp.OK {
		if apiResp.ErrorCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusTooManyRequests {
			retry := defaultRetryAfter
			if apiResp.Parameters != nil && apiResp.Parameters.RetryAfter > 0 {
				retry = time.Duration(apiResp.Parameters.RetryAfter) * time.Second
			}
			return &RateLimitError{RetryAfter: retry, Description: apiResp.Description}
		}
		return fmt.Errorf("telegram %s error (code %d): %s", name, apiResp.ErrorCode, apiResp.Description)
	}

	if out != nil && len(apiResp.Result) > 0 {
		if err := json.Unmarshal(apiResp.Result, out); err != nil {
			return fmt.Errorf("telegram %s: decode result: %w", name, err)
		}
	}
	return nil
}
