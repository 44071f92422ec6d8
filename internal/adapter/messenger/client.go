package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	"golang.org/x/time/rate"
)

// Bot API allows about 30 messages per second across all chats.
const (
	sendRate  = rate.Limit(25)
	sendBurst = 5
)

// ErrRecipientUnavailable indicates the chat blocked the bot or does not exist.
var ErrRecipientUnavailable = errors.New("recipient unavailable")

// Messenger delivers plain text to a chat.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// TelegramClient implements Messenger via Telegram Bot API.
type TelegramClient struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// NewTelegramClient creates Bot API client with default timeout.
func NewTelegramClient(baseURL, token string) (*TelegramClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse telegram url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("telegram url must be absolute")
	}
	if token == "" {
		return nil, fmt.Errorf("bot token must be provided")
	}
	return &TelegramClient{
		baseURL: parsed,
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(sendRate, sendBurst),
	}, nil
}

// SendMessage posts text to the chat, waiting for the outbound rate limit.
func (c *TelegramClient) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait send slot: %w", err)
	}

	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return err
	}

	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "bot"+c.token, "sendMessage")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var data apiResponse
	_ = json.Unmarshal(raw, &data)

	switch {
	case resp.StatusCode == http.StatusOK && data.OK:
		return nil
	case resp.StatusCode == http.StatusForbidden, resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrRecipientUnavailable, data.Description)
	default:
		return fmt.Errorf("telegram error: %s %s", resp.Status, data.Description)
	}
}

// LogMessenger writes messages to the log instead of delivering them.
type LogMessenger struct {
	logger *slog.Logger
}

// NewLogMessenger creates LogMessenger.
func NewLogMessenger(logger *slog.Logger) *LogMessenger {
	return &LogMessenger{logger: logger}
}

// SendMessage logs the message.
func (m *LogMessenger) SendMessage(_ context.Context, chatID int64, text string) error {
	m.logger.Info("message not delivered: bot token missing", slog.Int64("chat_id", chatID), slog.String("text", text))
	return nil
}
