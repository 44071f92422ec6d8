package gateway

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
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/storebot/internal/domain/model"
)

// Client exposes operations of the payment provider.
type Client interface {
	CreatePayment(ctx context.Context, pending model.PendingOrder) (*model.Payment, error)
	GetStatus(ctx context.Context, paymentID string) (model.PaymentStatus, error)
	Enabled() bool
}

// Options configures HTTPClient.
type Options struct {
	BaseURL       string
	ShopID        string
	SecretKey     string
	ReturnURL     string
	VATCode       int
	TaxSystemCode int
	DefaultEmail  string
	Timeout       time.Duration
}

// HTTPClient implements Client via YooKassa REST API.
type HTTPClient struct {
	baseURL    *url.URL
	opts       Options
	httpClient *http.Client
	logger     *slog.Logger
	newKey     func() string
}

type confirmation struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

type createRequest struct {
	Amount       amount            `json:"amount"`
	Confirmation confirmation      `json:"confirmation"`
	Capture      bool              `json:"capture"`
	Receipt      *receipt          `json:"receipt"`
	Description  string            `json:"description"`
	Metadata     map[string]string `json:"metadata"`
}

// paymentResponse mirrors JSON payment object returned by the provider.
type paymentResponse struct {
	ID           string        `json:"id"`
	Status       string        `json:"status"`
	Confirmation *confirmation `json:"confirmation,omitempty"`
}

type errorResponse struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// NewHTTPClient creates gateway client. Missing credentials yield ErrNotConfigured.
func NewHTTPClient(opts Options, logger *slog.Logger) (*HTTPClient, error) {
	if opts.ShopID == "" || opts.SecretKey == "" {
		return nil, ErrNotConfigured
	}
	parsed, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("gateway url must be absolute")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL: parsed,
		opts:    opts,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		newKey: uuid.NewString,
	}, nil
}

// Enabled reports that the client holds credentials.
func (c *HTTPClient) Enabled() bool {
	return true
}

// CreatePayment registers a payment for pending order and returns its redirect URL.
func (c *HTTPClient) CreatePayment(ctx context.Context, pending model.PendingOrder) (*model.Payment, error) {
	rcpt, sum, err := buildReceipt(pending, c.opts.VATCode, c.opts.TaxSystemCode, c.opts.DefaultEmail)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(createRequest{
		Amount:       amount{Value: sum.StringFixed(2), Currency: currencyRUB},
		Confirmation: confirmation{Type: confirmationRedirect, ReturnURL: c.opts.ReturnURL},
		Capture:      true,
		Receipt:      rcpt,
		Description:  fmt.Sprintf("Оплата заказа #%d", pending.Number),
		Metadata: map[string]string{
			"order_id": strconv.FormatInt(pending.ID, 10),
			"user_id":  strconv.FormatInt(pending.UserID, 10),
			"source":   metadataSourceChatBot,
		},
	})
	if err != nil {
		return nil, &PermanentError{Err: err}
	}

	req, err := c.newRequest(ctx, http.MethodPost, "payments", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotence-Key", c.newKey())

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if resp.Confirmation == nil || resp.Confirmation.ConfirmationURL == "" {
		return nil, &PermanentError{Err: errors.New("payment has no confirmation url")}
	}
	return &model.Payment{
		ID:              resp.ID,
		Status:          model.PaymentStatus(resp.Status),
		ConfirmationURL: resp.Confirmation.ConfirmationURL,
	}, nil
}

// GetStatus queries current payment status.
func (c *HTTPClient) GetStatus(ctx context.Context, paymentID string) (model.PaymentStatus, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path.Join("payments", url.PathEscape(paymentID)), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	return model.PaymentStatus(resp.Status), nil
}

func (c *HTTPClient) newRequest(ctx context.Context, method, rel string, body io.Reader) (*http.Request, error) {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, rel)

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, &PermanentError{Err: err}
	}
	req.SetBasicAuth(c.opts.ShopID, c.opts.SecretKey)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *HTTPClient) do(req *http.Request) (*paymentResponse, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransientError{Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		var data paymentResponse
		if err := json.Unmarshal(body, &data); err != nil {
			return nil, &TransientError{Err: fmt.Errorf("decode payment: %w", err)}
		}
		return &data, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &TransientError{
			Err:        errors.New(resp.Status),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	case resp.StatusCode >= http.StatusInternalServerError:
		c.logger.Warn("gateway request failed", slog.Int("status", resp.StatusCode), slog.String("path", req.URL.Path))
		return nil, &TransientError{Err: fmt.Errorf("gateway error: %s", resp.Status)}
	default:
		var data errorResponse
		_ = json.Unmarshal(body, &data)
		c.logger.Error("gateway rejected request",
			slog.Int("status", resp.StatusCode),
			slog.String("path", req.URL.Path),
			slog.String("code", data.Code),
			slog.String("description", data.Description),
		)
		if data.Description != "" {
			return nil, &PermanentError{Err: fmt.Errorf("gateway error: %s: %s", resp.Status, data.Description)}
		}
		return nil, &PermanentError{Err: fmt.Errorf("gateway error: %s", resp.Status)}
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}

// DisabledClient is used when credentials are absent. Every call fails with ErrNotConfigured.
type DisabledClient struct{}

// CreatePayment always fails.
func (DisabledClient) CreatePayment(context.Context, model.PendingOrder) (*model.Payment, error) {
	return nil, ErrNotConfigured
}

// GetStatus always fails.
func (DisabledClient) GetStatus(context.Context, string) (model.PaymentStatus, error) {
	return "", ErrNotConfigured
}

// Enabled reports false.
func (DisabledClient) Enabled() bool {
	return false
}
