package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	DefaultMercadoPagoURL = "https://api.mercadopago.com"
	DefaultGatewayTimeout = 5 * time.Second
	DefaultGatewayRate    = 5 // requests per second
)

// Payment statuses reported by the gateway
const (
	PaymentApproved = "approved"
	PaymentPending  = "pending"
	PaymentRejected = "rejected"
)

// PaymentGateway operations the API needs from MercadoPago
type PaymentGateway interface {
	CreatePreference(ctx context.Context, pref PreferenceRequest) (*Preference, error)
	GetPayment(ctx context.Context, paymentID string) (*Payment, error)
}

// PreferenceItem checkout line item
type PreferenceItem struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
}

// BackURLs redirects after checkout
type BackURLs struct {
	Success string `json:"success,omitempty"`
	Failure string `json:"failure,omitempty"`
	Pending string `json:"pending,omitempty"`
}

// PreferenceRequest body of POST /checkout/preferences
type PreferenceRequest struct {
	Items             []PreferenceItem `json:"items"`
	BackURLs          BackURLs         `json:"back_urls"`
	ExternalReference string           `json:"external_reference"`
	NotificationURL   string           `json:"notification_url,omitempty"`
}

// Preference created checkout preference
type Preference struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// Payment gateway payment as returned by GET /v1/payments/{id}
type Payment struct {
	ID                int64   `json:"id"`
	Status            string  `json:"status"`
	StatusDetail      string  `json:"status_detail"`
	ExternalReference string  `json:"external_reference"`
	TransactionAmount float64 `json:"transaction_amount"`
	CurrencyID        string  `json:"currency_id"`
}

// Approved reports whether the payment was credited
func (p *Payment) Approved() bool {
	return p != nil && p.Status == PaymentApproved
}

// MercadoPagoClient REST client for the MercadoPago API
type MercadoPagoClient struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	logger      zerolog.Logger
	limiter     *rate.Limiter
}

// MercadoPagoOption configures the client
type MercadoPagoOption func(*MercadoPagoClient)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) MercadoPagoOption {
	return func(c *MercadoPagoClient) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) MercadoPagoOption {
	return func(c *MercadoPagoClient) {
		c.httpClient.Timeout = timeout
	}
}

// WithRateLimit sets the request rate
func WithRateLimit(requestsPerSecond int) MercadoPagoOption {
	return func(c *MercadoPagoClient) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) MercadoPagoOption {
	return func(c *MercadoPagoClient) {
		c.logger = logger
	}
}

// NewMercadoPagoClient creates a client authenticated with accessToken
func NewMercadoPagoClient(accessToken string, opts ...MercadoPagoOption) *MercadoPagoClient {
	c := &MercadoPagoClient{
		baseURL:     DefaultMercadoPagoURL,
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: DefaultGatewayTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultGatewayRate), DefaultGatewayRate),
		logger:  zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError non-2xx gateway response
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("MercadoPago API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Unauthorized reports a credentials problem
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// do performs a rate-limited request and decodes a JSON response into result
func (c *MercadoPagoClient) do(ctx context.Context, method, path string, body interface{}, headers map[string]string, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	c.logger.Debug().Str("method", method).Str("url", path).Msg("MercadoPago API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    gatewayMessage(raw),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// gatewayMessage extracts the message of a MercadoPago error body
func gatewayMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return string(raw)
}

// CreatePreference creates a checkout preference. Each call carries a fresh idempotency key.
func (c *MercadoPagoClient) CreatePreference(ctx context.Context, pref PreferenceRequest) (*Preference, error) {
	var out Preference
	headers := map[string]string{"X-Idempotency-Key": uuid.New().String()}
	if err := c.do(ctx, http.MethodPost, "/checkout/preferences", pref, headers, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPayment fetches a payment to verify a notification
func (c *MercadoPagoClient) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	var out Payment
	if err := c.do(ctx, http.MethodGet, "/v1/payments/"+url.PathEscape(paymentID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
