// Package paygate is the client for the card processor's intent API.
// The backend creates payment intents server-side with its secret key and
// verifies the processor's webhook signatures; card data never touches
// this service.
package paygate

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Intent mirrors the processor's payment intent resource
type Intent struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"client_secret"`
	Amount       int64             `json:"amount"` // minor units
	Currency     string            `json:"currency"`
	Status       string            `json:"status"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// WebhookEvent is the processor's callback payload
type WebhookEvent struct {
	ID            string  `json:"id"`
	Type          string  `json:"type"` // payment_intent.succeeded, payment_intent.payment_failed
	IntentID      string  `json:"intent_id"`
	PaymentMethod *string `json:"payment_method,omitempty"`
	FailureReason *string `json:"failure_reason,omitempty"`
}

// Webhook event types sent by the processor
const (
	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"
)

// Gateway abstracts the processor so services and tests do not depend on
// the HTTP client
type Gateway interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*Intent, error)
	RetrieveIntent(ctx context.Context, intentID string) (*Intent, error)
	VerifyWebhook(signature string, body []byte) error
	ParseWebhook(body []byte) (*WebhookEvent, error)
}

// Config holds processor connection settings
type Config struct {
	BaseURL       string
	SecretKey     string
	WebhookSecret string
	Timeout       time.Duration
}

// Client is the HTTP implementation of Gateway
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new processor client
func NewClient(config Config) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type createIntentRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// CreateIntent creates a payment intent on the processor
func (c *Client) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*Intent, error) {
	if amountMinor <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %d", amountMinor)
	}

	payload := createIntentRequest{
		Amount:   amountMinor,
		Currency: currency,
		Metadata: metadata,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal intent request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/v1/payment_intents", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build intent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.SecretKey)

	return c.doIntent(req)
}

// RetrieveIntent fetches the current state of an intent from the processor
func (c *Client) RetrieveIntent(ctx context.Context, intentID string) (*Intent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.config.BaseURL+"/v1/payment_intents/"+intentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build retrieve request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.SecretKey)

	return c.doIntent(req)
}

func (c *Client) doIntent(req *http.Request) (*Intent, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("processor request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read processor response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("processor returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var intent Intent
	if err := json.Unmarshal(respBody, &intent); err != nil {
		return nil, fmt.Errorf("failed to parse processor response: %w", err)
	}
	return &intent, nil
}

// VerifyWebhook checks the HMAC-SHA256 signature the processor attaches to
// callbacks. The comparison is constant-time.
func (c *Client) VerifyWebhook(signature string, body []byte) error {
	if signature == "" {
		return fmt.Errorf("missing webhook signature")
	}

	mac := hmac.New(sha256.New, []byte(c.config.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return fmt.Errorf("webhook signature mismatch")
	}
	return nil
}

// ParseWebhook decodes a verified webhook body. Event types the backend
// does not act on still parse; the caller decides what to ignore.
func (c *Client) ParseWebhook(body []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}
	if event.Type == "" {
		return nil, fmt.Errorf("webhook payload missing event type")
	}
	return &event, nil
}

// SignPayload computes the signature the processor would attach to body.
// Exposed for tests and local webhook simulation.
func (c *Client) SignPayload(body []byte) string {
	mac := hmac.New(sha256.New, []byte(c.config.WebhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
