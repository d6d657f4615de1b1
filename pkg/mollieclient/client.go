/**
 * @description
 * This package provides a client for the payment provider's v2 REST API.
 * It encapsulates the logic for making authenticated HTTP requests to the
 * provider's payment endpoints, handling request body construction, and
 * parsing responses.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, net/http, time: Standard Go libraries.
 */
package mollieclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Client is a client for the payment provider API.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a new payment provider API client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Amount is the provider's currency/value pair. Value carries fixed 2-decimal
// formatting (e.g. "29.99").
type Amount struct {
	Currency string `json:"currency"`
	Value    string `json:"value"`
}

// CreatePaymentRequest is the payload for the provider's create-payment call.
type CreatePaymentRequest struct {
	Amount      Amount            `json:"amount"`
	Description string            `json:"description"`
	RedirectURL string            `json:"redirectUrl"`
	WebhookURL  string            `json:"webhookUrl"`
	Method      string            `json:"method,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// PaymentResponse is the provider's representation of a payment. Status is
// the provider's own vocabulary: open, pending, paid, failed, canceled,
// expired.
type PaymentResponse struct {
	ID          string            `json:"id"`
	Status      string            `json:"status"`
	Amount      Amount            `json:"amount"`
	Description string            `json:"description"`
	Method      string            `json:"method"`
	Metadata    map[string]string `json:"metadata"`
	Links       struct {
		Checkout struct {
			Href string `json:"href"`
		} `json:"checkout"`
	} `json:"_links"`
}

// CheckoutURL returns the hosted checkout page URL for the payment, empty when
// the provider did not include one (e.g. for already-terminal payments).
func (p *PaymentResponse) CheckoutURL() string {
	return p.Links.Checkout.Href
}

// ErrorResponse represents an error body from the provider API.
type ErrorResponse struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func (e *ErrorResponse) Error() string {
	if e.Title == "" && e.Detail == "" {
		return "unknown payment provider error"
	}
	return fmt.Sprintf("payment provider error: %s - %s", e.Title, e.Detail)
}

// CreatePayment registers a new payment with the provider and returns the
// provider-assigned id, initial status, and checkout link.
func (c *Client) CreatePayment(ctx context.Context, payload CreatePaymentRequest) (*PaymentResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/v2/payments", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create payment request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute payment request: %w", err)
	}
	defer resp.Body.Close()

	return decodePaymentResponse(resp, "create_payment")
}

// GetPayment fetches the current state of a payment by its provider id.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*PaymentResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+"/v2/payments/"+paymentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment lookup request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute payment lookup: %w", err)
	}
	defer resp.Body.Close()

	return decodePaymentResponse(resp, "get_payment")
}

func decodePaymentResponse(resp *http.Response, op string) (*PaymentResponse, error) {
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp ErrorResponse
		if err := json.Unmarshal(bodyBytes, &errResp); err != nil {
			log.Printf("level=warn component=mollie_client op=%s status=%d msg=\"non-2xx response (unparsable error body)\"", op, resp.StatusCode)
			return nil, fmt.Errorf("failed to decode error response (status %d)", resp.StatusCode)
		}
		log.Printf("level=warn component=mollie_client op=%s status=%d title=%q detail=%q", op, resp.StatusCode, errResp.Title, errResp.Detail)
		return nil, &errResp
	}

	var payment PaymentResponse
	if err := json.Unmarshal(bodyBytes, &payment); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}
	return &payment, nil
}
