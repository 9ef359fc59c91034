// Package client provides the HTTP client for the Polar billing API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"handylink_backend/platform/apperr"
	"handylink_backend/platform/logger"
)

const (
	productionBaseURL = "https://api.polar.sh"
	sandboxBaseURL    = "https://sandbox-api.polar.sh"
)

// Client is the HTTP client for the Polar API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	log         *logger.Logger
}

// New creates a Polar API client. Server selects the production or
// sandbox environment.
func New(accessToken, server string, log *logger.Logger) *Client {
	baseURL := productionBaseURL
	if server == "sandbox" {
		baseURL = sandboxBaseURL
	}
	return &Client{
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		baseURL:     baseURL,
		accessToken: accessToken,
		log:         log,
	}
}

// CheckoutParams describes a subscription checkout session.
type CheckoutParams struct {
	ProductID          string
	CustomerExternalID string
	CustomerEmail      string
	SuccessURL         string
}

// Checkout is the created checkout session.
type Checkout struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type checkoutRequest struct {
	Products           []string `json:"products"`
	ExternalCustomerID string   `json:"external_customer_id,omitempty"`
	CustomerEmail      string   `json:"customer_email,omitempty"`
	SuccessURL         string   `json:"success_url,omitempty"`
}

// CreateCheckout opens a hosted checkout session for a product.
func (c *Client) CreateCheckout(ctx context.Context, p CheckoutParams) (*Checkout, error) {
	body, err := json.Marshal(checkoutRequest{
		Products:           []string{p.ProductID},
		ExternalCustomerID: p.CustomerExternalID,
		CustomerEmail:      p.CustomerEmail,
		SuccessURL:         p.SuccessURL,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal checkout request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkouts/", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("polar checkout request failed", "error", err)
		return nil, apperr.Upstream("billing provider is unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Error("polar checkout rejected", "status", resp.StatusCode)
		return nil, apperr.Upstream(fmt.Sprintf("billing provider returned status %d", resp.StatusCode))
	}

	var checkout Checkout
	if err := json.NewDecoder(resp.Body).Decode(&checkout); err != nil {
		c.log.Error("polar checkout decode failed", "error", err)
		return nil, apperr.Upstream("malformed billing provider response")
	}
	return &checkout, nil
}
