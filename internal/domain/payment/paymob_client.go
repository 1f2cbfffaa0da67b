// internal/domain/payment/paymob_client.go
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/your-org/storefront-api/internal/config"
)

// Gateway is the three-call Paymob checkout API
type Gateway interface {
	Authenticate(ctx context.Context) (string, error)
	RegisterOrder(ctx context.Context, req *OrderRegistration) (int64, error)
	CreatePaymentKey(ctx context.Context, req *PaymentKeyRequest) (string, error)
	IframeURL(paymentToken string, localOrderID uint) string
}

// OrderRegistration is the body of POST /ecommerce/orders
type OrderRegistration struct {
	AuthToken      string         `json:"auth_token"`
	DeliveryNeeded string         `json:"delivery_needed"`
	AmountCents    int64          `json:"amount_cents"`
	Currency       string         `json:"currency"`
	FirstName      string         `json:"first_name,omitempty"`
	LastName       string         `json:"last_name,omitempty"`
	PhoneNumber    string         `json:"phone_number,omitempty"`
	Items          []GatewayItem  `json:"items"`
	ShippingData   AddressDetails `json:"shipping_data"`
}

// GatewayItem is a line item in minor currency units
type GatewayItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
	Quantity    int    `json:"quantity"`
}

// AddressDetails is the shape Paymob uses for both shipping and billing data
type AddressDetails struct {
	Apartment   string `json:"apartment"`
	Email       string `json:"email"`
	Floor       string `json:"floor"`
	FirstName   string `json:"first_name"`
	Street      string `json:"street"`
	Building    string `json:"building"`
	PhoneNumber string `json:"phone_number"`
	PostalCode  string `json:"postal_code"`
	City        string `json:"city"`
	Country     string `json:"country"`
	LastName    string `json:"last_name"`
	State       string `json:"state"`
}

// PaymentKeyRequest is the body of POST /acceptance/payment_keys
type PaymentKeyRequest struct {
	AuthToken     string         `json:"auth_token"`
	AmountCents   int64          `json:"amount_cents"`
	Expiration    int            `json:"expiration"`
	OrderID       int64          `json:"order_id"`
	BillingData   AddressDetails `json:"billing_data"`
	Currency      string         `json:"currency"`
	IntegrationID string         `json:"integration_id"`
}

// PaymobClient talks to the Paymob Accept API
type PaymobClient struct {
	baseURL    string
	apiKey     string
	iframeID   string
	httpClient *http.Client
}

// NewPaymobClient creates a new Paymob client
func NewPaymobClient(cfg *config.Config) *PaymobClient {
	return &PaymobClient{
		baseURL:  cfg.Paymob.BaseURL,
		apiKey:   cfg.Paymob.APIKey,
		iframeID: cfg.Paymob.IframeID,
		httpClient: &http.Client{
			Timeout: cfg.Paymob.Timeout,
		},
	}
}

// Authenticate exchanges the API key for a short-lived auth token
func (c *PaymobClient) Authenticate(ctx context.Context) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.makeAPICall(ctx, "/auth/tokens", map[string]string{"api_key": c.apiKey}, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("no authentication token received")
	}
	return resp.Token, nil
}

// RegisterOrder creates the remote order and returns its id
func (c *PaymobClient) RegisterOrder(ctx context.Context, req *OrderRegistration) (int64, error) {
	var resp struct {
		ID int64 `json:"id"`
	}
	if err := c.makeAPICall(ctx, "/ecommerce/orders", req, &resp); err != nil {
		return 0, err
	}
	if resp.ID == 0 {
		return 0, fmt.Errorf("no order ID received from Paymob")
	}
	return resp.ID, nil
}

// CreatePaymentKey requests the token the hosted payment page is opened with
func (c *PaymobClient) CreatePaymentKey(ctx context.Context, req *PaymentKeyRequest) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.makeAPICall(ctx, "/acceptance/payment_keys", req, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("no payment token received from Paymob")
	}
	return resp.Token, nil
}

// IframeURL builds the hosted payment page URL
func (c *PaymobClient) IframeURL(paymentToken string, localOrderID uint) string {
	q := url.Values{}
	q.Set("payment_token", paymentToken)
	q.Set("order", fmt.Sprintf("%d", localOrderID))
	return fmt.Sprintf("%s/acceptance/iframes/%s?%s", c.baseURL, url.PathEscape(c.iframeID), q.Encode())
}

// makeAPICall posts a JSON body and decodes the JSON response into out
func (c *PaymobClient) makeAPICall(ctx context.Context, endpoint string, data interface{}, out interface{}) error {
	reqBody, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal request data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make API call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: gatewayMessage(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// APIError is a non-2xx gateway response
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("paymob returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("paymob returned status %d: %s", e.StatusCode, e.Message)
}

// gatewayMessage pulls a human readable message out of an error body
func gatewayMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Detail != "" {
			return payload.Detail
		}
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(bytes.TrimSpace(body))
}
