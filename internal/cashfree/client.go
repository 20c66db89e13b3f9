package cashfree

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/rookgm/paygate/internal/models"
)

const (
	EnvSandbox    = "SANDBOX"
	EnvProduction = "PRODUCTION"

	sandboxBaseURL    = "https://sandbox.cashfree.com/pg"
	productionBaseURL = "https://api.cashfree.com/pg"

	apiVersion = "2022-09-01"
)

// BaseURLForEnv returns gateway base URL for environment selector.
// Anything other than PRODUCTION selects sandbox.
func BaseURLForEnv(env string) string {
	if env == EnvProduction {
		return productionBaseURL
	}
	return sandboxBaseURL
}

// Client represents HTTP client for Cashfree PG requests
type Client struct {
	client    *http.Client
	baseURL   string
	appID     string
	secretKey string
}

// NewClient creates new Client instance
func NewClient(baseURL, appID, secretKey string) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		baseURL:   baseURL,
		appID:     appID,
		secretKey: secretKey,
	}
}

// CustomerDetails is customer identity block of order
type CustomerDetails struct {
	CustomerID    string `json:"customer_id"`
	CustomerPhone string `json:"customer_phone"`
	CustomerName  string `json:"customer_name"`
}

// OrderMeta carries order return url
type OrderMeta struct {
	ReturnURL string `json:"return_url"`
}

// CreateOrderRequest is order creation payload
type CreateOrderRequest struct {
	OrderAmount     float64         `json:"order_amount"`
	OrderCurrency   string          `json:"order_currency"`
	OrderID         string          `json:"order_id"`
	CustomerDetails CustomerDetails `json:"customer_details"`
	OrderMeta       OrderMeta       `json:"order_meta"`
}

// OrderSession is created order with payment session
type OrderSession struct {
	OrderID          string `json:"order_id"`
	PaymentSessionID string `json:"payment_session_id"`
	OrderStatus      string `json:"order_status"`
}

// Order is gateway-side order state
type Order struct {
	OrderID     string `json:"order_id"`
	OrderStatus string `json:"order_status"`
}

type gatewayErrorResponse struct {
	Message string `json:"message"`
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-client-id", c.appID)
	req.Header.Set("x-client-secret", c.secretKey)
	req.Header.Set("x-api-version", apiVersion)
}

func gatewayError(resp *http.Response) error {
	gwErr := gatewayErrorResponse{}
	// body may not be json, keep the status-derived message then
	_ = json.NewDecoder(resp.Body).Decode(&gwErr)
	return models.NewGatewayError(resp.StatusCode, gwErr.Message)
}

// CreateOrder creates new order at gateway
// POST {base}/orders
func (c *Client) CreateOrder(ctx context.Context, order *CreateOrderRequest) (*OrderSession, error) {
	url, err := url.JoinPath(c.baseURL, "orders")
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(order)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, gatewayError(resp)
	}

	session := OrderSession{}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, err
	}

	return &session, nil
}

// GetOrder fetches current order state from gateway
// GET {base}/orders/{id}
func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	url, err := url.JoinPath(c.baseURL, "orders", orderID)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, gatewayError(resp)
	}

	order := Order{}
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, err
	}

	return &order, nil
}
