// Package orderapi is the client for the external order creation service.
package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// PaymentMethodCOD is the only payment method the storefront models.
const PaymentMethodCOD = "COD"

type OrderItem struct {
	MedicineID string  `json:"medicineId"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
}

type CreateOrderPayload struct {
	CustomerID      string      `json:"customerId"`
	PaymentMethod   string      `json:"paymentMethod"`
	ShippingAddress string      `json:"shippingAddress"`
	TotalAmount     float64     `json:"totalAmount"`
	Items           []OrderItem `json:"items"`
}

// CreateOrderResult distinguishes a semantic rejection (Success=false,
// Message set) from transport failure, which comes back as an error
// instead.
type CreateOrderResult struct {
	Success bool
	Message string
	OrderID string
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
	Log     *zap.Logger
}

func NewClient(baseURL string, log *zap.Logger) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		Log:     log,
	}
}

type createOrderEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (c *Client) Create(ctx context.Context, token string, p CreateOrderPayload) (CreateOrderResult, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return CreateOrderResult{}, fmt.Errorf("marshal order payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return CreateOrderResult{}, fmt.Errorf("build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return CreateOrderResult{}, fmt.Errorf("order request: %w", err)
	}
	defer resp.Body.Close()

	var env createOrderEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return CreateOrderResult{}, fmt.Errorf("decode order response: %w", err)
	}

	out := CreateOrderResult{Success: env.Success, Message: env.Message}
	if env.Data != nil {
		out.OrderID = env.Data.ID
	}
	return out, nil
}
