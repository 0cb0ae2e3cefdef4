// Package catalog is the read-only client for the external medicine
// catalog service.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Medicine is the catalog view the cart core needs. Stock is nil when the
// catalog did not report a number; nil means "unknown", never "zero".
type Medicine struct {
	ID           string
	Name         string
	Price        float64
	Stock        *int
	Manufacturer string
	Category     string
}

// LookupError is a semantic rejection from the catalog (success:false).
// Its message is safe to show to the user verbatim.
type LookupError struct {
	Message string
}

func (e *LookupError) Error() string { return e.Message }

type Client struct {
	BaseURL string
	HTTP    *http.Client
	Log     *zap.Logger
}

func NewClient(baseURL string, log *zap.Logger) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 5 * time.Second},
		Log:     log,
	}
}

type medicineEnvelope struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    *medicinePayload `json:"data"`
}

type medicinePayload struct {
	MongoID      string          `json:"_id"`
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        float64         `json:"price"`
	Stock        *int            `json:"stock"`
	Manufacturer string          `json:"manufacturer"`
	Category     json.RawMessage `json:"category"`
}

// MedicineByID fetches one catalog item, uncached. A success:false reply
// comes back as *LookupError; transport and decode failures come back as
// plain errors. Neither is ever mapped to zero stock by callers.
func (c *Client) MedicineByID(ctx context.Context, id string) (*Medicine, error) {
	url := fmt.Sprintf("%s/medicines/%s", c.BaseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	var env medicineEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}
	if !env.Success || env.Data == nil {
		msg := env.Message
		if msg == "" {
			msg = "Failed to fetch medicine"
		}
		return nil, &LookupError{Message: msg}
	}

	itemID := env.Data.MongoID
	if itemID == "" {
		itemID = env.Data.ID
	}
	if itemID == "" {
		return nil, &LookupError{Message: "Selected medicine is not available"}
	}

	return &Medicine{
		ID:           itemID,
		Name:         env.Data.Name,
		Price:        env.Data.Price,
		Stock:        env.Data.Stock,
		Manufacturer: env.Data.Manufacturer,
		Category:     categoryName(env.Data.Category),
	}, nil
}

// categoryName tolerates both shapes the upstream emits: a bare string or
// an object carrying a name.
func categoryName(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Name
	}
	return ""
}
