// Package session resolves the caller's identity against the external
// auth service. The cart itself has no notion of identity; the session is
// consulted only to gate checkout and key the cart slot.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type User struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

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

type userEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *struct {
		ID     string `json:"id"`
		UserID string `json:"userId"`
		Sub    string `json:"sub"`
		Role   string `json:"role"`
	} `json:"data"`
}

// UserFromToken returns nil for a missing, expired or rejected token; an
// anonymous caller is a normal state, not an error. Errors are reserved
// for transport failures, which callers also treat as anonymous but log.
func (c *Client) UserFromToken(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/auth/me", nil)
	if err != nil {
		return nil, fmt.Errorf("build session request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("session request: %w", err)
	}
	defer resp.Body.Close()

	var env userEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode session response: %w", err)
	}
	if !env.Success || env.Data == nil {
		return nil, nil
	}

	// The upstream is inconsistent about the identity field name.
	id := env.Data.ID
	if id == "" {
		id = env.Data.UserID
	}
	if id == "" {
		id = env.Data.Sub
	}
	if id == "" {
		return nil, nil
	}
	return &User{ID: id, Role: env.Data.Role}, nil
}
