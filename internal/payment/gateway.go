package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ariefcatur/go-food-orders/internal/apperr"
)

// SessionRequest carries what the external gateway needs to open a hosted
// payment session for an order.
type SessionRequest struct {
	OrderCode string `json:"order_code"`
	Amount    int64  `json:"amount"`
	Customer  string `json:"customer_id"`
}

// Redirect is the handle returned to the client for an online payment.
type Redirect struct {
	URL       string    `json:"redirect_url"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Gateway interface {
	CreateRedirect(ctx context.Context, req SessionRequest) (Redirect, error)
}

// Client talks to the gateway's session endpoint over HTTP. The gateway is
// an opaque collaborator; it later reports the outcome via webhook.
type Client struct {
	BaseURL string
	Secret  string
	HTTP    *http.Client
}

func NewClient(baseURL, secret string) *Client {
	return &Client{
		BaseURL: baseURL,
		Secret:  secret,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) CreateRedirect(ctx context.Context, req SessionRequest) (Redirect, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Redirect{}, apperr.Internal(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/sessions", bytes.NewReader(body))
	if err != nil {
		return Redirect{}, apperr.Internal(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.Secret)

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return Redirect{}, apperr.Internal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return Redirect{}, apperr.Internal(fmt.Errorf("gateway session: unexpected status %d", resp.StatusCode))
	}

	var out Redirect
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Redirect{}, apperr.Internal(err)
	}
	return out, nil
}
