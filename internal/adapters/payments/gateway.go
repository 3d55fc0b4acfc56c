package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/aurelius/mintbid/internal/domain/orders"
)

const requestTimeout = 15 * time.Second

// HTTPGateway implements orders.PaymentGateway against the hosted-checkout
// endpoint of the payment provider. The provider redirects the buyer and
// reports completion out of band.
type HTTPGateway struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewHTTPGateway creates a new payment gateway client
func NewHTTPGateway(baseURL, apiKey string) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

type sessionRequest struct {
	OrderID     string `json:"order_id"`
	AmountCents int64  `json:"amount_cents"`
	Description string `json:"description"`
}

type sessionResponse struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

// CreateCheckoutSession opens a hosted checkout session for an order.
func (g *HTTPGateway) CreateCheckoutSession(ctx context.Context, orderID uuid.UUID, amountCents int64, description string) (*orders.CheckoutSession, error) {
	payload, err := json.Marshal(sessionRequest{
		OrderID:     orderID.String(),
		AmountCents: amountCents,
		Description: description,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/checkout/sessions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("session request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("checkout endpoint returned status %d", resp.StatusCode)
	}

	var body sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode session response: %w", err)
	}

	return &orders.CheckoutSession{
		SessionID:   body.SessionID,
		RedirectURL: body.RedirectURL,
		AmountTotal: amountCents,
	}, nil
}
