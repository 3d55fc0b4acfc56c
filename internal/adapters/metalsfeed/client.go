package metalsfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/aurelius/mintbid/internal/domain/metals"
)

const requestTimeout = 10 * time.Second

// Client implements metals.Feed against an upstream spot-price HTTP API that
// serves {"metal": "...", "price_usd": 2650.25} per symbol.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a new spot-price feed client
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

type spotResponse struct {
	Metal    string  `json:"metal"`
	PriceUSD float64 `json:"price_usd"`
}

// FetchSpot retrieves the current spot price for one metal.
func (c *Client) FetchSpot(ctx context.Context, metal metals.Metal) (*metals.Quote, error) {
	endpoint := fmt.Sprintf("%s/spot/%s", c.baseURL, url.PathEscape(string(metal)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create spot request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("spot request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	var body spotResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode spot response: %w", err)
	}
	if body.PriceUSD <= 0 {
		return nil, fmt.Errorf("feed returned non-positive price %f", body.PriceUSD)
	}

	return &metals.Quote{
		Metal:     metal,
		Price:     int64(math.Round(body.PriceUSD * 100)),
		FetchedAt: time.Now(),
	}, nil
}
