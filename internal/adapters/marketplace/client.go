package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aurelius/mintbid/internal/domain/integrations"
)

const requestTimeout = 15 * time.Second

// Config holds the provider endpoints and app credentials.
type Config struct {
	TokenURL     string
	ListingURL   string
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Client implements integrations.ProviderClient against a marketplace
// platform's OAuth and listing APIs. Failures are returned to the caller
// unretried.
type Client struct {
	config Config
	http   *http.Client
}

// NewClient creates a new marketplace API client
func NewClient(config Config) *Client {
	return &Client{
		config: config,
		http:   &http.Client{Timeout: requestTimeout},
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// ExchangeCode exchanges an OAuth authorization code for a token set.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*integrations.TokenSet, error) {
	form := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {c.config.RedirectURI},
	}
	return c.tokenRequest(ctx, form)
}

// RefreshAccessToken exchanges a refresh token for a fresh access token.
func (c *Client) RefreshAccessToken(ctx context.Context, refreshToken string) (*integrations.TokenSet, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	return c.tokenRequest(ctx, form)
}

func (c *Client) tokenRequest(ctx context.Context, form url.Values) (*integrations.TokenSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.config.ClientID, c.config.ClientSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	tokens := &integrations.TokenSet{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
	}
	if body.ExpiresIn > 0 {
		expires := time.Now().Add(time.Duration(body.ExpiresIn) * time.Second)
		tokens.ExpiresAt = &expires
	}
	return tokens, nil
}

type listingRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	PriceCents  int64    `json:"price_cents"`
	ImageURLs   []string `json:"image_urls"`
}

type listingResponse struct {
	ListingID string `json:"listing_id"`
}

// CreateListing publishes a listing and returns the provider's listing id.
func (c *Client) CreateListing(ctx context.Context, accessToken string, listing *integrations.Listing) (string, error) {
	payload, err := json.Marshal(listingRequest{
		Title:       listing.Title,
		Description: listing.Description,
		PriceCents:  listing.PriceCents,
		ImageURLs:   listing.ImageURLs,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode listing: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.ListingURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create listing request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("listing request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("listing endpoint returned status %d", resp.StatusCode)
	}

	var body listingResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode listing response: %w", err)
	}
	return body.ListingID, nil
}

// EndListing ends a live listing on the provider.
func (c *Client) EndListing(ctx context.Context, accessToken, externalID string) error {
	endURL := fmt.Sprintf("%s/%s/end", c.config.ListingURL, url.PathEscape(externalID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create end-listing request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("end-listing request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("end-listing endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
