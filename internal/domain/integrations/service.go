package integrations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Service errors
var (
	ErrNotConnected    = errors.New("no integration for this provider")
	ErrProviderFailure = errors.New("provider request failed")
)

// Service relays OAuth flows and listing operations to marketplace
// providers. Providers are registered by name at startup.
type Service struct {
	repo      Repository
	providers map[string]ProviderClient
	logger    *slog.Logger
}

// NewService creates a new integrations service
func NewService(repo Repository, providers map[string]ProviderClient, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		providers: providers,
		logger:    logger,
	}
}

// Connect exchanges an OAuth authorization code and stores the resulting
// token set for the client. Reconnecting replaces the stored tokens.
func (s *Service) Connect(ctx context.Context, clientID uuid.UUID, provider, code string) (*Integration, error) {
	client, err := s.provider(provider)
	if err != nil {
		return nil, err
	}

	tokens, err := client.ExchangeCode(ctx, code)
	if err != nil {
		s.logger.Error("OAuth code exchange failed", "provider", provider, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}

	now := time.Now()
	integration := &Integration{
		ID:           uuid.New(),
		ClientID:     clientID,
		Provider:     provider,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    tokens.ExpiresAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.UpsertIntegration(ctx, integration); err != nil {
		return nil, fmt.Errorf("failed to store integration: %w", err)
	}

	return integration, nil
}

// Disconnect removes a client's integration with a provider.
func (s *Service) Disconnect(ctx context.Context, clientID uuid.UUID, provider string) error {
	if err := s.repo.DeleteIntegration(ctx, clientID, provider); err != nil {
		return fmt.Errorf("failed to delete integration: %w", err)
	}
	return nil
}

// ListIntegrations returns a client's linked providers.
func (s *Service) ListIntegrations(ctx context.Context, clientID uuid.UUID) ([]*Integration, error) {
	list, err := s.repo.ListByClientID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list integrations: %w", err)
	}
	return list, nil
}

// PublishListing creates a listing on the provider and returns the external
// listing id.
func (s *Service) PublishListing(ctx context.Context, clientID uuid.UUID, provider string, listing *Listing) (string, error) {
	client, integration, err := s.connected(ctx, clientID, provider)
	if err != nil {
		return "", err
	}

	externalID, err := client.CreateListing(ctx, integration.AccessToken, listing)
	if err != nil {
		s.logger.Error("Create listing failed", "provider", provider, "error", err)
		return "", fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}
	return externalID, nil
}

// EndListing ends a listing on the provider.
func (s *Service) EndListing(ctx context.Context, clientID uuid.UUID, provider, externalID string) error {
	client, integration, err := s.connected(ctx, clientID, provider)
	if err != nil {
		return err
	}

	if err := client.EndListing(ctx, integration.AccessToken, externalID); err != nil {
		s.logger.Error("End listing failed", "provider", provider, "error", err)
		return fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}
	return nil
}

// connected resolves the provider client and the client's stored tokens,
// refreshing the access token first when it has expired.
func (s *Service) connected(ctx context.Context, clientID uuid.UUID, provider string) (ProviderClient, *Integration, error) {
	client, err := s.provider(provider)
	if err != nil {
		return nil, nil, err
	}

	integration, err := s.repo.GetByClientAndProvider(ctx, clientID, provider)
	if err != nil {
		return nil, nil, ErrNotConnected
	}

	if integration.ExpiresAt != nil && time.Now().After(*integration.ExpiresAt) {
		tokens, refreshErr := client.RefreshAccessToken(ctx, integration.RefreshToken)
		if refreshErr != nil {
			s.logger.Error("Token refresh failed", "provider", provider, "error", refreshErr)
			return nil, nil, fmt.Errorf("%w: %v", ErrProviderFailure, refreshErr)
		}
		integration.AccessToken = tokens.AccessToken
		if tokens.RefreshToken != "" {
			integration.RefreshToken = tokens.RefreshToken
		}
		integration.ExpiresAt = tokens.ExpiresAt
		integration.UpdatedAt = time.Now()
		if err := s.repo.UpsertIntegration(ctx, integration); err != nil {
			return nil, nil, fmt.Errorf("failed to store refreshed tokens: %w", err)
		}
	}

	return client, integration, nil
}

func (s *Service) provider(name string) (ProviderClient, error) {
	client, ok := s.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotConnected, name)
	}
	return client, nil
}
