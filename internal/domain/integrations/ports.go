package integrations

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists marketplace integrations.
type Repository interface {
	// UpsertIntegration inserts or replaces the row for (client, provider)
	UpsertIntegration(ctx context.Context, integration *Integration) error
	GetByClientAndProvider(ctx context.Context, clientID uuid.UUID, provider string) (*Integration, error)
	ListByClientID(ctx context.Context, clientID uuid.UUID) ([]*Integration, error)
	DeleteIntegration(ctx context.Context, clientID uuid.UUID, provider string) error
}

// ProviderClient is the remote marketplace API: token exchange plus listing
// create/end. Opaque remote CRUD; failures are request-scoped, no retry.
type ProviderClient interface {
	ExchangeCode(ctx context.Context, code string) (*TokenSet, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (*TokenSet, error)
	CreateListing(ctx context.Context, accessToken string, listing *Listing) (string, error)
	EndListing(ctx context.Context, accessToken string, externalID string) error
}
