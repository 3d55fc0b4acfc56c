package integrations

import (
	"time"

	"github.com/google/uuid"
)

// Integration is a client's linked account on an external marketplace
// platform. One row per (client, provider).
type Integration struct {
	ID           uuid.UUID  `db:"id"`
	ClientID     uuid.UUID  `db:"client_id"`
	Provider     string     `db:"provider"`
	AccessToken  string     `json:"-" db:"access_token"`
	RefreshToken string     `json:"-" db:"refresh_token"`
	ExpiresAt    *time.Time `db:"expires_at"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

// TokenSet is what the provider's token endpoint returns.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
}

// Listing is the marketplace-facing projection of a product.
type Listing struct {
	Title       string
	Description string
	PriceCents  int64
	ImageURLs   []string
}
