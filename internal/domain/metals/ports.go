package metals

import (
	"context"
	"time"
)

// Cache is an injected value+expiry store for quotes. Implementations:
// Redis in production, miniredis or in-memory in tests. A cache miss is
// (nil, nil).
type Cache interface {
	GetQuote(ctx context.Context, metal Metal) (*Quote, error)
	SetQuote(ctx context.Context, quote *Quote, ttl time.Duration) error
}

// Feed is the upstream spot-price provider. No availability guarantees.
type Feed interface {
	FetchSpot(ctx context.Context, metal Metal) (*Quote, error)
}

// Repository persists quote history; the latest row per metal is the
// last-known-value fallback when the feed is down.
type Repository interface {
	SaveQuote(ctx context.Context, quote *Quote) error
	GetLatestQuote(ctx context.Context, metal Metal) (*Quote, error)
}
