package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aurelius/mintbid/internal/domain/metals"
)

// RedisQuoteCache stores spot quotes in Redis with a TTL. A missing key is
// a cache miss, reported as (nil, nil).
type RedisQuoteCache struct {
	client *redis.Client
}

// NewRedisQuoteCache creates a new quote cache backed by the given client
func NewRedisQuoteCache(client *redis.Client) *RedisQuoteCache {
	return &RedisQuoteCache{client: client}
}

func quoteKey(metal metals.Metal) string {
	return fmt.Sprintf("metals:spot:%s", metal)
}

// GetQuote retrieves a cached quote, or (nil, nil) when none is stored.
func (c *RedisQuoteCache) GetQuote(ctx context.Context, metal metals.Metal) (*metals.Quote, error) {
	raw, err := c.client.Get(ctx, quoteKey(metal)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read quote cache: %w", err)
	}

	var quote metals.Quote
	if err := json.Unmarshal(raw, &quote); err != nil {
		return nil, fmt.Errorf("failed to decode cached quote: %w", err)
	}
	return &quote, nil
}

// SetQuote stores a quote with the given expiry.
func (c *RedisQuoteCache) SetQuote(ctx context.Context, quote *metals.Quote, ttl time.Duration) error {
	raw, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("failed to encode quote: %w", err)
	}
	if err := c.client.Set(ctx, quoteKey(quote.Metal), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write quote cache: %w", err)
	}
	return nil
}
