package metals

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrUnknownMetal is returned for a metal outside the tracked set.
var ErrUnknownMetal = errors.New("unknown metal")

// DefaultTTL is how long a fetched quote is served from cache before the
// upstream feed is consulted again.
const DefaultTTL = 5 * time.Minute

// Service resolves spot prices through a fallback chain:
// cache -> upstream feed -> last database-stored value -> static default.
// A successful upstream fetch refreshes both the cache and the database.
type Service struct {
	cache  Cache
	feed   Feed
	repo   Repository
	ttl    time.Duration
	logger *slog.Logger
}

// NewService creates a new metals price service
func NewService(cache Cache, feed Feed, repo Repository, ttl time.Duration, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		cache:  cache,
		feed:   feed,
		repo:   repo,
		ttl:    ttl,
		logger: logger,
	}
}

// GetSpot returns the current spot price for one metal.
func (s *Service) GetSpot(ctx context.Context, metal Metal) (*Quote, error) {
	if !isTracked(metal) {
		return nil, ErrUnknownMetal
	}

	// 1. Cache within the TTL window: no upstream call.
	cached, err := s.cache.GetQuote(ctx, metal)
	if err != nil {
		// A broken cache degrades to an upstream fetch, nothing worse.
		s.logger.Warn("Quote cache read failed", "metal", metal, "error", err)
	}
	if cached != nil {
		return cached, nil
	}

	// 2. Upstream feed.
	quote, feedErr := s.feed.FetchSpot(ctx, metal)
	if feedErr == nil {
		if cacheErr := s.cache.SetQuote(ctx, quote, s.ttl); cacheErr != nil {
			s.logger.Warn("Quote cache write failed", "metal", metal, "error", cacheErr)
		}
		if saveErr := s.repo.SaveQuote(ctx, quote); saveErr != nil {
			s.logger.Error("Failed to persist quote", "metal", metal, "error", saveErr)
		}
		return quote, nil
	}

	s.logger.Error("Upstream metals feed failed", "metal", metal, "error", feedErr)

	// 3. Last database-stored value, returned unchanged.
	last, dbErr := s.repo.GetLatestQuote(ctx, metal)
	if dbErr == nil && last != nil {
		return last, nil
	}

	// 4. Static fallback.
	return &Quote{
		Metal:     metal,
		Price:     staticFallback[metal],
		FetchedAt: time.Now(),
	}, nil
}

// GetTicker returns quotes for every tracked metal.
func (s *Service) GetTicker(ctx context.Context) ([]*Quote, error) {
	quotes := make([]*Quote, 0, len(Tracked))
	for _, metal := range Tracked {
		quote, err := s.GetSpot(ctx, metal)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", metal, err)
		}
		quotes = append(quotes, quote)
	}
	return quotes, nil
}

// Refresh force-fetches every tracked metal, warming cache and history.
// Invoked by the worker's cron schedule.
func (s *Service) Refresh(ctx context.Context) error {
	for _, metal := range Tracked {
		quote, err := s.feed.FetchSpot(ctx, metal)
		if err != nil {
			s.logger.Error("Refresh fetch failed", "metal", metal, "error", err)
			continue
		}
		if cacheErr := s.cache.SetQuote(ctx, quote, s.ttl); cacheErr != nil {
			s.logger.Warn("Quote cache write failed", "metal", metal, "error", cacheErr)
		}
		if saveErr := s.repo.SaveQuote(ctx, quote); saveErr != nil {
			s.logger.Error("Failed to persist quote", "metal", metal, "error", saveErr)
		}
	}
	return nil
}

func isTracked(metal Metal) bool {
	for _, m := range Tracked {
		if m == metal {
			return true
		}
	}
	return false
}
