package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aurelius/mintbid/internal/domain/metals"
)

// PostgresMetalsRepository implements metals.Repository using pgx. Every
// fetched quote is appended; the latest row per metal is the fallback value
// when the upstream feed is unavailable.
type PostgresMetalsRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresMetalsRepository creates a new PostgreSQL metals repository
func NewPostgresMetalsRepository(pool *pgxpool.Pool) *PostgresMetalsRepository {
	return &PostgresMetalsRepository{pool: pool}
}

// SaveQuote appends a quote to the price history
func (r *PostgresMetalsRepository) SaveQuote(ctx context.Context, quote *metals.Quote) error {
	query := `INSERT INTO metal_prices (id, metal, price_cents, fetched_at) VALUES ($1, $2, $3, $4)`
	_, err := r.pool.Exec(ctx, query, uuid.New(), quote.Metal, quote.Price, quote.FetchedAt)
	if err != nil {
		return fmt.Errorf("failed to insert quote: %w", err)
	}
	return nil
}

// GetLatestQuote returns the most recently fetched quote for a metal
func (r *PostgresMetalsRepository) GetLatestQuote(ctx context.Context, metal metals.Metal) (*metals.Quote, error) {
	query := `
		SELECT metal, price_cents, fetched_at
		FROM metal_prices
		WHERE metal = $1
		ORDER BY fetched_at DESC
		LIMIT 1
	`
	var q metals.Quote
	err := r.pool.QueryRow(ctx, query, metal).Scan(&q.Metal, &q.Price, &q.FetchedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get latest quote: %w", err)
	}
	return &q, nil
}
