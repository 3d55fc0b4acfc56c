package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aurelius/mintbid/internal/domain/auctions"
)

// PostgresBidRepository implements auctions.BidRepository using pgx
type PostgresBidRepository struct {
	pool *pgxpool.Pool // pool for read-only operations
}

// NewPostgresBidRepository creates a new PostgreSQL bid repository
func NewPostgresBidRepository(pool *pgxpool.Pool) *PostgresBidRepository {
	return &PostgresBidRepository{pool: pool}
}

// SaveBid appends a bid within a transaction
func (r *PostgresBidRepository) SaveBid(ctx context.Context, tx pgx.Tx, bid *auctions.Bid) error {
	query := `
		INSERT INTO auction_bids (id, auction_id, bidder_id, amount_cents, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := tx.Exec(ctx, query,
		bid.ID,
		bid.AuctionID,
		bid.BidderID,
		bid.Amount,
		bid.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bid: %w", err)
	}
	return nil
}

// ListBidsByAuctionID retrieves the most recent bids for an auction, newest first
func (r *PostgresBidRepository) ListBidsByAuctionID(ctx context.Context, auctionID uuid.UUID, limit int) ([]*auctions.Bid, error) {
	query := `
		SELECT id, auction_id, bidder_id, amount_cents, created_at
		FROM auction_bids
		WHERE auction_id = $1
		ORDER BY created_at DESC, amount_cents DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, auctionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query bids: %w", err)
	}
	defer rows.Close()

	var result []*auctions.Bid
	for rows.Next() {
		var bid auctions.Bid
		if err := rows.Scan(
			&bid.ID,
			&bid.AuctionID,
			&bid.BidderID,
			&bid.Amount,
			&bid.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		result = append(result, &bid)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bids: %w", err)
	}

	return result, nil
}

// GetHighestBid retrieves the top bid for an auction within a transaction
func (r *PostgresBidRepository) GetHighestBid(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*auctions.Bid, error) {
	query := `
		SELECT id, auction_id, bidder_id, amount_cents, created_at
		FROM auction_bids
		WHERE auction_id = $1
		ORDER BY amount_cents DESC, created_at DESC
		LIMIT 1
	`
	var bid auctions.Bid
	err := tx.QueryRow(ctx, query, auctionID).Scan(
		&bid.ID,
		&bid.AuctionID,
		&bid.BidderID,
		&bid.Amount,
		&bid.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, auctions.ErrNoBids
		}
		return nil, fmt.Errorf("failed to get highest bid: %w", err)
	}
	return &bid, nil
}
