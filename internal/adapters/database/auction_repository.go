package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aurelius/mintbid/internal/domain/auctions"
	pkgdb "github.com/aurelius/mintbid/pkg/database"
)

// PostgresAuctionRepository implements auctions.AuctionRepository using pgx
type PostgresAuctionRepository struct {
	pool *pgxpool.Pool // pool for non-transactional reads
}

// NewPostgresAuctionRepository creates a new PostgreSQL auction repository
func NewPostgresAuctionRepository(pool *pgxpool.Pool) *PostgresAuctionRepository {
	return &PostgresAuctionRepository{pool: pool}
}

const auctionColumns = `id, product_id, seller_id, start_price_cents, current_bid_cents,
	bid_increment_cents, reserve_price_cents, buy_now_price_cents, high_bidder_id,
	bid_count, status, end_at, created_at, updated_at`

// CreateAuction creates a new auction row
func (r *PostgresAuctionRepository) CreateAuction(ctx context.Context, auction *auctions.Auction) error {
	query := `
		INSERT INTO auctions (id, product_id, seller_id, start_price_cents, current_bid_cents,
			bid_increment_cents, reserve_price_cents, buy_now_price_cents, bid_count, status,
			end_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.pool.Exec(ctx, query,
		auction.ID,
		auction.ProductID,
		auction.SellerID,
		auction.StartPrice,
		auction.CurrentBid,
		auction.BidIncrement,
		auction.ReservePrice,
		auction.BuyNowPrice,
		auction.BidCount,
		auction.Status,
		auction.EndAt,
		auction.CreatedAt,
		auction.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert auction: %w", err)
	}
	return nil
}

// GetAuctionByID retrieves an auction by its ID (non-transactional read)
func (r *PostgresAuctionRepository) GetAuctionByID(ctx context.Context, auctionID uuid.UUID) (*auctions.Auction, error) {
	return r.getAuction(ctx, r.pool, auctionID, false)
}

// GetAuctionForUpdate retrieves an auction and locks its row for the
// remainder of the transaction.
func (r *PostgresAuctionRepository) GetAuctionForUpdate(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*auctions.Auction, error) {
	return r.getAuction(ctx, tx, auctionID, true)
}

func (r *PostgresAuctionRepository) getAuction(ctx context.Context, db pkgdb.DBTX, auctionID uuid.UUID, forUpdate bool) (*auctions.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var a auctions.Auction
	err := db.QueryRow(ctx, query, auctionID).Scan(
		&a.ID,
		&a.ProductID,
		&a.SellerID,
		&a.StartPrice,
		&a.CurrentBid,
		&a.BidIncrement,
		&a.ReservePrice,
		&a.BuyNowPrice,
		&a.HighBidderID,
		&a.BidCount,
		&a.Status,
		&a.EndAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	return &a, nil
}

// UpdateBidCache writes the cached high-bid projection. Conditional on
// status = 'open' so a closed auction never regains a high bid.
func (r *PostgresAuctionRepository) UpdateBidCache(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID, amount int64, bidderID uuid.UUID) error {
	query := `
		UPDATE auctions
		SET current_bid_cents = $1, high_bidder_id = $2, bid_count = bid_count + 1, updated_at = NOW()
		WHERE id = $3 AND status = 'open'
	`
	result, err := tx.Exec(ctx, query, amount, bidderID, auctionID)
	if err != nil {
		return fmt.Errorf("failed to update bid cache: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("auction not open")
	}
	return nil
}

// CloseAuction transitions open -> status. Returns false when the row was
// not open, making the transition idempotent.
func (r *PostgresAuctionRepository) CloseAuction(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID, status auctions.AuctionStatus) (bool, error) {
	query := `
		UPDATE auctions
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'open'
	`
	result, err := tx.Exec(ctx, query, status, auctionID)
	if err != nil {
		return false, fmt.Errorf("failed to close auction: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// ListDueAuctionIDs returns ids of open auctions whose end time has passed
func (r *PostgresAuctionRepository) ListDueAuctionIDs(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	query := `
		SELECT id
		FROM auctions
		WHERE status = 'open' AND end_at <= $1
		ORDER BY end_at
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query due auctions: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan auction id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating due auctions: %w", err)
	}

	return ids, nil
}

// ListOpenAuctions retrieves open auctions with pagination, soonest-ending first
func (r *PostgresAuctionRepository) ListOpenAuctions(ctx context.Context, limit, offset int) ([]*auctions.Auction, error) {
	query := `
		SELECT ` + auctionColumns + `
		FROM auctions
		WHERE status = 'open'
		ORDER BY end_at
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query auctions: %w", err)
	}
	defer rows.Close()

	var result []*auctions.Auction
	for rows.Next() {
		var a auctions.Auction
		if err := rows.Scan(
			&a.ID,
			&a.ProductID,
			&a.SellerID,
			&a.StartPrice,
			&a.CurrentBid,
			&a.BidIncrement,
			&a.ReservePrice,
			&a.BuyNowPrice,
			&a.HighBidderID,
			&a.BidCount,
			&a.Status,
			&a.EndAt,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan auction: %w", err)
		}
		result = append(result, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating auctions: %w", err)
	}

	return result, nil
}
