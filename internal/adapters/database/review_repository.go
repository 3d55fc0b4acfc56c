package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aurelius/mintbid/internal/domain/reviews"
)

// PostgresReviewRepository implements reviews.Repository using pgx
type PostgresReviewRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresReviewRepository creates a new PostgreSQL review repository
func NewPostgresReviewRepository(pool *pgxpool.Pool) *PostgresReviewRepository {
	return &PostgresReviewRepository{pool: pool}
}

// CreateReview inserts a review. The unique constraint on order_id enforces
// one review per order; a violation surfaces as ErrAlreadyReviewed.
func (r *PostgresReviewRepository) CreateReview(ctx context.Context, review *reviews.SellerReview) error {
	query := `
		INSERT INTO seller_reviews (id, order_id, seller_id, reviewer_id, overall,
			item_as_described, shipping, communication, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		review.ID,
		review.OrderID,
		review.SellerID,
		review.ReviewerID,
		review.Overall,
		review.ItemAsDescribed,
		review.Shipping,
		review.Communication,
		review.Comment,
		review.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return reviews.ErrAlreadyReviewed
		}
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

// ListBySellerID retrieves a seller's reviews, newest first
func (r *PostgresReviewRepository) ListBySellerID(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]*reviews.SellerReview, error) {
	query := `
		SELECT id, order_id, seller_id, reviewer_id, overall, item_as_described,
			shipping, communication, comment, created_at
		FROM seller_reviews
		WHERE seller_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, sellerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	var result []*reviews.SellerReview
	for rows.Next() {
		var rev reviews.SellerReview
		if err := rows.Scan(
			&rev.ID,
			&rev.OrderID,
			&rev.SellerID,
			&rev.ReviewerID,
			&rev.Overall,
			&rev.ItemAsDescribed,
			&rev.Shipping,
			&rev.Communication,
			&rev.Comment,
			&rev.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		result = append(result, &rev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}

	return result, nil
}

// GetSummary aggregates a seller's ratings. A seller with no reviews gets a
// zero-count summary, not an error.
func (r *PostgresReviewRepository) GetSummary(ctx context.Context, sellerID uuid.UUID) (*reviews.Summary, error) {
	query := `
		SELECT COUNT(*),
			COALESCE(AVG(overall), 0),
			COALESCE(AVG(item_as_described), 0),
			COALESCE(AVG(shipping), 0),
			COALESCE(AVG(communication), 0)
		FROM seller_reviews
		WHERE seller_id = $1
	`
	summary := &reviews.Summary{SellerID: sellerID}
	err := r.pool.QueryRow(ctx, query, sellerID).Scan(
		&summary.ReviewCount,
		&summary.AvgOverall,
		&summary.AvgItemAsDescribed,
		&summary.AvgShipping,
		&summary.AvgCommunication,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate reviews: %w", err)
	}
	return summary, nil
}
