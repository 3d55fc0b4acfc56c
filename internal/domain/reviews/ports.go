package reviews

import (
	"context"

	"github.com/google/uuid"

	"github.com/aurelius/mintbid/internal/domain/orders"
)

// Repository defines the interface for review persistence
type Repository interface {
	// CreateReview inserts a review. Returns ErrAlreadyReviewed when the
	// order already has one (unique violation on order_id).
	CreateReview(ctx context.Context, review *SellerReview) error

	// ListBySellerID retrieves a seller's reviews, newest first
	ListBySellerID(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]*SellerReview, error)

	// GetSummary aggregates the seller's ratings
	GetSummary(ctx context.Context, sellerID uuid.UUID) (*Summary, error)
}

// OrderReader resolves the order under review.
type OrderReader interface {
	GetOrderByID(ctx context.Context, orderID uuid.UUID) (*orders.Order, error)
}
