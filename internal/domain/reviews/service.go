package reviews

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aurelius/mintbid/internal/domain/orders"
)

// Service errors
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderNotDelivered = errors.New("order must be delivered before it can be reviewed")
	ErrNotOrderBuyer     = errors.New("only the buyer of the order can review it")
	ErrAlreadyReviewed   = errors.New("order has already been reviewed")
	ErrInvalidRating     = errors.New("ratings must be between 1 and 5")
)

// Service implements seller review creation and aggregation
type Service struct {
	repo      Repository
	orderRepo OrderReader
}

// NewService creates a new review service
func NewService(repo Repository, orderRepo OrderReader) *Service {
	return &Service{
		repo:      repo,
		orderRepo: orderRepo,
	}
}

// CreateReview records a buyer's review of a delivered order. At most one
// review per order; a second attempt returns ErrAlreadyReviewed.
func (s *Service) CreateReview(ctx context.Context, cmd CreateReviewCommand) (*SellerReview, error) {
	for _, rating := range []int{cmd.Overall, cmd.ItemAsDescribed, cmd.Shipping, cmd.Communication} {
		if rating < 1 || rating > 5 {
			return nil, ErrInvalidRating
		}
	}

	order, err := s.orderRepo.GetOrderByID(ctx, cmd.OrderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	if order.BuyerID != cmd.ReviewerID {
		return nil, ErrNotOrderBuyer
	}

	if order.Status != orders.StatusDelivered {
		return nil, ErrOrderNotDelivered
	}

	review := &SellerReview{
		ID:              uuid.New(),
		OrderID:         order.ID,
		SellerID:        order.SellerID,
		ReviewerID:      cmd.ReviewerID,
		Overall:         cmd.Overall,
		ItemAsDescribed: cmd.ItemAsDescribed,
		Shipping:        cmd.Shipping,
		Communication:   cmd.Communication,
		Comment:         cmd.Comment,
		CreatedAt:       time.Now(),
	}

	if err := s.repo.CreateReview(ctx, review); err != nil {
		if errors.Is(err, ErrAlreadyReviewed) {
			return nil, ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	return review, nil
}

// ListSellerReviews retrieves a seller's reviews, newest first
func (s *Service) ListSellerReviews(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]*SellerReview, error) {
	if limit <= 0 {
		limit = 20
	}
	list, err := s.repo.ListBySellerID(ctx, sellerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return list, nil
}

// GetSellerSummary aggregates the seller's ratings
func (s *Service) GetSellerSummary(ctx context.Context, sellerID uuid.UUID) (*Summary, error) {
	summary, err := s.repo.GetSummary(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate reviews: %w", err)
	}
	return summary, nil
}
