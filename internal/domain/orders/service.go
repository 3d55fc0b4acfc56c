package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aurelius/mintbid/internal/domain/catalog"
)

// Service errors
var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrProductUnavailable = errors.New("product is not available for purchase")
	ErrInvalidTransition  = errors.New("invalid order status transition")
)

// legal fulfilment transitions
var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPendingPayment: {StatusPaid, StatusCancelled},
	StatusPaid:           {StatusShipped, StatusCancelled},
	StatusShipped:        {StatusDelivered},
}

// Service implements checkout and order management
type Service struct {
	repo     Repository
	products ProductReader
	gateway  PaymentGateway
	// houseAccountID is the seller of record for non-consigned inventory.
	houseAccountID uuid.UUID
}

// NewService creates a new order service
func NewService(repo Repository, products ProductReader, gateway PaymentGateway, houseAccountID uuid.UUID) *Service {
	return &Service{
		repo:           repo,
		products:       products,
		gateway:        gateway,
		houseAccountID: houseAccountID,
	}
}

// Checkout creates an order per cart line and a payment session for the
// total. Only active fixed-price products can be bought this way; auction
// lots are won through bidding.
func (s *Service) Checkout(ctx context.Context, buyerID uuid.UUID, lines []CheckoutLine) (*CheckoutSession, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	var (
		total       int64
		firstOrder  *Order
		description string
	)

	now := time.Now()
	for _, line := range lines {
		product, err := s.products.GetProductByID(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve cart line: %w", err)
		}
		if product.Status != catalog.ProductStatusActive || product.ListingType != catalog.ListingFixed {
			return nil, ErrProductUnavailable
		}

		qty := line.Quantity
		if qty <= 0 {
			qty = 1
		}
		lineTotal := product.Price * int64(qty)

		sellerID := s.houseAccountID
		if product.ClientID != nil {
			sellerID = *product.ClientID
		}

		order := &Order{
			ID:        uuid.New(),
			BuyerID:   buyerID,
			SellerID:  sellerID,
			ProductID: product.ID,
			Amount:    lineTotal,
			Status:    StatusPendingPayment,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.CreateOrder(ctx, order); err != nil {
			return nil, fmt.Errorf("failed to create order: %w", err)
		}

		if firstOrder == nil {
			firstOrder = order
			description = product.Title
		}
		total += lineTotal
	}

	if len(lines) > 1 {
		description = fmt.Sprintf("%s and %d more", description, len(lines)-1)
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, firstOrder.ID, total, description)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return session, nil
}

// GetOrder retrieves an order by ID
func (s *Service) GetOrder(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListBuyerOrders retrieves a buyer's orders, newest first
func (s *Service) ListBuyerOrders(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]*Order, error) {
	if limit <= 0 {
		limit = 20
	}
	list, err := s.repo.ListByBuyerID(ctx, buyerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return list, nil
}

// AdvanceStatus moves an order along the fulfilment state machine
func (s *Service) AdvanceStatus(ctx context.Context, orderID uuid.UUID, next OrderStatus) (*Order, error) {
	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	allowed := false
	for _, candidate := range orderTransitions[order.Status] {
		if candidate == next {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, next)
	}

	if err := s.repo.UpdateStatus(ctx, orderID, next); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	order.Status = next
	return order, nil
}
