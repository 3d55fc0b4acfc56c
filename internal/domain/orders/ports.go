package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/aurelius/mintbid/internal/domain/catalog"
)

// Repository defines the interface for order persistence
type Repository interface {
	// CreateOrder creates a new order
	CreateOrder(ctx context.Context, order *Order) error

	// CreateOrderTx creates an order within an existing transaction
	// (used by the auction close path)
	CreateOrderTx(ctx context.Context, tx pgx.Tx, order *Order) error

	// GetOrderByID retrieves an order by its ID
	GetOrderByID(ctx context.Context, orderID uuid.UUID) (*Order, error)

	// ListByBuyerID retrieves a buyer's orders, newest first
	ListByBuyerID(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]*Order, error)

	// UpdateStatus updates an order's fulfilment status
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status OrderStatus) error
}

// ProductReader resolves cart lines against the catalog.
type ProductReader interface {
	GetProductByID(ctx context.Context, productID uuid.UUID) (*catalog.Product, error)
}

// PaymentGateway creates checkout sessions with the external payment
// provider. Opaque collaborator; callers treat failures as request-scoped.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, orderID uuid.UUID, amountCents int64, description string) (*CheckoutSession, error)
}
