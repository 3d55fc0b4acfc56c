package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines the interface for product persistence
type Repository interface {
	// CreateProduct creates a new product
	CreateProduct(ctx context.Context, product *Product) error

	// GetProductByID retrieves a product by its ID
	GetProductByID(ctx context.Context, productID uuid.UUID) (*Product, error)

	// GetProductBySKU retrieves a product by SKU
	GetProductBySKU(ctx context.Context, sku string) (*Product, error)

	// UpdateProduct updates a product's editable fields
	UpdateProduct(ctx context.Context, product *Product) error

	// UpdateStatus updates a product's status
	UpdateStatus(ctx context.Context, productID uuid.UUID, status ProductStatus) error

	// MarkProductSold flips the product to sold within a transaction
	MarkProductSold(ctx context.Context, tx pgx.Tx, productID uuid.UUID) error

	// Search retrieves active products matching the facet filters
	Search(ctx context.Context, query SearchQuery) ([]*Product, error)

	// ListByClientID retrieves products consigned by a client
	ListByClientID(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*Product, error)
}
