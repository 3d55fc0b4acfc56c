package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service errors
var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidSKU      = errors.New("sku is required")
	ErrInvalidTitle    = errors.New("title is required")
	ErrInvalidPrice    = errors.New("price must not be negative")
)

// Service implements the catalog business logic
type Service struct {
	repo Repository
}

// NewService creates a new catalog service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateProduct creates a new product in draft status
func (s *Service) CreateProduct(ctx context.Context, cmd CreateProductCommand) (*Product, error) {
	if cmd.SKU == "" {
		return nil, ErrInvalidSKU
	}
	if cmd.Title == "" {
		return nil, ErrInvalidTitle
	}
	if cmd.Price < 0 {
		return nil, ErrInvalidPrice
	}

	listingType := cmd.ListingType
	if listingType == "" {
		listingType = ListingFixed
	}

	now := time.Now()
	product := &Product{
		ID:          uuid.New(),
		SKU:         cmd.SKU,
		Title:       cmd.Title,
		Description: cmd.Description,
		Price:       cmd.Price,
		Metal:       cmd.Metal,
		WeightGrams: cmd.WeightGrams,
		Purity:      cmd.Purity,
		Category:    cmd.Category,
		ListingType: listingType,
		Status:      ProductStatusDraft,
		Images:      cmd.Images,
		ClientID:    cmd.ClientID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// GetProduct retrieves a product by ID
func (s *Service) GetProduct(ctx context.Context, productID uuid.UUID) (*Product, error) {
	product, err := s.repo.GetProductByID(ctx, productID)
	if err != nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// UpdateProduct updates a product's editable fields
func (s *Service) UpdateProduct(ctx context.Context, cmd UpdateProductCommand) (*Product, error) {
	product, err := s.repo.GetProductByID(ctx, cmd.ProductID)
	if err != nil {
		return nil, ErrProductNotFound
	}

	if cmd.Price < 0 {
		return nil, ErrInvalidPrice
	}

	product.Title = cmd.Title
	product.Description = cmd.Description
	product.Price = cmd.Price
	product.Category = cmd.Category
	product.Images = cmd.Images
	if cmd.Status != "" {
		product.Status = cmd.Status
	}
	product.UpdatedAt = time.Now()

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

// Search retrieves active products matching the facet filters
func (s *Service) Search(ctx context.Context, query SearchQuery) ([]*Product, error) {
	if query.Limit <= 0 || query.Limit > 100 {
		query.Limit = 20
	}
	if query.Offset < 0 {
		query.Offset = 0
	}

	result, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return result, nil
}

// ListClientProducts retrieves products consigned by a client
func (s *Service) ListClientProducts(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*Product, error) {
	if limit <= 0 {
		limit = 20
	}
	result, err := s.repo.ListByClientID(ctx, clientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list client products: %w", err)
	}
	return result, nil
}
