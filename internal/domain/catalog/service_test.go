package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRepository is a mock implementation of Repository for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateProduct(ctx context.Context, product *Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockRepository) GetProductByID(ctx context.Context, productID uuid.UUID) (*Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockRepository) GetProductBySKU(ctx context.Context, sku string) (*Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockRepository) UpdateProduct(ctx context.Context, product *Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, productID uuid.UUID, status ProductStatus) error {
	args := m.Called(ctx, productID, status)
	return args.Error(0)
}

func (m *MockRepository) MarkProductSold(ctx context.Context, tx pgx.Tx, productID uuid.UUID) error {
	args := m.Called(ctx, tx, productID)
	return args.Error(0)
}

func (m *MockRepository) Search(ctx context.Context, query SearchQuery) ([]*Product, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Product), args.Error(1)
}

func (m *MockRepository) ListByClientID(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*Product, error) {
	args := m.Called(ctx, clientID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Product), args.Error(1)
}

func TestService_CreateProduct(t *testing.T) {
	tests := []struct {
		name        string
		cmd         CreateProductCommand
		setupMock   func(*MockRepository)
		wantErr     error
		checkResult func(*testing.T, *Product)
	}{
		{
			name: "successfully creates product in draft",
			cmd: CreateProductCommand{
				SKU:      "MORGAN-1921-MS65",
				Title:    "1921 Morgan Dollar MS-65",
				Price:    185000,
				Metal:    "silver",
				Category: "us-coins",
			},
			setupMock: func(repo *MockRepository) {
				repo.On("CreateProduct", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(nil)
			},
			checkResult: func(t *testing.T, product *Product) {
				assert.NotEqual(t, uuid.Nil, product.ID)
				assert.Equal(t, ProductStatusDraft, product.Status)
				assert.Equal(t, ListingFixed, product.ListingType, "listing type defaults to fixed")
			},
		},
		{
			name: "missing sku",
			cmd: CreateProductCommand{
				Title: "1921 Morgan Dollar",
				Price: 185000,
			},
			setupMock: func(repo *MockRepository) {
				// No repo calls expected
			},
			wantErr: ErrInvalidSKU,
		},
		{
			name: "missing title",
			cmd: CreateProductCommand{
				SKU:   "MORGAN-1921",
				Price: 185000,
			},
			setupMock: func(repo *MockRepository) {
				// No repo calls expected
			},
			wantErr: ErrInvalidTitle,
		},
		{
			name: "negative price",
			cmd: CreateProductCommand{
				SKU:   "MORGAN-1921",
				Title: "1921 Morgan Dollar",
				Price: -1,
			},
			setupMock: func(repo *MockRepository) {
				// No repo calls expected
			},
			wantErr: ErrInvalidPrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMock(repo)

			service := NewService(repo)
			product, err := service.CreateProduct(context.Background(), tt.cmd)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, product)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, product)
				if tt.checkResult != nil {
					tt.checkResult(t, product)
				}
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestService_UpdateProduct(t *testing.T) {
	productID := uuid.New()

	t.Run("updates editable fields", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetProductByID", mock.Anything, productID).Return(&Product{
			ID:     productID,
			SKU:    "MORGAN-1921",
			Title:  "Old Title",
			Status: ProductStatusDraft,
		}, nil)
		repo.On("UpdateProduct", mock.Anything, mock.MatchedBy(func(product *Product) bool {
			return product.Title == "New Title" && product.Status == ProductStatusActive
		})).Return(nil)

		service := NewService(repo)
		product, err := service.UpdateProduct(context.Background(), UpdateProductCommand{
			ProductID: productID,
			Title:     "New Title",
			Price:     200000,
			Status:    ProductStatusActive,
		})

		assert.NoError(t, err)
		assert.Equal(t, "New Title", product.Title)
		repo.AssertExpectations(t)
	})

	t.Run("missing product", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetProductByID", mock.Anything, productID).Return(nil, errors.New("no rows"))

		service := NewService(repo)
		_, err := service.UpdateProduct(context.Background(), UpdateProductCommand{ProductID: productID})
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestService_Search_ClampsPagination(t *testing.T) {
	tests := []struct {
		name      string
		query     SearchQuery
		wantLimit int
	}{
		{name: "zero limit defaults", query: SearchQuery{}, wantLimit: 20},
		{name: "oversized limit clamps", query: SearchQuery{Limit: 500}, wantLimit: 20},
		{name: "explicit limit passes through", query: SearchQuery{Limit: 50}, wantLimit: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			repo.On("Search", mock.Anything, mock.MatchedBy(func(query SearchQuery) bool {
				return query.Limit == tt.wantLimit && query.Offset >= 0
			})).Return([]*Product{}, nil)

			service := NewService(repo)
			_, err := service.Search(context.Background(), tt.query)

			assert.NoError(t, err)
			repo.AssertExpectations(t)
		})
	}
}
