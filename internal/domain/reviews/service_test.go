package reviews

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/aurelius/mintbid/internal/domain/orders"
)

// MockRepository is a mock implementation of Repository for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateReview(ctx context.Context, review *SellerReview) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockRepository) ListBySellerID(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]*SellerReview, error) {
	args := m.Called(ctx, sellerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*SellerReview), args.Error(1)
}

func (m *MockRepository) GetSummary(ctx context.Context, sellerID uuid.UUID) (*Summary, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Summary), args.Error(1)
}

// MockOrderReader is a mock implementation of OrderReader
type MockOrderReader struct {
	mock.Mock
}

func (m *MockOrderReader) GetOrderByID(ctx context.Context, orderID uuid.UUID) (*orders.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orders.Order), args.Error(1)
}

func TestService_CreateReview(t *testing.T) {
	orderID := uuid.New()
	buyerID := uuid.New()
	sellerID := uuid.New()
	strangerID := uuid.New()

	deliveredOrder := &orders.Order{
		ID:       orderID,
		BuyerID:  buyerID,
		SellerID: sellerID,
		Status:   orders.StatusDelivered,
	}

	validCmd := CreateReviewCommand{
		OrderID:         orderID,
		ReviewerID:      buyerID,
		Overall:         5,
		ItemAsDescribed: 5,
		Shipping:        4,
		Communication:   5,
		Comment:         "Beautiful coin, exactly as graded.",
	}

	tests := []struct {
		name      string
		cmd       CreateReviewCommand
		setupMock func(*MockRepository, *MockOrderReader)
		wantErr   error
	}{
		{
			name: "successfully reviews a delivered order",
			cmd:  validCmd,
			setupMock: func(repo *MockRepository, orderRepo *MockOrderReader) {
				orderRepo.On("GetOrderByID", mock.Anything, orderID).Return(deliveredOrder, nil)
				repo.On("CreateReview", mock.Anything, mock.MatchedBy(func(review *SellerReview) bool {
					return review.OrderID == orderID &&
						review.SellerID == sellerID &&
						review.ReviewerID == buyerID &&
						review.Overall == 5
				})).Return(nil)
			},
		},
		{
			name: "rating above 5 is rejected",
			cmd: func() CreateReviewCommand {
				cmd := validCmd
				cmd.Shipping = 6
				return cmd
			}(),
			setupMock: func(repo *MockRepository, orderRepo *MockOrderReader) {
				// No calls expected
			},
			wantErr: ErrInvalidRating,
		},
		{
			name: "rating below 1 is rejected",
			cmd: func() CreateReviewCommand {
				cmd := validCmd
				cmd.Overall = 0
				return cmd
			}(),
			setupMock: func(repo *MockRepository, orderRepo *MockOrderReader) {
				// No calls expected
			},
			wantErr: ErrInvalidRating,
		},
		{
			name: "missing order",
			cmd:  validCmd,
			setupMock: func(repo *MockRepository, orderRepo *MockOrderReader) {
				orderRepo.On("GetOrderByID", mock.Anything, orderID).Return(nil, errors.New("no rows"))
			},
			wantErr: ErrOrderNotFound,
		},
		{
			name: "only the buyer can review",
			cmd: func() CreateReviewCommand {
				cmd := validCmd
				cmd.ReviewerID = strangerID
				return cmd
			}(),
			setupMock: func(repo *MockRepository, orderRepo *MockOrderReader) {
				orderRepo.On("GetOrderByID", mock.Anything, orderID).Return(deliveredOrder, nil)
			},
			wantErr: ErrNotOrderBuyer,
		},
		{
			name: "undelivered order cannot be reviewed",
			cmd:  validCmd,
			setupMock: func(repo *MockRepository, orderRepo *MockOrderReader) {
				orderRepo.On("GetOrderByID", mock.Anything, orderID).Return(&orders.Order{
					ID:       orderID,
					BuyerID:  buyerID,
					SellerID: sellerID,
					Status:   orders.StatusShipped,
				}, nil)
			},
			wantErr: ErrOrderNotDelivered,
		},
		{
			name: "second review of the same order",
			cmd:  validCmd,
			setupMock: func(repo *MockRepository, orderRepo *MockOrderReader) {
				orderRepo.On("GetOrderByID", mock.Anything, orderID).Return(deliveredOrder, nil)
				repo.On("CreateReview", mock.Anything, mock.AnythingOfType("*reviews.SellerReview")).
					Return(ErrAlreadyReviewed)
			},
			wantErr: ErrAlreadyReviewed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			orderRepo := new(MockOrderReader)
			tt.setupMock(repo, orderRepo)

			service := NewService(repo, orderRepo)
			review, err := service.CreateReview(context.Background(), tt.cmd)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, review)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, review)
				assert.NotEqual(t, uuid.Nil, review.ID)
			}

			repo.AssertExpectations(t)
			orderRepo.AssertExpectations(t)
		})
	}
}

func TestService_GetSellerSummary(t *testing.T) {
	sellerID := uuid.New()

	repo := new(MockRepository)
	orderRepo := new(MockOrderReader)
	repo.On("GetSummary", mock.Anything, sellerID).Return(&Summary{
		SellerID:    sellerID,
		ReviewCount: 12,
		AvgOverall:  4.75,
	}, nil)

	service := NewService(repo, orderRepo)
	summary, err := service.GetSellerSummary(context.Background(), sellerID)

	assert.NoError(t, err)
	assert.Equal(t, int64(12), summary.ReviewCount)
	assert.InDelta(t, 4.75, summary.AvgOverall, 0.001)
	repo.AssertExpectations(t)
}
