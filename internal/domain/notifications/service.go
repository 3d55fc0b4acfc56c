package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aurelius/mintbid/pkg/database"
	"github.com/aurelius/mintbid/pkg/events"
)

// Service turns marketplace events into per-user notifications. Processing
// is idempotent: each event id is recorded in the same transaction as the
// notifications it produced, so broker redelivery is a no-op.
type Service struct {
	repo      Repository
	txManager database.TransactionManager
}

func NewService(repo Repository, txManager database.TransactionManager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
	}
}

// ProcessBidPlaced notifies the seller that a bid arrived on their auction.
// The bid id doubles as the event id for idempotency.
func (s *Service) ProcessBidPlaced(ctx context.Context, event events.BidPlacedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	return s.deliver(ctx, event.BidID, []*Notification{
		{
			ID:        uuid.New(),
			UserID:    event.SellerID,
			Type:      TypeBidReceived,
			Payload:   payload,
			CreatedAt: time.Now(),
		},
	})
}

// ProcessAuctionClosed notifies the seller of the outcome and, when sold,
// the winner. The auction id is the event id; an auction closes exactly once.
func (s *Service) ProcessAuctionClosed(ctx context.Context, event events.AuctionClosedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	sellerType := TypeAuctionEnded
	if event.Sold {
		sellerType = TypeAuctionSold
	}

	batch := []*Notification{
		{
			ID:        uuid.New(),
			UserID:    event.SellerID,
			Type:      sellerType,
			Payload:   payload,
			CreatedAt: time.Now(),
		},
	}
	if event.Sold && event.WinnerID != nil {
		batch = append(batch, &Notification{
			ID:        uuid.New(),
			UserID:    *event.WinnerID,
			Type:      TypeAuctionWon,
			Payload:   payload,
			CreatedAt: time.Now(),
		})
	}

	return s.deliver(ctx, event.AuctionID, batch)
}

// ListNotifications returns a user's notifications, newest first.
func (s *Service) ListNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	list, err := s.repo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return list, nil
}

// MarkRead marks one of the user's notifications as read.
func (s *Service) MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, notificationID, userID); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

func (s *Service) deliver(ctx context.Context, eventID uuid.UUID, batch []*Notification) error {
	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	processed, err := s.repo.IsEventProcessed(ctx, tx, eventID)
	if err != nil {
		return fmt.Errorf("failed to check idempotency: %w", err)
	}
	if processed {
		return nil
	}

	for _, n := range batch {
		if err := s.repo.CreateNotification(ctx, tx, n); err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}
	}

	if err := s.repo.MarkEventProcessed(ctx, tx, eventID); err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}

	return tx.Commit(ctx)
}
