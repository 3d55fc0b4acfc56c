package auctions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/aurelius/mintbid/internal/domain/orders"
	"github.com/aurelius/mintbid/pkg/database"
	"github.com/aurelius/mintbid/pkg/events"
)

// Validation and precondition errors
var (
	ErrAuctionNotFound  = errors.New("auction not found")
	ErrAuctionClosed    = errors.New("auction is closed")
	ErrSellerCannotBid  = errors.New("seller cannot bid on their own item")
	ErrInvalidBidAmount = errors.New("bid amount must be positive")
	// ErrOutbid covers both a bid below the minimum and a bid that lost a
	// race to a concurrent higher bid. Callers can retry with a refreshed
	// minimum; it is deliberately distinct from ErrInvalidBidAmount.
	ErrOutbid = errors.New("outbid: amount below current minimum")

	ErrNoBids = errors.New("auction has no bids")

	ErrInvalidStartPrice = errors.New("start price must be greater than 0")
	ErrInvalidIncrement  = errors.New("bid increment must be greater than 0")
	ErrInvalidEndTime    = errors.New("end time must be in the future")
	ErrInvalidBuyNow     = errors.New("buy-now price must exceed the start price")
)

// Service implements the bidding and close logic.
type Service struct {
	txManager   database.TransactionManager
	auctionRepo AuctionRepository
	bidRepo     BidRepository
	orderWriter OrderWriter
	products    ProductMarker
	outboxRepo  events.OutboxRepository
	logger      *slog.Logger
}

// NewService creates a new auction service
func NewService(
	txManager database.TransactionManager,
	auctionRepo AuctionRepository,
	bidRepo BidRepository,
	orderWriter OrderWriter,
	products ProductMarker,
	outboxRepo events.OutboxRepository,
	logger *slog.Logger,
) *Service {
	return &Service{
		txManager:   txManager,
		auctionRepo: auctionRepo,
		bidRepo:     bidRepo,
		orderWriter: orderWriter,
		products:    products,
		outboxRepo:  outboxRepo,
		logger:      logger,
	}
}

// CreateAuction opens an auction for a product.
func (s *Service) CreateAuction(ctx context.Context, cmd CreateAuctionCommand) (*Auction, error) {
	if cmd.StartPrice <= 0 {
		return nil, ErrInvalidStartPrice
	}
	if cmd.BidIncrement <= 0 {
		return nil, ErrInvalidIncrement
	}
	if !cmd.EndAt.After(time.Now()) {
		return nil, ErrInvalidEndTime
	}
	if cmd.BuyNowPrice != nil && *cmd.BuyNowPrice <= cmd.StartPrice {
		return nil, ErrInvalidBuyNow
	}

	now := time.Now()
	auction := &Auction{
		ID:           uuid.New(),
		ProductID:    cmd.ProductID,
		SellerID:     cmd.SellerID,
		StartPrice:   cmd.StartPrice,
		CurrentBid:   0,
		BidIncrement: cmd.BidIncrement,
		ReservePrice: cmd.ReservePrice,
		BuyNowPrice:  cmd.BuyNowPrice,
		BidCount:     0,
		Status:       StatusOpen,
		EndAt:        cmd.EndAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.auctionRepo.CreateAuction(ctx, auction); err != nil {
		return nil, fmt.Errorf("failed to create auction: %w", err)
	}

	return auction, nil
}

// GetAuction retrieves the auction read model.
func (s *Service) GetAuction(ctx context.Context, auctionID uuid.UUID) (*Auction, error) {
	auction, err := s.auctionRepo.GetAuctionByID(ctx, auctionID)
	if err != nil {
		return nil, ErrAuctionNotFound
	}
	return auction, nil
}

// ListOpenAuctions retrieves open auctions with pagination.
func (s *Service) ListOpenAuctions(ctx context.Context, limit, offset int) ([]*Auction, error) {
	list, err := s.auctionRepo.ListOpenAuctions(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list auctions: %w", err)
	}
	return list, nil
}

// ListBids returns the most recent bids for an auction, newest first.
func (s *Service) ListBids(ctx context.Context, auctionID uuid.UUID, limit int) ([]*Bid, error) {
	if limit <= 0 {
		limit = 20
	}
	list, err := s.bidRepo.ListBidsByAuctionID(ctx, auctionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}
	return list, nil
}

// PlaceBid atomically verifies and applies a bid.
//
// The auction row is locked for the duration of the transaction, so the
// accept/reject decision and the cache update are a single read-modify-write.
// A bid at or above the buy-now price closes the auction in the bidder's
// favor and creates the order in the same transaction.
func (s *Service) PlaceBid(ctx context.Context, cmd PlaceBidCommand) (*Bid, error) {
	if cmd.Amount <= 0 {
		return nil, ErrInvalidBidAmount
	}

	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// Lock the auction row. Concurrent bids on the same auction serialize
	// here; whichever transaction wins the lock sees the latest cache.
	auction, err := s.auctionRepo.GetAuctionForUpdate(ctx, tx, cmd.AuctionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAuctionNotFound
		}
		return nil, fmt.Errorf("failed to load auction: %w", err)
	}

	now := time.Now()
	if !auction.IsOpen(now) {
		return nil, ErrAuctionClosed
	}

	if auction.SellerID == cmd.BidderID {
		return nil, ErrSellerCannotBid
	}

	buyNow := auction.IsBuyNow(cmd.Amount)
	if !buyNow && cmd.Amount < auction.MinimumNextBid() {
		return nil, fmt.Errorf("%w: minimum is %d", ErrOutbid, auction.MinimumNextBid())
	}

	bid := &Bid{
		ID:        uuid.New(),
		AuctionID: cmd.AuctionID,
		BidderID:  cmd.BidderID,
		Amount:    cmd.Amount,
		CreatedAt: now,
	}

	if saveErr := s.bidRepo.SaveBid(ctx, tx, bid); saveErr != nil {
		return nil, fmt.Errorf("failed to save bid: %w", saveErr)
	}

	if cacheErr := s.auctionRepo.UpdateBidCache(ctx, tx, cmd.AuctionID, cmd.Amount, cmd.BidderID); cacheErr != nil {
		return nil, fmt.Errorf("failed to update bid cache: %w", cacheErr)
	}

	if outboxErr := s.saveEvent(ctx, tx, events.TypeBidPlaced, events.BidPlacedEvent{
		BidID:     bid.ID,
		AuctionID: auction.ID,
		BidderID:  bid.BidderID,
		SellerID:  auction.SellerID,
		Amount:    bid.Amount,
		PlacedAt:  bid.CreatedAt,
	}); outboxErr != nil {
		return nil, outboxErr
	}

	if buyNow {
		// The winning path short-circuits the normal close-at-end-time flow.
		if _, closeErr := s.closeSold(ctx, tx, auction, bid, now); closeErr != nil {
			return nil, closeErr
		}
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", commitErr)
	}

	return bid, nil
}

// CloseDue sweeps auctions whose end time has passed and closes each exactly
// once. Invoked by the worker's cron schedule.
func (s *Service) CloseDue(ctx context.Context, now time.Time) ([]CloseResult, error) {
	due, err := s.auctionRepo.ListDueAuctionIDs(ctx, now, 100)
	if err != nil {
		return nil, fmt.Errorf("failed to list due auctions: %w", err)
	}

	var results []CloseResult
	for _, auctionID := range due {
		result, closeErr := s.closeOne(ctx, auctionID, now)
		if closeErr != nil {
			// One stuck auction must not block the rest of the sweep.
			s.logger.Error("Failed to close auction", "auction_id", auctionID, "error", closeErr)
			continue
		}
		if result != nil {
			results = append(results, *result)
		}
	}

	return results, nil
}

// closeOne performs the open -> closed transition for a single auction.
// Returns nil when the auction was already closed by a concurrent sweep or a
// buy-now bid.
func (s *Service) closeOne(ctx context.Context, auctionID uuid.UUID, now time.Time) (*CloseResult, error) {
	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	auction, err := s.auctionRepo.GetAuctionForUpdate(ctx, tx, auctionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAuctionNotFound
		}
		return nil, fmt.Errorf("failed to load auction: %w", err)
	}

	if auction.Status != StatusOpen || now.Before(auction.EndAt) {
		return nil, nil
	}

	var result *CloseResult

	if auction.ReserveMet() {
		winningBid, bidErr := s.bidRepo.GetHighestBid(ctx, tx, auctionID)
		if bidErr != nil {
			return nil, fmt.Errorf("failed to load winning bid: %w", bidErr)
		}
		result, err = s.closeSold(ctx, tx, auction, winningBid, now)
		if err != nil {
			return nil, err
		}
	} else {
		result, err = s.closeUnsold(ctx, tx, auction, now)
		if err != nil {
			return nil, err
		}
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", commitErr)
	}

	return result, nil
}

// closeSold transitions the auction to closed_sold and creates exactly one
// order referencing the winning bid. Caller owns the transaction.
func (s *Service) closeSold(ctx context.Context, tx pgx.Tx, auction *Auction, winningBid *Bid, now time.Time) (*CloseResult, error) {
	closed, err := s.auctionRepo.CloseAuction(ctx, tx, auction.ID, StatusClosedSold)
	if err != nil {
		return nil, fmt.Errorf("failed to close auction: %w", err)
	}
	if !closed {
		// Lost the transition to a concurrent close; nothing to do.
		return nil, nil
	}

	order := &orders.Order{
		ID:           uuid.New(),
		BuyerID:      winningBid.BidderID,
		SellerID:     auction.SellerID,
		ProductID:    auction.ProductID,
		AuctionID:    &auction.ID,
		WinningBidID: &winningBid.ID,
		Amount:       winningBid.Amount,
		Status:       orders.StatusPendingPayment,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if orderErr := s.orderWriter.CreateOrderTx(ctx, tx, order); orderErr != nil {
		return nil, fmt.Errorf("failed to create order: %w", orderErr)
	}

	if markErr := s.products.MarkProductSold(ctx, tx, auction.ProductID); markErr != nil {
		return nil, fmt.Errorf("failed to mark product sold: %w", markErr)
	}

	if outboxErr := s.saveEvent(ctx, tx, events.TypeAuctionClosed, events.AuctionClosedEvent{
		AuctionID:    auction.ID,
		SellerID:     auction.SellerID,
		Sold:         true,
		WinningBidID: &winningBid.ID,
		WinnerID:     &winningBid.BidderID,
		Amount:       winningBid.Amount,
		ClosedAt:     now,
	}); outboxErr != nil {
		return nil, outboxErr
	}

	return &CloseResult{
		AuctionID: auction.ID,
		Status:    StatusClosedSold,
		OrderID:   &order.ID,
	}, nil
}

// closeUnsold transitions the auction to closed_unsold. No order is created.
func (s *Service) closeUnsold(ctx context.Context, tx pgx.Tx, auction *Auction, now time.Time) (*CloseResult, error) {
	closed, err := s.auctionRepo.CloseAuction(ctx, tx, auction.ID, StatusClosedUnsold)
	if err != nil {
		return nil, fmt.Errorf("failed to close auction: %w", err)
	}
	if !closed {
		return nil, nil
	}

	if outboxErr := s.saveEvent(ctx, tx, events.TypeAuctionClosed, events.AuctionClosedEvent{
		AuctionID: auction.ID,
		SellerID:  auction.SellerID,
		Sold:      false,
		Amount:    auction.CurrentBid,
		ClosedAt:  now,
	}); outboxErr != nil {
		return nil, outboxErr
	}

	return &CloseResult{
		AuctionID: auction.ID,
		Status:    StatusClosedUnsold,
	}, nil
}

func (s *Service) saveEvent(ctx context.Context, tx pgx.Tx, eventType string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	event := &events.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   body,
		Status:    events.OutboxStatusPending,
		CreatedAt: time.Now(),
	}

	if err := s.outboxRepo.SaveEvent(ctx, tx, event); err != nil {
		return fmt.Errorf("failed to save outbox event: %w", err)
	}
	return nil
}
