package auctions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/aurelius/mintbid/internal/domain/orders"
)

// AuctionRepository defines the interface for auction persistence
type AuctionRepository interface {
	// CreateAuction creates a new auction row
	CreateAuction(ctx context.Context, auction *Auction) error

	// GetAuctionByID retrieves an auction by its ID
	GetAuctionByID(ctx context.Context, auctionID uuid.UUID) (*Auction, error)

	// GetAuctionForUpdate retrieves an auction and locks its row.
	// This serializes concurrent bids on the same auction.
	// Must be called within a transaction.
	GetAuctionForUpdate(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*Auction, error)

	// UpdateBidCache writes the cached current bid / high bidder / bid count
	// projection. The UPDATE is conditional on status = 'open' so a closed
	// auction can never regain a high bid.
	UpdateBidCache(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID, amount int64, bidderID uuid.UUID) error

	// CloseAuction transitions open -> status. Returns false when the auction
	// was not open, which makes the transition idempotent under concurrent
	// sweeps and buy-now closes.
	CloseAuction(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID, status AuctionStatus) (bool, error)

	// ListDueAuctionIDs returns ids of open auctions whose end time has passed.
	ListDueAuctionIDs(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)

	// ListOpenAuctions retrieves open auctions with pagination
	ListOpenAuctions(ctx context.Context, limit, offset int) ([]*Auction, error)
}

// BidRepository defines the interface for bid persistence
type BidRepository interface {
	// SaveBid appends a bid within a transaction
	SaveBid(ctx context.Context, tx pgx.Tx, bid *Bid) error

	// ListBidsByAuctionID retrieves the most recent bids, newest first
	ListBidsByAuctionID(ctx context.Context, auctionID uuid.UUID, limit int) ([]*Bid, error)

	// GetHighestBid retrieves the top bid for an auction within a transaction.
	// Returns ErrNoBids when the auction has no bids.
	GetHighestBid(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*Bid, error)
}

// OrderWriter creates the order for a won auction in the same transaction
// that closes it.
type OrderWriter interface {
	CreateOrderTx(ctx context.Context, tx pgx.Tx, order *orders.Order) error
}

// ProductMarker flips the product listing state when its auction sells.
type ProductMarker interface {
	MarkProductSold(ctx context.Context, tx pgx.Tx, productID uuid.UUID) error
}
