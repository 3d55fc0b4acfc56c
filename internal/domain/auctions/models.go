package auctions

import (
	"time"

	"github.com/google/uuid"
)

// AuctionStatus is the lifecycle state of an auction.
// open is the only non-terminal state; closed_sold and closed_unsold are
// terminal and an auction transitions into one of them exactly once.
type AuctionStatus string

const (
	StatusOpen         AuctionStatus = "open"
	StatusClosedSold   AuctionStatus = "closed_sold"
	StatusClosedUnsold AuctionStatus = "closed_unsold"
)

// Auction is the bidding state attached to a product listing.
// CurrentBid, HighBidder and BidCount are a cached projection of the latest
// accepted bid; they are only ever written inside the same transaction that
// appends the bid row.
type Auction struct {
	ID           uuid.UUID     `db:"id"`
	ProductID    uuid.UUID     `db:"product_id"`
	SellerID     uuid.UUID     `db:"seller_id"`
	StartPrice   int64         `db:"start_price_cents"`
	CurrentBid   int64         `db:"current_bid_cents"`
	BidIncrement int64         `db:"bid_increment_cents"`
	ReservePrice *int64        `db:"reserve_price_cents"`
	BuyNowPrice  *int64        `db:"buy_now_price_cents"`
	HighBidderID *uuid.UUID    `db:"high_bidder_id"`
	BidCount     int           `db:"bid_count"`
	Status       AuctionStatus `db:"status"`
	EndAt        time.Time     `db:"end_at"`
	CreatedAt    time.Time     `db:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at"`
}

// Bid is an append-only log entry for an accepted bid.
type Bid struct {
	ID        uuid.UUID `db:"id"`
	AuctionID uuid.UUID `db:"auction_id"`
	BidderID  uuid.UUID `db:"bidder_id"`
	Amount    int64     `db:"amount_cents"`
	CreatedAt time.Time `db:"created_at"`
}

// IsOpen reports whether the auction is still accepting bids at the given time.
func (a *Auction) IsOpen(now time.Time) bool {
	return a.Status == StatusOpen && now.Before(a.EndAt)
}

// MinimumNextBid returns the lowest amount the next bid must reach.
func (a *Auction) MinimumNextBid() int64 {
	if a.BidCount == 0 {
		return a.StartPrice
	}
	return a.CurrentBid + a.BidIncrement
}

// IsBuyNow reports whether amount triggers the buy-now short circuit.
func (a *Auction) IsBuyNow(amount int64) bool {
	return a.BuyNowPrice != nil && amount >= *a.BuyNowPrice
}

// ReserveMet reports whether the cached current bid satisfies the reserve.
// An auction without a reserve is always met once it has a bid.
func (a *Auction) ReserveMet() bool {
	if a.BidCount == 0 {
		return false
	}
	if a.ReservePrice == nil {
		return true
	}
	return a.CurrentBid >= *a.ReservePrice
}

// PlaceBidCommand represents the command to place a bid
type PlaceBidCommand struct {
	AuctionID uuid.UUID
	BidderID  uuid.UUID
	Amount    int64
}

// CreateAuctionCommand represents the command to open an auction for a product
type CreateAuctionCommand struct {
	ProductID    uuid.UUID
	SellerID     uuid.UUID
	StartPrice   int64
	BidIncrement int64
	ReservePrice *int64
	BuyNowPrice  *int64
	EndAt        time.Time
}

// CloseResult describes the outcome of closing one auction.
type CloseResult struct {
	AuctionID uuid.UUID
	Status    AuctionStatus
	OrderID   *uuid.UUID
}
