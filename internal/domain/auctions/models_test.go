package auctions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ptr(v int64) *int64 { return &v }

func TestAuction_IsOpen(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		auction Auction
		want    bool
	}{
		{
			name:    "open and before end time",
			auction: Auction{Status: StatusOpen, EndAt: now.Add(time.Hour)},
			want:    true,
		},
		{
			name:    "open but past end time",
			auction: Auction{Status: StatusOpen, EndAt: now.Add(-time.Minute)},
			want:    false,
		},
		{
			name:    "closed sold",
			auction: Auction{Status: StatusClosedSold, EndAt: now.Add(time.Hour)},
			want:    false,
		},
		{
			name:    "closed unsold",
			auction: Auction{Status: StatusClosedUnsold, EndAt: now.Add(time.Hour)},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.auction.IsOpen(now))
		})
	}
}

func TestAuction_MinimumNextBid(t *testing.T) {
	tests := []struct {
		name    string
		auction Auction
		want    int64
	}{
		{
			name:    "no bids yet: start price",
			auction: Auction{StartPrice: 10000, BidIncrement: 1000, BidCount: 0},
			want:    10000,
		},
		{
			name:    "has bids: current plus increment",
			auction: Auction{StartPrice: 10000, CurrentBid: 10000, BidIncrement: 1000, BidCount: 1},
			want:    11000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.auction.MinimumNextBid())
		})
	}
}

func TestAuction_IsBuyNow(t *testing.T) {
	noBuyNow := Auction{}
	assert.False(t, noBuyNow.IsBuyNow(1_000_000))

	withBuyNow := Auction{BuyNowPrice: ptr(50000)}
	assert.False(t, withBuyNow.IsBuyNow(49999))
	assert.True(t, withBuyNow.IsBuyNow(50000))
	assert.True(t, withBuyNow.IsBuyNow(60000))
}

func TestAuction_ReserveMet(t *testing.T) {
	tests := []struct {
		name    string
		auction Auction
		want    bool
	}{
		{
			name:    "no bids",
			auction: Auction{ReservePrice: ptr(10000)},
			want:    false,
		},
		{
			name:    "no reserve with bids",
			auction: Auction{CurrentBid: 5000, BidCount: 2},
			want:    true,
		},
		{
			name:    "reserve unmet",
			auction: Auction{CurrentBid: 9000, BidCount: 3, ReservePrice: ptr(10000)},
			want:    false,
		},
		{
			name:    "reserve met exactly",
			auction: Auction{CurrentBid: 10000, BidCount: 3, ReservePrice: ptr(10000)},
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.auction.ReserveMet())
		})
	}
}
