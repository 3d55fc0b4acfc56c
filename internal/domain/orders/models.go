package orders

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	StatusPendingPayment OrderStatus = "pending_payment"
	StatusPaid           OrderStatus = "paid"
	StatusShipped        OrderStatus = "shipped"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

// Order is a purchase of a single product, either from a fixed-price checkout
// or from a won auction (AuctionID/WinningBidID set).
type Order struct {
	ID           uuid.UUID   `db:"id"`
	BuyerID      uuid.UUID   `db:"buyer_id"`
	SellerID     uuid.UUID   `db:"seller_id"`
	ProductID    uuid.UUID   `db:"product_id"`
	AuctionID    *uuid.UUID  `db:"auction_id"`
	WinningBidID *uuid.UUID  `db:"winning_bid_id"`
	Amount       int64       `db:"amount_cents"`
	Status       OrderStatus `db:"status"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

// CheckoutLine is one cart line submitted to checkout.
type CheckoutLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// CheckoutSession is the payment-provider session handed back to the client.
type CheckoutSession struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
	AmountTotal int64  `json:"amount_total_cents"`
}
