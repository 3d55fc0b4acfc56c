package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NotificationType labels what happened; the payload carries the details.
type NotificationType string

const (
	TypeBidReceived  NotificationType = "bid_received"
	TypeAuctionWon   NotificationType = "auction_won"
	TypeAuctionSold  NotificationType = "auction_sold"
	TypeAuctionEnded NotificationType = "auction_ended"
)

type Notification struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	UserID    uuid.UUID        `json:"user_id" db:"user_id"`
	Type      NotificationType `json:"type" db:"notification_type"`
	Payload   json.RawMessage  `json:"payload" db:"payload"`
	Read      bool             `json:"read" db:"read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}
