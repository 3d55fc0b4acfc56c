package reviews

import (
	"time"

	"github.com/google/uuid"
)

// SellerReview is one buyer's rating of a completed order. One review per
// order, enforced by a unique constraint on order_id.
type SellerReview struct {
	ID              uuid.UUID `db:"id"`
	OrderID         uuid.UUID `db:"order_id"`
	SellerID        uuid.UUID `db:"seller_id"`
	ReviewerID      uuid.UUID `db:"reviewer_id"`
	Overall         int       `db:"overall"`
	ItemAsDescribed int       `db:"item_as_described"`
	Shipping        int       `db:"shipping"`
	Communication   int       `db:"communication"`
	Comment         string    `db:"comment"`
	CreatedAt       time.Time `db:"created_at"`
}

// CreateReviewCommand represents the command to review an order
type CreateReviewCommand struct {
	OrderID         uuid.UUID
	ReviewerID      uuid.UUID
	Overall         int
	ItemAsDescribed int
	Shipping        int
	Communication   int
	Comment         string
}

// Summary is the aggregated rating for a seller.
type Summary struct {
	SellerID           uuid.UUID `json:"seller_id"`
	ReviewCount        int64     `json:"review_count"`
	AvgOverall         float64   `json:"avg_overall"`
	AvgItemAsDescribed float64   `json:"avg_item_as_described"`
	AvgShipping        float64   `json:"avg_shipping"`
	AvgCommunication   float64   `json:"avg_communication"`
}
