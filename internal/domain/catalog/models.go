package catalog

import (
	"time"

	"github.com/google/uuid"
)

// ListingType distinguishes fixed-price products from auction lots.
type ListingType string

const (
	ListingFixed   ListingType = "fixed"
	ListingAuction ListingType = "auction"
)

// ProductStatus is the catalog state of a product.
type ProductStatus string

const (
	ProductStatusDraft    ProductStatus = "draft"
	ProductStatusActive   ProductStatus = "active"
	ProductStatusSold     ProductStatus = "sold"
	ProductStatusArchived ProductStatus = "archived"
)

// Product is a catalog item: a coin, bar, or other collectible. ClientID is
// set when the item is consigned and owned by a portal client.
type Product struct {
	ID          uuid.UUID     `db:"id"`
	SKU         string        `db:"sku"`
	Title       string        `db:"title"`
	Description string        `db:"description"`
	Price       int64         `db:"price_cents"`
	Metal       string        `db:"metal"`
	WeightGrams *float64      `db:"weight_grams"`
	Purity      *float64      `db:"purity"`
	Category    string        `db:"category"`
	ListingType ListingType   `db:"listing_type"`
	Status      ProductStatus `db:"status"`
	Images      []string      `db:"images"`
	ClientID    *uuid.UUID    `db:"client_id"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

// IsOwnedBy reports whether the product is consigned by the given client.
func (p *Product) IsOwnedBy(clientID uuid.UUID) bool {
	return p.ClientID != nil && *p.ClientID == clientID
}

// CreateProductCommand represents the command to create a product
type CreateProductCommand struct {
	SKU         string
	Title       string
	Description string
	Price       int64
	Metal       string
	WeightGrams *float64
	Purity      *float64
	Category    string
	ListingType ListingType
	Images      []string
	ClientID    *uuid.UUID
}

// UpdateProductCommand represents the command to update a product's editable fields
type UpdateProductCommand struct {
	ProductID   uuid.UUID
	Title       string
	Description string
	Price       int64
	Category    string
	Images      []string
	Status      ProductStatus
}

// SortOrder is the requested search ordering.
type SortOrder string

const (
	SortNewest    SortOrder = "newest"
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
)

// SearchQuery carries the facet filters for a catalog search. Zero values
// mean "no filter".
type SearchQuery struct {
	Text        string
	Metal       string
	Category    string
	ListingType ListingType
	MinPrice    int64
	MaxPrice    int64
	Sort        SortOrder
	Limit       int
	Offset      int
}
