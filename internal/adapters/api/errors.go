package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aurelius/mintbid/internal/domain/accounts"
	"github.com/aurelius/mintbid/internal/domain/auctions"
	"github.com/aurelius/mintbid/internal/domain/catalog"
	"github.com/aurelius/mintbid/internal/domain/consignment"
	"github.com/aurelius/mintbid/internal/domain/integrations"
	"github.com/aurelius/mintbid/internal/domain/metals"
	"github.com/aurelius/mintbid/internal/domain/orders"
	"github.com/aurelius/mintbid/internal/domain/reviews"
)

// errorMapping pairs a domain sentinel with its HTTP projection. The code is
// a stable machine-readable string clients can branch on.
type errorMapping struct {
	sentinel error
	status   int
	code     string
}

var errorMappings = []errorMapping{
	// Not found
	{auctions.ErrAuctionNotFound, http.StatusNotFound, "auction_not_found"},
	{catalog.ErrProductNotFound, http.StatusNotFound, "product_not_found"},
	{orders.ErrOrderNotFound, http.StatusNotFound, "order_not_found"},
	{consignment.ErrSubmissionNotFound, http.StatusNotFound, "submission_not_found"},
	{consignment.ErrSourceNotFound, http.StatusNotFound, "source_not_found"},
	{accounts.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
	{metals.ErrUnknownMetal, http.StatusNotFound, "unknown_metal"},
	{integrations.ErrNotConnected, http.StatusNotFound, "not_connected"},

	// Conflicts and failed preconditions
	{auctions.ErrAuctionClosed, http.StatusConflict, "auction_closed"},
	{reviews.ErrAlreadyReviewed, http.StatusConflict, "already_reviewed"},
	{reviews.ErrOrderNotDelivered, http.StatusConflict, "order_not_delivered"},
	{orders.ErrProductUnavailable, http.StatusConflict, "product_unavailable"},
	{orders.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{consignment.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{accounts.ErrUserAlreadyExists, http.StatusConflict, "user_already_exists"},

	// Permission
	{auctions.ErrSellerCannotBid, http.StatusForbidden, "seller_cannot_bid"},
	{reviews.ErrNotOrderBuyer, http.StatusForbidden, "not_order_buyer"},
	{consignment.ErrNotOwner, http.StatusForbidden, "not_owner"},

	// Authentication
	{accounts.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{accounts.ErrInvalidToken, http.StatusUnauthorized, "invalid_token"},

	// Validation and rejected bids. Losing a bid race is a 400 like any
	// other rejected amount; the "outbid" code tells clients to re-read the
	// auction and retry higher.
	{auctions.ErrOutbid, http.StatusBadRequest, "outbid"},
	{auctions.ErrInvalidBidAmount, http.StatusBadRequest, "invalid_bid_amount"},
	{auctions.ErrInvalidStartPrice, http.StatusBadRequest, "invalid_start_price"},
	{auctions.ErrInvalidIncrement, http.StatusBadRequest, "invalid_increment"},
	{auctions.ErrInvalidEndTime, http.StatusBadRequest, "invalid_end_time"},
	{auctions.ErrInvalidBuyNow, http.StatusBadRequest, "invalid_buy_now"},
	{catalog.ErrInvalidSKU, http.StatusBadRequest, "invalid_sku"},
	{catalog.ErrInvalidTitle, http.StatusBadRequest, "invalid_title"},
	{catalog.ErrInvalidPrice, http.StatusBadRequest, "invalid_price"},
	{reviews.ErrInvalidRating, http.StatusBadRequest, "invalid_rating"},
	{orders.ErrEmptyCart, http.StatusBadRequest, "empty_cart"},
	{consignment.ErrInvalidTitle, http.StatusBadRequest, "invalid_title"},
	{consignment.ErrNoPhotos, http.StatusBadRequest, "no_photos"},
	{accounts.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},

	// Upstream collaborators
	{consignment.ErrAnalysisFailed, http.StatusInternalServerError, "analysis_failed"},
	{integrations.ErrProviderFailure, http.StatusInternalServerError, "provider_failure"},
}

// respondError translates a domain error into an HTTP response. Unmapped
// errors become an opaque 500 so internals never leak to clients.
func respondError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.sentinel) {
			msg := err.Error()
			if m.status >= http.StatusInternalServerError {
				// Upstream failure detail stays in logs, not responses.
				msg = m.sentinel.Error()
			}
			c.JSON(m.status, gin.H{"error": msg, "code": m.code})
			return
		}
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "code": "internal"})
}

// badRequest reports a malformed request body or parameter.
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": "bad_request"})
}
