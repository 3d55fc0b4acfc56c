package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aurelius/mintbid/internal/domain/auctions"
)

// AuctionHandler serves auction listing, bidding, and bid-history endpoints.
type AuctionHandler struct {
	service *auctions.Service
}

// NewAuctionHandler creates a new auction handler
func NewAuctionHandler(service *auctions.Service) *AuctionHandler {
	return &AuctionHandler{service: service}
}

type createAuctionRequest struct {
	ProductID    uuid.UUID `json:"product_id" binding:"required"`
	StartPrice   int64     `json:"start_price_cents" binding:"required"`
	BidIncrement int64     `json:"bid_increment_cents" binding:"required"`
	ReservePrice *int64    `json:"reserve_price_cents"`
	BuyNowPrice  *int64    `json:"buy_now_price_cents"`
	EndAt        time.Time `json:"end_at" binding:"required"`
}

func (h *AuctionHandler) Create(c *gin.Context) {
	sellerID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req createAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	auction, err := h.service.CreateAuction(c.Request.Context(), auctions.CreateAuctionCommand{
		ProductID:    req.ProductID,
		SellerID:     sellerID,
		StartPrice:   req.StartPrice,
		BidIncrement: req.BidIncrement,
		ReservePrice: req.ReservePrice,
		BuyNowPrice:  req.BuyNowPrice,
		EndAt:        req.EndAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, auction)
}

func (h *AuctionHandler) Get(c *gin.Context) {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid auction id")
		return
	}

	auction, err := h.service.GetAuction(c.Request.Context(), auctionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, auction)
}

func (h *AuctionHandler) List(c *gin.Context) {
	limit, offset := pagination(c)

	list, err := h.service.ListOpenAuctions(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"auctions": list})
}

type placeBidRequest struct {
	Amount int64 `json:"amount_cents" binding:"required"`
}

func (h *AuctionHandler) PlaceBid(c *gin.Context) {
	bidderID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid auction id")
		return
	}

	var req placeBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	bid, err := h.service.PlaceBid(c.Request.Context(), auctions.PlaceBidCommand{
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    req.Amount,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bid)
}

func (h *AuctionHandler) ListBids(c *gin.Context) {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid auction id")
		return
	}

	limit, _ := pagination(c)

	bids, err := h.service.ListBids(c.Request.Context(), auctionID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bids": bids})
}

// pagination reads limit/offset query params with sane defaults.
func pagination(c *gin.Context) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
