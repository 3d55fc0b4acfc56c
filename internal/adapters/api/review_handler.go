package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aurelius/mintbid/internal/domain/reviews"
)

// ReviewHandler serves seller review creation and aggregation.
type ReviewHandler struct {
	service *reviews.Service
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(service *reviews.Service) *ReviewHandler {
	return &ReviewHandler{service: service}
}

type createReviewRequest struct {
	OrderID         uuid.UUID `json:"order_id" binding:"required"`
	Overall         int       `json:"overall" binding:"required"`
	ItemAsDescribed int       `json:"item_as_described" binding:"required"`
	Shipping        int       `json:"shipping" binding:"required"`
	Communication   int       `json:"communication" binding:"required"`
	Comment         string    `json:"comment"`
}

func (h *ReviewHandler) Create(c *gin.Context) {
	reviewerID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	review, err := h.service.CreateReview(c.Request.Context(), reviews.CreateReviewCommand{
		OrderID:         req.OrderID,
		ReviewerID:      reviewerID,
		Overall:         req.Overall,
		ItemAsDescribed: req.ItemAsDescribed,
		Shipping:        req.Shipping,
		Communication:   req.Communication,
		Comment:         req.Comment,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) ListForSeller(c *gin.Context) {
	sellerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid seller id")
		return
	}

	limit, offset := pagination(c)
	list, err := h.service.ListSellerReviews(c.Request.Context(), sellerID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": list})
}

func (h *ReviewHandler) Summary(c *gin.Context) {
	sellerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid seller id")
		return
	}

	summary, err := h.service.GetSellerSummary(c.Request.Context(), sellerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
