package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aurelius/mintbid/internal/domain/integrations"
)

// IntegrationHandler serves marketplace OAuth linking and listing relay.
type IntegrationHandler struct {
	service *integrations.Service
}

// NewIntegrationHandler creates a new integration handler
func NewIntegrationHandler(service *integrations.Service) *IntegrationHandler {
	return &IntegrationHandler{service: service}
}

type connectRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h *IntegrationHandler) Connect(c *gin.Context) {
	clientID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req connectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	integration, err := h.service.Connect(c.Request.Context(), clientID, c.Param("provider"), req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, integration)
}

func (h *IntegrationHandler) Disconnect(c *gin.Context) {
	clientID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	if err := h.service.Disconnect(c.Request.Context(), clientID, c.Param("provider")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *IntegrationHandler) List(c *gin.Context) {
	clientID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	list, err := h.service.ListIntegrations(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"integrations": list})
}

type publishListingRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	PriceCents  int64    `json:"price_cents" binding:"required"`
	ImageURLs   []string `json:"image_urls"`
}

func (h *IntegrationHandler) PublishListing(c *gin.Context) {
	clientID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req publishListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	externalID, err := h.service.PublishListing(c.Request.Context(), clientID, c.Param("provider"), &integrations.Listing{
		Title:       req.Title,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		ImageURLs:   req.ImageURLs,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"listing_id": externalID})
}

func (h *IntegrationHandler) EndListing(c *gin.Context) {
	clientID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	err := h.service.EndListing(c.Request.Context(), clientID, c.Param("provider"), c.Param("listing_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
