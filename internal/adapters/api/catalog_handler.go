package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aurelius/mintbid/internal/domain/catalog"
)

// CatalogHandler serves product CRUD and faceted search.
type CatalogHandler struct {
	service *catalog.Service
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(service *catalog.Service) *CatalogHandler {
	return &CatalogHandler{service: service}
}

type createProductRequest struct {
	SKU         string              `json:"sku" binding:"required"`
	Title       string              `json:"title" binding:"required"`
	Description string              `json:"description"`
	Price       int64               `json:"price_cents"`
	Metal       string              `json:"metal"`
	WeightGrams *float64            `json:"weight_grams"`
	Purity      *float64            `json:"purity"`
	Category    string              `json:"category"`
	ListingType catalog.ListingType `json:"listing_type"`
	Images      []string            `json:"images"`
	ClientID    *uuid.UUID          `json:"client_id"`
}

func (h *CatalogHandler) Create(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	product, err := h.service.CreateProduct(c.Request.Context(), catalog.CreateProductCommand{
		SKU:         req.SKU,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Metal:       req.Metal,
		WeightGrams: req.WeightGrams,
		Purity:      req.Purity,
		Category:    req.Category,
		ListingType: req.ListingType,
		Images:      req.Images,
		ClientID:    req.ClientID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

func (h *CatalogHandler) Get(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid product id")
		return
	}

	product, err := h.service.GetProduct(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

type updateProductRequest struct {
	Title       string                `json:"title" binding:"required"`
	Description string                `json:"description"`
	Price       int64                 `json:"price_cents"`
	Category    string                `json:"category"`
	Images      []string              `json:"images"`
	Status      catalog.ProductStatus `json:"status"`
}

func (h *CatalogHandler) Update(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid product id")
		return
	}

	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	product, err := h.service.UpdateProduct(c.Request.Context(), catalog.UpdateProductCommand{
		ProductID:   productID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Images:      req.Images,
		Status:      req.Status,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// Search maps query params onto the faceted search. Zero values mean
// "no filter".
func (h *CatalogHandler) Search(c *gin.Context) {
	limit, offset := pagination(c)

	query := catalog.SearchQuery{
		Text:        c.Query("q"),
		Metal:       c.Query("metal"),
		Category:    c.Query("category"),
		ListingType: catalog.ListingType(c.Query("listing_type")),
		Sort:        catalog.SortOrder(c.Query("sort")),
		Limit:       limit,
		Offset:      offset,
	}
	if raw := c.Query("min_price_cents"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			query.MinPrice = v
		}
	}
	if raw := c.Query("max_price_cents"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			query.MaxPrice = v
		}
	}

	products, err := h.service.Search(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *CatalogHandler) ListMine(c *gin.Context) {
	clientID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	limit, offset := pagination(c)
	products, err := h.service.ListClientProducts(c.Request.Context(), clientID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}
