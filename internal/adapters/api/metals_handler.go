package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aurelius/mintbid/internal/domain/metals"
)

// MetalsHandler serves the spot-price ticker.
type MetalsHandler struct {
	service *metals.Service
}

// NewMetalsHandler creates a new metals handler
func NewMetalsHandler(service *metals.Service) *MetalsHandler {
	return &MetalsHandler{service: service}
}

func (h *MetalsHandler) Ticker(c *gin.Context) {
	quotes, err := h.service.GetTicker(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"quotes": quotes})
}

func (h *MetalsHandler) Spot(c *gin.Context) {
	quote, err := h.service.GetSpot(c.Request.Context(), metals.Metal(c.Param("metal")))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}
