package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aurelius/mintbid/internal/domain/consignment"
	"github.com/aurelius/mintbid/pkg/auth"
)

// ConsignmentHandler serves the client portal: submissions, the admin review
// queue, AI analysis, and scrape-source configuration.
type ConsignmentHandler struct {
	service *consignment.Service
}

// NewConsignmentHandler creates a new consignment handler
func NewConsignmentHandler(service *consignment.Service) *ConsignmentHandler {
	return &ConsignmentHandler{service: service}
}

type submitRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Photos      []string `json:"photos" binding:"required"`
}

func (h *ConsignmentHandler) Submit(c *gin.Context) {
	clientID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	submission, err := h.service.Submit(c.Request.Context(), consignment.SubmitCommand{
		ClientID:    clientID,
		Title:       req.Title,
		Description: req.Description,
		Photos:      req.Photos,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, submission)
}

func (h *ConsignmentHandler) Get(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	submissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid submission id")
		return
	}

	isAdmin := auth.Role(c) == auth.RoleAdmin
	submission, err := h.service.GetSubmission(c.Request.Context(), submissionID, callerID, isAdmin)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

func (h *ConsignmentHandler) ListMine(c *gin.Context) {
	clientID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	limit, offset := pagination(c)
	list, err := h.service.ListClientSubmissions(c.Request.Context(), clientID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"submissions": list})
}

// ListQueue is the admin review queue, filtered by status.
func (h *ConsignmentHandler) ListQueue(c *gin.Context) {
	status := consignment.SubmissionStatus(c.DefaultQuery("status", string(consignment.StatusPending)))

	limit, offset := pagination(c)
	list, err := h.service.ListReviewQueue(c.Request.Context(), status, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"submissions": list})
}

type updateStatusRequest struct {
	Status consignment.SubmissionStatus `json:"status" binding:"required"`
}

func (h *ConsignmentHandler) UpdateStatus(c *gin.Context) {
	submissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid submission id")
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	submission, err := h.service.UpdateStatus(c.Request.Context(), submissionID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

func (h *ConsignmentHandler) Analyze(c *gin.Context) {
	submissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid submission id")
		return
	}

	submission, err := h.service.Analyze(c.Request.Context(), submissionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

type createSourceRequest struct {
	SourceType string            `json:"source_type" binding:"required"`
	URL        string            `json:"url" binding:"required"`
	Schedule   string            `json:"schedule"`
	Selectors  map[string]string `json:"selectors"`
}

func (h *ConsignmentHandler) CreateSource(c *gin.Context) {
	clientID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req createSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	source, err := h.service.CreateSource(c.Request.Context(), consignment.CreateSourceCommand{
		ClientID:   clientID,
		SourceType: req.SourceType,
		URL:        req.URL,
		Schedule:   req.Schedule,
		Selectors:  req.Selectors,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, source)
}

func (h *ConsignmentHandler) ListSources(c *gin.Context) {
	clientID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	sources, err := h.service.ListClientSources(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sources": sources})
}

func (h *ConsignmentHandler) DeleteSource(c *gin.Context) {
	clientID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	sourceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid source id")
		return
	}

	if err := h.service.DeleteSource(c.Request.Context(), sourceID, clientID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
