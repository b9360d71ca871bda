package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oppscout/oppscout-backend/internal/domain"
	"github.com/oppscout/oppscout-backend/internal/repository"
)

// ArchiveHandler serves the durable opportunity archive. The repo is nil
// when no database is configured; every route then answers 503.
type ArchiveHandler struct {
	repo repository.OpportunityRepository
}

func NewArchiveHandler(repo repository.OpportunityRepository) *ArchiveHandler {
	return &ArchiveHandler{
		repo: repo,
	}
}

// Top handles GET /opportunities/top
// @Summary Top archived opportunities
// @Description Highest-scored opportunities ever archived, best first
// @Tags archive
// @Produce json
// @Param limit query int false "Max results" default(10)
// @Success 200 {array} domain.Opportunity
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /opportunities/top [get]
func (h *ArchiveHandler) Top(c *gin.Context) {
	if h.repo == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "archive not configured",
		})
		return
	}

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "invalid limit",
			})
			return
		}
		limit = parsed
	}

	opps, err := h.repo.ListTop(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to list archive",
		})
		return
	}
	c.JSON(http.StatusOK, opps)
}

// Get handles GET /opportunities/:id
// @Summary Look up an archived opportunity
// @Tags archive
// @Produce json
// @Param id path string true "Opportunity ID"
// @Success 200 {object} domain.Opportunity
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /opportunities/{id} [get]
func (h *ArchiveHandler) Get(c *gin.Context) {
	if h.repo == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "archive not configured",
		})
		return
	}

	opp, err := h.repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrOpportunityNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: "opportunity not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to load opportunity",
		})
		return
	}
	c.JSON(http.StatusOK, opp)
}
