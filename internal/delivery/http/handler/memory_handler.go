package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oppscout/oppscout-backend/internal/domain"
	"github.com/oppscout/oppscout-backend/internal/usecase/memory"
)

type MemoryHandler struct {
	memory *memory.Memory
}

func NewMemoryHandler(m *memory.Memory) *MemoryHandler {
	return &MemoryHandler{
		memory: m,
	}
}

// FeedbackRequest records a like or pass with an optional reason.
type FeedbackRequest struct {
	Liked  *bool  `json:"liked" binding:"required"`
	Reason string `json:"reason"`
}

// MarkSeen handles POST /opportunities/:id/seen
// @Summary Mark opportunity seen
// @Tags memory
// @Produce json
// @Param id path string true "Opportunity ID"
// @Success 200 {object} map[string]string
// @Failure 500 {object} ErrorResponse
// @Router /opportunities/{id}/seen [post]
func (h *MemoryHandler) MarkSeen(c *gin.Context) {
	id := c.Param("id")
	if err := h.memory.MarkSeen(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to record interaction",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// MarkApplied handles POST /opportunities/:id/applied
// @Summary Mark opportunity applied
// @Tags memory
// @Produce json
// @Param id path string true "Opportunity ID"
// @Success 200 {object} map[string]string
// @Failure 500 {object} ErrorResponse
// @Router /opportunities/{id}/applied [post]
func (h *MemoryHandler) MarkApplied(c *gin.Context) {
	id := c.Param("id")
	if err := h.memory.MarkApplied(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to record interaction",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Feedback handles POST /opportunities/:id/feedback
// @Summary Record feedback on an opportunity
// @Tags memory
// @Accept json
// @Produce json
// @Param id path string true "Opportunity ID"
// @Param request body FeedbackRequest true "Feedback"
// @Success 200 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /opportunities/{id}/feedback [post]
func (h *MemoryHandler) Feedback(c *gin.Context) {
	id := c.Param("id")

	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}

	if err := h.memory.MarkFeedback(c.Request.Context(), id, *req.Liked, req.Reason); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to record feedback",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Similar handles GET /memory/similar
// @Summary Find similar opportunities
// @Description Semantic lookup over previously stored opportunities
// @Tags memory
// @Produce json
// @Param q query string true "Query text"
// @Param limit query int false "Max results" default(5)
// @Param min_similarity query number false "Similarity threshold" default(0)
// @Success 200 {array} memory.SimilarOpportunity
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /memory/similar [get]
func (h *MemoryHandler) Similar(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "q is required",
		})
		return
	}

	limit := 5
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

	minSimilarity := 0.0
	if raw := c.Query("min_similarity"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "invalid min_similarity",
			})
			return
		}
		minSimilarity = parsed
	}

	similar, err := h.memory.FindSimilar(c.Request.Context(), query, limit, minSimilarity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "similarity search failed",
		})
		return
	}
	c.JSON(http.StatusOK, similar)
}

// Stats handles GET /memory/stats
// @Summary Memory statistics
// @Tags memory
// @Produce json
// @Success 200 {object} memory.Stats
// @Failure 500 {object} ErrorResponse
// @Router /memory/stats [get]
func (h *MemoryHandler) Stats(c *gin.Context) {
	stats, err := h.memory.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to load stats",
		})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// UpdateProfile handles PUT /memory/profile
// @Summary Store user profile
// @Description Persist the profile to memory for preference learning
// @Tags memory
// @Accept json
// @Produce json
// @Param request body domain.UserProfile true "User profile"
// @Success 200 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /memory/profile [put]
func (h *MemoryHandler) UpdateProfile(c *gin.Context) {
	var profile domain.UserProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}

	if err := h.memory.LearnPreferences(c.Request.Context(), &profile); err != nil {
		if errors.Is(err, domain.ErrNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{
				Error: "memory not configured",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to store profile",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
