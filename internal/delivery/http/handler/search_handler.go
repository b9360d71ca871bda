package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oppscout/oppscout-backend/internal/domain"
	"github.com/oppscout/oppscout-backend/internal/usecase/finder"
)

type SearchHandler struct {
	finder *finder.Finder
}

func NewSearchHandler(f *finder.Finder) *SearchHandler {
	return &SearchHandler{
		finder: f,
	}
}

// FindRequest is the body of a full workflow run. The profile is
// optional; a missing profile falls back to the defaults.
type FindRequest struct {
	Query       string              `json:"query" binding:"required"`
	Profile     *domain.UserProfile `json:"profile"`
	IncludeSeen bool                `json:"include_seen"`
}

// ResearchRequest identifies one opportunity for a deep dive.
type ResearchRequest struct {
	Title   string `json:"title" binding:"required"`
	URL     string `json:"url" binding:"required"`
	Company string `json:"company"`
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// Find handles POST /search
// @Summary Find opportunities
// @Description Run the full discovery workflow: search, rank, research, recommend
// @Tags search
// @Accept json
// @Produce json
// @Param request body FindRequest true "Search query and optional profile"
// @Success 200 {object} finder.FindResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /search [post]
func (h *SearchHandler) Find(c *gin.Context) {
	var req FindRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}

	profile := req.Profile
	if profile == nil {
		profile = domain.DefaultProfile()
	}

	resp, err := h.finder.Find(c.Request.Context(), req.Query, profile, req.IncludeSeen)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyQuery) || errors.Is(err, domain.ErrInvalidResultCap) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "search failed",
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// QuickSearch handles POST /search/quick
// @Summary Quick search
// @Description Search and rank without the LLM understanding, research, and summary stages
// @Tags search
// @Accept json
// @Produce json
// @Param request body FindRequest true "Search query and optional profile"
// @Success 200 {array} domain.Opportunity
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /search/quick [post]
func (h *SearchHandler) QuickSearch(c *gin.Context) {
	var req FindRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}

	profile := req.Profile
	if profile == nil {
		profile = domain.DefaultProfile()
	}

	ranked, err := h.finder.QuickSearch(c.Request.Context(), req.Query, profile)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyQuery) || errors.Is(err, domain.ErrInvalidResultCap) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "search failed",
		})
		return
	}

	c.JSON(http.StatusOK, ranked)
}

// QuickSearchGet handles GET /search
// @Summary Quick search via query string
// @Description Same as the quick search POST, for simple clients
// @Tags search
// @Produce json
// @Param q query string true "Query text"
// @Success 200 {array} domain.Opportunity
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /search [get]
func (h *SearchHandler) QuickSearchGet(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "q is required",
		})
		return
	}

	ranked, err := h.finder.QuickSearch(c.Request.Context(), query, domain.DefaultProfile())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "search failed",
		})
		return
	}

	c.JSON(http.StatusOK, ranked)
}

// Research handles POST /research
// @Summary Research an opportunity
// @Description Run a deep research pass on a single opportunity
// @Tags search
// @Accept json
// @Produce json
// @Param request body ResearchRequest true "Opportunity to research"
// @Success 200 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /research [post]
func (h *SearchHandler) Research(c *gin.Context) {
	var req ResearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}

	opp := &domain.Opportunity{
		Title: req.Title,
		URL:   req.URL,
	}
	if req.Company != "" {
		opp.Company = &req.Company
	}

	report, err := h.finder.Research(c.Request.Context(), opp)
	if err != nil {
		if errors.Is(err, domain.ErrNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{
				Error: "research provider not configured",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "research failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"report": report,
	})
}
