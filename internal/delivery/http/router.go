package http

import (
	"github.com/gin-gonic/gin"

	"github.com/oppscout/oppscout-backend/internal/delivery/http/handler"
)

type Router struct {
	searchHandler  *handler.SearchHandler
	memoryHandler  *handler.MemoryHandler
	archiveHandler *handler.ArchiveHandler
	capabilities   map[string]bool
}

// NewRouter wires the handlers. capabilities maps provider names to
// availability and is reported verbatim on the health endpoint.
func NewRouter(
	searchHandler *handler.SearchHandler,
	memoryHandler *handler.MemoryHandler,
	archiveHandler *handler.ArchiveHandler,
	capabilities map[string]bool,
) *Router {
	return &Router{
		searchHandler:  searchHandler,
		memoryHandler:  memoryHandler,
		archiveHandler: archiveHandler,
		capabilities:   capabilities,
	}
}

func (r *Router) Setup() *gin.Engine {
	router := gin.Default()

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":       "ok",
			"capabilities": r.capabilities,
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Search routes
		search := v1.Group("/search")
		{
			search.POST("", r.searchHandler.Find)
			search.GET("", r.searchHandler.QuickSearchGet)
			search.POST("/quick", r.searchHandler.QuickSearch)
		}
		v1.POST("/research", r.searchHandler.Research)

		// Interaction routes
		opportunities := v1.Group("/opportunities")
		{
			opportunities.POST("/:id/seen", r.memoryHandler.MarkSeen)
			opportunities.POST("/:id/applied", r.memoryHandler.MarkApplied)
			opportunities.POST("/:id/feedback", r.memoryHandler.Feedback)
			opportunities.GET("/top", r.archiveHandler.Top)
			opportunities.GET("/:id", r.archiveHandler.Get)
		}

		// Memory routes
		mem := v1.Group("/memory")
		{
			mem.GET("/similar", r.memoryHandler.Similar)
			mem.GET("/stats", r.memoryHandler.Stats)
			mem.PUT("/profile", r.memoryHandler.UpdateProfile)
		}
	}

	return router
}
