package routes

import (
	"time"

	"linguahub/handlers"
	"linguahub/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Options configures the HTTP surface.
type Options struct {
	AllowedOrigins    []string
	OpsSecret         []byte
	MaxRequestsPerMin int
	Logger            *zap.Logger
}

// RegisterHealthRoute registers the health endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.HealthHandler)
}

// RegisterSearchRoutes registers the operator search endpoints.
func RegisterSearchRoutes(r *gin.Engine, h *handlers.SearchHandler, opts Options) {
	ops := r.Group("/api/ops/search")
	ops.Use(middleware.OpsAuthMiddleware(opts.OpsSecret))
	{
		ops.GET("/orders/:id", h.GetOrderSearchHandler)
		ops.POST("/orders/:id/run", h.RunOrderSearchHandler)
		ops.GET("/groups/:id", h.GetGroupSearchHandler)
		ops.POST("/groups/:id/run", h.RunGroupSearchHandler)
	}
}

// RegisterRoutes sets up all routes.
func RegisterRoutes(r *gin.Engine, search *handlers.SearchHandler, opts Options) {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware(opts.MaxRequestsPerMin, opts.Logger))

	RegisterHealthRoute(r)
	RegisterSearchRoutes(r, search, opts)
}
