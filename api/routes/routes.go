package routes

import (
	"net/http"

	"github.com/ArowuTest/prizedraw-backend/internal/config"
	"github.com/ArowuTest/prizedraw-backend/internal/handlers"
	"github.com/ArowuTest/prizedraw-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// HandlerDependencies holds everything the router wires to a route
type HandlerDependencies struct {
	AuthHandler   *handlers.AuthHandler
	DrawHandler   *handlers.DrawHandler
	RosterHandler *handlers.RosterHandler
	EventStream   gin.HandlerFunc // GET /ws
	Metrics       http.Handler    // GET /metrics
	HTTPMetrics   gin.HandlerFunc // request instrumentation, optional
	LoginLimiter  *middleware.RateLimiter
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	// Add middleware
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())
	if deps.HTTPMetrics != nil {
		router.Use(deps.HTTPMetrics)
	}

	// Public routes
	public := router.Group("/api/v1")
	{
		// Health check
		public.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})
		if deps.Metrics != nil {
			public.GET("/metrics", gin.WrapH(deps.Metrics))
		}

		// Auth routes
		auth := public.Group("/auth")
		if deps.LoginLimiter != nil {
			auth.Use(deps.LoginLimiter.Handler())
		}
		{
			auth.POST("/login", deps.AuthHandler.Login)
		}

		// Display routes
		public.GET("/state", deps.DrawHandler.GetState)
		public.GET("/roster", deps.RosterHandler.GetRoster)
		public.GET("/draws/history", deps.DrawHandler.GetHistory)
		if deps.EventStream != nil {
			public.GET("/ws", deps.EventStream)
		}
	}

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg))
	{
		// Roster routes
		roster := protected.Group("/roster")
		{
			roster.PUT("", deps.RosterHandler.ReplaceRoster)
			roster.POST("/import", deps.RosterHandler.ImportRoster)
		}

		// Draw routes
		draws := protected.Group("/draws/:tier")
		{
			draws.POST("/start", deps.DrawHandler.StartDraw)
			draws.POST("/finalize", deps.DrawHandler.FinalizeDraw)
			draws.POST("/cancel", deps.DrawHandler.CancelDraw)
			draws.POST("/run", deps.DrawHandler.RunDraw)
		}
	}

	return router
}
