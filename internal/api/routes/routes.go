package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/folio-service/folio_service/internal/api/handlers"
	"github.com/folio-service/folio_service/internal/api/middleware"
	"github.com/folio-service/folio_service/internal/infrastructure/di"
)

// SetupRoutes configures all application routes
func SetupRoutes(container *di.Container) *gin.Engine {
	router := gin.New()

	// Global middleware - order matters
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())
	router.Use(middleware.Logger(container.Logger))
	router.Use(middleware.Recovery(container.Logger))
	router.Use(middleware.CORS(container.Config.Server.AllowedOrigins))
	router.Use(middleware.SecurityHeaders())

	healthHandlers := handlers.NewHealthHandlers(container.HealthChecker)
	holdingHandlers := handlers.NewHoldingHandlers(container.HoldingsService, container.Logger)
	portfolioHandlers := handlers.NewPortfolioHandlers(container.ValuationService, container.PricingService, container.Logger)
	priceHandlers := handlers.NewPriceHandlers(container.PricingService, container.Logger)

	// Operational endpoints (no auth required)
	router.GET("/health", healthHandlers.Health)
	router.GET("/ready", healthHandlers.Ready)
	router.GET("/live", healthHandlers.Live)
	router.GET("/version", healthHandlers.Version)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes, all behind bearer auth
	v1 := router.Group("/api/v1")
	v1.Use(middleware.RateLimit(container.Config.Server.RateLimitPerMin))
	v1.Use(middleware.Authentication(container.Config, container.UserRepo, container.Logger))
	{
		assets := v1.Group("/assets")
		{
			assets.POST("", holdingHandlers.AddHolding)
			assets.GET("", holdingHandlers.ListHoldings)
			assets.DELETE("", holdingHandlers.RemoveAllHoldings)
			assets.DELETE("/:id", holdingHandlers.RemoveHolding)
			assets.GET("/:id/history", priceHandlers.GetHistory)
		}

		portfolio := v1.Group("/portfolio")
		{
			portfolio.GET("/value", portfolioHandlers.GetPortfolioValue)
			portfolio.POST("/recalculate", portfolioHandlers.Recalculate)
			portfolio.POST("/backfill", portfolioHandlers.Backfill)
		}
	}

	return router
}
