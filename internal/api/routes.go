package api

import (
	"github.com/RishiKendai/duplink/internal/config"
	"github.com/RishiKendai/duplink/internal/metrics"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(cfg *config.Config, handler *Handler) *gin.Engine {
	router := gin.Default()

	rateLimiter := NewRateLimiter(cfg.RateLimitRPS, int(cfg.RateLimitRPS*2))

	router.Use(metrics.GinMiddleware())
	router.Use(ErrorHandlerMiddleware())

	// Health endpoint (no auth)
	router.GET("/health", handler.Health)

	api := router.Group("/api/v1")
	api.Use(JWTAuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))
	api.Use(RateLimitMiddleware(rateLimiter))
	{
		api.POST("/compute", handler.Compute)
		api.GET("/status/:corpusId", handler.Status)
		api.GET("/reports/:corpusId", handler.Report)
		api.POST("/corpora/:corpusId/documents", handler.AddDocument)
	}

	return router
}
