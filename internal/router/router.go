// Package router sets up all HTTP routes for the API.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/legallite-api/internal/handlers"
	"github.com/Shimizu-Technology/legallite-api/internal/middleware"
)

// Setup creates and configures the Gin router with all routes.
func Setup(h *handlers.Handler, rateLimiter *middleware.RateLimiter, allowedOrigins []string) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.CORS(allowedOrigins))

	// --- Public Routes (no auth required) ---
	r.GET("/api/v1/health", h.HealthCheck)
	r.POST("/api/v1/auth/register", h.Register)
	r.POST("/api/v1/auth/login", h.Login)

	// API Documentation
	r.GET("/api/docs", h.ServeSwaggerUI)
	r.GET("/api/docs/openapi.yaml", h.ServeOpenAPISpec)

	// --- JWT-protected routes: account and session state ---
	authed := r.Group("/api/v1")
	authed.Use(middleware.JWTAuth(h.DB, h.JWTSecret))
	{
		authed.GET("/auth/me", h.GetMe)
		authed.POST("/auth/refresh", h.RefreshToken)
		authed.POST("/auth/logout", h.Logout)

		authed.GET("/session", h.GetSession)
		authed.PUT("/session/mode", h.ChooseMode)
		authed.PUT("/session/page", h.Navigate)
	}

	// --- Pages: need a chosen mode, and are rate limited per user ---
	pages := authed.Group("")
	pages.Use(middleware.RequireMode())
	pages.Use(rateLimiter.RateLimit())
	{
		pages.POST("/documents/extract", h.ExtractDocument)
		pages.POST("/documents/simplify", h.SimplifyDocument)
		pages.POST("/documents/risky-terms", h.ScanRiskyTerms)

		pages.GET("/history", h.ListHistory)
		pages.GET("/history/:id", h.GetHistoryItem)
		pages.GET("/history/:id/export", h.ExportHistoryItem)

		pages.GET("/audio/:name", h.ServeAudio)
	}

	return r
}
