// Package handlers contains HTTP handler functions for the API.
//
// Go Pattern: Handlers in Gin receive a *gin.Context which provides:
// - Request data (params, query, body, headers)
// - Response methods (JSON, String, Status)
// - Middleware data (c.Get/c.Set)
//
// We group related handlers into a struct (Handler) that holds shared dependencies.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/legallite-api/internal/database"
	"github.com/Shimizu-Technology/legallite-api/internal/models"
	"github.com/Shimizu-Technology/legallite-api/internal/services/render"
	"github.com/Shimizu-Technology/legallite-api/internal/services/risk"
	"github.com/Shimizu-Technology/legallite-api/internal/services/summary"
	"github.com/Shimizu-Technology/legallite-api/internal/services/voice"
)

// Version is reported by the health check.
const Version = "1.0.0"

// Store is the persistence the handlers need. *database.DB implements it.
type Store interface {
	HealthCheck(ctx context.Context) error

	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	SaveSession(ctx context.Context, s *models.Session) error

	AppendHistory(ctx context.Context, up *models.Upload) error
	ListHistory(ctx context.Context, userID string, limit int) ([]models.Upload, error)
	GetHistoryItem(ctx context.Context, userID, id string) (*models.Upload, error)
}

var _ Store = (*database.DB)(nil)

// Handler holds shared dependencies for all HTTP handlers.
// Go Pattern: Dependency injection via struct fields. Instead of global
// variables or service locators, we pass dependencies explicitly.
// This makes testing easy: just create a Handler with fake dependencies.
type Handler struct {
	DB        Store
	Summaries *summary.Registry
	Scanner   *risk.Scanner
	Renderer  *render.Renderer
	Voice     *voice.Synthesizer // nil or unconfigured disables audio
	JWTSecret string

	// DefaultMode is suggested to sessions that have not chosen a mode.
	DefaultMode models.Mode
}

// NewHandler creates a new handler with all dependencies.
func NewHandler(db Store, sums *summary.Registry, scanner *risk.Scanner, renderer *render.Renderer, synth *voice.Synthesizer, jwtSecret string) *Handler {
	return &Handler{
		DB:          db,
		Summaries:   sums,
		Scanner:     scanner,
		Renderer:    renderer,
		Voice:       synth,
		JWTSecret:   jwtSecret,
		DefaultMode: models.ModeDemo,
	}
}

// HealthCheck returns the API health status.
// GET /api/v1/health
func (h *Handler) HealthCheck(c *gin.Context) {
	// Check database connectivity
	dbStatus := "healthy"
	if err := h.DB.HealthCheck(c.Request.Context()); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	c.JSON(http.StatusOK, models.HealthResponse{
		Status:     "ok",
		Version:    Version,
		Database:   dbStatus,
		Summarizer: h.Summaries.For(h.DefaultMode).Name(),
		Voice:      h.Voice.IsConfigured(),
		RiskyTerms: len(h.Scanner.Terms()),
	})
}

// errorJSON writes the standard error body.
func errorJSON(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{
		Error:   code,
		Message: message,
		Code:    status,
	})
}
