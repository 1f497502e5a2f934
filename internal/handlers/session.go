// session.go exposes the session state machine: choose a mode, then move
// between pages.
//
// GET /api/v1/session: current session
// PUT /api/v1/session/mode: choose a summarization mode
// PUT /api/v1/session/page: navigate to a page (mode required)
package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/legallite-api/internal/middleware"
	"github.com/Shimizu-Technology/legallite-api/internal/models"
)

// sessionView adds server-side facts the client needs to render the menu.
type sessionView struct {
	*models.Session
	DefaultMode models.Mode          `json:"default_mode"`
	Configured  map[models.Mode]bool `json:"configured"`
}

func (h *Handler) viewOf(s *models.Session) sessionView {
	configured := make(map[models.Mode]bool, len(models.Modes))
	for _, m := range models.Modes {
		configured[m] = h.Summaries.Configured(m)
	}
	return sessionView{Session: s, DefaultMode: h.DefaultMode, Configured: configured}
}

// GetSession returns the caller's session.
// GET /api/v1/session
func (h *Handler) GetSession(c *gin.Context) {
	s := middleware.GetSession(c)
	if s == nil {
		errorJSON(c, http.StatusUnauthorized, "unauthorized", "Not authenticated")
		return
	}
	c.JSON(http.StatusOK, h.viewOf(s))
}

// ChooseMode selects the summarizer for the rest of the session.
// PUT /api/v1/session/mode
func (h *Handler) ChooseMode(c *gin.Context) {
	s := middleware.GetSession(c)
	if s == nil {
		errorJSON(c, http.StatusUnauthorized, "unauthorized", "Not authenticated")
		return
	}

	var req models.ChooseModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid_request", "mode is required")
		return
	}
	mode, err := models.ParseMode(req.Mode)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid_mode", err.Error())
		return
	}

	s.ChooseMode(mode)
	if err := h.DB.SaveSession(c.Request.Context(), s); err != nil {
		log.Printf("❌ Failed to save session for %s: %v", s.User.ID, err)
		errorJSON(c, http.StatusInternalServerError, "database_error", "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, h.viewOf(s))
}

// Navigate moves the session to another page.
// PUT /api/v1/session/page
func (h *Handler) Navigate(c *gin.Context) {
	s := middleware.GetSession(c)
	if s == nil {
		errorJSON(c, http.StatusUnauthorized, "unauthorized", "Not authenticated")
		return
	}

	var req models.NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid_request", "page is required")
		return
	}
	page, err := models.ParsePage(req.Page)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid_page", err.Error())
		return
	}

	if err := s.Navigate(page); err != nil {
		if errors.Is(err, models.ErrModeNotChosen) {
			errorJSON(c, http.StatusConflict, "mode_not_chosen", err.Error())
			return
		}
		errorJSON(c, http.StatusBadRequest, "invalid_page", err.Error())
		return
	}
	if err := h.DB.SaveSession(c.Request.Context(), s); err != nil {
		log.Printf("❌ Failed to save session for %s: %v", s.User.ID, err)
		errorJSON(c, http.StatusInternalServerError, "database_error", "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, h.viewOf(s))
}
