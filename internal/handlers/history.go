// history.go serves a user's past summaries and exports them as files.
//
// Supported export formats:
//   - pdf: the rendered summary, named simplified_<original>.pdf
//   - docx: the same header and lines as a Word document
//   - txt: plain text
//
// Go Pattern: Each export format is its own branch of a switch. Adding a
// format means a new case and a new renderer function.
package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Shimizu-Technology/legallite-api/internal/database"
	"github.com/Shimizu-Technology/legallite-api/internal/middleware"
	"github.com/Shimizu-Technology/legallite-api/internal/models"
	"github.com/Shimizu-Technology/legallite-api/internal/services/render"
)

// ListHistory returns the caller's uploads, newest first.
// GET /api/v1/history?limit=50
func (h *Handler) ListHistory(c *gin.Context) {
	s := middleware.GetSession(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	items, err := h.DB.ListHistory(c.Request.Context(), s.User.ID, limit)
	if err != nil {
		log.Printf("❌ Failed to list history for %s: %v", s.User.ID, err)
		errorJSON(c, http.StatusInternalServerError, "database_error", "Failed to list history")
		return
	}

	if items == nil {
		items = []models.Upload{}
	}
	c.JSON(http.StatusOK, items)
}

// GetHistoryItem returns one of the caller's uploads.
// GET /api/v1/history/:id
func (h *Handler) GetHistoryItem(c *gin.Context) {
	item, ok := h.loadHistoryItem(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, item)
}

// ExportHistoryItem downloads a stored summary.
// GET /api/v1/history/:id/export?format=pdf|docx|txt
func (h *Handler) ExportHistoryItem(c *gin.Context) {
	format := c.DefaultQuery("format", "pdf")

	// Validate format before doing any database work
	validFormats := map[string]bool{"pdf": true, "docx": true, "txt": true}
	if !validFormats[format] {
		errorJSON(c, http.StatusBadRequest, "invalid_format", "Supported formats: pdf, docx, txt")
		return
	}

	item, ok := h.loadHistoryItem(c)
	if !ok {
		return
	}

	// Stamping with the upload time keeps repeated exports identical.
	req := render.RenderRequest{
		Title:       item.Filename,
		SummaryText: item.Summary,
		GeneratedAt: item.CreatedAt,
	}
	base := strings.TrimSuffix(render.DownloadName(item.Filename), ".pdf")
	base = sanitizeFilename(base)

	switch format {
	case "pdf":
		data, err := h.Renderer.RenderRequest(req)
		if err != nil {
			exportFailed(c, err)
			return
		}
		attachment(c, base+".pdf", "application/pdf", data)
	case "docx":
		data, err := render.DOCX(h.Renderer.Layout(req))
		if err != nil {
			exportFailed(c, err)
			return
		}
		attachment(c, base+".docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", data)
	case "txt":
		attachment(c, base+".txt", "text/plain; charset=utf-8", render.Text(h.Renderer.Layout(req)))
	}
}

// loadHistoryItem fetches :id for the caller. Ids that are not UUIDs can
// never match, so they are answered with 404 without a query.
func (h *Handler) loadHistoryItem(c *gin.Context) (*models.Upload, bool) {
	s := middleware.GetSession(c)
	id := c.Param("id")

	if _, err := uuid.Parse(id); err != nil {
		errorJSON(c, http.StatusNotFound, "not_found", "History item not found")
		return nil, false
	}

	item, err := h.DB.GetHistoryItem(c.Request.Context(), s.User.ID, id)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			log.Printf("❌ Failed to load history item %s: %v", id, err)
			errorJSON(c, http.StatusInternalServerError, "database_error", "Failed to load history item")
			return nil, false
		}
		errorJSON(c, http.StatusNotFound, "not_found", "History item not found")
		return nil, false
	}
	return item, true
}

func attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, data)
}

func exportFailed(c *gin.Context, err error) {
	log.Printf("❌ Export failed: %v", err)
	errorJSON(c, http.StatusInternalServerError, "export_error", "Failed to generate export")
}

// sanitizeFilename removes characters that aren't safe for filenames.
// Go Pattern: Keep it simple. Replace unsafe characters with hyphens
// and trim the result. This is only for the Content-Disposition header.
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "-",
		"?", "-", "\"", "-", "<", "-", ">", "-",
		"|", "-", "\n", " ", "\r", "",
	)
	name = replacer.Replace(name)

	// Collapse multiple hyphens/spaces
	for strings.Contains(name, "  ") {
		name = strings.ReplaceAll(name, "  ", " ")
	}
	for strings.Contains(name, "--") {
		name = strings.ReplaceAll(name, "--", "-")
	}

	name = strings.TrimSpace(name)

	// Limit length without splitting a multi-byte character
	if r := []rune(name); len(r) > 100 {
		name = string(r[:100])
	}

	return name
}
