// documents.go handles the PDF workflows.
//
// POST /api/v1/documents/extract: extract plain text
// POST /api/v1/documents/simplify: summarize, store in history, render PDF (and audio)
// POST /api/v1/documents/risky-terms: flag risky contract terms
//
// All three accept a multipart upload with field name "file" and process it
// synchronously.
package handlers

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/legallite-api/internal/middleware"
	"github.com/Shimizu-Technology/legallite-api/internal/models"
	pdfservice "github.com/Shimizu-Technology/legallite-api/internal/services/pdf"
	"github.com/Shimizu-Technology/legallite-api/internal/services/render"
)

// maxPDFSize is the max upload size for PDF files (50MB).
const maxPDFSize = 50 << 20

// upload is a validated PDF held in memory.
type upload struct {
	Filename string
	Data     []byte
}

// readUpload reads and validates the "file" form field. On failure it has
// already written the error response and returns false.
func readUpload(c *gin.Context) (*upload, bool) {
	// Limit request body size
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPDFSize)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid_request",
			"No PDF file provided. Upload a file with the field name 'file'. Max size: 50MB.")
		return nil, false
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".pdf" {
		errorJSON(c, http.StatusBadRequest, "invalid_file_type",
			fmt.Sprintf("Unsupported file format '%s'. Only .pdf files are accepted.", ext))
		return nil, false
	}

	// Go Pattern: io.ReadAll reads the entire reader into a byte slice.
	// For PDFs up to 50MB this is fine; the pdf libraries need random access.
	data, err := io.ReadAll(file)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "read_error", "Failed to read uploaded file")
		return nil, false
	}

	if !pdfservice.ValidatePDF(data) {
		errorJSON(c, http.StatusBadRequest, "invalid_pdf", "The uploaded file does not appear to be a valid PDF")
		return nil, false
	}

	return &upload{Filename: filepath.Base(header.Filename), Data: data}, true
}

// extract runs text extraction, answering 422 when the PDF is unreadable.
func extract(c *gin.Context, up *upload) (*pdfservice.ExtractionResult, bool) {
	result, err := pdfservice.Extract(up.Data)
	if err != nil {
		log.Printf("⚠️  PDF extraction failed for %s: %v", up.Filename, err)
		errorJSON(c, http.StatusUnprocessableEntity, "extraction_failed", "PDF text extraction failed: "+err.Error())
		return nil, false
	}
	return result, true
}

// ExtractDocument returns the plain text of an uploaded PDF.
// POST /api/v1/documents/extract
func (h *Handler) ExtractDocument(c *gin.Context) {
	up, ok := readUpload(c)
	if !ok {
		return
	}
	result, ok := extract(c, up)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, models.ExtractResponse{
		Filename:  up.Filename,
		Text:      result.Text,
		PageCount: result.PageCount,
		WordCount: result.WordCount,
	})
}

// SimplifyDocument summarizes an uploaded PDF with the session's mode.
// POST /api/v1/documents/simplify
//
// A failing summarizer or speech backend never fails the request: the
// placeholder summary is used and the problem is reported in the response.
func (h *Handler) SimplifyDocument(c *gin.Context) {
	s := middleware.GetSession(c)
	up, ok := readUpload(c)
	if !ok {
		return
	}
	extracted, ok := extract(c, up)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	result, used, sumErr := h.Summaries.Summarize(ctx, s.Mode, extracted.Text)

	resp := models.SimplifyResponse{
		Filename:     up.Filename,
		Summary:      result.Summary,
		Summarizer:   used.Name(),
		DownloadName: render.DownloadName(up.Filename),
	}
	if sumErr != nil {
		resp.SummaryWarning = sumErr.Error()
	}

	item := &models.Upload{
		UserID:   s.User.ID,
		Filename: up.Filename,
		Summary:  result.Summary,
	}
	if err := h.DB.AppendHistory(ctx, item); err != nil {
		// Still return the summary even if the history write fails.
		log.Printf("❌ Failed to save history for %s: %v", s.User.ID, err)
	} else {
		resp.HistoryID = item.ID
		resp.DownloadURL = fmt.Sprintf("/api/v1/history/%s/export?format=pdf", item.ID)
	}

	if h.Voice.IsConfigured() {
		path, err := h.Voice.Synthesize(ctx, result.Summary)
		if err != nil {
			log.Printf("⚠️  Speech synthesis failed: %v", err)
			resp.AudioError = err.Error()
		} else {
			resp.AudioURL = "/api/v1/audio/" + filepath.Base(path)
		}
	}

	log.Printf("📄 Simplified %s for %s with %s", up.Filename, s.User.ID, resp.Summarizer)
	c.JSON(http.StatusOK, resp)
}

// ScanRiskyTerms reports which configured risky terms appear in a PDF.
// POST /api/v1/documents/risky-terms
func (h *Handler) ScanRiskyTerms(c *gin.Context) {
	up, ok := readUpload(c)
	if !ok {
		return
	}
	extracted, ok := extract(c, up)
	if !ok {
		return
	}

	found := h.Scanner.Scan(extracted.Text)
	c.JSON(http.StatusOK, models.RiskScanResponse{
		Filename: up.Filename,
		Found:    found,
		Risky:    len(found) > 0,
		Checked:  h.Scanner.Terms(),
	})
}
