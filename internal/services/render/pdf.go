package render

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

// Renderer produces summary PDFs. The zero value is usable; it holds no
// mutable state, so one Renderer can serve concurrent requests.
type Renderer struct {
	ProductName string
	WrapWords   bool
	// DisableCompression leaves content streams uncompressed (handy when a
	// test wants to look at the drawn text operators).
	DisableCompression bool
	// Now returns the header timestamp. Defaults to time.Now.
	Now func() time.Time
}

// New creates a Renderer that prints productName in the header.
func New(productName string) *Renderer {
	return &Renderer{ProductName: productName}
}

// Render lays out summaryText under a header for title, stamped with the
// current time, and returns the PDF bytes.
func (r *Renderer) Render(title, summaryText string) ([]byte, error) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	return r.RenderRequest(RenderRequest{
		Title:       title,
		SummaryText: summaryText,
		GeneratedAt: now(),
	})
}

// RenderRequest renders a request with an explicit timestamp.
func (r *Renderer) RenderRequest(req RenderRequest) ([]byte, error) {
	doc := r.Layout(req)
	var buf bytes.Buffer
	if err := WritePDF(&buf, doc, !r.DisableCompression); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Layout computes the document layout with this renderer's options.
func (r *Renderer) Layout(req RenderRequest) *Document {
	return Layout(req, Options{ProductName: r.ProductName, WrapWords: r.WrapWords})
}

// Render is a convenience wrapper around a default Renderer.
func Render(title, summaryText string) ([]byte, error) {
	return New(DefaultProductName).Render(title, summaryText)
}

// WritePDF serializes doc as a Letter-sized PDF. Lines are drawn exactly at
// their laid-out positions; automatic page breaking is disabled so the
// layout is the only source of pagination.
func WritePDF(w io.Writer, doc *Document, compress bool) error {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetCompression(compress)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(Margin, Margin, Margin)
	pdf.SetTitle(doc.Header[0], true)
	pdf.SetCreator(DefaultProductName, true)
	if !doc.GeneratedAt.IsZero() {
		pdf.SetCreationDate(doc.GeneratedAt)
	}

	// Core fonts are cp1252; the translator maps UTF-8 input onto it.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, page := range doc.Pages {
		pdf.AddPage()
		pdf.SetFont(FontFamily, "", FontSize)
		for _, line := range page.Lines {
			if line.Text == "" {
				continue
			}
			// fpdf measures y from the top edge.
			pdf.Text(line.X, PageHeight-line.Y, tr(line.Text))
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

// DownloadName returns the conventional file name for a simplified copy of
// original: "contract.pdf" becomes "simplified_contract.pdf".
func DownloadName(original string) string {
	base := filepath.Base(original)
	if strings.EqualFold(filepath.Ext(base), ".pdf") {
		base = base[:len(base)-len(".pdf")]
	}
	if base == "" || base == "." || base == "/" {
		base = "document"
	}
	return "simplified_" + base + ".pdf"
}
