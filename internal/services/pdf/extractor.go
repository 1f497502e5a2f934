// Package pdf provides PDF text extraction for uploaded legal documents.
//
// We use the ledongthuc/pdf library for text extraction.
// It's a pure Go implementation with no CGO or external dependencies required.
// pdfcpu reads the document structure first, so broken uploads are rejected
// with a clear error before text extraction starts.
package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ExtractionResult holds the output from a PDF text extraction.
type ExtractionResult struct {
	Text      string // Text of all pages, concatenated in page order
	PageCount int    // Number of pages
	WordCount int    // Word count
}

// Extract reads a PDF held in memory and returns the text of every page.
//
// Pages are concatenated without separators. A page whose text cannot be
// decoded (scanned images, exotic fonts) contributes nothing rather than
// failing the whole document.
func Extract(data []byte) (result *ExtractionResult, err error) {
	// ledongthuc/pdf panics on some malformed object streams.
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("failed to read PDF text: %v", r)
		}
	}()

	if !ValidatePDF(data) {
		return nil, fmt.Errorf("not a PDF: missing %%PDF- header")
	}

	pageCount, err := Inspect(data)
	if err != nil {
		return nil, err
	}

	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	var allText strings.Builder
	for i := 1; i <= pdfReader.NumPage(); i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		allText.WriteString(text)
	}

	extractedText := allText.String()
	return &ExtractionResult{
		Text:      extractedText,
		PageCount: pageCount,
		WordCount: countWords(extractedText),
	}, nil
}

// Inspect validates the PDF structure with pdfcpu and returns its page count.
// pdfcpu's parser panics on some truncated files; that is reported as an error.
func Inspect(data []byte) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n = 0
			err = fmt.Errorf("invalid PDF structure: %v", r)
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	n, err = api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("invalid PDF structure: %w", err)
	}
	return n, nil
}

// countWords counts the number of words in a text string.
func countWords(text string) int {
	words := strings.Fields(text)
	return len(words)
}

// ValidatePDF checks if the data looks like a valid PDF by checking the magic bytes.
func ValidatePDF(data []byte) bool {
	// PDF files start with "%PDF-"
	return len(data) >= 5 && string(data[:5]) == "%PDF-"
}
