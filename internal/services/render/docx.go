package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomutex/godocx"
)

const (
	docxFont     = "Helvetica"
	docxFontSize = 12
	docxColor    = "000000"
)

// DOCX renders the document as a Word file: the two header lines as bold
// paragraphs, then one paragraph per logical summary line. Word does its own
// wrapping and pagination, so the PDF page layout is not carried over.
func DOCX(doc *Document) ([]byte, error) {
	d, err := godocx.NewDocument()
	if err != nil {
		return nil, fmt.Errorf("failed to create docx: %w", err)
	}

	d.AddParagraph("").AddText(doc.Header[0]).Font(docxFont).Size(14).Color(docxColor).Bold(true)
	d.AddParagraph("").AddText(doc.Header[1]).Font(docxFont).Size(docxFontSize).Color(docxColor)
	d.AddParagraph("")

	for _, line := range doc.Body {
		p := d.AddParagraph("")
		if line == "" {
			continue
		}
		p.AddText(line).Font(docxFont).Size(docxFontSize).Color(docxColor)
	}

	// godocx saves to a path; stage the file in a private temp dir.
	dir, err := os.MkdirTemp("", "legallite-docx-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "summary.docx")
	if err := d.SaveTo(path); err != nil {
		return nil, fmt.Errorf("failed to save docx: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read docx: %w", err)
	}
	return data, nil
}

// Text renders the document as plain text: header, blank line, summary.
func Text(doc *Document) []byte {
	var sb strings.Builder
	for _, h := range doc.Header {
		sb.WriteString(h)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(strings.Join(doc.Body, "\n"))
	if len(doc.Body) > 0 {
		sb.WriteString("\n")
	}
	return []byte(sb.String())
}
