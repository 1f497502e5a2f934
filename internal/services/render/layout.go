// Package render turns a plain-text summary into a printable document.
//
// Rendering happens in two steps. Layout computes where every line goes
// (pages of positioned lines, in PDF points with the origin at the bottom-left
// corner); the writers in this package then serialize that Document as PDF,
// DOCX or plain text. Keeping the layout separate makes the pagination rules
// testable without parsing PDF bytes.
package render

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Letter page geometry and text metrics, in points.
const (
	PageWidth    = 612.0
	PageHeight   = 792.0
	Margin       = 40.0
	LineHeight   = 20.0
	HeaderGap    = 30.0
	FontFamily   = "Helvetica"
	FontSize     = 12.0
	MaxLineChars = 90
)

// DefaultProductName prefixes the first header line.
const DefaultProductName = "LegalLite"

// DateLayout is the header timestamp format (YYYY-MM-DD HH:MM:SS).
const DateLayout = "2006-01-02 15:04:05"

// RenderRequest is the immutable input of a render.
type RenderRequest struct {
	Title       string
	SummaryText string
	GeneratedAt time.Time
}

// Line is one drawn line of text. Y is the baseline measured from the bottom
// of the page.
type Line struct {
	Text string
	X    float64
	Y    float64
}

// Page is an ordered sequence of drawn lines.
type Page struct {
	Lines []Line
}

// Document is the laid-out result. It is not modified after Layout returns.
type Document struct {
	Title       string
	GeneratedAt time.Time
	Header      []string
	Body        []string // logical lines of the summary, unwrapped
	Pages       []Page
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// cursor tracks the vertical position while lines are placed.
type cursor struct {
	y      float64
	top    float64
	bottom float64
}

func newCursor() *cursor {
	top := PageHeight - Margin
	return &cursor{y: top, top: top, bottom: Margin}
}

// overflowed reports whether the next line would sit below the bottom margin.
func (c *cursor) overflowed() bool { return c.y < c.bottom }

func (c *cursor) reset() { c.y = c.top }

func (c *cursor) advance(dy float64) { c.y -= dy }

// Options tune a Layout.
type Options struct {
	ProductName string
	// WrapWords breaks long lines at the last space within the budget instead
	// of at the exact character boundary. Off by default.
	WrapWords bool
}

// Layout places the header and the wrapped summary lines onto Letter pages.
//
// The header always occupies the first two lines of page one. Each logical
// line of req.SummaryText is wrapped independently; sublines are placed
// top to bottom and a new page starts whenever the cursor has dropped below
// the bottom margin. A line never straddles two pages.
func Layout(req RenderRequest, opts Options) *Document {
	product := opts.ProductName
	if product == "" {
		product = DefaultProductName
	}

	header := []string{
		product + " Summary - " + req.Title,
		"Date: " + req.GeneratedAt.Format(DateLayout),
	}

	doc := &Document{
		Title:       req.Title,
		GeneratedAt: req.GeneratedAt,
		Header:      header,
		Body:        splitLogicalLines(req.SummaryText),
	}

	cur := newCursor()
	page := Page{}

	page.Lines = append(page.Lines, Line{Text: header[0], X: Margin, Y: cur.y})
	cur.advance(LineHeight)
	page.Lines = append(page.Lines, Line{Text: header[1], X: Margin, Y: cur.y})
	cur.advance(HeaderGap)

	wrap := WrapLine
	if opts.WrapWords {
		wrap = WrapLineWords
	}

	for _, logical := range doc.Body {
		for _, sub := range wrap(logical, MaxLineChars) {
			if cur.overflowed() {
				doc.Pages = append(doc.Pages, page)
				page = Page{}
				cur.reset()
			}
			page.Lines = append(page.Lines, Line{Text: sub, X: Margin, Y: cur.y})
			cur.advance(LineHeight)
		}
	}

	doc.Pages = append(doc.Pages, page)
	return doc
}

// splitLogicalLines splits on hard line breaks. An empty summary has no
// lines at all, so only the header is drawn.
func splitLogicalLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// WrapLine cuts line into chunks of at most width characters at exact
// character boundaries. An empty line yields a single empty chunk so that
// blank lines still take up vertical space.
func WrapLine(line string, width int) []string {
	if width <= 0 || utf8.RuneCountInString(line) <= width {
		return []string{line}
	}

	var out []string
	runes := []rune(line)
	for i := 0; i < len(runes); i += width {
		end := min(i+width, len(runes))
		out = append(out, string(runes[i:end]))
	}
	return out
}

// WrapLineWords is like WrapLine but prefers to break after the last space
// inside the budget. Words longer than width are still cut at the boundary.
// Concatenating the chunks reproduces the input.
func WrapLineWords(line string, width int) []string {
	if width <= 0 || utf8.RuneCountInString(line) <= width {
		return []string{line}
	}

	var out []string
	runes := []rune(line)
	for len(runes) > width {
		cut := width
		for i := width; i > 0; i-- {
			if runes[i-1] == ' ' {
				cut = i
				break
			}
		}
		out = append(out, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}
