// session.go models the per-request session: who is logged in, which
// summarization mode they picked and which page they are on.
package models

import (
	"errors"
	"fmt"
)

// Page identifies a screen of the front end.
// Go Pattern: Go has no enums, so a named string type plus a closed set of
// constants and a Parse function gives us the same safety at the boundary.
type Page string

const (
	PageUpload     Page = "upload"
	PageRiskyTerms Page = "risky_terms"
	PageHistory    Page = "history"
	PageProfile    Page = "profile"
)

// DefaultPage is shown right after a mode is chosen.
const DefaultPage = PageUpload

// Pages lists every navigable page in menu order.
var Pages = []Page{PageUpload, PageRiskyTerms, PageHistory, PageProfile}

// ParsePage converts a raw string into a Page.
func ParsePage(s string) (Page, error) {
	for _, p := range Pages {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown page %q", s)
}

// Mode selects which summarizer backs the session.
type Mode string

const (
	ModeDemo        Mode = "demo"
	ModeOpenAI      Mode = "openai"
	ModeHuggingFace Mode = "huggingface"
	ModeGemini      Mode = "gemini"
)

// Modes lists every selectable mode.
var Modes = []Mode{ModeDemo, ModeOpenAI, ModeHuggingFace, ModeGemini}

// ParseMode converts a raw string into a Mode.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// ErrModeNotChosen is returned when a page is requested before a mode was picked.
var ErrModeNotChosen = errors.New("choose a mode before using LegalLite")

// Session is the explicit replacement for global UI flags. Middleware builds
// one per request from the authenticated user; handlers receive it through
// the gin context and never mutate shared state.
type Session struct {
	User       *User  `json:"user"`
	Mode       Mode   `json:"mode,omitempty"`
	ModeChosen bool   `json:"mode_chosen"`
	Page       Page   `json:"page,omitempty"`
	Pages      []Page `json:"pages"`
	Modes      []Mode `json:"modes"`
}

// NewSession derives a session from a stored user. Unknown stored values are
// treated as "not chosen" rather than trusted.
func NewSession(u *User) *Session {
	s := &Session{User: u, Pages: Pages, Modes: Modes}
	if u == nil {
		return s
	}
	if m, err := ParseMode(u.Mode); err == nil {
		s.Mode = m
		s.ModeChosen = true
		s.Page = DefaultPage
		if p, err := ParsePage(u.CurrentPage); err == nil {
			s.Page = p
		}
	}
	return s
}

// ChooseMode moves the session out of the mode-selection state.
func (s *Session) ChooseMode(m Mode) {
	s.Mode = m
	s.ModeChosen = true
	if s.Page == "" {
		s.Page = DefaultPage
	}
}

// Navigate switches to page p. It fails while no mode is chosen.
func (s *Session) Navigate(p Page) error {
	if !s.ModeChosen {
		return ErrModeNotChosen
	}
	s.Page = p
	return nil
}

// Reset returns the session to the state right after login.
func (s *Session) Reset() {
	s.Mode = ""
	s.ModeChosen = false
	s.Page = ""
}
