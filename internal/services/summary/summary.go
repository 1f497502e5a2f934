// Package summary turns extracted contract text into a plain-language summary.
//
// Every backend implements the Summarizer interface, so handlers, the
// renderer and the risky-term scanner never know which one is active. The
// Registry picks a backend for a session mode and falls back to the
// Placeholder when a remote backend is not configured.
package summary

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/Shimizu-Technology/legallite-api/internal/models"
)

// PlaceholderText is the canned summary returned in demo mode and used when
// a remote model fails.
const PlaceholderText = "Demo Summary: Simplified content goes here."

// maxInputChars caps the text sent to remote models to stay within token limits.
const maxInputChars = 15000

// Summarizer produces a summary of plain text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (*Result, error)
	Name() string
}

// Result holds the generated summary.
type Result struct {
	Summary string `json:"summary"`
	Model   string `json:"model"`
}

// Placeholder is the demo-mode summarizer. It never fails.
type Placeholder struct{}

// Summarize returns PlaceholderText regardless of input.
func (Placeholder) Summarize(ctx context.Context, text string) (*Result, error) {
	return &Result{Summary: PlaceholderText, Model: "placeholder"}, nil
}

// Name identifies the backend.
func (Placeholder) Name() string { return "placeholder" }

// Registry maps session modes to summarizers.
type Registry struct {
	backends map[models.Mode]Summarizer
	fallback Summarizer
}

// NewRegistry creates a registry whose demo mode (and every unconfigured
// mode) resolves to the Placeholder.
func NewRegistry() *Registry {
	return &Registry{
		backends: map[models.Mode]Summarizer{models.ModeDemo: Placeholder{}},
		fallback: Placeholder{},
	}
}

// Register binds a summarizer to a mode.
func (r *Registry) Register(mode models.Mode, s Summarizer) {
	r.backends[mode] = s
	log.Printf("✅ Summarizer %q registered for mode %s", s.Name(), mode)
}

// For returns the summarizer for mode.
func (r *Registry) For(mode models.Mode) Summarizer {
	if s, ok := r.backends[mode]; ok {
		return s
	}
	return r.fallback
}

// Configured reports whether mode has a real backend of its own.
func (r *Registry) Configured(mode models.Mode) bool {
	_, ok := r.backends[mode]
	return ok
}

// Summarize runs the backend for mode. When that backend fails the error is
// returned alongside a placeholder result so callers can keep going.
func (r *Registry) Summarize(ctx context.Context, mode models.Mode, text string) (*Result, Summarizer, error) {
	s := r.For(mode)
	result, err := s.Summarize(ctx, text)
	if err == nil {
		return result, s, nil
	}

	log.Printf("⚠️  Summarizer %s failed, using placeholder: %v", s.Name(), err)
	fallback, _ := r.fallback.Summarize(ctx, text)
	return fallback, r.fallback, fmt.Errorf("%s summarizer failed: %w", s.Name(), err)
}

// truncate shortens very long documents before they are sent to a model.
func truncate(text string) string {
	if len(text) <= maxInputChars {
		return text
	}
	cut := maxInputChars
	// Don't split a UTF-8 sequence.
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "\n\n[Document truncated due to length...]"
}

// buildPrompt is shared by the chat-style backends.
func buildPrompt(text string) string {
	return fmt.Sprintf(`Simplify the following legal document for a non-lawyer.

Write a short plain-English summary (one or two paragraphs). Mention the
parties, their main obligations, payment terms, deadlines, and any penalties
or termination conditions. Respond with plain text only.

**Document:**
%s`, strings.TrimSpace(truncate(text)))
}
