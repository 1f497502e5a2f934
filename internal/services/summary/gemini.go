// gemini.go summarizes with Google Gemini through the genai SDK.
package summary

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// Gemini summarizes with a Gemini model.
type Gemini struct {
	apiKey string
	model  string
}

// NewGemini creates a Gemini summarizer. It returns nil when no API key is set.
func NewGemini(apiKey, model string) *Gemini {
	if apiKey == "" {
		return nil
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{apiKey: apiKey, model: model}
}

// Name identifies the backend.
func (s *Gemini) Name() string { return "gemini" }

// Summarize sends the prompt to Gemini and joins the text parts of the
// first candidate.
func (s *Gemini) Summarize(ctx context.Context, text string) (*Result, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, s.model, genai.Text(buildPrompt(text)), nil)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	return &Result{Summary: strings.TrimSpace(sb.String()), Model: s.model}, nil
}
