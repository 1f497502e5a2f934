// Package voice reads summaries aloud via a text-to-speech API.
//
// Go Pattern: We use the standard net/http package to make API calls.
// Go's http.Client gives us full control over timeouts and connection reuse.
//
// The OpenAI speech endpoint takes JSON and answers with raw MP3 bytes, which
// we store under the audio directory with a random name.
package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultEndpoint is the OpenAI text-to-speech URL.
	DefaultEndpoint = "https://api.openai.com/v1/audio/speech"
	DefaultModel    = "tts-1"
	DefaultVoice    = "alloy"

	// maxInputChars is the speech API's input limit.
	maxInputChars = 4096
)

// speechRequest is the JSON body of the speech endpoint.
type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
}

// Synthesizer turns text into MP3 files.
type Synthesizer struct {
	apiKey     string
	endpoint   string
	model      string
	voice      string
	dir        string
	httpClient *http.Client
}

// NewSynthesizer creates a Synthesizer that writes files into dir.
func NewSynthesizer(apiKey, model, voice, dir string) *Synthesizer {
	if model == "" {
		model = DefaultModel
	}
	if voice == "" {
		voice = DefaultVoice
	}
	return &Synthesizer{
		apiKey:   apiKey,
		endpoint: DefaultEndpoint,
		model:    model,
		voice:    voice,
		dir:      dir,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

// WithEndpoint overrides the speech URL.
func (s *Synthesizer) WithEndpoint(url string) *Synthesizer {
	s.endpoint = url
	return s
}

// IsConfigured returns true if the API key is set.
func (s *Synthesizer) IsConfigured() bool {
	return s != nil && s.apiKey != ""
}

// Dir returns the directory audio files are written to.
func (s *Synthesizer) Dir() string {
	return s.dir
}

// Synthesize converts text to speech and returns the path of the MP3 file.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) (string, error) {
	if !s.IsConfigured() {
		return "", fmt.Errorf("text-to-speech not configured; set OPENAI_API_KEY environment variable")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("nothing to synthesize")
	}
	if r := []rune(text); len(r) > maxInputChars {
		text = string(r[:maxInputChars])
	}

	jsonBody, err := json.Marshal(speechRequest{
		Model:          s.model,
		Input:          text,
		Voice:          s.voice,
		ResponseFormat: "mp3",
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("speech API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("speech API returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create audio dir: %w", err)
	}

	path := filepath.Join(s.dir, uuid.New().String()+".mp3")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create audio file: %w", err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close audio file: %w", err)
	}

	return path, nil
}

var fileNamePattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.mp3$`)

// Resolve maps a public file name back to a path inside the audio dir.
// Only names this package generated are accepted.
func (s *Synthesizer) Resolve(name string) (string, error) {
	if !fileNamePattern.MatchString(name) {
		return "", fmt.Errorf("invalid audio file name")
	}
	return filepath.Join(s.dir, name), nil
}
