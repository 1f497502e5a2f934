// huggingface.go calls a summarization model on the Hugging Face inference API.
package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultHuggingFaceModel is a multilingual abstractive summarizer.
	DefaultHuggingFaceModel = "csebuetnlp/mT5_multilingual_XLSum"
	// DefaultHuggingFaceURL is the inference endpoint prefix; the model id is appended.
	DefaultHuggingFaceURL = "https://api-inference.huggingface.co/models/"
)

// HuggingFace summarizes with a hosted seq2seq model.
type HuggingFace struct {
	token      string
	endpoint   string
	model      string
	httpClient *http.Client
}

// NewHuggingFace creates a Hugging Face summarizer. It returns nil when no
// token is set.
func NewHuggingFace(token, model string) *HuggingFace {
	if token == "" {
		return nil
	}
	if model == "" {
		model = DefaultHuggingFaceModel
	}
	return &HuggingFace{
		token:    token,
		endpoint: DefaultHuggingFaceURL + model,
		model:    model,
		httpClient: &http.Client{
			// wait_for_model can hold the request while a cold model loads
			Timeout: 180 * time.Second,
		},
	}
}

// WithEndpoint overrides the full inference URL.
func (s *HuggingFace) WithEndpoint(url string) *HuggingFace {
	s.endpoint = url
	return s
}

// Name identifies the backend.
func (s *HuggingFace) Name() string { return "huggingface" }

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
	Options    hfOptions    `json:"options"`
}

type hfParameters struct {
	MaxLength int  `json:"max_length"`
	DoSample  bool `json:"do_sample"`
}

type hfOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type hfOutput struct {
	SummaryText   string `json:"summary_text"`
	GeneratedText string `json:"generated_text"`
	Error         string `json:"error"`
}

// Summarize posts the text to the inference API.
func (s *HuggingFace) Summarize(ctx context.Context, text string) (*Result, error) {
	jsonBody, err := json.Marshal(hfRequest{
		Inputs:     truncate(text),
		Parameters: hfParameters{MaxLength: 200, DoSample: false},
		Options:    hfOptions{WaitForModel: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference API returned %d: %s", resp.StatusCode, string(body))
	}

	summary, err := parseHFOutput(body)
	if err != nil {
		return nil, err
	}
	return &Result{Summary: summary, Model: s.model}, nil
}

// parseHFOutput accepts both shapes the inference API produces: a list of
// outputs or a single object.
func parseHFOutput(body []byte) (string, error) {
	var outputs []hfOutput
	if err := json.Unmarshal(body, &outputs); err == nil {
		if len(outputs) == 0 {
			return "", fmt.Errorf("unexpected output: empty list")
		}
		return pickHFText(outputs[0], body)
	}

	var single hfOutput
	if err := json.Unmarshal(body, &single); err != nil {
		return "", fmt.Errorf("unexpected output: %s", string(body))
	}
	if single.Error != "" {
		return "", fmt.Errorf("inference API error: %s", single.Error)
	}
	return pickHFText(single, body)
}

func pickHFText(o hfOutput, raw []byte) (string, error) {
	switch {
	case o.SummaryText != "":
		return strings.TrimSpace(o.SummaryText), nil
	case o.GeneratedText != "":
		return strings.TrimSpace(o.GeneratedText), nil
	default:
		return "", fmt.Errorf("unexpected output: %s", string(raw))
	}
}
