// Package vision provides a digitizer adapter that reads scanned form
// images with a vision-capable chat model.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/formgate/formgate-cli/internal/core/domain"
	"github.com/formgate/formgate-cli/internal/core/ports/driven"
)

// Ensure Digitizer implements the interface.
var _ driven.Digitizer = (*Digitizer)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second
	DefaultRate    = 5 // requests per second
)

// supportedMIMETypes are the image formats the vision endpoint accepts.
// Anything else is rejected before a request is made.
var supportedMIMETypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/gif":  true,
}

const digitizePrompt = `Read this bank form image and transcribe it.

Return two sections separated by a line containing only "---".

Section 1: the complete raw text of the form, preserving field labels and
their values exactly as written. Keep empty fields as "label:" with nothing
after the colon.

Section 2: brief layout hints (tables, checkboxes, signature boxes, which
regions the values came from). This section may be empty.`

// Config holds configuration for the vision digitizer.
type Config struct {
	// APIKey is the API key (required for hosted endpoints).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	BaseURL string

	// Model is the vision-capable chat model (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// RequestsPerSecond throttles API calls (default: 5).
	RequestsPerSecond float64
}

// Digitizer turns scanned form images into raw text plus layout hints.
type Digitizer struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
	apiKey  string
	model   string
}

// visionRequest is the chat completions request with image content.
type visionRequest struct {
	Model       string          `json:"model"`
	Messages    []visionMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature,omitempty"`
}

type visionMessage struct {
	Role    string       `json:"role"`
	Content []visionPart `json:"content"`
}

type visionPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

// visionResponse is the chat completions response format.
type visionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewDigitizer creates a new vision-backed digitizer.
func NewDigitizer(cfg Config) (*Digitizer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("vision: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRate
	}

	return &Digitizer{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Digitize extracts raw text and layout hints from the document bytes.
// Plain text documents pass through untouched.
func (d *Digitizer) Digitize(ctx context.Context, document []byte, mimeType string) (string, string, error) {
	if mimeType == "text/plain" {
		return string(document), "", nil
	}
	if !supportedMIMETypes[mimeType] {
		return "", "", fmt.Errorf("vision: %w: %s", domain.ErrUnsupportedFormat, mimeType)
	}
	if len(document) == 0 {
		return "", "", fmt.Errorf("vision: %w: empty document", domain.ErrDigitization)
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return "", "", fmt.Errorf("wait for rate limiter: %w", err)
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s",
		mimeType, base64.StdEncoding.EncodeToString(document))

	reqBody := visionRequest{
		Model: d.model,
		Messages: []visionMessage{
			{
				Role: "user",
				Content: []visionPart{
					{Type: "text", Text: digitizePrompt},
					{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
				},
			},
		},
		MaxTokens:   3000,
		Temperature: 0.1,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		d.baseURL+"/chat/completions",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.apiKey)

	resp, err := d.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", "", fmt.Errorf("vision: %w: %w", domain.ErrLLMTimeout, err)
		}
		return "", "", fmt.Errorf("vision: %w: %w", domain.ErrDigitization, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", "", fmt.Errorf("vision: %w", domain.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("vision: %w: status %d: %s", domain.ErrDigitization, resp.StatusCode, string(body))
	}

	var visionResp visionResponse
	if err := json.Unmarshal(body, &visionResp); err != nil {
		return "", "", fmt.Errorf("vision: %w: %w", domain.ErrMalformedResponse, err)
	}
	if visionResp.Error != nil {
		return "", "", fmt.Errorf("vision: %w: %s", domain.ErrDigitization, visionResp.Error.Message)
	}
	if len(visionResp.Choices) == 0 {
		return "", "", fmt.Errorf("vision: %w: no response choices returned", domain.ErrMalformedResponse)
	}

	rawText, layoutHints := splitTranscript(visionResp.Choices[0].Message.Content)
	if strings.TrimSpace(rawText) == "" {
		return "", "", fmt.Errorf("vision: %w: empty transcription", domain.ErrDigitization)
	}

	return rawText, layoutHints, nil
}

// splitTranscript separates the transcription from the layout hints on the
// "---" divider. A reply without a divider is all transcription.
func splitTranscript(reply string) (string, string) {
	parts := strings.SplitN(reply, "\n---\n", 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(reply), ""
}

// ModelName returns the vision model in use.
func (d *Digitizer) ModelName() string {
	return d.model
}

// Close releases resources.
func (d *Digitizer) Close() error {
	return nil
}
