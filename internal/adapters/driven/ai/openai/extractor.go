package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/formgate/formgate-cli/internal/core/domain"
	"github.com/formgate/formgate-cli/internal/core/ports/driven"
)

// Ensure FieldExtractor implements the interface.
var _ driven.FieldExtractor = (*FieldExtractor)(nil)

// UnfilledMarker is the sentinel the model is told to emit for empty fields.
// It is translated to an empty value so the core sees unfilled fields
// uniformly.
const UnfilledMarker = "UNFILLED"

const extractionSystemPrompt = "You are an expert bank form analyzer. " +
	"Extract all fields from the text. Return valid JSON."

const extractionPromptTemplate = `Analyze this bank form text and extract ALL fields.

INSTRUCTIONS:
1. Identify the form type (Loan, Account, Credit Card, KYC, Insurance, etc.)
2. Extract EVERY field you see, both filled and empty
3. For each field provide the exact field name as shown, its value
   (or "UNFILLED" if empty), and your confidence between 0 and 1

FORM TEXT:
%s
%s
RETURN EXACT JSON:
{
  "form_type": "exact form type",
  "fields": [
    {"name": "field name", "value": "actual value or UNFILLED", "confidence": 0.9, "source_span": ""}
  ]
}

Be thorough. Extract every field visible.`

// extractionResult is the JSON shape the model is asked to return.
type extractionResult struct {
	FormType string `json:"form_type"`
	Fields   []struct {
		Name       string  `json:"name"`
		Value      string  `json:"value"`
		Confidence float64 `json:"confidence"`
		SourceSpan string  `json:"source_span"`
	} `json:"fields"`
}

// FieldExtractor discovers form fields in raw text using a chat model.
type FieldExtractor struct {
	client *client
}

// NewFieldExtractor creates a new OpenAI-backed field extractor.
func NewFieldExtractor(cfg Config) (*FieldExtractor, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &FieldExtractor{client: c}, nil
}

// ExtractFields returns every field the model found in the text, in the
// order the model reported them, plus its guess at the form type.
func (e *FieldExtractor) ExtractFields(ctx context.Context, rawText, layoutHints string) ([]driven.RawField, string, error) {
	hints := ""
	if layoutHints != "" {
		hints = "\nLAYOUT HINTS:\n" + layoutHints + "\n"
	}
	prompt := fmt.Sprintf(extractionPromptTemplate, rawText, hints)

	reply, err := e.client.complete(ctx, extractionSystemPrompt, prompt, 3000)
	if err != nil {
		return nil, "", fmt.Errorf("extract fields: %w", err)
	}

	raw, err := extractJSON(reply)
	if err != nil {
		return nil, "", fmt.Errorf("openai: %w", err)
	}

	var result extractionResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, "", fmt.Errorf("openai: %w: %w", domain.ErrMalformedResponse, err)
	}

	fields := make([]driven.RawField, 0, len(result.Fields))
	for _, f := range result.Fields {
		value := f.Value
		if value == UnfilledMarker {
			value = ""
		}
		fields = append(fields, driven.RawField{
			Name:       f.Name,
			Value:      value,
			Confidence: f.Confidence,
			SourceSpan: f.SourceSpan,
		})
	}

	return fields, result.FormType, nil
}

// ModelName returns the chat model in use.
func (e *FieldExtractor) ModelName() string {
	return e.client.model
}

// Close releases resources.
func (e *FieldExtractor) Close() error {
	return nil
}
