package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formgate/formgate-cli/internal/core/domain"
)

func newTestExtractor(t *testing.T, handler http.HandlerFunc) *FieldExtractor {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	extractor, err := NewFieldExtractor(testConfig(server))
	require.NoError(t, err)
	return extractor
}

func TestExtractFields_ParsesModelReply(t *testing.T) {
	reply := `{
		"form_type": "Personal Loan Application",
		"fields": [
			{"name": "Full Name", "value": "Priya Sharma", "confidence": 0.95, "source_span": "top section"},
			{"name": "Monthly Income", "value": "85000", "confidence": 0.8, "source_span": ""}
		]
	}`
	extractor := newTestExtractor(t, chatReply(t, reply))

	fields, formType, err := extractor.ExtractFields(context.Background(), "form text", "")

	require.NoError(t, err)
	assert.Equal(t, "Personal Loan Application", formType)
	require.Len(t, fields, 2)
	assert.Equal(t, "Full Name", fields[0].Name)
	assert.Equal(t, "Priya Sharma", fields[0].Value)
	assert.Equal(t, 0.95, fields[0].Confidence)
	assert.Equal(t, "top section", fields[0].SourceSpan)
}

func TestExtractFields_TranslatesUnfilledMarker(t *testing.T) {
	reply := `{"form_type": "KYC", "fields": [
		{"name": "PAN", "value": "UNFILLED", "confidence": 0.9, "source_span": ""},
		{"name": "Aadhaar", "value": "1234", "confidence": 0.9, "source_span": ""}
	]}`
	extractor := newTestExtractor(t, chatReply(t, reply))

	fields, _, err := extractor.ExtractFields(context.Background(), "form text", "")

	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Empty(t, fields[0].Value, "the unfilled sentinel becomes an empty value")
	assert.Equal(t, "1234", fields[1].Value)
}

func TestExtractFields_MarkdownWrappedReply(t *testing.T) {
	reply := "Here is the extraction:\n```json\n" +
		`{"form_type": "KYC", "fields": [{"name": "PAN", "value": "X", "confidence": 1, "source_span": ""}]}` +
		"\n```"
	extractor := newTestExtractor(t, chatReply(t, reply))

	fields, formType, err := extractor.ExtractFields(context.Background(), "form text", "")

	require.NoError(t, err)
	assert.Equal(t, "KYC", formType)
	require.Len(t, fields, 1)
}

func TestExtractFields_IncludesLayoutHints(t *testing.T) {
	var prompt string
	extractor := newTestExtractor(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		prompt = req.Messages[len(req.Messages)-1].Content
		chatReply(t, `{"form_type": "KYC", "fields": []}`)(w, r)
	})

	_, _, err := extractor.ExtractFields(context.Background(), "form text", "two column layout")

	require.NoError(t, err)
	assert.Contains(t, prompt, "LAYOUT HINTS")
	assert.Contains(t, prompt, "two column layout")
}

func TestExtractFields_OmitsHintSectionWhenEmpty(t *testing.T) {
	var prompt string
	extractor := newTestExtractor(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		prompt = req.Messages[len(req.Messages)-1].Content
		chatReply(t, `{"form_type": "KYC", "fields": []}`)(w, r)
	})

	_, _, err := extractor.ExtractFields(context.Background(), "form text", "")

	require.NoError(t, err)
	assert.NotContains(t, prompt, "LAYOUT HINTS")
}

func TestExtractFields_NonJSONReply(t *testing.T) {
	extractor := newTestExtractor(t, chatReply(t, "I could not read the form."))

	_, _, err := extractor.ExtractFields(context.Background(), "form text", "")

	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestExtractFields_RateLimitPropagates(t *testing.T) {
	extractor := newTestExtractor(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, _, err := extractor.ExtractFields(context.Background(), "form text", "")

	assert.ErrorIs(t, err, domain.ErrRateLimited)
}
