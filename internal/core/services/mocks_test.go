package services

import (
	"context"
	"sync"

	"github.com/formgate/formgate-cli/internal/core/domain"
	"github.com/formgate/formgate-cli/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	embedding []float32
	embedErr  error
	dims      int
}

func (m *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedding, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = m.embedding
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return 4
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

// mockIndex implements driven.SemanticIndex for testing.
type mockIndex struct {
	results  []domain.RetrievalResult
	queryErr error
	buildErr error
	built    []domain.PolicyChunk
}

func (m *mockIndex) Build(_ context.Context, chunks []domain.PolicyChunk) error {
	if m.buildErr != nil {
		return m.buildErr
	}
	m.built = chunks
	return nil
}

func (m *mockIndex) Query(_ context.Context, _ []float32, k int) ([]domain.RetrievalResult, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	if k > len(m.results) {
		return m.results, nil
	}
	return m.results[:k], nil
}

func (m *mockIndex) Size() int {
	return len(m.built)
}

// mockReconciler implements driven.Reconciler for testing.
// Field checks run concurrently, so call recording is guarded.
type mockReconciler struct {
	mu           sync.Mutex
	verdict      driven.Verdict
	err          error
	verdictFor   map[string]driven.Verdict // keyed by field name
	errFor       map[string]error
	calledFields []string
}

func (m *mockReconciler) Reconcile(_ context.Context, fieldName, _, _ string) (driven.Verdict, error) {
	m.mu.Lock()
	m.calledFields = append(m.calledFields, fieldName)
	m.mu.Unlock()
	if err, ok := m.errFor[fieldName]; ok {
		return driven.Verdict{}, err
	}
	if v, ok := m.verdictFor[fieldName]; ok {
		return v, nil
	}
	if m.err != nil {
		return driven.Verdict{}, m.err
	}
	return m.verdict, nil
}

func (m *mockReconciler) Close() error {
	return nil
}

// mockDigitizer implements driven.Digitizer for testing.
type mockDigitizer struct {
	rawText     string
	layoutHints string
	err         error
}

func (m *mockDigitizer) Digitize(_ context.Context, _ []byte, _ string) (string, string, error) {
	if m.err != nil {
		return "", "", m.err
	}
	return m.rawText, m.layoutHints, nil
}

func (m *mockDigitizer) Close() error {
	return nil
}

// mockExtractor implements driven.FieldExtractor for testing.
type mockExtractor struct {
	fields   []driven.RawField
	formType string
	err      error
}

func (m *mockExtractor) ExtractFields(_ context.Context, _, _ string) ([]driven.RawField, string, error) {
	if m.err != nil {
		return nil, "", m.err
	}
	return m.fields, m.formType, nil
}

func (m *mockExtractor) Close() error {
	return nil
}

// mockCorpusSource implements driven.CorpusSource for testing.
type mockCorpusSource struct {
	chunks []domain.PolicyChunk
	err    error
}

func (m *mockCorpusSource) LoadChunks(_ context.Context) ([]domain.PolicyChunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.chunks, nil
}

// evidence builds a single-hit evidence set for tests.
func evidence(category string, score float64) []domain.RetrievalResult {
	return []domain.RetrievalResult{
		{
			Chunk: domain.PolicyChunk{
				ID:             "chunk-1",
				SourceDocument: "policy_personal_loan.txt",
				Text:           "Applicants must be 18 or older.",
				Category:       category,
			},
			ChunkID: "chunk-1",
			Score:   score,
			Rank:    1,
		},
	}
}
