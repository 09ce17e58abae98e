package cli

import (
	"context"
	"testing"
	"time"

	"github.com/formgate/formgate-cli/internal/adapters/driven/storage/memory"
	"github.com/formgate/formgate-cli/internal/core/domain"
)

// mockExtraction returns a fixed record.
type mockExtraction struct {
	record *domain.ExtractedFormRecord
	err    error

	gotText     string
	gotMIMEType string
}

func (m *mockExtraction) ExtractFromDocument(_ context.Context, _ []byte, mimeType string) (*domain.ExtractedFormRecord, error) {
	m.gotMIMEType = mimeType
	return m.record, m.err
}

func (m *mockExtraction) ExtractFromText(_ context.Context, rawText, _ string) (*domain.ExtractedFormRecord, error) {
	m.gotText = rawText
	return m.record, m.err
}

// mockValidation returns a fixed report.
type mockValidation struct {
	report *domain.ValidationReport
	err    error
}

func (m *mockValidation) Validate(_ context.Context, _ domain.ExtractedFormRecord) (*domain.ValidationReport, error) {
	return m.report, m.err
}

// mockIndexer counts rebuilds.
type mockIndexer struct {
	chunks   int
	err      error
	rebuilds int
}

func (m *mockIndexer) Rebuild(_ context.Context) (int, error) {
	m.rebuilds++
	return m.chunks, m.err
}

// mockReporter renders a fixed string.
type mockReporter struct {
	path     string
	rendered string
	err      error
}

func (m *mockReporter) Assemble(_ context.Context, _ domain.ValidationReport) (string, error) {
	return m.path, m.err
}

func (m *mockReporter) Render(_ domain.ValidationReport) string {
	return m.rendered
}

func sampleRecord() *domain.ExtractedFormRecord {
	return &domain.ExtractedFormRecord{
		FormTypeGuess: "personal loan",
		Fields: []domain.ExtractedField{
			{Name: "Full Name", Value: "Priya Sharma", Confidence: 0.95},
			{Name: "Age", Value: "25", Confidence: 0.9},
		},
		RawTextDigest: "digest",
	}
}

func sampleValidationReport() *domain.ValidationReport {
	return &domain.ValidationReport{
		ID:            "report-1",
		OverallStatus: domain.StatusCompliant,
		Findings: []domain.ValidationFinding{
			{FieldName: "Age", Status: domain.StatusSatisfied,
				Evidence: []domain.RetrievalResult{}, Explanation: "above the minimum age"},
		},
		GeneratedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Record:      *sampleRecord(),
	}
}

// setupTestServices installs working mocks and returns a cleanup restoring
// the previous services.
func setupTestServices(t *testing.T) func() {
	t.Helper()

	oldExtraction := extractionService
	oldValidation := validationService
	oldIndex := indexService
	oldReport := reportService
	oldStore := reportStore
	oldConfig := configStore
	oldWatch := corpusWatch

	extractionService = &mockExtraction{record: sampleRecord()}
	validationService = &mockValidation{report: sampleValidationReport()}
	indexService = &mockIndexer{chunks: 42}
	reportService = &mockReporter{path: "/tmp/report.json", rendered: "RENDERED REPORT"}
	reportStore = memory.NewReportStore()
	configStore = nil
	corpusWatch = nil

	return func() {
		extractionService = oldExtraction
		validationService = oldValidation
		indexService = oldIndex
		reportService = oldReport
		reportStore = oldStore
		configStore = oldConfig
		corpusWatch = oldWatch
	}
}
