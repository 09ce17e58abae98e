package driving

import (
	"context"

	"github.com/formgate/formgate-cli/internal/core/domain"
)

// ExtractionCoordinator turns a source document into an ExtractedFormRecord.
type ExtractionCoordinator interface {
	// ExtractFromDocument digitizes the document and derives the record.
	ExtractFromDocument(ctx context.Context, document []byte, mimeType string) (*domain.ExtractedFormRecord, error)

	// ExtractFromText derives the record from already-digitized text.
	ExtractFromText(ctx context.Context, rawText, layoutHints string) (*domain.ExtractedFormRecord, error)
}

// ValidationEngine produces a ValidationReport from an extracted record.
type ValidationEngine interface {
	// Validate checks every field of the record against the policy corpus
	// and appends a document-level finding. A cancelled context yields a
	// report with the remaining fields marked indeterminate, never an error.
	Validate(ctx context.Context, record domain.ExtractedFormRecord) (*domain.ValidationReport, error)
}

// IndexBuilder rebuilds the semantic index from the policy corpus.
type IndexBuilder interface {
	// Rebuild loads the corpus, chunks it, embeds it and swaps in a fresh
	// index snapshot. Build failures are surfaced unmodified.
	Rebuild(ctx context.Context) (chunks int, err error)
}

// ReportAssembler persists a report and renders it for humans.
type ReportAssembler interface {
	// Assemble serialises and persists the report artifact.
	Assemble(ctx context.Context, report domain.ValidationReport) (path string, err error)

	// Render produces the human-readable text rendering of a report.
	Render(report domain.ValidationReport) string
}
