package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/formgate/formgate-cli/internal/core/domain"
	"github.com/formgate/formgate-cli/internal/core/ports/driven"
	"github.com/formgate/formgate-cli/internal/core/ports/driving"
	"github.com/formgate/formgate-cli/internal/logger"
)

// Ensure ExtractionService implements the interface.
var _ driving.ExtractionCoordinator = (*ExtractionService)(nil)

// ExtractionService coordinates raw-text acquisition and structured-field
// derivation into a canonical ExtractedFormRecord.
//
// Both steps are delegated to external collaborators; the service's own
// contract is normalisation: drop unnamed fields, clamp confidence,
// deduplicate names (last occurrence wins) and digest the source text.
type ExtractionService struct {
	digitizer driven.Digitizer
	extractor driven.FieldExtractor
}

// NewExtractionService creates a new extraction coordinator.
func NewExtractionService(digitizer driven.Digitizer, extractor driven.FieldExtractor) *ExtractionService {
	return &ExtractionService{
		digitizer: digitizer,
		extractor: extractor,
	}
}

// ExtractFromDocument digitizes the document and derives the record.
func (s *ExtractionService) ExtractFromDocument(
	ctx context.Context, document []byte, mimeType string,
) (*domain.ExtractedFormRecord, error) {
	if s.digitizer == nil {
		return nil, fmt.Errorf("%w: digitizer not configured", domain.ErrExtraction)
	}

	logger.Section("Field Extraction")
	logger.Debug("Digitizing document: %d bytes, mime=%s", len(document), mimeType)

	rawText, layoutHints, err := s.digitizer.Digitize(ctx, document, mimeType)
	if err != nil {
		// Digitization failures are surfaced, not retried silently.
		return nil, fmt.Errorf("%w: digitize: %w", domain.ErrExtraction, err)
	}

	return s.ExtractFromText(ctx, rawText, layoutHints)
}

// ExtractFromText derives the record from already-digitized text.
func (s *ExtractionService) ExtractFromText(
	ctx context.Context, rawText, layoutHints string,
) (*domain.ExtractedFormRecord, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, fmt.Errorf("%w: raw text is empty", domain.ErrExtraction)
	}
	if s.extractor == nil {
		return nil, fmt.Errorf("%w: field extractor not configured", domain.ErrExtraction)
	}

	logger.Debug("Extracting fields from %d characters of text", len(rawText))

	rawFields, formType, err := s.extractor.ExtractFields(ctx, rawText, layoutHints)
	if err != nil {
		return nil, fmt.Errorf("%w: extract fields: %w", domain.ErrExtraction, err)
	}

	record := &domain.ExtractedFormRecord{
		FormTypeGuess: strings.TrimSpace(formType),
		Fields:        NormaliseFields(rawFields),
		RawTextDigest: digest(rawText),
	}

	logger.Info("Extracted %d fields (form type guess: %q)", len(record.Fields), record.FormTypeGuess)
	return record, nil
}

// NormaliseFields converts collaborator output into canonical fields:
// unnamed fields are dropped, confidence is clamped into [0,1] and
// duplicate names collapse to a single field (last occurrence wins, at the
// position the name was first seen). Normalisation is idempotent.
func NormaliseFields(raw []driven.RawField) []domain.ExtractedField {
	fields := make([]domain.ExtractedField, 0, len(raw))
	position := make(map[string]int, len(raw))

	for _, rf := range raw {
		name := strings.TrimSpace(rf.Name)
		if name == "" {
			continue
		}

		field := domain.ExtractedField{
			Name:       name,
			Value:      strings.TrimSpace(rf.Value),
			Confidence: clamp01(rf.Confidence),
			SourceSpan: rf.SourceSpan,
		}

		if pos, seen := position[name]; seen {
			fields[pos] = field
			continue
		}
		position[name] = len(fields)
		fields = append(fields, field)
	}

	return fields
}

// clamp01 clamps v into [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// digest computes the SHA-256 hex digest of the source text.
func digest(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
