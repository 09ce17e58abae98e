package driven

import "context"

// RawField is a field as returned by the extraction collaborator, before
// the coordinator normalises it. Names are discovered per document, not
// drawn from a fixed schema.
type RawField struct {
	// Name is the field label as the collaborator saw it.
	Name string

	// Value is the field content. Empty means unfilled.
	Value string

	// Confidence is the collaborator's confidence. The coordinator clamps
	// it into [0,1].
	Confidence float64

	// SourceSpan optionally references the layout region.
	SourceSpan string
}

// FieldExtractor derives structured fields from raw document text.
// It is an external collaborator (language model) treated as a black box.
//
// Errors wrap domain.ErrLLMCall, or one of its specialisations
// (domain.ErrRateLimited, domain.ErrMalformedResponse, domain.ErrLLMTimeout).
type FieldExtractor interface {
	// ExtractFields returns every field discovered in the text, in document
	// order, along with a best guess at the form type (may be empty).
	ExtractFields(ctx context.Context, rawText, layoutHints string) (fields []RawField, formTypeGuess string, err error)

	// Close releases resources.
	Close() error
}
