package domain

import "strings"

// ExtractedField is one named field discovered in a form. Field names are
// discovered per document; there is no fixed schema.
type ExtractedField struct {
	// Name is the normalised field label.
	Name string `json:"name"`

	// Value is the field content. Empty means the field was unfilled.
	Value string `json:"value"`

	// Confidence is the extraction confidence, clamped into [0,1].
	Confidence float64 `json:"confidence"`

	// SourceSpan optionally references where on the form the value was read.
	SourceSpan string `json:"source_span,omitempty"`
}

// Filled reports whether the field carries a non-blank value.
func (f ExtractedField) Filled() bool {
	return strings.TrimSpace(f.Value) != ""
}

// ExtractedFormRecord is the canonical output of the extraction stage and
// the sole input to validation.
type ExtractedFormRecord struct {
	// FormTypeGuess is the extractor's best guess at the form type.
	// May be empty when the form could not be classified.
	FormTypeGuess string `json:"form_type_guess"`

	// Fields holds the normalised fields in document order. Names are
	// unique within a record.
	Fields []ExtractedField `json:"fields"`

	// RawTextDigest is the SHA-256 hex digest of the digitized source text,
	// tying the record back to exactly what was read.
	RawTextDigest string `json:"raw_text_digest"`
}
