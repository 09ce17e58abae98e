package driven

import "context"

// Digitizer turns a source document into raw text plus optional layout hints.
// It is an external collaborator (OCR engine or vision model) treated as a
// black box; the core never inspects how the text was produced.
//
// Errors wrap domain.ErrUnsupportedFormat when the MIME type cannot be
// handled, or domain.ErrDigitization for any other failure.
type Digitizer interface {
	// Digitize extracts raw text from the document bytes.
	// layoutHints is free-form and may be empty.
	Digitize(ctx context.Context, document []byte, mimeType string) (rawText, layoutHints string, err error)

	// Close releases resources.
	Close() error
}
