package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Index Build Errors. Build failures are fatal to that build and are
	// surfaced unmodified - a stale index is never served as a fixed one.

	// ErrIndexBuild indicates the semantic index could not be built.
	ErrIndexBuild = errors.New("index build failed")

	// ErrIndexNotReady indicates no index snapshot has been built yet.
	ErrIndexNotReady = errors.New("index not built")

	// Extraction Errors. These abort the run before validation starts;
	// no partial record is persisted.

	// ErrExtraction indicates the extraction stage produced no usable record.
	ErrExtraction = errors.New("extraction failed")

	// Collaborator Errors. The OCR, field-extraction and reconciliation
	// collaborators are external black boxes; their failures are classified
	// so callers can tell a rate limit from a garbage response.

	// ErrLLMCall indicates a language-model call failed.
	ErrLLMCall = errors.New("llm call failed")

	// ErrRateLimited indicates the collaborator's API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrMalformedResponse indicates the collaborator returned an
	// unparseable response.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrLLMTimeout indicates the collaborator call timed out.
	// Treated identically to any other reconciliation failure.
	ErrLLMTimeout = errors.New("llm call timed out")

	// ErrDigitization indicates the OCR collaborator could not read the
	// document.
	ErrDigitization = errors.New("digitization failed")

	// ErrUnsupportedFormat indicates the document format is not supported
	// by the OCR collaborator.
	ErrUnsupportedFormat = errors.New("unsupported document format")
)
