// Package domain defines the core business entities for FormGate.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - PolicyChunk: A retrievable unit of bank policy text
//   - ExtractedFormRecord: The canonical result of form field extraction
//   - RetrievalResult: A ranked semantic search hit
//   - ValidationFinding / ValidationReport: The compliance verdict
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
