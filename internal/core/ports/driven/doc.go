// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Collaborator Ports
//
// The three external collaborators of the validation pipeline are modelled
// as narrow capability interfaces so that model providers can be swapped
// without touching core logic:
//
//   - Digitizer: turns document bytes into raw text (external OCR)
//   - FieldExtractor: turns raw text into structured fields (external LLM)
//   - Reconciler: judges a field value against policy text (external LLM)
//
// # Infrastructure Ports
//
//   - EmbeddingService: generates vector embeddings for index and queries
//   - PolicyStore: policy chunk persistence
//   - ReportStore: validation report persistence
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
