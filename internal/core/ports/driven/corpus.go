package driven

import (
	"context"

	"github.com/formgate/formgate-cli/internal/core/domain"
)

// CorpusSource produces the chunked policy corpus the index is built from.
// Corpus generation itself (scraping, authoring) is out of scope; the
// source only reads a static collection of tagged policy documents.
type CorpusSource interface {
	// LoadChunks reads the corpus and returns its chunks in a stable order,
	// without embeddings.
	LoadChunks(ctx context.Context) ([]domain.PolicyChunk, error)
}
