package driven

import (
	"context"

	"github.com/formgate/formgate-cli/internal/core/domain"
)

// SemanticIndex serves top-K similarity search over embedded policy chunks.
//
// Rebuilding is an atomic snapshot swap: queries in flight keep using the
// snapshot they started with, and no partial-index read is ever observable.
type SemanticIndex interface {
	// Build embeds any chunk lacking an embedding, constructs a new index
	// over the full set and atomically swaps it in. Fails wrapping
	// domain.ErrIndexBuild when the chunk set is empty or embedding
	// dimensions are inconsistent; a failed build leaves the previous
	// snapshot serving.
	Build(ctx context.Context, chunks []domain.PolicyChunk) error

	// Query returns up to k chunks ranked by descending cosine similarity.
	// Ties are broken by corpus insertion order, so repeated calls return
	// the same ordered result set. Fewer than k results are returned only
	// when the corpus itself holds fewer than k chunks.
	// Returns domain.ErrIndexNotReady before the first successful Build.
	Query(ctx context.Context, vector []float32, k int) ([]domain.RetrievalResult, error)

	// Size returns the number of chunks in the current snapshot.
	Size() int
}
