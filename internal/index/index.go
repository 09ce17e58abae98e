// Package index implements the in-memory semantic index over policy chunks.
//
// Chunks and their normalised embeddings are held in a flat arena (parallel
// slices with stable positions). A rebuild constructs a complete new arena
// and swaps it in atomically, so readers always see one consistent snapshot
// and never block on a rebuild in progress.
package index

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	"github.com/formgate/formgate-cli/internal/core/domain"
	"github.com/formgate/formgate-cli/internal/core/ports/driven"
	"github.com/formgate/formgate-cli/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.SemanticIndex = (*Index)(nil)

// snapshot is one immutable generation of the index.
type snapshot struct {
	chunks     []domain.PolicyChunk
	vectors    [][]float32 // L2-normalised, parallel to chunks
	dimensions int
}

// Index is a flat cosine-similarity index with atomic snapshot swap.
type Index struct {
	embedder driven.EmbeddingService
	current  atomic.Pointer[snapshot]
}

// New creates an empty index. Query returns domain.ErrIndexNotReady until
// the first successful Build.
func New(embedder driven.EmbeddingService) *Index {
	return &Index{embedder: embedder}
}

// Build embeds chunks lacking embeddings, constructs a new arena over the
// full set and swaps it in. A failed build leaves the previous snapshot
// serving untouched.
func (ix *Index) Build(ctx context.Context, chunks []domain.PolicyChunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("%w: empty chunk set", domain.ErrIndexBuild)
	}

	// Embed only what is missing; persisted corpora arrive pre-embedded.
	var missing []int
	for i := range chunks {
		if len(chunks[i].Embedding) == 0 {
			missing = append(missing, i)
		}
	}

	if len(missing) > 0 {
		if ix.embedder == nil {
			return fmt.Errorf("%w: %d chunks lack embeddings and no embedding service is configured",
				domain.ErrIndexBuild, len(missing))
		}

		logger.Debug("Embedding %d of %d chunks", len(missing), len(chunks))
		texts := make([]string, len(missing))
		for i, idx := range missing {
			texts[i] = chunks[idx].Text
		}

		embeddings, err := ix.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("%w: embed chunks: %w", domain.ErrIndexBuild, err)
		}
		if len(embeddings) != len(missing) {
			return fmt.Errorf("%w: embedding service returned %d vectors for %d texts",
				domain.ErrIndexBuild, len(embeddings), len(missing))
		}
		for i, idx := range missing {
			chunks[idx].Embedding = embeddings[i]
		}
	}

	dims := len(chunks[0].Embedding)
	next := &snapshot{
		chunks:     make([]domain.PolicyChunk, len(chunks)),
		vectors:    make([][]float32, len(chunks)),
		dimensions: dims,
	}

	for i := range chunks {
		if len(chunks[i].Embedding) != dims {
			return fmt.Errorf("%w: chunk %s has dimension %d, expected %d",
				domain.ErrIndexBuild, chunks[i].ID, len(chunks[i].Embedding), dims)
		}
		next.chunks[i] = chunks[i]
		next.vectors[i] = normalise(chunks[i].Embedding)
	}

	ix.current.Store(next)
	logger.Info("Index snapshot swapped: %d chunks, %d dimensions", len(chunks), dims)
	return nil
}

// Query returns up to k chunks ranked by descending cosine similarity.
// Ties break by corpus insertion order, so the ordering is deterministic.
func (ix *Index) Query(ctx context.Context, vector []float32, k int) ([]domain.RetrievalResult, error) {
	snap := ix.current.Load()
	if snap == nil {
		return nil, domain.ErrIndexNotReady
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []domain.RetrievalResult{}, nil
	}
	if len(vector) != snap.dimensions {
		return nil, fmt.Errorf("%w: query has dimension %d, index has %d",
			domain.ErrInvalidInput, len(vector), snap.dimensions)
	}

	query := normalise(vector)

	type scored struct {
		pos   int
		score float64
	}
	scores := make([]scored, len(snap.vectors))
	for i, v := range snap.vectors {
		scores[i] = scored{pos: i, score: dot(query, v)}
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].pos < scores[j].pos
	})

	if k > len(scores) {
		k = len(scores)
	}

	results := make([]domain.RetrievalResult, k)
	for i := 0; i < k; i++ {
		chunk := snap.chunks[scores[i].pos]
		results[i] = domain.RetrievalResult{
			Chunk:   chunk,
			ChunkID: chunk.ID,
			Score:   scores[i].score,
			Rank:    i + 1,
		}
	}
	return results, nil
}

// Size returns the number of chunks in the current snapshot.
func (ix *Index) Size() int {
	snap := ix.current.Load()
	if snap == nil {
		return 0
	}
	return len(snap.chunks)
}

// normalise returns an L2-normalised copy of v.
// A zero vector is returned unchanged to avoid division by zero.
func normalise(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		copy(out, v)
		return out
	}
	norm := math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// dot computes the inner product of two equal-length vectors.
func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
