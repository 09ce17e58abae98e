package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/formgate/formgate-cli/internal/core/domain"
	"github.com/formgate/formgate-cli/internal/core/ports/driven"
	"github.com/formgate/formgate-cli/internal/logger"
)

// DefaultTopK is used when the configured top-K is not positive.
const DefaultTopK = 5

// Retriever translates a textual query into an embedding and delegates to
// the semantic index, applying the minimum-similarity cutoff. Results
// scoring strictly below the cutoff are dropped entirely, never returned
// as low-confidence hits.
type Retriever struct {
	embedder driven.EmbeddingService
	index    driven.SemanticIndex
	opts     domain.RetrievalOptions
}

// NewRetriever creates a retriever over the given index.
func NewRetriever(embedder driven.EmbeddingService, index driven.SemanticIndex, opts domain.RetrievalOptions) *Retriever {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	return &Retriever{
		embedder: embedder,
		index:    index,
		opts:     opts,
	}
}

// Options returns the configured retrieval options.
func (r *Retriever) Options() domain.RetrievalOptions {
	return r.opts
}

// Retrieve returns the most relevant policy chunks for a textual query.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]domain.RetrievalResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.RetrievalResult{}, nil
	}
	if r.embedder == nil {
		return nil, fmt.Errorf("retrieve: embedding service unavailable")
	}

	logger.Debug("Retrieve: query=%q, top_k=%d, min_similarity=%.3f", query, r.opts.TopK, r.opts.MinSimilarity)

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.index.Query(ctx, vector, r.opts.TopK)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	// A score exactly at the cutoff is kept; strictly below is dropped.
	kept := make([]domain.RetrievalResult, 0, len(hits))
	for _, hit := range hits {
		if hit.Score < r.opts.MinSimilarity {
			continue
		}
		hit.Rank = len(kept) + 1
		kept = append(kept, hit)
	}

	logger.Debug("Retrieve: %d hits, %d above threshold", len(hits), len(kept))
	return kept, nil
}
