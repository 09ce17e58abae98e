package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/formgate/formgate-cli/internal/core/domain"
	"github.com/formgate/formgate-cli/internal/core/ports/driven"
	"github.com/formgate/formgate-cli/internal/core/ports/driving"
	"github.com/formgate/formgate-cli/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexBuilder = (*IndexService)(nil)

// IndexService coordinates the index-build path: load the corpus, build a
// fresh index snapshot (embedding as needed) and persist the embedded
// chunks so later runs can restore the index without re-embedding.
type IndexService struct {
	source driven.CorpusSource
	store  driven.PolicyStore
	index  driven.SemanticIndex
}

// NewIndexService creates a new index builder.
// The store is optional; when nil, chunks are not persisted.
func NewIndexService(source driven.CorpusSource, store driven.PolicyStore, index driven.SemanticIndex) *IndexService {
	return &IndexService{
		source: source,
		store:  store,
		index:  index,
	}
}

// Rebuild loads the corpus, chunks and embeds it, and atomically swaps in
// the new snapshot. Build failures are surfaced unmodified and leave both
// the previous snapshot and the previously persisted chunks untouched.
func (s *IndexService) Rebuild(ctx context.Context) (int, error) {
	logger.Section("Index Rebuild")

	chunks, err := s.source.LoadChunks(ctx)
	if err != nil {
		return 0, fmt.Errorf("load corpus: %w", err)
	}
	logger.Info("Loaded %d chunks from corpus", len(chunks))

	if err := s.index.Build(ctx, chunks); err != nil {
		return 0, err
	}

	if s.store != nil {
		// Build mutated chunks in place with their embeddings.
		if err := s.store.ReplaceChunks(ctx, chunks); err != nil {
			return 0, fmt.Errorf("persist chunks: %w", err)
		}
	}

	return len(chunks), nil
}

// Restore rebuilds the index from persisted chunks, skipping embedding.
// Returns domain.ErrNotFound when nothing has been persisted yet.
func (s *IndexService) Restore(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, domain.ErrNotFound
	}

	chunks, err := s.store.ListChunks(ctx)
	if err != nil {
		return 0, fmt.Errorf("list chunks: %w", err)
	}
	if len(chunks) == 0 {
		return 0, domain.ErrNotFound
	}

	if err := s.index.Build(ctx, chunks); err != nil {
		if errors.Is(err, domain.ErrIndexBuild) {
			return 0, err
		}
		return 0, fmt.Errorf("restore index: %w", err)
	}

	logger.Info("Restored index from %d persisted chunks", len(chunks))
	return len(chunks), nil
}
