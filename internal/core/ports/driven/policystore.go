package driven

import (
	"context"

	"github.com/formgate/formgate-cli/internal/core/domain"
)

// PolicyStore persists policy chunks, including their embeddings, so the
// semantic index can be rebuilt without re-embedding an unchanged corpus.
type PolicyStore interface {
	// ReplaceChunks atomically replaces the stored chunk set.
	// Chunk sets are immutable between full rebuilds.
	ReplaceChunks(ctx context.Context, chunks []domain.PolicyChunk) error

	// ListChunks returns all stored chunks in insertion order.
	ListChunks(ctx context.Context) ([]domain.PolicyChunk, error)

	// Close releases resources.
	Close() error
}
