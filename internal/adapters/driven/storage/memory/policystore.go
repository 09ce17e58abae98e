// Package memory provides in-memory implementations of the storage ports.
// Used for tests and for running without a database file.
package memory

import (
	"context"
	"sync"

	"github.com/formgate/formgate-cli/internal/core/domain"
	"github.com/formgate/formgate-cli/internal/core/ports/driven"
)

// Ensure PolicyStore implements the interface.
var _ driven.PolicyStore = (*PolicyStore)(nil)

// PolicyStore is an in-memory implementation of driven.PolicyStore.
type PolicyStore struct {
	mu     sync.RWMutex
	chunks []domain.PolicyChunk
}

// NewPolicyStore creates a new in-memory policy store.
func NewPolicyStore() *PolicyStore {
	return &PolicyStore{}
}

// ReplaceChunks atomically replaces the stored chunk set.
func (s *PolicyStore) ReplaceChunks(_ context.Context, chunks []domain.PolicyChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = make([]domain.PolicyChunk, len(chunks))
	copy(s.chunks, chunks)
	return nil
}

// ListChunks returns all stored chunks in insertion order.
func (s *PolicyStore) ListChunks(_ context.Context) ([]domain.PolicyChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.PolicyChunk, len(s.chunks))
	copy(out, s.chunks)
	return out, nil
}

// Close releases resources.
func (s *PolicyStore) Close() error {
	return nil
}
