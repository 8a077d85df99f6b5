// Package memory provides in-memory adapters, primarily for tests and
// single-process embeddings.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/arbor-flow/arbor/pkg/domain"
)

// Store implements ports.ContextStore in memory.
// Safe for concurrent use across independent keys.
type Store struct {
	mu   sync.RWMutex
	data map[string]*domain.ExecutionContext
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.ExecutionContext),
	}
}

// Save persists a deep copy of the context, isolating the stored value
// from later caller mutation.
func (s *Store) Save(ctx context.Context, key string, ec *domain.ExecutionContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = ec.Clone()
	return nil
}

// Load retrieves a deep copy of the stored context.
func (s *Store) Load(ctx context.Context, key string) (*domain.ExecutionContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ec, ok := s.data[key]
	if !ok {
		return nil, domain.ErrContextNotFound
	}
	return ec.Clone(), nil
}

// Delete removes the context for a key. Deleting a missing key is a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// List returns all stored keys in deterministic order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
