package ports

import (
	"context"

	"github.com/arbor-flow/arbor/pkg/domain"
)

// ContextStore defines the interface for persisting execution contexts
// across independent runs (e.g., one context per conversation).
// Implementations must isolate stored contexts from later caller
// mutation, but perform no locking on individual keys: single-writer
// per key is the caller's responsibility (see pkg/session).
type ContextStore interface {
	// Save persists the context under the given key.
	Save(ctx context.Context, key string, ec *domain.ExecutionContext) error

	// Load retrieves the context for a key.
	// Returns domain.ErrContextNotFound if the key does not exist.
	Load(ctx context.Context, key string) (*domain.ExecutionContext, error)

	// Delete removes the context for a key.
	Delete(ctx context.Context, key string) error

	// List returns all stored keys.
	List(ctx context.Context) ([]string, error)
}
