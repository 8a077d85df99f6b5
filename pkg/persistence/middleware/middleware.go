// Package middleware decorates a ports.ContextStore with cross-cutting
// persistence concerns, keeping the adapters themselves oblivious.
package middleware

import "github.com/arbor-flow/arbor/pkg/ports"

// Middleware wraps a context store with additional behavior.
type Middleware func(next ports.ContextStore) ports.ContextStore

// Chain applies middlewares so the first one listed is outermost.
func Chain(store ports.ContextStore, mws ...Middleware) ports.ContextStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
