// Package registry manages the tool capabilities a graph can invoke.
package registry

import (
	"context"
	"fmt"
	"sync"
)

// ToolFunc defines the signature for a tool implementation.
// It receives a context and a map of named arguments, and returns a
// result or an error. Asynchronous callables are expressed the same
// way: the function blocks until the work resolves.
type ToolFunc func(ctx context.Context, args map[string]any) (any, error)

// Registry manages the available tools.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]ToolFunc
}

// New creates a new empty registry.
func New() *Registry {
	return &Registry{
		tools: make(map[string]ToolFunc),
	}
}

// Register adds a tool to the registry.
// If a tool with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn ToolFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[name] = fn
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (ToolFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.tools[name]
	return fn, ok
}

// Execute looks up a tool by name and executes it.
// Returns an error if the tool is not found.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (any, error) {
	r.mu.RLock()
	fn, ok := r.tools[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("tool not found: %s", name)
	}

	return fn(ctx, args)
}
