package graph

import (
	"context"
	"fmt"

	"github.com/arbor-flow/arbor/pkg/domain"
)

// Outcome key constants. A node returns an outcome key from Process;
// the graph resolves it against the node's edges to find the next node.
const (
	// OutcomeDefault is the conventional key for the single happy path.
	OutcomeDefault = "default"
	// OutcomeError is the key the graph follows after a node failure.
	OutcomeError = "error"
	// Terminal is the empty outcome: the run ends at this node.
	Terminal = ""
)

// Node is the unit of work in a graph.
type Node interface {
	// ID returns the unique identifier of the node within its graph.
	ID() string

	// Next returns the outcome-key to target-node-id edge map.
	// An empty target means the outcome is terminal.
	Next() map[string]string

	// Process executes the node against the shared context and returns
	// the outcome key used to select the next edge (Terminal to stop).
	// Implementations write their output into ec.Results under their
	// own id before returning. Errors are caught by the graph, recorded
	// into ec.Errors, and routed through the "error" edge if declared.
	Process(ctx context.Context, ec *domain.ExecutionContext) (string, error)

	// Validate self-checks required configuration before a run.
	Validate() error
}

// Base carries the identity, edges and metadata common to every node
// implementation. Embed it and override Process.
type Base struct {
	id       string
	next     map[string]string
	metadata map[string]any
}

// NewBase creates the embeddable core of a node.
func NewBase(id string) (Base, error) {
	if id == "" {
		return Base{}, fmt.Errorf("node id must not be empty")
	}
	return Base{
		id:   id,
		next: make(map[string]string),
	}, nil
}

// ID returns the node identifier.
func (b *Base) ID() string { return b.id }

// Next returns the edge map. The returned map is live; the graph's
// AddEdge mutates it.
func (b *Base) Next() map[string]string { return b.next }

// SetNext declares or replaces an edge for an outcome key.
func (b *Base) SetNext(key, target string) {
	if b.next == nil {
		b.next = make(map[string]string)
	}
	b.next[key] = target
}

// Metadata returns the opaque configuration bag for this node.
func (b *Base) Metadata() map[string]any {
	if b.metadata == nil {
		b.metadata = make(map[string]any)
	}
	return b.metadata
}

// SetMeta stores a configuration value on the node.
func (b *Base) SetMeta(key string, value any) {
	if b.metadata == nil {
		b.metadata = make(map[string]any)
	}
	b.metadata[key] = value
}

// Validate is a no-op by default; concrete nodes override it to fail
// fast on missing required configuration.
func (b *Base) Validate() error { return nil }

// Func wraps a plain function as a Node. Convenient for context
// suppliers, glue steps and tests.
type Func struct {
	Base
	fn func(ctx context.Context, ec *domain.ExecutionContext) (string, error)
}

// NewFunc creates a node that executes the given function.
func NewFunc(id string, fn func(ctx context.Context, ec *domain.ExecutionContext) (string, error)) (*Func, error) {
	base, err := NewBase(id)
	if err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, fmt.Errorf("node %s: function must not be nil", id)
	}
	return &Func{Base: base, fn: fn}, nil
}

// Process executes the wrapped function.
func (n *Func) Process(ctx context.Context, ec *domain.ExecutionContext) (string, error) {
	return n.fn(ctx, ec)
}

var _ Node = (*Func)(nil)
