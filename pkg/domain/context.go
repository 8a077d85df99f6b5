package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ExecutionContext is the mutable state threaded through one graph run.
// It is owned exclusively by that run: the engine never shares a live
// context between runs, and stores deep-copy on Save/Load.
type ExecutionContext struct {
	// ID uniquely identifies this context (and by extension the run or
	// conversation it belongs to).
	ID string `json:"id"`

	// Results holds per-node outputs: node id -> field -> value.
	// A node writes once per visit; revisiting overwrites its own entry.
	Results map[string]map[string]any `json:"results"`

	// Data is the shared scratch space read and written by any node.
	// Values may be nested maps/slices; see Lookup for dotted paths.
	Data map[string]any `json:"data"`

	// Metadata is an opaque bag for run-level configuration.
	Metadata map[string]any `json:"metadata,omitempty"`

	// Memory holds long-lived buckets that survive persistence across
	// runs, distinct from per-run Data. Evaluator nodes append here.
	Memory map[string][]any `json:"memory,omitempty"`

	// Errors maps node id -> error message for failed node visits.
	Errors map[string]string `json:"errors,omitempty"`

	// Status maps node id -> lifecycle state.
	Status map[string]NodeStatus `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewExecutionContext creates an empty context with a fresh ID.
func NewExecutionContext() *ExecutionContext {
	now := time.Now().UTC()
	return &ExecutionContext{
		ID:        uuid.NewString(),
		Results:   make(map[string]map[string]any),
		Data:      make(map[string]any),
		Metadata:  make(map[string]any),
		Memory:    make(map[string][]any),
		Errors:    make(map[string]string),
		Status:    make(map[string]NodeStatus),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *ExecutionContext) touch() {
	c.UpdatedAt = time.Now().UTC()
}

// SetResult replaces the result entry for a node.
func (c *ExecutionContext) SetResult(nodeID string, fields map[string]any) {
	if c.Results == nil {
		c.Results = make(map[string]map[string]any)
	}
	c.Results[nodeID] = fields
	c.touch()
}

// Result returns the result entry for a node, or nil if absent.
func (c *ExecutionContext) Result(nodeID string) map[string]any {
	return c.Results[nodeID]
}

// Set writes a value into the shared scratch space.
func (c *ExecutionContext) Set(key string, value any) {
	if c.Data == nil {
		c.Data = make(map[string]any)
	}
	c.Data[key] = value
	c.touch()
}

// Get reads a top-level value from the shared scratch space.
func (c *ExecutionContext) Get(key string) (any, bool) {
	v, ok := c.Data[key]
	return v, ok
}

// SetError records a node failure message.
func (c *ExecutionContext) SetError(nodeID string, msg string) {
	if c.Errors == nil {
		c.Errors = make(map[string]string)
	}
	c.Errors[nodeID] = msg
	c.touch()
}

// SetStatus records a node lifecycle transition.
func (c *ExecutionContext) SetStatus(nodeID string, status NodeStatus) {
	if c.Status == nil {
		c.Status = make(map[string]NodeStatus)
	}
	c.Status[nodeID] = status
	c.touch()
}

// AppendMemory appends a value to a long-lived memory bucket.
func (c *ExecutionContext) AppendMemory(key string, value any) {
	if c.Memory == nil {
		c.Memory = make(map[string][]any)
	}
	c.Memory[key] = append(c.Memory[key], value)
	c.touch()
}

// Lookup resolves a dotted path against the context.
// Paths prefixed "results." resolve into Results (e.g.
// "results.classify.response"); everything else resolves into Data
// (e.g. "user.profile.name"). Numeric segments index into slices.
func (c *ExecutionContext) Lookup(path string) (any, bool) {
	if rest, ok := strings.CutPrefix(path, "results."); ok {
		return resolvePath(resultsAsAny(c.Results), rest)
	}
	return resolvePath(c.Data, path)
}

func resultsAsAny(results map[string]map[string]any) map[string]any {
	out := make(map[string]any, len(results))
	for k, v := range results {
		out[k] = v
	}
	return out
}

// Clone returns a deep copy of the context.
// Stores use this to guarantee round-trip isolation.
func (c *ExecutionContext) Clone() *ExecutionContext {
	if c == nil {
		return nil
	}
	next := &ExecutionContext{
		ID:        c.ID,
		Results:   make(map[string]map[string]any, len(c.Results)),
		Data:      deepCopyMap(c.Data),
		Metadata:  deepCopyMap(c.Metadata),
		Memory:    make(map[string][]any, len(c.Memory)),
		Errors:    make(map[string]string, len(c.Errors)),
		Status:    make(map[string]NodeStatus, len(c.Status)),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	for id, fields := range c.Results {
		next.Results[id] = deepCopyMap(fields)
	}
	for k, vs := range c.Memory {
		bucket := make([]any, len(vs))
		for i, v := range vs {
			bucket[i] = deepCopyValue(v)
		}
		next.Memory[k] = bucket
	}
	for k, v := range c.Errors {
		next.Errors[k] = v
	}
	for k, v := range c.Status {
		next.Status[k] = v
	}
	return next
}

func deepCopyMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return v
	}
}
