package nodes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arbor-flow/arbor/internal/logging"
	"github.com/arbor-flow/arbor/pkg/domain"
	"github.com/arbor-flow/arbor/pkg/graph"
	"github.com/arbor-flow/arbor/pkg/ports"
	"github.com/arbor-flow/arbor/pkg/template"
)

// Evaluator reads a target value out of the context, runs it through
// an external extraction capability, and optionally appends the
// extracted structure into a long-lived memory bucket so it survives
// persistence across runs.
//
// The target key is resolved through results, then metadata, then
// memory (last entry of the bucket), in that order.
//
// Writes: Results[id]{"extracted", "source"} and, when a memory key is
// configured, Memory[memoryKey].
type Evaluator struct {
	graph.Base
	extractor ports.Extractor
	targetKey string
	memoryKey string
	logger    *slog.Logger
}

// EvaluatorOption configures an Evaluator node.
type EvaluatorOption func(*Evaluator)

// WithMemoryKey enables appending extractions to the named long-lived
// memory bucket.
func WithMemoryKey(key string) EvaluatorOption {
	return func(e *Evaluator) {
		e.memoryKey = key
	}
}

// WithEvaluatorLogger sets the node's logger.
func WithEvaluatorLogger(logger *slog.Logger) EvaluatorOption {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

// NewEvaluator creates an evaluator node reading targetKey.
func NewEvaluator(id, targetKey string, extractor ports.Extractor, opts ...EvaluatorOption) (*Evaluator, error) {
	base, err := graph.NewBase(id)
	if err != nil {
		return nil, err
	}
	e := &Evaluator{
		Base:      base,
		extractor: extractor,
		targetKey: targetKey,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate fails fast on missing configuration.
func (e *Evaluator) Validate() error {
	if e.extractor == nil {
		return fmt.Errorf("node %q: extractor must not be nil", e.ID())
	}
	if e.targetKey == "" {
		return fmt.Errorf("node %q: target key must not be empty", e.ID())
	}
	return nil
}

// locate resolves the target key through the documented search order.
func (e *Evaluator) locate(ec *domain.ExecutionContext) (value any, source string, ok bool) {
	if v, found := ec.Lookup("results." + e.targetKey); found {
		return v, "results", true
	}
	if v, found := template.MapSource(ec.Metadata).Lookup(e.targetKey); found {
		return v, "metadata", true
	}
	if bucket := ec.Memory[e.targetKey]; len(bucket) > 0 {
		return bucket[len(bucket)-1], "memory", true
	}
	return nil, "", false
}

// Process extracts structure from the located value and records it.
func (e *Evaluator) Process(ctx context.Context, ec *domain.ExecutionContext) (string, error) {
	value, source, ok := e.locate(ec)
	if !ok {
		return "", &MissingContextError{NodeID: e.ID(), Missing: []string{e.targetKey}}
	}

	text := fmt.Sprintf("%v", value)
	extracted, err := e.extractor.Extract(ctx, text)
	if err != nil {
		return "", fmt.Errorf("extraction failed: %w", err)
	}

	ec.SetResult(e.ID(), map[string]any{
		"extracted": extracted,
		"source":    source,
	})
	if e.memoryKey != "" {
		ec.AppendMemory(e.memoryKey, extracted)
	}
	e.logger.Debug("evaluation stored", "node", e.ID(), "source", source, "memory_key", e.memoryKey)
	return graph.OutcomeDefault, nil
}

var _ graph.Node = (*Evaluator)(nil)
