package nodes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arbor-flow/arbor/internal/logging"
	"github.com/arbor-flow/arbor/pkg/domain"
	"github.com/arbor-flow/arbor/pkg/graph"
	"github.com/arbor-flow/arbor/pkg/registry"
)

// DefaultOutputKey is where a tool node stores its return value when
// no explicit output key is configured.
const DefaultOutputKey = "result"

// Tool invokes an external callable with arguments mapped from the
// context and stores the return value in the node's result entry.
//
// Reads: every dotted path declared in the input map.
// Writes: Results[id][outputKey].
type Tool struct {
	graph.Base
	fn        registry.ToolFunc
	inputMap  map[string]string
	outputKey string
	logger    *slog.Logger
}

// ToolOption configures a Tool node.
type ToolOption func(*Tool)

// WithInput maps a tool argument to a dotted context path
// (e.g. "calc.a" into Data, "results.fetch.body" into Results).
func WithInput(arg, path string) ToolOption {
	return func(t *Tool) {
		t.inputMap[arg] = path
	}
}

// WithInputMap replaces the whole argument mapping at once.
func WithInputMap(m map[string]string) ToolOption {
	return func(t *Tool) {
		for arg, path := range m {
			t.inputMap[arg] = path
		}
	}
}

// WithOutputKey overrides the result field name (default "result").
func WithOutputKey(key string) ToolOption {
	return func(t *Tool) {
		t.outputKey = key
	}
}

// WithToolLogger sets the node's logger.
func WithToolLogger(logger *slog.Logger) ToolOption {
	return func(t *Tool) {
		t.logger = logger
	}
}

// NewTool creates a tool-invocation node around the given callable.
func NewTool(id string, fn registry.ToolFunc, opts ...ToolOption) (*Tool, error) {
	base, err := graph.NewBase(id)
	if err != nil {
		return nil, err
	}
	t := &Tool{
		Base:      base,
		fn:        fn,
		inputMap:  make(map[string]string),
		outputKey: DefaultOutputKey,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate fails fast when no callable was configured.
func (t *Tool) Validate() error {
	if t.fn == nil {
		return fmt.Errorf("node %q: tool callable must not be nil", t.ID())
	}
	return nil
}

// Process resolves the input map, invokes the callable and records the
// result. A missing input path or a callable failure surfaces as an
// error for the graph to record and route through the "error" edge.
func (t *Tool) Process(ctx context.Context, ec *domain.ExecutionContext) (string, error) {
	args := make(map[string]any, len(t.inputMap))
	for arg, path := range t.inputMap {
		value, ok := ec.Lookup(path)
		if !ok {
			return "", &MissingInputError{NodeID: t.ID(), Arg: arg, Path: path}
		}
		args[arg] = value
	}

	t.logger.Debug("invoking tool", "node", t.ID(), "args", len(args))
	out, err := t.fn(ctx, args)
	if err != nil {
		return "", fmt.Errorf("tool invocation failed: %w", err)
	}

	ec.SetResult(t.ID(), map[string]any{t.outputKey: out})
	return graph.OutcomeDefault, nil
}

var _ graph.Node = (*Tool)(nil)
