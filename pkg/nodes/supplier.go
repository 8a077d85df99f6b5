package nodes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arbor-flow/arbor/internal/logging"
	"github.com/arbor-flow/arbor/pkg/domain"
	"github.com/arbor-flow/arbor/pkg/graph"
)

// SupplyFunc computes the side information a supplier node injects
// (e.g. the current time, accumulated facts, an engagement score).
type SupplyFunc func(ctx context.Context, ec *domain.ExecutionContext) (any, error)

// Supplier computes or fetches side information not derived from the
// preceding node and injects it into the shared scratch space for
// downstream nodes to read.
//
// Reads: the declared required context keys (require-then-fail).
// Writes: Data[targetKey] and Results[id]["value"].
type Supplier struct {
	graph.Base
	supply    SupplyFunc
	targetKey string
	required  []string
	logger    *slog.Logger
}

// SupplierOption configures a Supplier node.
type SupplierOption func(*Supplier)

// WithRequiredContext declares dotted paths that must resolve before
// the supplier computes; missing keys route the run to the "error"
// edge instead.
func WithRequiredContext(paths ...string) SupplierOption {
	return func(s *Supplier) {
		s.required = append(s.required, paths...)
	}
}

// WithSupplierLogger sets the node's logger.
func WithSupplierLogger(logger *slog.Logger) SupplierOption {
	return func(s *Supplier) {
		s.logger = logger
	}
}

// NewSupplier creates a context-supplier node writing to targetKey.
func NewSupplier(id, targetKey string, supply SupplyFunc, opts ...SupplierOption) (*Supplier, error) {
	base, err := graph.NewBase(id)
	if err != nil {
		return nil, err
	}
	s := &Supplier{
		Base:      base,
		supply:    supply,
		targetKey: targetKey,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate fails fast on missing configuration.
func (s *Supplier) Validate() error {
	if s.supply == nil {
		return fmt.Errorf("node %q: supply function must not be nil", s.ID())
	}
	if s.targetKey == "" {
		return fmt.Errorf("node %q: target key must not be empty", s.ID())
	}
	return nil
}

// Process checks requirements, computes the value, and injects it.
func (s *Supplier) Process(ctx context.Context, ec *domain.ExecutionContext) (string, error) {
	var missing []string
	for _, path := range s.required {
		if _, ok := ec.Lookup(path); !ok {
			missing = append(missing, path)
		}
	}
	if len(missing) > 0 {
		return "", &MissingContextError{NodeID: s.ID(), Missing: missing}
	}

	value, err := s.supply(ctx, ec)
	if err != nil {
		return "", fmt.Errorf("supplier failed: %w", err)
	}

	ec.Set(s.targetKey, value)
	ec.SetResult(s.ID(), map[string]any{"value": value})
	s.logger.Debug("context supplied", "node", s.ID(), "key", s.targetKey)
	return graph.OutcomeDefault, nil
}

var _ graph.Node = (*Supplier)(nil)
