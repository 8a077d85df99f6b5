package arbor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arbor-flow/arbor/internal/logging"
	"github.com/arbor-flow/arbor/pkg/adapters/memory"
	"github.com/arbor-flow/arbor/pkg/domain"
	"github.com/arbor-flow/arbor/pkg/graph"
	"github.com/arbor-flow/arbor/pkg/ports"
	"github.com/arbor-flow/arbor/pkg/session"
)

// Engine is the high-level entry point for the arbor library.
// It binds a validated graph to a session manager so conversation
// state survives across independent runs.
type Engine struct {
	graph    *graph.Graph
	sessions *session.Manager
	logger   *slog.Logger
	maxSteps int
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore selects the context store backing sessions.
// Defaults to an in-memory store.
func WithStore(store ports.ContextStore) Option {
	return func(e *Engine) {
		e.sessions = session.NewManager(store)
	}
}

// WithSessionManager injects a fully configured session manager
// (e.g. one carrying a distributed locker).
func WithSessionManager(m *session.Manager) Option {
	return func(e *Engine) {
		e.sessions = m
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMaxSteps applies a safety cap to every run started through the
// engine. Zero means uncapped.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		e.maxSteps = n
	}
}

// New validates the graph and wraps it in an Engine.
// Validation failures list every dangling edge, not just the first.
func New(g *graph.Graph, opts ...Option) (*Engine, error) {
	if g == nil {
		return nil, fmt.Errorf("graph must not be nil")
	}
	if violations := g.Validate(); len(violations) > 0 {
		return nil, fmt.Errorf("graph is invalid:\n  %s", strings.Join(violations, "\n  "))
	}

	e := &Engine{
		graph:  g,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.sessions == nil {
		e.sessions = session.NewManager(memory.NewStore())
	}
	return e, nil
}

// Graph returns the underlying graph.
func (e *Engine) Graph() *graph.Graph {
	return e.graph
}

// Sessions returns the session manager for direct store access.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}

// Run executes the graph from the named entry point with a fresh
// context, without touching the session store.
func (e *Engine) Run(ctx context.Context, entryPoint string) (*domain.ExecutionContext, error) {
	return e.graph.Run(ctx, entryPoint, nil, e.runOptions()...)
}

// RunSession loads (or creates) the context persisted under key, runs
// the graph from the named entry point, and persists the mutated
// context back — the load-run-save cycle a chat adapter performs for
// every inbound message.
func (e *Engine) RunSession(ctx context.Context, key, entryPoint string) (*domain.ExecutionContext, error) {
	ec, err := e.sessions.LoadOrCreate(ctx, key)
	if err != nil {
		return nil, err
	}

	ec, runErr := e.graph.Run(ctx, entryPoint, ec, e.runOptions()...)
	if ec != nil {
		if saveErr := e.sessions.Save(ctx, key, ec); saveErr != nil {
			e.logger.Warn("failed to persist session context", "key", key, "err", saveErr)
			if runErr == nil {
				runErr = saveErr
			}
		}
	}
	return ec, runErr
}

func (e *Engine) runOptions() []graph.RunOption {
	var opts []graph.RunOption
	if e.maxSteps > 0 {
		opts = append(opts, graph.WithMaxSteps(e.maxSteps))
	}
	return opts
}
