package nodes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/arbor-flow/arbor/internal/logging"
	"github.com/arbor-flow/arbor/pkg/domain"
	"github.com/arbor-flow/arbor/pkg/graph"
	"github.com/arbor-flow/arbor/pkg/ports"
	"github.com/arbor-flow/arbor/pkg/template"
)

// FormatFunc builds a prompt from the execution context, as an
// alternative to a placeholder template.
type FormatFunc func(ec *domain.ExecutionContext) (string, error)

// Agent formats a prompt from context data, calls the completion
// capability, and stores the returned text.
//
// Reads: every {dotted.path} placeholder in its template.
// Writes: Results[id]["response"].
type Agent struct {
	graph.Base
	completer ports.Completer
	promptTpl string
	formatFn  FormatFunc
	logger    *slog.Logger
}

// AgentOption configures an Agent node.
type AgentOption func(*Agent)

// WithPrompt sets a template with {dotted.path} placeholders resolved
// against the execution context.
func WithPrompt(tpl string) AgentOption {
	return func(a *Agent) {
		a.promptTpl = tpl
	}
}

// WithFormatFunc sets a caller-supplied prompt builder, replacing the
// template mechanism.
func WithFormatFunc(fn FormatFunc) AgentOption {
	return func(a *Agent) {
		a.formatFn = fn
	}
}

// WithAgentLogger sets the node's logger.
func WithAgentLogger(logger *slog.Logger) AgentOption {
	return func(a *Agent) {
		a.logger = logger
	}
}

// NewAgent creates a completion node delegating to the given completer.
func NewAgent(id string, completer ports.Completer, opts ...AgentOption) (*Agent, error) {
	base, err := graph.NewBase(id)
	if err != nil {
		return nil, err
	}
	a := &Agent{
		Base:      base,
		completer: completer,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate fails fast when no completer or prompt source is configured.
func (a *Agent) Validate() error {
	if a.completer == nil {
		return fmt.Errorf("node %q: completer must not be nil", a.ID())
	}
	if a.promptTpl == "" && a.formatFn == nil {
		return fmt.Errorf("node %q: either a prompt template or a format function is required", a.ID())
	}
	return nil
}

// buildPrompt renders the configured template or format function.
// Placeholder misses come back as a node-scoped error naming the
// missing key, never a raw lookup failure.
func (a *Agent) buildPrompt(ec *domain.ExecutionContext) (string, error) {
	if a.formatFn != nil {
		prompt, err := a.formatFn(ec)
		if err != nil {
			return "", fmt.Errorf("node %q: prompt formatting failed: %w", a.ID(), err)
		}
		return prompt, nil
	}

	prompt, err := template.Format(a.promptTpl, ec)
	if err != nil {
		var missing *template.MissingKeyError
		if errors.As(err, &missing) {
			return "", fmt.Errorf("node %q: prompt is missing context value for %q", a.ID(), missing.Key)
		}
		return "", fmt.Errorf("node %q: prompt formatting failed: %w", a.ID(), err)
	}
	return prompt, nil
}

// Process renders the prompt, completes it, and records the response.
func (a *Agent) Process(ctx context.Context, ec *domain.ExecutionContext) (string, error) {
	prompt, err := a.buildPrompt(ec)
	if err != nil {
		return "", err
	}

	a.logger.Debug("requesting completion", "node", a.ID(), "prompt_len", len(prompt))
	response, err := a.completer.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}

	ec.SetResult(a.ID(), map[string]any{"response": response})
	return graph.OutcomeDefault, nil
}

var _ graph.Node = (*Agent)(nil)
