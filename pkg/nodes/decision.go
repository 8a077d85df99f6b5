package nodes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/arbor-flow/arbor/internal/logging"
	"github.com/arbor-flow/arbor/pkg/domain"
	"github.com/arbor-flow/arbor/pkg/graph"
	"github.com/arbor-flow/arbor/pkg/ports"
	"github.com/arbor-flow/arbor/pkg/template"
)

// decisionCore carries the call mechanics shared by both decision
// variants: prompt rendering and the completion round-trip.
type decisionCore struct {
	completer ports.Completer
	promptTpl string
	formatFn  FormatFunc
	logger    *slog.Logger
}

func (d *decisionCore) validate(id string) error {
	if d.completer == nil {
		return fmt.Errorf("node %q: completer must not be nil", id)
	}
	if d.promptTpl == "" && d.formatFn == nil {
		return fmt.Errorf("node %q: either a prompt template or a format function is required", id)
	}
	return nil
}

func (d *decisionCore) ask(ctx context.Context, id string, ec *domain.ExecutionContext) (prompt, raw string, err error) {
	if d.formatFn != nil {
		prompt, err = d.formatFn(ec)
		if err != nil {
			return "", "", fmt.Errorf("node %q: prompt formatting failed: %w", id, err)
		}
	} else {
		prompt, err = template.Format(d.promptTpl, ec)
		if err != nil {
			var missing *template.MissingKeyError
			if errors.As(err, &missing) {
				return "", "", fmt.Errorf("node %q: prompt is missing context value for %q", id, missing.Key)
			}
			return "", "", fmt.Errorf("node %q: prompt formatting failed: %w", id, err)
		}
	}

	raw, err = d.completer.Complete(ctx, prompt)
	if err != nil {
		return "", "", fmt.Errorf("completion failed: %w", err)
	}
	return prompt, raw, nil
}

// BinaryDecision asks the completion capability for one of two legal
// answers and routes on it. An unparseable answer is not an error: the
// node logs the anomaly, falls back to its configured default answer
// ("no" unless overridden), and routes on that. The raw response is
// always preserved for inspection.
//
// Writes: Results[id]{"decision", "promptUsed", "rawResponse"}.
type BinaryDecision struct {
	graph.Base
	decisionCore
	yesValue string
	noValue  string
	fallback string
}

// BinaryOption configures a BinaryDecision node.
type BinaryOption func(*BinaryDecision)

// WithBinaryPrompt sets the decision prompt template.
func WithBinaryPrompt(tpl string) BinaryOption {
	return func(b *BinaryDecision) {
		b.promptTpl = tpl
	}
}

// WithBinaryFormatFunc sets a caller-supplied prompt builder.
func WithBinaryFormatFunc(fn FormatFunc) BinaryOption {
	return func(b *BinaryDecision) {
		b.formatFn = fn
	}
}

// WithAnswers overrides the two legal answers (default "yes"/"no").
func WithAnswers(yes, no string) BinaryOption {
	return func(b *BinaryDecision) {
		b.yesValue = yes
		b.noValue = no
	}
}

// WithFallback overrides the answer used when the response is neither
// legal value. The default is the "no" answer.
func WithFallback(answer string) BinaryOption {
	return func(b *BinaryDecision) {
		b.fallback = answer
	}
}

// WithBinaryLogger sets the node's logger.
func WithBinaryLogger(logger *slog.Logger) BinaryOption {
	return func(b *BinaryDecision) {
		b.logger = logger
	}
}

// NewBinaryDecision creates a yes/no decision node.
func NewBinaryDecision(id string, completer ports.Completer, opts ...BinaryOption) (*BinaryDecision, error) {
	base, err := graph.NewBase(id)
	if err != nil {
		return nil, err
	}
	b := &BinaryDecision{
		Base: base,
		decisionCore: decisionCore{
			completer: completer,
			logger:    logging.NewNop(),
		},
		yesValue: "yes",
		noValue:  "no",
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.fallback == "" {
		b.fallback = b.noValue
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate fails fast on missing configuration.
func (b *BinaryDecision) Validate() error {
	if err := b.decisionCore.validate(b.ID()); err != nil {
		return err
	}
	if b.fallback != "" && b.fallback != b.yesValue && b.fallback != b.noValue {
		return fmt.Errorf("node %q: fallback %q is not one of the legal answers", b.ID(), b.fallback)
	}
	return nil
}

// Process asks the question and routes on the normalized answer.
func (b *BinaryDecision) Process(ctx context.Context, ec *domain.ExecutionContext) (string, error) {
	prompt, raw, err := b.ask(ctx, b.ID(), ec)
	if err != nil {
		return "", err
	}

	decision := strings.ToLower(strings.TrimSpace(raw))
	if decision != b.yesValue && decision != b.noValue {
		b.logger.Warn("unparseable binary decision, using fallback",
			"node", b.ID(), "raw", raw, "fallback", b.fallback)
		decision = b.fallback
	}

	ec.SetResult(b.ID(), map[string]any{
		"decision":    decision,
		"promptUsed":  prompt,
		"rawResponse": raw,
	})
	return decision, nil
}

// MultiChoice asks the completion capability to pick from an
// enumerated set of legal choices. An illegal response falls back to
// the first declared choice unless a different fallback is configured.
//
// Writes: Results[id]{"choice", "promptUsed", "rawResponse"}.
type MultiChoice struct {
	graph.Base
	decisionCore
	choices  []string
	fallback string
}

// MultiChoiceOption configures a MultiChoice node.
type MultiChoiceOption func(*MultiChoice)

// WithChoicePrompt sets the decision prompt template.
func WithChoicePrompt(tpl string) MultiChoiceOption {
	return func(m *MultiChoice) {
		m.promptTpl = tpl
	}
}

// WithChoiceFormatFunc sets a caller-supplied prompt builder.
func WithChoiceFormatFunc(fn FormatFunc) MultiChoiceOption {
	return func(m *MultiChoice) {
		m.formatFn = fn
	}
}

// WithChoiceFallback overrides the choice used for illegal responses.
// The default is the first declared choice.
func WithChoiceFallback(choice string) MultiChoiceOption {
	return func(m *MultiChoice) {
		m.fallback = choice
	}
}

// WithChoiceLogger sets the node's logger.
func WithChoiceLogger(logger *slog.Logger) MultiChoiceOption {
	return func(m *MultiChoice) {
		m.logger = logger
	}
}

// NewMultiChoice creates a decision node over the given legal choices.
func NewMultiChoice(id string, completer ports.Completer, choices []string, opts ...MultiChoiceOption) (*MultiChoice, error) {
	base, err := graph.NewBase(id)
	if err != nil {
		return nil, err
	}
	m := &MultiChoice{
		Base: base,
		decisionCore: decisionCore{
			completer: completer,
			logger:    logging.NewNop(),
		},
		choices: choices,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.fallback == "" && len(m.choices) > 0 {
		m.fallback = m.choices[0]
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate fails fast on missing configuration.
func (m *MultiChoice) Validate() error {
	if err := m.decisionCore.validate(m.ID()); err != nil {
		return err
	}
	if len(m.choices) == 0 {
		return fmt.Errorf("node %q: at least one choice is required", m.ID())
	}
	if !slices.Contains(m.choices, m.fallback) {
		return fmt.Errorf("node %q: fallback %q is not a declared choice", m.ID(), m.fallback)
	}
	return nil
}

// Process asks the question and routes on the normalized choice.
func (m *MultiChoice) Process(ctx context.Context, ec *domain.ExecutionContext) (string, error) {
	prompt, raw, err := m.ask(ctx, m.ID(), ec)
	if err != nil {
		return "", err
	}

	choice := strings.ToLower(strings.TrimSpace(raw))
	if !slices.Contains(m.choices, choice) {
		m.logger.Warn("unparseable choice, using fallback",
			"node", m.ID(), "raw", raw, "fallback", m.fallback)
		choice = m.fallback
	}

	ec.SetResult(m.ID(), map[string]any{
		"choice":      choice,
		"promptUsed":  prompt,
		"rawResponse": raw,
	})
	return choice, nil
}

var (
	_ graph.Node = (*BinaryDecision)(nil)
	_ graph.Node = (*MultiChoice)(nil)
)
