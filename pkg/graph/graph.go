// Package graph implements the workflow executor: a registry of nodes
// and named entry points, plus the node-to-node traversal loop with
// validation, error routing and termination.
package graph

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/arbor-flow/arbor/internal/logging"
	"github.com/arbor-flow/arbor/pkg/domain"
)

// Graph is a registry of nodes with named entry points.
// Build it with AddNode/AddEdge/AddEntryPoint, check it with Validate,
// then execute it with Run. Execution is strictly sequential: one node
// at a time, context mutations visible to the very next node.
type Graph struct {
	nodes       map[string]Node
	entryPoints map[string]string
	logger      *slog.Logger
	hooks       domain.LifecycleHooks
}

// Option configures a Graph.
type Option func(*Graph)

// WithLogger sets the structured logger used during runs.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Graph) {
		g.logger = logger
	}
}

// WithLifecycleHooks registers observability callbacks for node visits.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(g *Graph) {
		g.hooks = hooks
	}
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		nodes:       make(map[string]Node),
		entryPoints: make(map[string]string),
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AddNode registers a node. The node's own Validate runs here so that
// configuration mistakes fail at build time, not mid-run.
func (g *Graph) AddNode(node Node) error {
	if node == nil {
		return fmt.Errorf("cannot add nil node")
	}
	id := node.ID()
	if id == "" {
		return fmt.Errorf("cannot add node with empty id")
	}
	if _, exists := g.nodes[id]; exists {
		return fmt.Errorf("node %q already registered", id)
	}
	if err := node.Validate(); err != nil {
		return fmt.Errorf("node %q failed validation: %w", id, err)
	}
	g.nodes[id] = node
	return nil
}

// Node returns a registered node by id.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// NodeIDs returns the registered node ids in deterministic order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AddEdge declares that when node from yields the outcome key, the run
// continues at node to. The source node must already be registered;
// the target is checked by Validate, since nodes are commonly added
// before all edges are known. An empty target makes the outcome
// terminal.
func (g *Graph) AddEdge(from, key, to string) error {
	node, ok := g.nodes[from]
	if !ok {
		return fmt.Errorf("cannot add edge from unknown node %q", from)
	}
	if key == "" {
		return fmt.Errorf("edge from %q has empty outcome key", from)
	}
	setter, ok := node.(interface{ SetNext(key, target string) })
	if !ok {
		// Nodes not embedding Base can still carry edges via Next().
		node.Next()[key] = to
		return nil
	}
	setter.SetNext(key, to)
	return nil
}

// AddEntryPoint names a starting node for Run.
// The node must already be registered.
func (g *Graph) AddEntryPoint(name, nodeID string) error {
	if name == "" {
		return fmt.Errorf("entry point name must not be empty")
	}
	if _, ok := g.nodes[nodeID]; !ok {
		return fmt.Errorf("entry point %q references unknown node %q", name, nodeID)
	}
	g.entryPoints[name] = nodeID
	return nil
}

// Validate checks every declared edge of every node and returns all
// violations, not just the first, so a build step can report
// everything at once. An empty result means the graph is sound.
func (g *Graph) Validate() []string {
	var violations []string
	for _, id := range g.NodeIDs() {
		node := g.nodes[id]
		outcomes := make([]string, 0, len(node.Next()))
		for key := range node.Next() {
			outcomes = append(outcomes, key)
		}
		sort.Strings(outcomes)
		for _, key := range outcomes {
			target := node.Next()[key]
			if target == "" {
				continue // terminal outcome
			}
			if _, ok := g.nodes[target]; !ok {
				violations = append(violations,
					fmt.Sprintf("node %q edge %q targets unknown node %q", id, key, target))
			}
		}
	}
	return violations
}

// RunOption configures a single run.
type RunOption func(*runConfig)

type runConfig struct {
	maxSteps int
}

// WithMaxSteps caps the number of node visits in one run. Zero (the
// default) means uncapped: termination is then entirely the
// responsibility of the nodes themselves, including self-loops.
func WithMaxSteps(n int) RunOption {
	return func(c *runConfig) {
		c.maxSteps = n
	}
}

// Run resolves the entry point and walks the graph until a terminal
// outcome. A nil context gets a fresh one. Ordinary node failures
// never escape: they are recorded into the context (Errors, Status)
// and either routed through the node's "error" edge or end the run.
// The returned context is always usable for inspection; the error
// return covers routing problems (unknown entry point, dangling edge)
// and the optional step cap.
func (g *Graph) Run(ctx context.Context, entryPoint string, ec *domain.ExecutionContext, opts ...RunOption) (*domain.ExecutionContext, error) {
	start, ok := g.entryPoints[entryPoint]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownEntryPoint, entryPoint)
	}

	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if ec == nil {
		ec = domain.NewExecutionContext()
	}

	// Seed unvisited nodes as pending so that, after the run, the
	// caller can tell "never reached" apart from "no record".
	for id := range g.nodes {
		if _, seen := ec.Status[id]; !seen {
			ec.SetStatus(id, domain.StatusPending)
		}
	}

	current := start
	var prevID, prevOutcome string
	steps := 0
	for {
		if err := ctx.Err(); err != nil {
			return ec, err
		}

		node, ok := g.nodes[current]
		if !ok {
			return ec, &RoutingError{FromNodeID: prevID, Outcome: prevOutcome, TargetID: current}
		}
		if cfg.maxSteps > 0 && steps >= cfg.maxSteps {
			return ec, &StepLimitError{NodeID: current, MaxSteps: cfg.maxSteps}
		}
		steps++

		ec.SetStatus(current, domain.StatusRunning)
		began := time.Now()
		g.emit(ctx, g.hooks.OnNodeEnter, &domain.NodeEvent{
			Timestamp: began,
			Type:      domain.EventNodeEnter,
			ContextID: ec.ID,
			NodeID:    current,
			Status:    domain.StatusRunning,
		})

		outcome, err := node.Process(ctx, ec)
		if err != nil {
			ec.SetError(current, err.Error())
			ec.SetStatus(current, domain.StatusError)
			g.emit(ctx, g.hooks.OnNodeError, &domain.NodeEvent{
				Timestamp: time.Now(),
				Type:      domain.EventNodeError,
				ContextID: ec.ID,
				NodeID:    current,
				Status:    domain.StatusError,
				Err:       err.Error(),
				Duration:  time.Since(began),
			})
			g.logger.Warn("node failed", "node", current, "err", err)

			next := node.Next()[OutcomeError]
			if next == "" {
				// No error edge: the run ends here with the failure
				// recorded in the context.
				g.markUnvisitedSkipped(ec)
				return ec, nil
			}
			prevID, prevOutcome = current, OutcomeError
			current = next
			continue
		}

		next := Terminal
		if outcome != Terminal {
			next = node.Next()[outcome]
		}

		if next == Terminal {
			ec.SetStatus(current, domain.StatusTerminal)
			g.emit(ctx, g.hooks.OnNodeLeave, &domain.NodeEvent{
				Timestamp: time.Now(),
				Type:      domain.EventNodeLeave,
				ContextID: ec.ID,
				NodeID:    current,
				Outcome:   outcome,
				Status:    domain.StatusTerminal,
				Duration:  time.Since(began),
			})
			g.logger.Debug("run finished", "node", current, "outcome", outcome, "steps", steps)
			g.markUnvisitedSkipped(ec)
			return ec, nil
		}

		ec.SetStatus(current, domain.StatusCompleted)
		g.emit(ctx, g.hooks.OnNodeLeave, &domain.NodeEvent{
			Timestamp: time.Now(),
			Type:      domain.EventNodeLeave,
			ContextID: ec.ID,
			NodeID:    current,
			Outcome:   outcome,
			Status:    domain.StatusCompleted,
			Duration:  time.Since(began),
		})
		prevID, prevOutcome = current, outcome
		current = next
	}
}

func (g *Graph) emit(ctx context.Context, hook func(context.Context, *domain.NodeEvent), ev *domain.NodeEvent) {
	if hook != nil {
		hook(ctx, ev)
	}
}

// markUnvisitedSkipped downgrades nodes still pending at run end.
func (g *Graph) markUnvisitedSkipped(ec *domain.ExecutionContext) {
	for id := range g.nodes {
		if ec.Status[id] == domain.StatusPending {
			ec.SetStatus(id, domain.StatusSkipped)
		}
	}
}
