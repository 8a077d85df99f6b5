package graph_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbor-flow/arbor/pkg/domain"
	"github.com/arbor-flow/arbor/pkg/graph"
)

// counter returns a node that increments data[key] and records the new
// value under its own id.
func counter(t *testing.T, id, key string) graph.Node {
	t.Helper()
	n, err := graph.NewFunc(id, func(ctx context.Context, ec *domain.ExecutionContext) (string, error) {
		count, _ := ec.Get(key)
		next := 1
		if c, ok := count.(int); ok {
			next = c + 1
		}
		ec.Set(key, next)
		ec.SetResult(id, map[string]any{key: next})
		return graph.OutcomeDefault, nil
	})
	require.NoError(t, err)
	return n
}

func TestGraph_Builders(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.AddNode(counter(t, "a", "count")))

	t.Run("duplicate node", func(t *testing.T) {
		err := g.AddNode(counter(t, "a", "count"))
		assert.Error(t, err)
	})

	t.Run("edge from unknown node", func(t *testing.T) {
		err := g.AddEdge("ghost", graph.OutcomeDefault, "a")
		assert.Error(t, err)
	})

	t.Run("entry point for unknown node", func(t *testing.T) {
		err := g.AddEntryPoint("main", "ghost")
		assert.Error(t, err)
	})

	t.Run("edge target checked at validate, not add", func(t *testing.T) {
		require.NoError(t, g.AddEdge("a", graph.OutcomeDefault, "not-yet-added"))
		violations := g.Validate()
		require.Len(t, violations, 1)
		assert.Contains(t, violations[0], "not-yet-added")
	})
}

func TestGraph_ValidateReportsAllViolations(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.AddNode(counter(t, "a", "c")))
	require.NoError(t, g.AddNode(counter(t, "b", "c")))
	require.NoError(t, g.AddEdge("a", graph.OutcomeDefault, "missing1"))
	require.NoError(t, g.AddEdge("a", graph.OutcomeError, "missing2"))
	require.NoError(t, g.AddEdge("b", graph.OutcomeDefault, "a"))
	require.NoError(t, g.AddEdge("b", "done", "")) // terminal, not a violation

	violations := g.Validate()
	assert.Len(t, violations, 2)
}

func TestGraph_RunUnknownEntryPoint(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.AddNode(counter(t, "a", "count")))
	require.NoError(t, g.AddEntryPoint("main", "a"))

	ec := domain.NewExecutionContext()
	before := ec.UpdatedAt

	out, err := g.Run(context.Background(), "nope", ec)
	require.ErrorIs(t, err, domain.ErrUnknownEntryPoint)
	assert.Nil(t, out)

	// The supplied context must not have been touched.
	assert.Equal(t, before, ec.UpdatedAt)
	assert.Empty(t, ec.Status)
}

func TestGraph_TwoNodeChain(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.AddNode(counter(t, "A", "count")))
	require.NoError(t, g.AddNode(counter(t, "B", "count")))
	require.NoError(t, g.AddEdge("A", graph.OutcomeDefault, "B"))
	require.NoError(t, g.AddEntryPoint("main", "A"))
	require.Empty(t, g.Validate())

	ec, err := g.Run(context.Background(), "main", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, ec.Results["A"]["count"])
	assert.Equal(t, 2, ec.Results["B"]["count"])
	assert.Equal(t, domain.StatusCompleted, ec.Status["A"])
	assert.Equal(t, domain.StatusTerminal, ec.Status["B"])
}

func TestGraph_SelfLoop(t *testing.T) {
	loop, err := graph.NewFunc("loop", func(ctx context.Context, ec *domain.ExecutionContext) (string, error) {
		count := 0
		if c, ok := ec.Get("loop"); ok {
			count = c.(int)
		}
		count++
		ec.Set("loop", count)
		ec.SetResult("loop", map[string]any{"loop": count})
		if count >= 3 {
			return "done", nil
		}
		return graph.OutcomeDefault, nil
	})
	require.NoError(t, err)

	exit, err := graph.NewFunc("exit", func(ctx context.Context, ec *domain.ExecutionContext) (string, error) {
		return graph.Terminal, nil
	})
	require.NoError(t, err)

	g := graph.New()
	require.NoError(t, g.AddNode(loop))
	require.NoError(t, g.AddNode(exit))
	require.NoError(t, g.AddEdge("loop", graph.OutcomeDefault, "loop")) // revisit self
	require.NoError(t, g.AddEdge("loop", "done", "exit"))
	require.NoError(t, g.AddEntryPoint("main", "loop"))

	ec, err := g.Run(context.Background(), "main", nil)
	require.NoError(t, err)

	count, _ := ec.Get("loop")
	assert.Equal(t, 3, count)
	assert.Equal(t, domain.StatusTerminal, ec.Status["exit"])
}

func TestGraph_ErrorEdgeRouting(t *testing.T) {
	failing, err := graph.NewFunc("failing", func(ctx context.Context, ec *domain.ExecutionContext) (string, error) {
		return "", fmt.Errorf("downstream unavailable")
	})
	require.NoError(t, err)

	rescue, err := graph.NewFunc("recover", func(ctx context.Context, ec *domain.ExecutionContext) (string, error) {
		ec.SetResult("recover", map[string]any{"handled": true})
		return graph.Terminal, nil
	})
	require.NoError(t, err)

	t.Run("with error edge", func(t *testing.T) {
		g := graph.New()
		require.NoError(t, g.AddNode(failing))
		require.NoError(t, g.AddNode(rescue))
		require.NoError(t, g.AddEdge("failing", graph.OutcomeError, "recover"))
		require.NoError(t, g.AddEntryPoint("main", "failing"))

		ec, err := g.Run(context.Background(), "main", nil)
		require.NoError(t, err)

		assert.Contains(t, ec.Errors["failing"], "downstream unavailable")
		assert.Equal(t, domain.StatusError, ec.Status["failing"])
		assert.Equal(t, true, ec.Results["recover"]["handled"])
	})

	t.Run("without error edge the run stops", func(t *testing.T) {
		solo, err := graph.NewFunc("solo", func(ctx context.Context, ec *domain.ExecutionContext) (string, error) {
			return "", fmt.Errorf("boom")
		})
		require.NoError(t, err)

		g := graph.New()
		require.NoError(t, g.AddNode(solo))
		require.NoError(t, g.AddEntryPoint("main", "solo"))

		ec, err := g.Run(context.Background(), "main", nil)
		require.NoError(t, err, "ordinary node failures never escape Run")
		assert.Equal(t, "boom", ec.Errors["solo"])
		assert.Equal(t, domain.StatusError, ec.Status["solo"])
	})
}

func TestGraph_MaxStepsCap(t *testing.T) {
	forever, err := graph.NewFunc("forever", func(ctx context.Context, ec *domain.ExecutionContext) (string, error) {
		return graph.OutcomeDefault, nil
	})
	require.NoError(t, err)

	g := graph.New()
	require.NoError(t, g.AddNode(forever))
	require.NoError(t, g.AddEdge("forever", graph.OutcomeDefault, "forever"))
	require.NoError(t, g.AddEntryPoint("main", "forever"))

	_, err = g.Run(context.Background(), "main", nil, graph.WithMaxSteps(10))
	var limit *graph.StepLimitError
	require.True(t, errors.As(err, &limit))
	assert.Equal(t, 10, limit.MaxSteps)
}

func TestGraph_SkippedNodes(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.AddNode(counter(t, "a", "c")))
	require.NoError(t, g.AddNode(counter(t, "unreached", "c")))
	require.NoError(t, g.AddEntryPoint("main", "a"))

	ec, err := g.Run(context.Background(), "main", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSkipped, ec.Status["unreached"])
}

func TestGraph_LifecycleHooks(t *testing.T) {
	var entered, left, failed []string
	hooks := domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, ev *domain.NodeEvent) { entered = append(entered, ev.NodeID) },
		OnNodeLeave: func(_ context.Context, ev *domain.NodeEvent) { left = append(left, ev.NodeID) },
		OnNodeError: func(_ context.Context, ev *domain.NodeEvent) { failed = append(failed, ev.NodeID) },
	}

	bad, err := graph.NewFunc("bad", func(ctx context.Context, ec *domain.ExecutionContext) (string, error) {
		return "", fmt.Errorf("nope")
	})
	require.NoError(t, err)

	g := graph.New(graph.WithLifecycleHooks(hooks))
	require.NoError(t, g.AddNode(counter(t, "ok", "c")))
	require.NoError(t, g.AddNode(bad))
	require.NoError(t, g.AddEdge("ok", graph.OutcomeDefault, "bad"))
	require.NoError(t, g.AddEntryPoint("main", "ok"))

	_, err = g.Run(context.Background(), "main", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"ok", "bad"}, entered)
	assert.Equal(t, []string{"ok"}, left)
	assert.Equal(t, []string{"bad"}, failed)
}

func TestGraph_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := graph.New()
	require.NoError(t, g.AddNode(counter(t, "a", "c")))
	require.NoError(t, g.AddEntryPoint("main", "a"))

	_, err := g.Run(ctx, "main", nil)
	assert.ErrorIs(t, err, context.Canceled)
}
