package nodes_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbor-flow/arbor/pkg/domain"
	"github.com/arbor-flow/arbor/pkg/graph"
	"github.com/arbor-flow/arbor/pkg/nodes"
)

func multiply(ctx context.Context, args map[string]any) (any, error) {
	x, okX := args["x"].(int)
	y, okY := args["y"].(int)
	if !okX || !okY {
		return nil, fmt.Errorf("multiply wants integer x and y")
	}
	return x * y, nil
}

func TestTool_Process(t *testing.T) {
	node, err := nodes.NewTool("calc", multiply,
		nodes.WithInputMap(map[string]string{"x": "calc.a", "y": "calc.b"}),
	)
	require.NoError(t, err)

	ec := domain.NewExecutionContext()
	ec.Set("calc", map[string]any{"a": 5, "b": 4})

	outcome, err := node.Process(context.Background(), ec)
	require.NoError(t, err)
	assert.Equal(t, graph.OutcomeDefault, outcome)
	assert.Equal(t, 20, ec.Results["calc"]["result"])
}

func TestTool_OutputKey(t *testing.T) {
	node, err := nodes.NewTool("calc", multiply,
		nodes.WithInput("x", "calc.a"),
		nodes.WithInput("y", "calc.b"),
		nodes.WithOutputKey("product"),
	)
	require.NoError(t, err)

	ec := domain.NewExecutionContext()
	ec.Set("calc", map[string]any{"a": 2, "b": 3})

	_, err = node.Process(context.Background(), ec)
	require.NoError(t, err)
	assert.Equal(t, 6, ec.Results["calc"]["product"])
}

func TestTool_MissingInputPath(t *testing.T) {
	node, err := nodes.NewTool("calc", multiply,
		nodes.WithInputMap(map[string]string{"x": "calc.a", "y": "calc.b"}),
	)
	require.NoError(t, err)

	ec := domain.NewExecutionContext()
	ec.Set("calc", map[string]any{"a": 5}) // no "b"

	_, err = node.Process(context.Background(), ec)
	var missing *nodes.MissingInputError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "calc", missing.NodeID)
	assert.Equal(t, "calc.b", missing.Path)
}

func TestTool_ResultsPathInput(t *testing.T) {
	node, err := nodes.NewTool("shout", func(ctx context.Context, args map[string]any) (any, error) {
		return fmt.Sprintf("%v!", args["text"]), nil
	}, nodes.WithInput("text", "results.greet.response"))
	require.NoError(t, err)

	ec := domain.NewExecutionContext()
	ec.SetResult("greet", map[string]any{"response": "hello"})

	_, err = node.Process(context.Background(), ec)
	require.NoError(t, err)
	assert.Equal(t, "hello!", ec.Results["shout"]["result"])
}

func TestTool_CallableErrorRoutesToErrorEdge(t *testing.T) {
	failing, err := nodes.NewTool("flaky", func(ctx context.Context, args map[string]any) (any, error) {
		return nil, fmt.Errorf("upstream timeout")
	})
	require.NoError(t, err)

	handled, err := graph.NewFunc("handled", func(ctx context.Context, ec *domain.ExecutionContext) (string, error) {
		return graph.Terminal, nil
	})
	require.NoError(t, err)

	g := graph.New()
	require.NoError(t, g.AddNode(failing))
	require.NoError(t, g.AddNode(handled))
	require.NoError(t, g.AddEdge("flaky", graph.OutcomeError, "handled"))
	require.NoError(t, g.AddEntryPoint("main", "flaky"))

	ec, err := g.Run(context.Background(), "main", nil)
	require.NoError(t, err)

	assert.Contains(t, ec.Errors["flaky"], "upstream timeout")
	assert.Equal(t, domain.StatusError, ec.Status["flaky"])
	assert.Equal(t, domain.StatusTerminal, ec.Status["handled"])
}

func TestTool_ValidateRequiresCallable(t *testing.T) {
	_, err := nodes.NewTool("bad", nil)
	assert.Error(t, err)
}
