package nodes_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbor-flow/arbor/pkg/domain"
	"github.com/arbor-flow/arbor/pkg/graph"
	"github.com/arbor-flow/arbor/pkg/nodes"
	"github.com/arbor-flow/arbor/pkg/ports"
)

func echoCompleter() (ports.Completer, *[]string) {
	var prompts []string
	fn := ports.CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		prompts = append(prompts, prompt)
		return "echo: " + prompt, nil
	})
	return fn, &prompts
}

func TestAgent_PromptTemplate(t *testing.T) {
	completer, prompts := echoCompleter()
	node, err := nodes.NewAgent("greet", completer,
		nodes.WithPrompt("Say hello to {user.name}"),
	)
	require.NoError(t, err)

	ec := domain.NewExecutionContext()
	ec.Set("user", map[string]any{"name": "ada"})

	outcome, err := node.Process(context.Background(), ec)
	require.NoError(t, err)
	assert.Equal(t, graph.OutcomeDefault, outcome)
	assert.Equal(t, []string{"Say hello to ada"}, *prompts)
	assert.Equal(t, "echo: Say hello to ada", ec.Results["greet"]["response"])
}

func TestAgent_ResultsPlaceholder(t *testing.T) {
	completer, prompts := echoCompleter()
	node, err := nodes.NewAgent("summarize", completer,
		nodes.WithPrompt("Summarize: {results.greet.response}"),
	)
	require.NoError(t, err)

	ec := domain.NewExecutionContext()
	ec.SetResult("greet", map[string]any{"response": "hi there"})

	_, err = node.Process(context.Background(), ec)
	require.NoError(t, err)
	assert.Equal(t, []string{"Summarize: hi there"}, *prompts)
}

func TestAgent_MissingPlaceholder(t *testing.T) {
	completer, prompts := echoCompleter()
	node, err := nodes.NewAgent("greet", completer,
		nodes.WithPrompt("Say hello to {user.name}"),
	)
	require.NoError(t, err)

	_, err = node.Process(context.Background(), domain.NewExecutionContext())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"user.name"`)
	assert.Empty(t, *prompts, "completer must not be called when the prompt cannot be built")
}

func TestAgent_FormatFunc(t *testing.T) {
	completer, _ := echoCompleter()
	node, err := nodes.NewAgent("custom", completer,
		nodes.WithFormatFunc(func(ec *domain.ExecutionContext) (string, error) {
			return fmt.Sprintf("context %s", ec.ID), nil
		}),
	)
	require.NoError(t, err)

	ec := domain.NewExecutionContext()
	_, err = node.Process(context.Background(), ec)
	require.NoError(t, err)
	assert.Equal(t, "echo: context "+ec.ID, ec.Results["custom"]["response"])
}

func TestAgent_CompleterError(t *testing.T) {
	failing := ports.CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", fmt.Errorf("model overloaded")
	})
	node, err := nodes.NewAgent("greet", failing, nodes.WithPrompt("hi"))
	require.NoError(t, err)

	_, err = node.Process(context.Background(), domain.NewExecutionContext())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestAgent_Validate(t *testing.T) {
	completer, _ := echoCompleter()

	_, err := nodes.NewAgent("a", nil, nodes.WithPrompt("hi"))
	assert.Error(t, err, "nil completer")

	_, err = nodes.NewAgent("a", completer)
	assert.Error(t, err, "no prompt source")
}
