package graph_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbor-flow/arbor/pkg/domain"
	"github.com/arbor-flow/arbor/pkg/graph"
)

func mermaidFixture(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	require.NoError(t, g.AddNode(counter(t, "fetch-user", "c")))
	require.NoError(t, g.AddNode(counter(t, "greet", "c")))
	require.NoError(t, g.AddNode(counter(t, "cleanup", "c")))
	require.NoError(t, g.AddEdge("fetch-user", graph.OutcomeDefault, "greet"))
	require.NoError(t, g.AddEdge("fetch-user", graph.OutcomeError, "cleanup"))
	require.NoError(t, g.AddEdge("greet", "done", "")) // terminal
	require.NoError(t, g.AddEntryPoint("main", "fetch-user"))
	return g
}

func TestGraph_Mermaid(t *testing.T) {
	out := mermaidFixture(t).Mermaid(nil)

	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.Contains(t, out, `ep_main(("main")) --> fetch_user`)
	assert.Contains(t, out, `fetch_user["fetch-user"]`)
	assert.Contains(t, out, `fetch_user -- "default" --> greet`)
	assert.Contains(t, out, `fetch_user -. "error" .-> cleanup`, "error edges are dashed")
	assert.NotContains(t, out, `"done"`, "terminal outcomes draw nothing")
	assert.NotContains(t, out, "classDef", "no overlay styles without an overlay")
}

func TestGraph_MermaidOverlay(t *testing.T) {
	out := mermaidFixture(t).Mermaid(&graph.Overlay{
		Visited: []string{"fetch-user", "fetch-user"},
		Failed:  []string{"greet"},
		Current: "cleanup",
	})

	assert.Equal(t, 1, strings.Count(out, "class fetch_user visited;"), "visited list is deduplicated")
	assert.Contains(t, out, "class greet failed;")
	assert.Contains(t, out, "class cleanup current;")
}

func TestOverlayFromContext(t *testing.T) {
	fail, err := graph.NewFunc("fail", func(ctx context.Context, ec *domain.ExecutionContext) (string, error) {
		return "", fmt.Errorf("nope")
	})
	require.NoError(t, err)

	g := graph.New()
	require.NoError(t, g.AddNode(counter(t, "ok", "c")))
	require.NoError(t, g.AddNode(fail))
	require.NoError(t, g.AddNode(counter(t, "unreached", "c")))
	require.NoError(t, g.AddEdge("ok", graph.OutcomeDefault, "fail"))
	require.NoError(t, g.AddEntryPoint("main", "ok"))

	ec, err := g.Run(context.Background(), "main", nil)
	require.NoError(t, err)

	overlay := graph.OverlayFromContext(ec)
	require.NotNil(t, overlay)
	assert.Equal(t, []string{"ok"}, overlay.Visited)
	assert.Equal(t, []string{"fail"}, overlay.Failed)
	assert.Empty(t, overlay.Current)

	assert.Nil(t, graph.OverlayFromContext(nil))
}
