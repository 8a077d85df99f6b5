package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbor-flow/arbor/pkg/domain"
	"github.com/arbor-flow/arbor/pkg/graph"
)

func TestMetrics_CountsRunOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg, "")
	require.NoError(t, err)

	ok, err := graph.NewFunc("ok", func(ctx context.Context, ec *domain.ExecutionContext) (string, error) {
		return graph.OutcomeDefault, nil
	})
	require.NoError(t, err)
	bad, err := graph.NewFunc("bad", func(ctx context.Context, ec *domain.ExecutionContext) (string, error) {
		return "", fmt.Errorf("nope")
	})
	require.NoError(t, err)

	g := graph.New(graph.WithLifecycleHooks(metrics.Hooks()))
	require.NoError(t, g.AddNode(ok))
	require.NoError(t, g.AddNode(bad))
	require.NoError(t, g.AddEdge("ok", graph.OutcomeDefault, "bad"))
	require.NoError(t, g.AddEntryPoint("main", "ok"))

	_, err = g.Run(context.Background(), "main", nil)
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(
		metrics.visits.WithLabelValues("ok", string(domain.StatusCompleted))))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		metrics.visits.WithLabelValues("bad", string(domain.StatusError))))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		metrics.errors.WithLabelValues("bad")))
	assert.Equal(t, float64(0), testutil.ToFloat64(
		metrics.errors.WithLabelValues("ok")))
}

func TestMetrics_HooksDirect(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg, "test")
	require.NoError(t, err)

	hooks := metrics.Hooks()
	hooks.OnNodeLeave(context.Background(), &domain.NodeEvent{
		NodeID:   "n",
		Status:   domain.StatusCompleted,
		Duration: 50 * time.Millisecond,
	})
	hooks.OnNodeLeave(context.Background(), &domain.NodeEvent{
		NodeID:   "n",
		Status:   domain.StatusCompleted,
		Duration: 70 * time.Millisecond,
	})

	assert.Equal(t, float64(2), testutil.ToFloat64(
		metrics.visits.WithLabelValues("n", string(domain.StatusCompleted))))
	count := testutil.CollectAndCount(metrics.durations)
	assert.Equal(t, 1, count, "one histogram series for node n")
}

func TestMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg, "dup")
	require.NoError(t, err)

	_, err = NewMetrics(reg, "dup")
	assert.Error(t, err)
}
