package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arbor-flow/arbor/pkg/domain"
)

// Metrics exposes node visit counters, error counters and duration
// histograms as a domain.LifecycleHooks implementation.
type Metrics struct {
	visits    *prometheus.CounterVec
	errors    *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
// Pass prometheus.DefaultRegisterer for the global registry.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	if namespace == "" {
		namespace = "arbor"
	}
	m := &Metrics{
		visits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "node_visits_total",
			Help:      "Number of node visits, by node and final status.",
		}, []string{"node", "status"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "node_errors_total",
			Help:      "Number of node failures, by node.",
		}, []string{"node"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "node_duration_seconds",
			Help:      "Wall time spent processing each node.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"node"}),
	}

	for _, c := range []prometheus.Collector{m.visits, m.errors, m.durations} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns the lifecycle hooks feeding these metrics.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeLeave: func(_ context.Context, ev *domain.NodeEvent) {
			m.visits.WithLabelValues(ev.NodeID, string(ev.Status)).Inc()
			m.durations.WithLabelValues(ev.NodeID).Observe(ev.Duration.Seconds())
		},
		OnNodeError: func(_ context.Context, ev *domain.NodeEvent) {
			m.visits.WithLabelValues(ev.NodeID, string(ev.Status)).Inc()
			m.errors.WithLabelValues(ev.NodeID).Inc()
			m.durations.WithLabelValues(ev.NodeID).Observe(ev.Duration.Seconds())
		},
	}
}
