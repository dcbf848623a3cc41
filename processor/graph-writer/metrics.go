package graphwriter

import (
	"github.com/c360studio/semstreams/metric"
	"github.com/prometheus/client_golang/prometheus"
)

// writerMetrics holds the Prometheus collectors for the graph-writer.
type writerMetrics struct {
	CommitsTotal     *prometheus.CounterVec
	TriplesWritten   prometheus.Counter
	AuditEventsTotal prometheus.Counter
	CommitDuration   prometheus.Histogram
}

func newWriterMetrics() *writerMetrics {
	return &writerMetrics{
		CommitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "semgraph",
				Subsystem: "writer",
				Name:      "commits_total",
				Help:      "Total number of commits attempted, by outcome",
			},
			[]string{"status"},
		),
		TriplesWritten: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "semgraph",
				Subsystem: "writer",
				Name:      "triples_written_total",
				Help:      "Total number of triples inserted into the primary dataset",
			},
		),
		AuditEventsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "semgraph",
				Subsystem: "writer",
				Name:      "audit_events_total",
				Help:      "Total number of change events written to the audit dataset",
			},
		),
		CommitDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "semgraph",
				Subsystem: "writer",
				Name:      "commit_duration_seconds",
				Help:      "Commit duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}
}

// register attaches the collectors to the platform registry. A nil registry
// leaves the metrics functional but unexported, which keeps unit tests free
// of global registration state.
func (m *writerMetrics) register(registry *metric.MetricsRegistry) error {
	if registry == nil {
		return nil
	}
	if err := registry.RegisterCounterVec("graph-writer", "commits_total", m.CommitsTotal); err != nil {
		return err
	}
	if err := registry.RegisterCounter("graph-writer", "triples_written_total", m.TriplesWritten); err != nil {
		return err
	}
	if err := registry.RegisterCounter("graph-writer", "audit_events_total", m.AuditEventsTotal); err != nil {
		return err
	}
	return registry.RegisterHistogram("graph-writer", "commit_duration_seconds", m.CommitDuration)
}
