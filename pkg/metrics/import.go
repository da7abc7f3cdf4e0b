package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ImportMetrics records throughput and failure counts for catalog imports.
type ImportMetrics struct {
	rows     *prometheus.CounterVec
	failures prometheus.Counter
	chunks   prometheus.Histogram
}

// NewImportMetrics registers the import metrics on the provided registerer.
func NewImportMetrics(reg prometheus.Registerer) *ImportMetrics {
	if reg == nil {
		return &ImportMetrics{}
	}
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_rows_total",
		Help: "Import rows processed, labeled by outcome.",
	}, []string{"outcome"})
	failures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "import_row_failures_total",
		Help: "Import rows that failed at the storage layer.",
	})
	chunks := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "import_chunk_duration_seconds",
		Help:    "Duration of one import chunk in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(rows, failures, chunks)
	return &ImportMetrics{
		rows:     rows,
		failures: failures,
		chunks:   chunks,
	}
}

// IncRow increments the processed-row counter for the given outcome.
func (m *ImportMetrics) IncRow(outcome string) {
	if m == nil || m.rows == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.rows.WithLabelValues(outcome).Inc()
}

// IncFailure increments the row failure counter.
func (m *ImportMetrics) IncFailure() {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.Inc()
}

// ObserveChunk records the duration of one chunk.
func (m *ImportMetrics) ObserveChunk(duration time.Duration) {
	if m == nil || m.chunks == nil {
		return
	}
	m.chunks.Observe(duration.Seconds())
}
