package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestImportMetricsRegistersAndCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewImportMetrics(reg)

	m.IncRow("new")
	m.IncRow("new")
	m.IncRow("no_change")
	m.IncFailure()
	m.ObserveChunk(120 * time.Millisecond)

	if got := testutil.ToFloat64(m.rows.WithLabelValues("new")); got != 2 {
		t.Fatalf("expected 2 new rows, got %v", got)
	}
	if got := testutil.ToFloat64(m.failures); got != 1 {
		t.Fatalf("expected 1 failure, got %v", got)
	}
}

func TestImportMetricsNilSafe(t *testing.T) {
	var m *ImportMetrics
	m.IncRow("new")
	m.IncFailure()
	m.ObserveChunk(time.Second)

	unregistered := NewImportMetrics(nil)
	unregistered.IncRow("")
	unregistered.ObserveChunk(time.Second)
}
