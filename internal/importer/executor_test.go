package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tru-distribution/orderdesk-backend/internal/catalog"
	pkgerrors "github.com/tru-distribution/orderdesk-backend/pkg/errors"
	"github.com/tru-distribution/orderdesk-backend/pkg/logger"
)

type fakeReconciler struct {
	mu      sync.Mutex
	calls   int
	results map[string]catalog.RowResult
	errors  map[string]error
}

func (f *fakeReconciler) ReconcileRow(_ context.Context, row catalog.ImportRow) (catalog.RowResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if err, ok := f.errors[row.Code]; ok {
		return catalog.RowResult{Code: row.Code}, err
	}
	if result, ok := f.results[row.Code]; ok {
		return result, nil
	}
	return catalog.RowResult{Code: row.Code}, nil
}

type progressRecorder struct {
	mu        sync.Mutex
	snapshots []Progress
	onPublish func()
}

func (r *progressRecorder) Publish(_ context.Context, _ string, progress Progress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, progress)
	if r.onPublish != nil {
		r.onPublish()
	}
	return nil
}

func makeRows(n int) []catalog.ImportRow {
	rows := make([]catalog.ImportRow, n)
	for i := range rows {
		rows[i] = catalog.ImportRow{
			Code:        fmt.Sprintf("ROW-%03d", i),
			Description: "imported item",
			Stock:       i,
			DealerPrice: decimal.NewFromInt(1000),
			RetailPrice: decimal.NewFromInt(1200),
		}
	}
	return rows
}

func newTestExecutor(t *testing.T, reconciler RowReconciler, sink ProgressSink, chunkSize int) *Executor {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	executor, err := NewExecutor(reconciler, sink, nil, logg, chunkSize)
	if err != nil {
		t.Fatalf("building executor: %v", err)
	}
	return executor
}

func TestRunEmitsProgressPerChunk(t *testing.T) {
	t.Parallel()

	recorder := &progressRecorder{}
	executor := newTestExecutor(t, &fakeReconciler{}, recorder, 50)

	summary, err := executor.Run(context.Background(), "imp-1", makeRows(120))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Progress{{50, 120}, {100, 120}, {120, 120}}
	if len(recorder.snapshots) != len(want) {
		t.Fatalf("got %d snapshots, want %d: %+v", len(recorder.snapshots), len(want), recorder.snapshots)
	}
	for i, snapshot := range recorder.snapshots {
		if snapshot != want[i] {
			t.Fatalf("snapshot %d = %+v, want %+v", i, snapshot, want[i])
		}
	}
	if summary.Processed != 120 || summary.Total != 120 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestRunAggregatesOutcomes(t *testing.T) {
	t.Parallel()

	reconciler := &fakeReconciler{
		results: map[string]catalog.RowResult{
			"ROW-000": {Code: "ROW-000", New: true},
			"ROW-001": {Code: "ROW-001", PriceUpdated: true},
			"ROW-002": {Code: "ROW-002", StockUpdated: true},
			"ROW-003": {Code: "ROW-003", PriceUpdated: true, StockUpdated: true},
		},
	}
	executor := newTestExecutor(t, reconciler, &progressRecorder{}, 50)

	summary, err := executor.Run(context.Background(), "imp-2", makeRows(6))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(summary.NewItems, []string{"ROW-000"}) {
		t.Fatalf("newItems = %v, want [ROW-000]", summary.NewItems)
	}
	if !reflect.DeepEqual(summary.PricesUpdated, []string{"ROW-001", "ROW-003"}) {
		t.Fatalf("pricesUpdated = %v", summary.PricesUpdated)
	}
	if !reflect.DeepEqual(summary.StockUpdated, []string{"ROW-002", "ROW-003"}) {
		t.Fatalf("stockUpdated = %v", summary.StockUpdated)
	}
	if summary.Errors != 0 {
		t.Fatalf("errors = %d, want 0", summary.Errors)
	}
}

func TestSummaryBucketsMarshalAsCodeLists(t *testing.T) {
	t.Parallel()

	reconciler := &fakeReconciler{
		results: map[string]catalog.RowResult{
			"ROW-000": {Code: "ROW-000", New: true},
			"ROW-001": {Code: "ROW-001", PriceUpdated: true},
		},
	}
	executor := newTestExecutor(t, reconciler, &progressRecorder{}, 50)

	summary, err := executor.Run(context.Background(), "imp-6", makeRows(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := json.Marshal(summary)
	if err != nil {
		t.Fatalf("marshaling summary: %v", err)
	}
	var decoded struct {
		NewItems      []string `json:"newItems"`
		PricesUpdated []string `json:"pricesUpdated"`
		StockUpdated  []string `json:"stockUpdated"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("summary buckets must decode as string arrays: %v\n%s", err, raw)
	}
	if !reflect.DeepEqual(decoded.NewItems, []string{"ROW-000"}) {
		t.Fatalf("newItems = %v, want [ROW-000]", decoded.NewItems)
	}
	if !reflect.DeepEqual(decoded.PricesUpdated, []string{"ROW-001"}) {
		t.Fatalf("pricesUpdated = %v, want [ROW-001]", decoded.PricesUpdated)
	}
	if decoded.StockUpdated == nil || len(decoded.StockUpdated) != 0 {
		t.Fatalf("an untouched bucket must stay an empty array, got %v\n%s", decoded.StockUpdated, raw)
	}
}

func TestRunIsolatesRowFailures(t *testing.T) {
	t.Parallel()

	reconciler := &fakeReconciler{
		errors: map[string]error{
			"ROW-002": pkgerrors.New(pkgerrors.CodeDependency, "row exploded"),
			"ROW-007": pkgerrors.New(pkgerrors.CodeDependency, "row exploded"),
		},
	}
	executor := newTestExecutor(t, reconciler, &progressRecorder{}, 10)

	summary, err := executor.Run(context.Background(), "imp-3", makeRows(10))
	if err != nil {
		t.Fatalf("run must complete despite row failures: %v", err)
	}

	if reconciler.calls != 10 {
		t.Fatalf("all rows must settle, got %d calls", reconciler.calls)
	}
	if summary.Processed != 10 || summary.Errors != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(summary.FailedCodes) != 2 {
		t.Fatalf("failed codes = %v", summary.FailedCodes)
	}
}

func TestRunHonorsCancellationBetweenChunks(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	recorder := &progressRecorder{onPublish: cancel}
	reconciler := &fakeReconciler{}
	executor := newTestExecutor(t, reconciler, recorder, 50)

	summary, err := executor.Run(ctx, "imp-4", makeRows(120))
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if summary.Processed != 50 {
		t.Fatalf("only the settled chunk must count, processed = %d", summary.Processed)
	}
	if reconciler.calls != 50 {
		t.Fatalf("no further chunk may start after cancel, calls = %d", reconciler.calls)
	}
}

func TestRunSurvivesSinkFailure(t *testing.T) {
	t.Parallel()

	sink := ProgressSinkFunc(func(context.Context, string, Progress) error {
		return pkgerrors.New(pkgerrors.CodeDependency, "redis down")
	})
	executor := newTestExecutor(t, &fakeReconciler{}, sink, 50)

	summary, err := executor.Run(context.Background(), "imp-5", makeRows(60))
	if err != nil {
		t.Fatalf("sink failure must not abort the import: %v", err)
	}
	if summary.Processed != 60 {
		t.Fatalf("processed = %d, want 60", summary.Processed)
	}
}
