package importer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/tru-distribution/orderdesk-backend/internal/catalog"
	"github.com/tru-distribution/orderdesk-backend/pkg/logger"
	"github.com/tru-distribution/orderdesk-backend/pkg/metrics"
)

// DefaultChunkSize bounds how many rows run concurrently against the DB.
const DefaultChunkSize = 50

// Metric outcome labels per reconciled row.
const (
	outcomeNew          = "new"
	outcomePriceUpdated = "price_updated"
	outcomeStockUpdated = "stock_updated"
	outcomeNoChange     = "no_change"
	outcomeFailed       = "failed"
)

// RowReconciler applies a single import row. Implementations must be safe for
// concurrent use.
type RowReconciler interface {
	ReconcileRow(ctx context.Context, row catalog.ImportRow) (catalog.RowResult, error)
}

// Summary aggregates a completed import run, bucketing product codes by what
// the row changed. A run always completes with a summary; row failures are
// collected, never fatal.
type Summary struct {
	Total         int      `json:"total"`
	Processed     int      `json:"processed"`
	NewItems      []string `json:"newItems"`
	PricesUpdated []string `json:"pricesUpdated"`
	StockUpdated  []string `json:"stockUpdated"`
	Errors        int      `json:"errors"`
	FailedCodes   []string `json:"failedCodes,omitempty"`
}

// Executor runs an import as sequential chunks of concurrently reconciled
// rows. Rows within a chunk all settle before the next chunk starts; a
// progress snapshot is published after each chunk; cancellation is honored
// only on chunk boundaries so no chunk is ever half-applied.
type Executor struct {
	reconciler RowReconciler
	sink       ProgressSink
	metrics    *metrics.ImportMetrics
	logg       *logger.Logger
	chunkSize  int
}

func NewExecutor(reconciler RowReconciler, sink ProgressSink, m *metrics.ImportMetrics, logg *logger.Logger, chunkSize int) (*Executor, error) {
	if reconciler == nil {
		return nil, fmt.Errorf("reconciler is required")
	}
	if sink == nil {
		return nil, fmt.Errorf("progress sink is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Executor{
		reconciler: reconciler,
		sink:       sink,
		metrics:    m,
		logg:       logg,
		chunkSize:  chunkSize,
	}, nil
}

type rowOutcome struct {
	result catalog.RowResult
	err    error
}

// Run processes all rows and returns the aggregate summary. The returned
// error is non-nil only when the context is canceled between chunks; the
// summary then covers the chunks that settled before the cancellation.
func (e *Executor) Run(ctx context.Context, importID string, rows []catalog.ImportRow) (Summary, error) {
	ctx = e.logg.WithImportID(ctx, importID)
	summary := Summary{
		Total:         len(rows),
		NewItems:      []string{},
		PricesUpdated: []string{},
		StockUpdated:  []string{},
	}

	for start := 0; start < len(rows); start += e.chunkSize {
		if err := ctx.Err(); err != nil {
			e.logg.Warn(ctx, fmt.Sprintf("import canceled after %d/%d rows", summary.Processed, summary.Total))
			return summary, err
		}

		end := start + e.chunkSize
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		began := time.Now()
		outcomes := e.runChunk(ctx, chunk)
		e.metrics.ObserveChunk(time.Since(began))

		var chunkErr error
		for _, outcome := range outcomes {
			summary.Processed++
			if outcome.err != nil {
				summary.Errors++
				summary.FailedCodes = append(summary.FailedCodes, outcome.result.Code)
				chunkErr = multierr.Append(chunkErr, outcome.err)
				e.metrics.IncFailure()
				e.metrics.IncRow(outcomeFailed)
				continue
			}
			e.recordResult(&summary, outcome.result)
		}
		if chunkErr != nil {
			e.logg.Warn(e.logg.WithField(ctx, "error", chunkErr.Error()),
				fmt.Sprintf("%d rows failed in chunk", len(multierr.Errors(chunkErr))))
		}

		progress := Progress{Processed: summary.Processed, Total: summary.Total}
		if err := e.sink.Publish(ctx, importID, progress); err != nil {
			// Progress is advisory; a sink outage must not abort the import.
			e.logg.Error(ctx, "publishing import progress", err)
		}
	}

	e.logg.Info(e.logg.WithFields(ctx, map[string]any{
		"new":           len(summary.NewItems),
		"pricesUpdated": len(summary.PricesUpdated),
		"stockUpdated":  len(summary.StockUpdated),
		"errors":        summary.Errors,
	}), "import completed")
	return summary, nil
}

// runChunk dispatches every row of the chunk concurrently and waits for all
// of them. A failing row never cancels its siblings.
func (e *Executor) runChunk(ctx context.Context, chunk []catalog.ImportRow) []rowOutcome {
	outcomes := make([]rowOutcome, len(chunk))

	var wg sync.WaitGroup
	for i, row := range chunk {
		wg.Add(1)
		go func(i int, row catalog.ImportRow) {
			defer wg.Done()
			result, err := e.reconciler.ReconcileRow(ctx, row)
			if result.Code == "" {
				result.Code = row.Code
			}
			outcomes[i] = rowOutcome{result: result, err: err}
		}(i, row)
	}
	wg.Wait()

	return outcomes
}

func (e *Executor) recordResult(summary *Summary, result catalog.RowResult) {
	switch {
	case result.New:
		summary.NewItems = append(summary.NewItems, result.Code)
		e.metrics.IncRow(outcomeNew)
	case result.PriceUpdated || result.StockUpdated:
		if result.PriceUpdated {
			summary.PricesUpdated = append(summary.PricesUpdated, result.Code)
			e.metrics.IncRow(outcomePriceUpdated)
		}
		if result.StockUpdated {
			summary.StockUpdated = append(summary.StockUpdated, result.Code)
			e.metrics.IncRow(outcomeStockUpdated)
		}
	default:
		e.metrics.IncRow(outcomeNoChange)
	}
}
