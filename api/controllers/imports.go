package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tru-distribution/orderdesk-backend/api/responses"
	"github.com/tru-distribution/orderdesk-backend/api/validators"
	"github.com/tru-distribution/orderdesk-backend/internal/catalog"
	"github.com/tru-distribution/orderdesk-backend/internal/importer"
	pkgerrors "github.com/tru-distribution/orderdesk-backend/pkg/errors"
	"github.com/tru-distribution/orderdesk-backend/pkg/logger"
)

// ImportRunner runs a full import and returns its summary.
type ImportRunner interface {
	Run(ctx context.Context, importID string, rows []catalog.ImportRow) (importer.Summary, error)
}

// ProgressFetcher reads the last published progress snapshot of an import.
type ProgressFetcher interface {
	Fetch(ctx context.Context, importID string) (importer.Progress, error)
}

type ImportRowBody struct {
	Code        string          `json:"code" validate:"required,max=64"`
	Description string          `json:"description" validate:"required,max=255"`
	Stock       int             `json:"stock" validate:"min=0"`
	DealerPrice decimal.Decimal `json:"dealerPrice"`
	RetailPrice decimal.Decimal `json:"retailPrice"`
}

type ImportRequestBody struct {
	Rows []ImportRowBody `json:"rows" validate:"required,min=1"`
}

type ImportResponse struct {
	ImportID    string           `json:"importId"`
	InvalidRows int              `json:"invalidRows"`
	Summary     importer.Summary `json:"summary"`
}

// StartImport validates the posted rows, drops malformed ones, and runs the
// import to completion. Progress can be polled on the progress endpoint while
// the request is in flight.
func StartImport(runner ImportRunner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body ImportRequestBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows := make([]catalog.ImportRow, 0, len(body.Rows))
		invalid := 0
		for _, raw := range body.Rows {
			raw.Code = strings.TrimSpace(raw.Code)
			raw.Description = strings.TrimSpace(raw.Description)
			if !rowIsValid(raw) {
				invalid++
				continue
			}
			rows = append(rows, catalog.ImportRow{
				Code:        raw.Code,
				Description: raw.Description,
				Stock:       raw.Stock,
				DealerPrice: raw.DealerPrice,
				RetailPrice: raw.RetailPrice,
			})
		}
		if len(rows) == 0 {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "no valid rows in import").
					WithDetails(map[string]any{"invalidRows": invalid}))
			return
		}

		importID := uuid.NewString()
		ctx := logg.WithImportID(r.Context(), importID)

		summary, err := runner.Run(ctx, importID, rows)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "import interrupted"))
			return
		}

		responses.WriteSuccess(w, ImportResponse{
			ImportID:    importID,
			InvalidRows: invalid,
			Summary:     summary,
		})
	}
}

// ImportProgress returns the poll-able {processed,total} state of an import.
func ImportProgress(fetcher ProgressFetcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		importID, err := validators.ParseUUIDParam(r, "importId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		progress, err := fetcher.Fetch(r.Context(), importID.String())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, progress)
	}
}

// rowIsValid expects code and description already trimmed; `required` alone
// would wave through whitespace-only values.
func rowIsValid(row ImportRowBody) bool {
	if err := validators.ValidateStruct(row); err != nil {
		return false
	}
	return !row.DealerPrice.IsNegative() && !row.RetailPrice.IsNegative()
}
