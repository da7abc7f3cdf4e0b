package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tru-distribution/orderdesk-backend/pkg/db/models"
	pkgerrors "github.com/tru-distribution/orderdesk-backend/pkg/errors"
	"github.com/tru-distribution/orderdesk-backend/pkg/logger"
)

// ImportRow is one supplier file row, already validated and typed upstream.
type ImportRow struct {
	Code        string
	Description string
	Stock       int
	DealerPrice decimal.Decimal
	RetailPrice decimal.Decimal
}

// RowResult classifies what a reconciled row changed. A new product never
// sets the updated flags.
type RowResult struct {
	Code         string
	New          bool
	PriceUpdated bool
	StockUpdated bool
}

// Reconciler applies one import row against the catalog.
type Reconciler struct {
	store Store
	logg  *logger.Logger

	mu     sync.Mutex
	unitID uuid.UUID
}

// NewReconciler builds the import reconciler.
func NewReconciler(store Store, logg *logger.Logger) (*Reconciler, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Reconciler{store: store, logg: logg}, nil
}

// ReconcileRow looks the row's code up in the catalog and either inserts the
// product with its pricing and stock, or updates the pieces that drifted.
// Pricing and stock rows are only written when a value actually differs or
// the row is missing. Errors are scoped to the single row.
func (r *Reconciler) ReconcileRow(ctx context.Context, row ImportRow) (RowResult, error) {
	code := strings.TrimSpace(row.Code)
	result := RowResult{Code: code}

	product, err := r.store.FindProductByCode(ctx, code)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			if err := r.insertProduct(ctx, code, row); err != nil {
				return result, err
			}
			result.New = true
			return result, nil
		}
		return result, err
	}

	// Description and unit follow the file unconditionally.
	unitID, err := r.defaultUnitID(ctx)
	if err != nil {
		return result, err
	}
	if err := r.store.UpdateProductHeader(ctx, product.ID, row.Description, unitID); err != nil {
		return result, err
	}

	if pricingDrifted(product.Pricing, row) {
		pricing := &models.ProductPricing{
			ProductID:   product.ID,
			RetailPrice: row.RetailPrice,
			DealerPrice: row.DealerPrice,
		}
		if err := r.store.UpsertPricing(ctx, pricing); err != nil {
			return result, err
		}
		result.PriceUpdated = true
	}

	if stockDrifted(product.Stock, row.Stock) {
		stock := &models.StockLevel{
			ID:        uuid.New(),
			ProductID: product.ID,
			Location:  StockLocation,
			Quantity:  row.Stock,
		}
		if err := r.store.UpsertStock(ctx, stock); err != nil {
			return result, err
		}
		result.StockUpdated = true
	}

	return result, nil
}

func (r *Reconciler) insertProduct(ctx context.Context, code string, row ImportRow) error {
	unitID, err := r.defaultUnitID(ctx)
	if err != nil {
		return err
	}

	productID := uuid.New()
	product := &models.Product{
		ID:          productID,
		Code:        code,
		Description: row.Description,
		UnitID:      unitID,
		Pricing: &models.ProductPricing{
			ProductID:   productID,
			RetailPrice: row.RetailPrice,
			DealerPrice: row.DealerPrice,
		},
		Stock: []models.StockLevel{{
			ID:        uuid.New(),
			ProductID: productID,
			Location:  StockLocation,
			Quantity:  row.Stock,
		}},
	}
	if err := r.store.CreateProduct(ctx, product); err != nil {
		return err
	}
	r.logg.Info(r.logg.WithField(ctx, "code", code), "catalog product created")
	return nil
}

// defaultUnitID resolves the "PCS" unit once and caches it for the lifetime
// of the reconciler. Rows run concurrently, so the cache is guarded.
func (r *Reconciler) defaultUnitID(ctx context.Context) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.unitID != uuid.Nil {
		return r.unitID, nil
	}

	unit, err := r.store.EnsureUnit(ctx, DefaultUnitName)
	if err != nil {
		return uuid.Nil, err
	}
	r.unitID = unit.ID
	return r.unitID, nil
}

func pricingDrifted(current *models.ProductPricing, row ImportRow) bool {
	if current == nil {
		return true
	}
	return !current.RetailPrice.Equal(row.RetailPrice) || !current.DealerPrice.Equal(row.DealerPrice)
}

func stockDrifted(levels []models.StockLevel, quantity int) bool {
	for _, level := range levels {
		if level.Location == StockLocation {
			return level.Quantity != quantity
		}
	}
	return true
}
