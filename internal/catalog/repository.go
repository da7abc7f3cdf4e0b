package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tru-distribution/orderdesk-backend/pkg/db"
	"github.com/tru-distribution/orderdesk-backend/pkg/db/models"
	pkgerrors "github.com/tru-distribution/orderdesk-backend/pkg/errors"
)

// StockLocation is the single warehouse location import rows are booked
// against.
const StockLocation = "TRU"

// DefaultUnitName is the unit of measure assigned to imported products.
const DefaultUnitName = "PCS"

// Store defines the persistence operations the import reconciler needs.
type Store interface {
	EnsureUnit(ctx context.Context, name string) (*models.Unit, error)
	FindProductByCode(ctx context.Context, code string) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProductHeader(ctx context.Context, id uuid.UUID, description string, unitID uuid.UUID) error
	UpsertPricing(ctx context.Context, pricing *models.ProductPricing) error
	UpsertStock(ctx context.Context, stock *models.StockLevel) error
}

// Repository wires catalog persistence to GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// EnsureUnit returns the unit with the given name, creating it when absent.
// Safe under concurrent callers: a lost insert race falls back to the winner's
// row.
func (r *Repository) EnsureUnit(ctx context.Context, name string) (*models.Unit, error) {
	var unit models.Unit
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		Attrs(models.Unit{ID: uuid.New(), Name: name}).
		FirstOrCreate(&unit).
		Error
	if err != nil && db.IsUniqueViolation(err, "") {
		err = r.db.WithContext(ctx).First(&unit, "name = ?", name).Error
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("ensure unit %q", name))
	}
	return &unit, nil
}

// FindProductByCode loads the product with its pricing row and the stock row
// at the import location. Returns a NOT_FOUND error when no product carries
// the code.
func (r *Repository) FindProductByCode(ctx context.Context, code string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Pricing").
		Preload("Stock", "location = ?", StockLocation).
		First(&product, "code = ?", code).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %q not found", code))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("find product %q", code))
	}
	return &product, nil
}

// GetPricing loads the pricing row for a product. Order paths use it to
// price lines added to an order.
func (r *Repository) GetPricing(ctx context.Context, productID uuid.UUID) (*models.ProductPricing, error) {
	var pricing models.ProductPricing
	err := r.db.WithContext(ctx).First(&pricing, "product_id = ?", productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("no pricing for product %s", productID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("load pricing for product %s", productID))
	}
	return &pricing, nil
}

// CreateProduct inserts the product with its pricing and stock associations.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, fmt.Sprintf("product %q already exists", product.Code))
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("insert product %q", product.Code))
	}
	return nil
}

// UpdateProductHeader overwrites the mutable header columns of an existing
// product.
func (r *Repository) UpdateProductHeader(ctx context.Context, id uuid.UUID, description string, unitID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]any{"description": description, "unit_id": unitID}).
		Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("update product %s", id))
	}
	return nil
}

// UpsertPricing inserts or replaces the pricing row for a product.
func (r *Repository) UpsertPricing(ctx context.Context, pricing *models.ProductPricing) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"retail_price", "dealer_price", "updated_at"}),
		}).
		Create(pricing).
		Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("upsert pricing for product %s", pricing.ProductID))
	}
	return nil
}

// UpsertStock inserts or replaces the stock row for a product at a location.
func (r *Repository) UpsertStock(ctx context.Context, stock *models.StockLevel) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "location"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
		}).
		Create(stock).
		Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("upsert stock for product %s", stock.ProductID))
	}
	return nil
}
