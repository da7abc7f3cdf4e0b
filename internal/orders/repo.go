package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tru-distribution/orderdesk-backend/pkg/db/models"
	pkgerrors "github.com/tru-distribution/orderdesk-backend/pkg/errors"
)

// Store defines the persistence operations order flows need.
type Store interface {
	WithTx(tx *gorm.DB) Store
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	DeleteItems(ctx context.Context, orderID uuid.UUID, productIDs []uuid.UUID) error
	UpdateItem(ctx context.Context, item *models.OrderItem) error
	InsertItems(ctx context.Context, items []models.OrderItem) error
}

// Repository wires order persistence to GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) Store {
	return &Repository{db: tx}
}

// CreateOrder inserts the order together with its line items.
func (r *Repository) CreateOrder(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("insert order for user %s", order.UserID))
	}
	return nil
}

// GetOrder loads the order with its items.
func (r *Repository) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %s not found", id))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("load order %s", id))
	}
	return &order, nil
}

// GetOrderItems loads the persisted line items of an order.
func (r *Repository) GetOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&items).
		Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("load items of order %s", orderID))
	}
	return items, nil
}

// DeleteItems removes the order's lines for the given products.
func (r *Repository) DeleteItems(ctx context.Context, orderID uuid.UUID, productIDs []uuid.UUID) error {
	if len(productIDs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND product_id IN ?", orderID, productIDs).
		Delete(&models.OrderItem{}).
		Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("delete items of order %s", orderID))
	}
	return nil
}

// UpdateItem overwrites quantity and discount of one line.
func (r *Repository) UpdateItem(ctx context.Context, item *models.OrderItem) error {
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("order_id = ? AND product_id = ?", item.OrderID, item.ProductID).
		Updates(map[string]any{
			"quantity": item.Quantity,
			"discount": item.DiscountPercent,
		}).
		Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("update item %s of order %s", item.ProductID, item.OrderID))
	}
	return nil
}

// InsertItems appends new lines to the order.
func (r *Repository) InsertItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert order items")
	}
	return nil
}
