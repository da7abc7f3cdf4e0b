package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tru-distribution/orderdesk-backend/internal/lineitems"
	"github.com/tru-distribution/orderdesk-backend/internal/pricing"
	"github.com/tru-distribution/orderdesk-backend/pkg/db/models"
	"github.com/tru-distribution/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/tru-distribution/orderdesk-backend/pkg/errors"
	"github.com/tru-distribution/orderdesk-backend/pkg/logger"
)

// Storage steps surfaced in error details when an edit fails mid-flight.
const (
	stepLoad   = "load"
	stepDelete = "delete"
	stepUpdate = "update"
	stepInsert = "insert"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// PricingReader resolves the price columns for products added to an order.
type PricingReader interface {
	GetPricing(ctx context.Context, productID uuid.UUID) (*models.ProductPricing, error)
}

// ItemInput is one requested line: the desired quantity of a product.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateInput carries everything needed to create an order.
type CreateInput struct {
	UserID uuid.UUID
	Role   enums.Role
	Items  []ItemInput
}

// EditInput replaces an order's line set. Items omitted from the request and
// items at quantity zero are removed.
type EditInput struct {
	OrderID uuid.UUID
	Role    enums.Role
	Items   []ItemInput
}

// Service defines order-level operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	Edit(ctx context.Context, input EditInput) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

type service struct {
	repo    Store
	tx      txRunner
	pricing PricingReader
	logg    *logger.Logger
}

// NewService builds the order service with the required dependencies.
func NewService(repo Store, tx txRunner, pricingReader PricingReader, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if pricingReader == nil {
		return nil, fmt.Errorf("pricing reader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, pricing: pricingReader, logg: logg}, nil
}

// Create prices the requested lines for the actor's role, resolves the order
// discount from the pre-discount subtotal, and inserts the order with its
// items in one transaction.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	set := lineitems.New()
	for _, item := range input.Items {
		base, err := s.basePrice(ctx, input.Role, item.ProductID)
		if err != nil {
			return nil, err
		}
		if err := set.Add(item.ProductID, base, item.Quantity); err != nil {
			return nil, err
		}
	}
	if set.Len() == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyOrder, "order needs at least one line")
	}

	discount := pricing.Resolve(input.Role, set.Subtotal())

	order := &models.Order{
		ID:     uuid.New(),
		UserID: input.UserID,
	}
	for _, line := range set.Lines() {
		order.Items = append(order.Items, models.OrderItem{
			ID:              uuid.New(),
			OrderID:         order.ID,
			ProductID:       line.ProductID,
			Quantity:        line.Quantity,
			UnitPrice:       line.UnitPrice,
			DiscountPercent: discount,
		})
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).CreateOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id": order.ID,
		"lines":    len(order.Items),
		"discount": discount,
	}), "order created")
	return order, nil
}

// Edit replaces the order's working line set, re-resolves the discount from
// the new pre-discount subtotal, and applies deletes, updates, and inserts in
// that sequence inside one transaction, restamping the order-scoped discount
// on every surviving line. Validation happens before any write: an edit that
// leaves no positive-quantity line is rejected with the storage untouched.
func (s *service) Edit(ctx context.Context, input EditInput) (*models.Order, error) {
	if _, err := s.repo.GetOrder(ctx, input.OrderID); err != nil {
		return nil, stepFailure(stepLoad, err)
	}
	persistedItems, err := s.repo.GetOrderItems(ctx, input.OrderID)
	if err != nil {
		return nil, stepFailure(stepLoad, err)
	}

	persisted := make([]lineitems.Line, 0, len(persistedItems))
	for _, item := range persistedItems {
		persisted = append(persisted, lineitems.Line{
			ProductID: item.ProductID,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}

	set, err := s.buildWorkingSet(ctx, input, persisted)
	if err != nil {
		return nil, err
	}
	if set.Len() == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyOrder, "edit would leave the order without lines")
	}

	// Subtotal runs over positive-quantity lines at their stored unit prices.
	discount := pricing.Resolve(input.Role, set.Subtotal())
	diff := set.Diff(persisted)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := repo.DeleteItems(ctx, input.OrderID, diff.Deletes); err != nil {
			return stepFailure(stepDelete, err)
		}
		for _, line := range diff.Updates {
			item := &models.OrderItem{
				OrderID:         input.OrderID,
				ProductID:       line.ProductID,
				Quantity:        line.Quantity,
				DiscountPercent: discount,
			}
			if err := repo.UpdateItem(ctx, item); err != nil {
				return stepFailure(stepUpdate, err)
			}
		}
		if len(diff.Inserts) > 0 {
			inserts := make([]models.OrderItem, 0, len(diff.Inserts))
			for _, line := range diff.Inserts {
				inserts = append(inserts, models.OrderItem{
					ID:              uuid.New(),
					OrderID:         input.OrderID,
					ProductID:       line.ProductID,
					Quantity:        line.Quantity,
					UnitPrice:       line.UnitPrice,
					DiscountPercent: discount,
				})
			}
			if err := repo.InsertItems(ctx, inserts); err != nil {
				return stepFailure(stepInsert, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id": input.OrderID,
		"deletes":  len(diff.Deletes),
		"updates":  len(diff.Updates),
		"inserts":  len(diff.Inserts),
		"discount": discount,
	}), "order edited")

	return s.repo.GetOrder(ctx, input.OrderID)
}

// Get loads an order with its items.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.repo.GetOrder(ctx, id)
}

// buildWorkingSet turns the request into the desired line set: requested
// lines overwrite persisted quantities, new products get priced at the
// actor's role, and persisted lines absent from the request are dropped.
func (s *service) buildWorkingSet(ctx context.Context, input EditInput, persisted []lineitems.Line) (*lineitems.Set, error) {
	set := lineitems.FromLines(persisted)

	requested := make(map[uuid.UUID]bool, len(input.Items))
	for _, item := range input.Items {
		requested[item.ProductID] = true

		if err := set.SetQuantity(item.ProductID, item.Quantity); err != nil {
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
				return nil, err
			}
			if item.Quantity == 0 {
				continue
			}
			base, err := s.basePrice(ctx, input.Role, item.ProductID)
			if err != nil {
				return nil, err
			}
			if err := set.Add(item.ProductID, base, item.Quantity); err != nil {
				return nil, err
			}
		}
	}

	for _, line := range persisted {
		if !requested[line.ProductID] {
			set.Remove(line.ProductID)
		}
	}
	return set, nil
}

func (s *service) basePrice(ctx context.Context, role enums.Role, productID uuid.UUID) (decimal.Decimal, error) {
	productPricing, err := s.pricing.GetPricing(ctx, productID)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %s has no pricing", productID))
		}
		return decimal.Zero, err
	}
	return pricing.BasePrice(role, pricing.PriceInfo{
		RetailPrice: productPricing.RetailPrice,
		DealerPrice: productPricing.DealerPrice,
	}), nil
}

func stepFailure(step string, err error) error {
	if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order storage failure").
		WithDetails(map[string]any{"step": step})
}
