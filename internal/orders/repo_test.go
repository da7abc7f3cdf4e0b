package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tru-distribution/orderdesk-backend/pkg/db/models"
	pkgerrors "github.com/tru-distribution/orderdesk-backend/pkg/errors"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:orderstest?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  order_number TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  discount INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (order_id, product_id)
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	return db
}

func seedPersistedOrder(t *testing.T, repo *Repository, lineCount int) *models.Order {
	t.Helper()

	order := &models.Order{ID: uuid.New(), UserID: uuid.New()}
	for i := 0; i < lineCount; i++ {
		order.Items = append(order.Items, models.OrderItem{
			ID:              uuid.New(),
			OrderID:         order.ID,
			ProductID:       uuid.New(),
			Quantity:        i + 1,
			UnitPrice:       decimal.NewFromInt(int64(1000 * (i + 1))),
			DiscountPercent: 0,
		})
	}
	require.NoError(t, repo.CreateOrder(context.Background(), order))
	return order
}

func TestRepositoryCreateAndGetOrder(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	seeded := seedPersistedOrder(t, repo, 2)

	found, err := repo.GetOrder(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded.UserID, found.UserID)
	assert.Len(t, found.Items, 2)
}

func TestRepositoryGetOrderNotFound(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))

	_, err := repo.GetOrder(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestRepositoryDeleteItemsRemovesOnlyGivenProducts(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	seeded := seedPersistedOrder(t, repo, 3)
	ctx := context.Background()

	err := repo.DeleteItems(ctx, seeded.ID, []uuid.UUID{seeded.Items[0].ProductID})
	require.NoError(t, err)

	items, err := repo.GetOrderItems(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	for _, item := range items {
		assert.NotEqual(t, seeded.Items[0].ProductID, item.ProductID)
	}
}

func TestRepositoryUpdateItemRewritesQuantityAndDiscount(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	seeded := seedPersistedOrder(t, repo, 1)
	ctx := context.Background()

	err := repo.UpdateItem(ctx, &models.OrderItem{
		OrderID:         seeded.ID,
		ProductID:       seeded.Items[0].ProductID,
		Quantity:        9,
		DiscountPercent: 6,
	})
	require.NoError(t, err)

	items, err := repo.GetOrderItems(ctx, seeded.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 9, items[0].Quantity)
	assert.Equal(t, 6, items[0].DiscountPercent)
	assert.True(t, items[0].UnitPrice.Equal(seeded.Items[0].UnitPrice))
}

func TestRepositoryInsertItemsAppendsLines(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	seeded := seedPersistedOrder(t, repo, 1)
	ctx := context.Background()

	err := repo.InsertItems(ctx, []models.OrderItem{{
		ID:              uuid.New(),
		OrderID:         seeded.ID,
		ProductID:       uuid.New(),
		Quantity:        4,
		UnitPrice:       decimal.NewFromInt(2500),
		DiscountPercent: 2,
	}})
	require.NoError(t, err)

	items, err := repo.GetOrderItems(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}
