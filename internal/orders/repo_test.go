package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dmcastellanos/supplyline-backend/pkg/db/models"
	"github.com/dmcastellanos/supplyline-backend/pkg/enums"
	"github.com/dmcastellanos/supplyline-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	businesses := `
CREATE TABLE IF NOT EXISTS businesses (
  id TEXT PRIMARY KEY,
  type TEXT NOT NULL,
  company_name TEXT NOT NULL,
  trading_name TEXT,
  description TEXT,
  phone TEXT,
  email TEXT,
  address TEXT,
  city TEXT,
  approval_status TEXT NOT NULL DEFAULT 'pending_approval',
  subscription_active INTEGER NOT NULL DEFAULT 0,
  bank_details TEXT,
  logo_url TEXT,
  owner_id TEXT NOT NULL,
  last_active_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL,
  restaurant_business_id TEXT NOT NULL,
  placed_by_user_id TEXT NOT NULL,
  branch_id TEXT,
  fulfillment_method TEXT NOT NULL DEFAULT 'delivery',
  delivery_address TEXT,
  delivery_notes TEXT,
  requested_delivery_at DATETIME,
  subtotal TEXT NOT NULL,
  delivery_fee TEXT NOT NULL,
  total TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  status_source TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	lineItems := `
CREATE TABLE IF NOT EXISTS order_line_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  supplier_business_id TEXT NOT NULL,
  name TEXT NOT NULL,
  unit TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price TEXT NOT NULL,
  base_unit_price TEXT NOT NULL,
  delivery_fee TEXT NOT NULL DEFAULT '0',
  status TEXT NOT NULL DEFAULT 'pending',
  created_at DATETIME,
  updated_at DATETIME
);`
	for _, stmt := range []string{businesses, orders, lineItems} {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, restaurantID, supplierID uuid.UUID, createdAt time.Time) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:                   uuid.New(),
		OrderNumber:          newOrderNumber(),
		RestaurantBusinessID: restaurantID,
		PlacedByUserID:       uuid.New(),
		FulfillmentMethod:    enums.FulfillmentMethodDelivery,
		Subtotal:             decimal.RequireFromString("100"),
		DeliveryFee:          decimal.RequireFromString("10"),
		Total:                decimal.RequireFromString("110"),
		Status:               enums.OrderStatusPending,
		CreatedAt:            createdAt,
		LineItems: []models.OrderLineItem{
			{
				ID:                 uuid.New(),
				ProductID:          uuid.New(),
				SupplierBusinessID: supplierID,
				Name:               "Tomatoes 10kg",
				Unit:               "crate",
				Quantity:           4,
				UnitPrice:          decimal.RequireFromString("25"),
				BaseUnitPrice:      decimal.RequireFromString("25"),
				DeliveryFee:        decimal.RequireFromString("10"),
				Status:             enums.LineItemStatusPending,
				CreatedAt:          createdAt,
			},
		},
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestRepositoryCreateAndFindOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, uuid.New(), uuid.New(), time.Now().UTC())

	found, err := repo.FindOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, found.OrderNumber)
	require.Len(t, found.LineItems, 1)
	assert.True(t, found.LineItems[0].UnitPrice.Equal(decimal.RequireFromString("25")))
}

func TestRepositoryListRestaurantOrdersPagination(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	restaurantID := uuid.New()
	supplierID := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		seedOrder(t, db, restaurantID, supplierID, base.Add(time.Duration(i)*time.Minute))
	}
	// Another restaurant's order must not leak into the list.
	seedOrder(t, db, uuid.New(), supplierID, base)

	page, err := repo.ListRestaurantOrders(ctx, restaurantID, pagination.Params{Limit: 2}, OrderFilters{})
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)
	require.NotEmpty(t, page.NextCursor)

	rest, err := repo.ListRestaurantOrders(ctx, restaurantID, pagination.Params{Limit: 2, Cursor: page.NextCursor}, OrderFilters{})
	require.NoError(t, err)
	require.Len(t, rest.Orders, 1)
	assert.Empty(t, rest.NextCursor)

	// Newest first across both pages.
	assert.True(t, page.Orders[0].CreatedAt.After(page.Orders[1].CreatedAt))
	assert.True(t, page.Orders[1].CreatedAt.After(rest.Orders[0].CreatedAt))
}

func TestRepositoryListSupplierOrders(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	restaurantID := uuid.New()
	supplierID := uuid.New()
	require.NoError(t, db.Create(&models.Business{
		ID:          restaurantID,
		Type:        enums.BusinessTypeRestaurant,
		CompanyName: "Fireside Grill",
		OwnerID:     uuid.New(),
	}).Error)

	seedOrder(t, db, restaurantID, supplierID, time.Now().UTC())
	seedOrder(t, db, restaurantID, uuid.New(), time.Now().UTC())

	page, err := repo.ListSupplierOrders(ctx, supplierID, pagination.Params{}, OrderFilters{})
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	require.NotNil(t, page.Orders[0].Restaurant)
	assert.Equal(t, "Fireside Grill", page.Orders[0].Restaurant.CompanyName)
}

func TestRepositoryStatusFilter(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	restaurantID := uuid.New()
	order := seedOrder(t, db, restaurantID, uuid.New(), time.Now().UTC())
	require.NoError(t, repo.UpdateOrderStatus(ctx, order.ID, enums.OrderStatusShipped, enums.OrderStatusSourceSupplierAction))
	seedOrder(t, db, restaurantID, uuid.New(), time.Now().UTC())

	shipped := enums.OrderStatusShipped
	page, err := repo.ListRestaurantOrders(ctx, restaurantID, pagination.Params{}, OrderFilters{Status: &shipped})
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, enums.OrderStatusShipped, page.Orders[0].Status)
}

func TestRepositoryUpdateLineItemStatuses(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, uuid.New(), uuid.New(), time.Now().UTC())
	ids := []uuid.UUID{order.LineItems[0].ID}
	require.NoError(t, repo.UpdateLineItemStatuses(ctx, ids, enums.LineItemStatusShipped))

	items, err := repo.FindLineItems(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, enums.LineItemStatusShipped, items[0].Status)
}
