package payments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dmcastellanos/supplyline-backend/pkg/db/models"
	"github.com/dmcastellanos/supplyline-backend/pkg/pagination"
)

func setupPaymentsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS payment_notifications (
  id TEXT PRIMARY KEY NOT NULL,
  order_id TEXT,
  supplier_business_id TEXT NOT NULL,
  restaurant_business_id TEXT NOT NULL,
  reported_by_user_id TEXT NOT NULL,
  is_paid INTEGER NOT NULL DEFAULT 0,
  confirmed_at DATETIME,
  reference TEXT,
  receipt_url TEXT,
  note TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	index := `
CREATE UNIQUE INDEX IF NOT EXISTS idx_payment_order_supplier
  ON payment_notifications (order_id, supplier_business_id);`
	for _, stmt := range []string{schema, index} {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedNotification(t *testing.T, db *gorm.DB, orderID, supplierID, restaurantID uuid.UUID, createdAt time.Time) *models.PaymentNotification {
	t.Helper()

	row := &models.PaymentNotification{
		ID:                   uuid.New(),
		OrderID:              &orderID,
		SupplierBusinessID:   supplierID,
		RestaurantBusinessID: restaurantID,
		ReportedByUserID:     uuid.New(),
		IsPaid:               true,
		CreatedAt:            createdAt,
	}
	require.NoError(t, db.Create(row).Error)
	return row
}

func TestRepositoryFindByOrderAndSupplier(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	orderID, supplierID, restaurantID := uuid.New(), uuid.New(), uuid.New()
	seedNotification(t, db, orderID, supplierID, restaurantID, time.Now().UTC())

	found, err := repo.FindByOrderAndSupplier(ctx, orderID, supplierID)
	require.NoError(t, err)
	assert.True(t, found.IsPaid)

	_, err = repo.FindByOrderAndSupplier(ctx, orderID, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListForSupplierPagination(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	supplierID := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		seedNotification(t, db, uuid.New(), supplierID, uuid.New(), base.Add(time.Duration(i)*time.Minute))
	}
	seedNotification(t, db, uuid.New(), uuid.New(), uuid.New(), base)

	rows, next, err := repo.ListForSupplier(ctx, supplierID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotEmpty(t, next)

	rest, last, err := repo.ListForSupplier(ctx, supplierID, pagination.Params{Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Empty(t, last)
}

func TestRepositoryUpdate(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	row := seedNotification(t, db, uuid.New(), uuid.New(), uuid.New(), time.Now().UTC())
	now := time.Now().UTC()
	require.NoError(t, repo.Update(ctx, row.ID, map[string]any{"confirmed_at": now, "reference": "EFT-88"}))

	var reloaded models.PaymentNotification
	require.NoError(t, db.Where("id = ?", row.ID).First(&reloaded).Error)
	require.NotNil(t, reloaded.ConfirmedAt)
	require.NotNil(t, reloaded.Reference)
	assert.Equal(t, "EFT-88", *reloaded.Reference)
}
