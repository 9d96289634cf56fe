package payments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmcastellanos/supplyline-backend/pkg/db/models"
	"github.com/dmcastellanos/supplyline-backend/pkg/pagination"
)

// Repository handles persistence for payment notifications.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a payments repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByOrder loads all notifications attached to an order.
func (r *Repository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]models.PaymentNotification, error) {
	var rows []models.PaymentNotification
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads a notification by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PaymentNotification, error) {
	var row models.PaymentNotification
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByOrderAndSupplier loads the single notification for the pair.
func (r *Repository) FindByOrderAndSupplier(ctx context.Context, orderID, supplierBusinessID uuid.UUID) (*models.PaymentNotification, error) {
	var row models.PaymentNotification
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND supplier_business_id = ?", orderID, supplierBusinessID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Create inserts a new notification row.
func (r *Repository) Create(ctx context.Context, row *models.PaymentNotification) (*models.PaymentNotification, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// Update applies field updates to an existing notification.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.PaymentNotification{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// ListForSupplier pages through a supplier's incoming notifications.
func (r *Repository) ListForSupplier(ctx context.Context, supplierBusinessID uuid.UUID, params pagination.Params) ([]models.PaymentNotification, string, error) {
	query := r.db.WithContext(ctx).Model(&models.PaymentNotification{}).
		Where("supplier_business_id = ?", supplierBusinessID)
	return r.page(query, params)
}

// ListForRestaurant pages through a restaurant's outgoing notifications.
func (r *Repository) ListForRestaurant(ctx context.Context, restaurantBusinessID uuid.UUID, params pagination.Params) ([]models.PaymentNotification, string, error) {
	query := r.db.WithContext(ctx).Model(&models.PaymentNotification{}).
		Where("restaurant_business_id = ?", restaurantBusinessID)
	return r.page(query, params)
}

// ListAll pages every notification for admin review.
func (r *Repository) ListAll(ctx context.Context, params pagination.Params) ([]models.PaymentNotification, string, error) {
	return r.page(r.db.WithContext(ctx).Model(&models.PaymentNotification{}), params)
}

func (r *Repository) page(query *gorm.DB, params pagination.Params) ([]models.PaymentNotification, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var rows []models.PaymentNotification
	err = query.
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, "", err
	}

	var next string
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, next, nil
}
