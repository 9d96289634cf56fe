package subscriptions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmcastellanos/supplyline-backend/pkg/db/models"
	"github.com/dmcastellanos/supplyline-backend/pkg/enums"
)

// Repository handles subscription persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to subscription operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create persists a new subscription row.
func (r *Repository) Create(ctx context.Context, sub *models.Subscription) error {
	if sub == nil {
		return fmt.Errorf("subscription is required")
	}
	return r.db.WithContext(ctx).Create(sub).Error
}

// FindByBusiness loads the subscription of a business.
func (r *Repository) FindByBusiness(ctx context.Context, businessID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// Update saves the provided subscription.
func (r *Repository) Update(ctx context.Context, sub *models.Subscription) error {
	if sub == nil {
		return fmt.Errorf("subscription is required")
	}
	return r.db.WithContext(ctx).Save(sub).Error
}

// ListExpiredActive returns active subscriptions whose window has passed,
// oldest expiry first, capped at limit rows per sweep batch.
func (r *Repository) ListExpiredActive(ctx context.Context, before time.Time, limit int) ([]models.Subscription, error) {
	var rows []models.Subscription
	if err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at < ?", enums.SubscriptionStatusActive, before).
		Order("expires_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkExpired flips an active subscription to expired. Returns gorm's
// not-found error when the row was already swept by a concurrent worker.
func (r *Repository) MarkExpired(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id = ? AND status = ?", id, enums.SubscriptionStatusActive).
		Update("status", enums.SubscriptionStatusExpired)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
