package businesses

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmcastellanos/supplyline-backend/pkg/db/models"
	"github.com/dmcastellanos/supplyline-backend/pkg/enums"
	"github.com/dmcastellanos/supplyline-backend/pkg/pagination"
)

// Repository handles business and branch persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to business operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create persists a new business row.
func (r *Repository) Create(ctx context.Context, dto CreateBusinessDTO) (*models.Business, error) {
	business := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(business).Error; err != nil {
		return nil, err
	}
	return business, nil
}

// FindByID loads a business by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	var business models.Business
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&business).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

// FindByIDs batch-loads businesses for profile enrichment.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Business, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Business
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByOwner returns all businesses owned by the provided user.
func (r *Repository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Business, error) {
	var rows []models.Business
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update saves the provided business.
func (r *Repository) Update(ctx context.Context, business *models.Business) error {
	if business == nil {
		return fmt.Errorf("business is required")
	}
	return r.db.WithContext(ctx).Save(business).Error
}

// UpdateLastActiveAt stamps the business as recently used.
func (r *Repository) UpdateLastActiveAt(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Business{}).
		Where("id = ?", id).
		Update("last_active_at", time.Now().UTC()).Error
}

// ListByApprovalStatus pages businesses in a given review state, newest first.
func (r *Repository) ListByApprovalStatus(ctx context.Context, status enums.ApprovalStatus, params pagination.Params) ([]models.Business, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.Business{}).
		Where("approval_status = ?", status).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Business
	if err := query.Find(&rows).Error; err != nil {
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

// UpdateApprovalStatus sets the admin review outcome on a business.
func (r *Repository) UpdateApprovalStatus(ctx context.Context, id uuid.UUID, status enums.ApprovalStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Business{}).
		Where("id = ?", id).
		Update("approval_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetSubscriptionActive flips the subscription flag on a supplier.
func (r *Repository) SetSubscriptionActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.Business{}).
		Where("id = ?", id).
		Update("subscription_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateBranch persists a delivery location for a restaurant.
func (r *Repository) CreateBranch(ctx context.Context, branch *models.Branch) error {
	if branch == nil {
		return fmt.Errorf("branch is required")
	}
	return r.db.WithContext(ctx).Create(branch).Error
}

// FindBranch loads a branch scoped to its business.
func (r *Repository) FindBranch(ctx context.Context, businessID, branchID uuid.UUID) (*models.Branch, error) {
	var branch models.Branch
	if err := r.db.WithContext(ctx).
		Where("id = ? AND business_id = ?", branchID, businessID).
		First(&branch).Error; err != nil {
		return nil, err
	}
	return &branch, nil
}

// ListBranches returns every branch of a business, defaults first.
func (r *Repository) ListBranches(ctx context.Context, businessID uuid.UUID) ([]models.Branch, error) {
	var rows []models.Branch
	if err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("is_default DESC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateBranch saves the provided branch.
func (r *Repository) UpdateBranch(ctx context.Context, branch *models.Branch) error {
	if branch == nil {
		return fmt.Errorf("branch is required")
	}
	return r.db.WithContext(ctx).Save(branch).Error
}

// ClearDefaultBranch unsets the default flag on all branches of a business.
func (r *Repository) ClearDefaultBranch(ctx context.Context, businessID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Branch{}).
		Where("business_id = ?", businessID).
		Update("is_default", false).Error
}

// DeleteBranch removes a branch scoped to its business.
func (r *Repository) DeleteBranch(ctx context.Context, businessID, branchID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND business_id = ?", branchID, businessID).
		Delete(&models.Branch{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
