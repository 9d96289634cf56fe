package memberships

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/dmcastellanos/supplyline-backend/pkg/db/models"
	"github.com/dmcastellanos/supplyline-backend/pkg/enums"
)

// Repository exposes membership persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListUserBusinesses returns the businesses a user belongs to along with membership metadata.
func (r *Repository) ListUserBusinesses(ctx context.Context, userID uuid.UUID) ([]MembershipWithBusiness, error) {
	var rows []membershipWithBusinessRow

	err := r.db.WithContext(ctx).
		Model(&models.BusinessMembership{}).
		Select("business_memberships.*, businesses.company_name AS business_name, businesses.type AS business_type").
		Joins("JOIN businesses ON businesses.id = business_memberships.business_id").
		Where("business_memberships.user_id = ?", userID).
		Order("businesses.company_name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return membershipRowsToDTO(rows), nil
}

// GetMembership retrieves a membership by user and business.
func (r *Repository) GetMembership(ctx context.Context, userID, businessID uuid.UUID) (*models.BusinessMembership, error) {
	var membership models.BusinessMembership
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND business_id = ?", userID, businessID).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// CreateMembership persists a new membership record.
func (r *Repository) CreateMembership(ctx context.Context, businessID, userID uuid.UUID, role enums.MemberRole, permissions []enums.Permission, invitedBy *uuid.UUID, status enums.MembershipStatus) (*models.BusinessMembership, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid member role %q", role)
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid membership status %q", status)
	}
	grants := make(pq.StringArray, 0, len(permissions))
	for _, p := range permissions {
		if !p.IsValid() {
			return nil, fmt.Errorf("invalid permission %q", p)
		}
		grants = append(grants, string(p))
	}

	membership := &models.BusinessMembership{
		BusinessID:      businessID,
		UserID:          userID,
		Role:            role,
		Status:          status,
		Permissions:     grants,
		InvitedByUserID: invitedBy,
	}

	if err := r.db.WithContext(ctx).Create(membership).Error; err != nil {
		return nil, err
	}
	return membership, nil
}

// UpdatePermissions replaces the membership's permission grants.
func (r *Repository) UpdatePermissions(ctx context.Context, businessID, userID uuid.UUID, permissions []enums.Permission) error {
	grants := make(pq.StringArray, 0, len(permissions))
	for _, p := range permissions {
		if !p.IsValid() {
			return fmt.Errorf("invalid permission %q", p)
		}
		grants = append(grants, string(p))
	}
	return r.db.WithContext(ctx).
		Model(&models.BusinessMembership{}).
		Where("business_id = ? AND user_id = ?", businessID, userID).
		Update("permissions", grants).Error
}

// UpdateStatus moves the membership to a new lifecycle status.
func (r *Repository) UpdateStatus(ctx context.Context, businessID, userID uuid.UUID, status enums.MembershipStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid membership status %q", status)
	}
	return r.db.WithContext(ctx).
		Model(&models.BusinessMembership{}).
		Where("business_id = ? AND user_id = ?", businessID, userID).
		Update("status", status).Error
}

// UserHasRole reports whether the user holds one of the provided roles for the business.
func (r *Repository) UserHasRole(ctx context.Context, userID, businessID uuid.UUID, roles ...enums.MemberRole) (bool, error) {
	if len(roles) == 0 {
		return false, nil
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BusinessMembership{}).
		Where("user_id = ? AND business_id = ? AND status = ? AND role IN ?", userID, businessID, enums.MembershipStatusActive, roles).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UserHasPermission reports whether the user's active membership grants the
// permission. Owners pass implicitly.
func (r *Repository) UserHasPermission(ctx context.Context, userID, businessID uuid.UUID, permission enums.Permission) (bool, error) {
	membership, err := r.GetMembership(ctx, userID, businessID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}
	if membership.Status != enums.MembershipStatusActive {
		return false, nil
	}
	return membership.HasPermission(permission), nil
}

// GetMembershipWithBusiness returns membership details joined with business metadata.
func (r *Repository) GetMembershipWithBusiness(ctx context.Context, userID, businessID uuid.UUID) (*MembershipWithBusiness, error) {
	var row membershipWithBusinessRow
	err := r.db.WithContext(ctx).
		Model(&models.BusinessMembership{}).
		Select("business_memberships.*, businesses.company_name AS business_name, businesses.type AS business_type").
		Joins("JOIN businesses ON businesses.id = business_memberships.business_id").
		Where("business_memberships.user_id = ? AND business_memberships.business_id = ?", userID, businessID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	dto := membershipWithBusinessFromRow(row)
	return &dto, nil
}

// ListBusinessUsers returns memberships for the business along with user metadata.
func (r *Repository) ListBusinessUsers(ctx context.Context, businessID uuid.UUID) ([]BusinessUserDTO, error) {
	var rows []businessUserRow
	err := r.db.WithContext(ctx).
		Model(&models.BusinessMembership{}).
		Select("business_memberships.*, users.email, users.first_name, users.last_name, users.last_login_at").
		Joins("JOIN users ON users.id = business_memberships.user_id").
		Where("business_memberships.business_id = ?", businessID).
		Order("business_memberships.created_at").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return businessUsersFromRows(rows), nil
}

// DeleteMembership removes the membership row for the business/user pair.
func (r *Repository) DeleteMembership(ctx context.Context, businessID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("business_id = ? AND user_id = ?", businessID, userID).
		Delete(&models.BusinessMembership{}).Error
}

// CountMembersWithRoles counts active members holding any of the roles.
func (r *Repository) CountMembersWithRoles(ctx context.Context, businessID uuid.UUID, roles ...enums.MemberRole) (int64, error) {
	if len(roles) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BusinessMembership{}).
		Where("business_id = ? AND role IN ?", businessID, roles).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
