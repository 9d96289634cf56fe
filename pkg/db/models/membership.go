package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/dmcastellanos/supplyline-backend/pkg/enums"
)

// BusinessMembership binds a user to a business with a role and a set of
// granular permission grants.
type BusinessMembership struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BusinessID      uuid.UUID              `gorm:"column:business_id;type:uuid;not null;uniqueIndex:idx_membership_business_user"`
	UserID          uuid.UUID              `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_membership_business_user"`
	Role            enums.MemberRole       `gorm:"column:role;type:member_role;not null"`
	Status          enums.MembershipStatus `gorm:"column:status;type:membership_status;not null;default:'invited'"`
	Permissions     pq.StringArray         `gorm:"column:permissions;type:text[];not null;default:ARRAY[]::text[]"`
	InvitedByUserID *uuid.UUID             `gorm:"column:invited_by_user_id;type:uuid"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// HasPermission reports whether the membership grants the permission. Owners
// implicitly hold every permission.
func (m BusinessMembership) HasPermission(p enums.Permission) bool {
	if m.Role == enums.MemberRoleOwner {
		return true
	}
	for _, granted := range m.Permissions {
		if granted == string(p) {
			return true
		}
	}
	return false
}
