package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/dmcastellanos/supplyline-backend/pkg/db/types"
)

// User represents the canonical identity entity.
//
// is_active and business_ids carry no gorm default: a default makes gorm
// drop zero values from the INSERT, so false (or an empty array) would
// silently store the column default. The service layer always sets both.
type User struct {
	ID           uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string            `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string            `gorm:"column:password_hash;not null"`
	FirstName    string            `gorm:"column:first_name;not null"`
	LastName     string            `gorm:"column:last_name;not null"`
	Phone        *string           `gorm:"column:phone"`
	IsActive     bool              `gorm:"column:is_active;not null"`
	LastLoginAt  *time.Time        `gorm:"column:last_login_at"`
	SystemRole   *string           `gorm:"column:system_role"`
	BusinessIDs  dbtypes.UUIDArray `gorm:"type:uuid[];column:business_ids;not null"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
