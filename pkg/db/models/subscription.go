package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmcastellanos/supplyline-backend/pkg/enums"
)

// Subscription tracks a business's platform access window. Access is
// granted by admins in whole-month extensions and swept to expired by the
// cron worker once ExpiresAt passes.
type Subscription struct {
	ID                uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BusinessID        uuid.UUID                `gorm:"column:business_id;type:uuid;not null;uniqueIndex"`
	Status            enums.SubscriptionStatus `gorm:"column:status;type:subscription_status;not null;default:'active'"`
	ExpiresAt         time.Time                `gorm:"column:expires_at;not null;index"`
	LastExtendedBy    *uuid.UUID               `gorm:"column:last_extended_by;type:uuid"`
	LastExtendedMonth int                      `gorm:"column:last_extended_months;not null;default:0"`
	CreatedAt         time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
