package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmcastellanos/supplyline-backend/pkg/enums"
	"github.com/dmcastellanos/supplyline-backend/pkg/types"
)

// Business represents the canonical tenant model: one row per restaurant
// or supplier registered on the marketplace.
type Business struct {
	ID                 uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Type               enums.BusinessType   `gorm:"column:type;type:business_type;not null"`
	CompanyName        string               `gorm:"column:company_name;not null"`
	TradingName        *string              `gorm:"column:trading_name"`
	Description        *string              `gorm:"column:description"`
	Phone              *string              `gorm:"column:phone"`
	Email              *string              `gorm:"column:email"`
	Address            *string              `gorm:"column:address"`
	City               *string              `gorm:"column:city"`
	ApprovalStatus     enums.ApprovalStatus `gorm:"column:approval_status;type:approval_status;not null;default:'pending_approval'"`
	SubscriptionActive bool                 `gorm:"column:subscription_active;not null;default:false"`
	BankDetails        *types.BankDetails   `gorm:"column:bank_details;type:jsonb"`
	LogoURL            *string              `gorm:"column:logo_url"`
	OwnerID            uuid.UUID            `gorm:"column:owner_id;type:uuid;not null"`
	LastActiveAt       *time.Time           `gorm:"column:last_active_at"`
	CreatedAt          time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
