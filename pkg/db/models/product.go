package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a supplier catalog listing.
//
// is_active carries no gorm default: gorm drops zero-valued fields with a
// default from the INSERT, which would store inactive products as active.
// The service layer always sets it explicitly.
type Product struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SupplierBusinessID uuid.UUID       `gorm:"column:supplier_business_id;type:uuid;not null"`
	CategoryID         *uuid.UUID      `gorm:"column:category_id;type:uuid"`
	Name               string          `gorm:"column:name;not null"`
	Description        *string         `gorm:"column:description"`
	Unit               string          `gorm:"column:unit;not null;default:'unit'"`
	BasePrice          decimal.Decimal `gorm:"column:base_price;type:numeric(12,2);not null"`
	DeliveryFee        decimal.Decimal `gorm:"column:delivery_fee;type:numeric(12,2);not null;default:0"`
	MinOrderQty        int             `gorm:"column:min_order_qty;not null;default:1"`
	IsActive           bool            `gorm:"column:is_active;not null"`
	ImageURL           *string         `gorm:"column:image_url"`
	PriceTiers         []PriceTier     `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
