package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceTier captures one quantity breakpoint of a product's volume pricing.
// Quantities at or above MinQty buy at UnitPrice instead of the base price.
type PriceTier struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID          uuid.UUID       `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_price_tier_product_min_qty"`
	SupplierBusinessID uuid.UUID       `gorm:"column:supplier_business_id;type:uuid;not null"`
	MinQty             int             `gorm:"column:min_qty;not null;uniqueIndex:idx_price_tier_product_min_qty"`
	UnitPrice          decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
}
