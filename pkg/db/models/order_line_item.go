package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmcastellanos/supplyline-backend/pkg/enums"
)

// OrderLineItem snapshots one product purchase at checkout time. Name, unit
// price and delivery fee are copied from the catalog so later edits to the
// product never rewrite history.
type OrderLineItem struct {
	ID                 uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID            uuid.UUID            `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID          uuid.UUID            `gorm:"column:product_id;type:uuid;not null"`
	SupplierBusinessID uuid.UUID            `gorm:"column:supplier_business_id;type:uuid;not null;index"`
	Name               string               `gorm:"column:name;not null"`
	Unit               string               `gorm:"column:unit;not null"`
	Quantity           int                  `gorm:"column:quantity;not null"`
	UnitPrice          decimal.Decimal      `gorm:"column:unit_price;type:numeric(12,2);not null"`
	BaseUnitPrice      decimal.Decimal      `gorm:"column:base_unit_price;type:numeric(12,2);not null"`
	DeliveryFee        decimal.Decimal      `gorm:"column:delivery_fee;type:numeric(12,2);not null;default:0"`
	Status             enums.LineItemStatus `gorm:"column:status;type:line_item_status;not null;default:'pending'"`
	CreatedAt          time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// LineTotal is Quantity * UnitPrice.
func (li OrderLineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}
