package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmcastellanos/supplyline-backend/pkg/enums"
)

// Order is the single parent record for a restaurant checkout. Line items
// carry the supplier denormalization; settlement groups are derived from
// them at read time and never persisted.
type Order struct {
	ID                   uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber          string                  `gorm:"column:order_number;not null;uniqueIndex"`
	RestaurantBusinessID uuid.UUID               `gorm:"column:restaurant_business_id;type:uuid;not null;index"`
	PlacedByUserID       uuid.UUID               `gorm:"column:placed_by_user_id;type:uuid;not null"`
	BranchID             *uuid.UUID              `gorm:"column:branch_id;type:uuid"`
	FulfillmentMethod    enums.FulfillmentMethod `gorm:"column:fulfillment_method;type:fulfillment_method;not null;default:'delivery'"`
	DeliveryAddress      *string                 `gorm:"column:delivery_address"`
	DeliveryNotes        *string                 `gorm:"column:delivery_notes"`
	RequestedDeliveryAt  *time.Time              `gorm:"column:requested_delivery_at"`
	Subtotal             decimal.Decimal         `gorm:"column:subtotal;type:numeric(12,2);not null"`
	DeliveryFee          decimal.Decimal         `gorm:"column:delivery_fee;type:numeric(12,2);not null"`
	Total                decimal.Decimal         `gorm:"column:total;type:numeric(12,2);not null"`
	Status               enums.OrderStatus       `gorm:"column:status;type:order_status;not null;default:'pending'"`
	StatusSource         *string                 `gorm:"column:status_source"`
	LineItems            []OrderLineItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt            time.Time               `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt            time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
