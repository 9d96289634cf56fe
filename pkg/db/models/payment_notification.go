package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentNotification records a restaurant's claim that it settled a
// supplier's portion of an order, together with the supplier's
// acknowledgement. One row per (order, supplier) pair.
type PaymentNotification struct {
	ID                   uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID              *uuid.UUID `gorm:"column:order_id;type:uuid;uniqueIndex:idx_payment_order_supplier"`
	SupplierBusinessID   uuid.UUID  `gorm:"column:supplier_business_id;type:uuid;not null;uniqueIndex:idx_payment_order_supplier"`
	RestaurantBusinessID uuid.UUID  `gorm:"column:restaurant_business_id;type:uuid;not null;index"`
	ReportedByUserID     uuid.UUID  `gorm:"column:reported_by_user_id;type:uuid;not null"`
	IsPaid               bool       `gorm:"column:is_paid;not null;default:false"`
	ConfirmedAt          *time.Time `gorm:"column:confirmed_at"`
	Reference            *string    `gorm:"column:reference"`
	ReceiptURL           *string    `gorm:"column:receipt_url"`
	Note                 *string    `gorm:"column:note"`
	CreatedAt            time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the ID client-side so rows get a usable primary key
// on databases without gen_random_uuid().
func (n *PaymentNotification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
