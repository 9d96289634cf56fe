package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmcastellanos/supplyline-backend/internal/settlement"
	"github.com/dmcastellanos/supplyline-backend/pkg/db/models"
	"github.com/dmcastellanos/supplyline-backend/pkg/enums"
)

// CreateOrderItemInput is one requested product line at checkout.
type CreateOrderItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// CreateOrderInput carries everything needed to place an order.
type CreateOrderInput struct {
	RestaurantBusinessID uuid.UUID
	PlacedByUserID       uuid.UUID
	BranchID             *uuid.UUID
	FulfillmentMethod    enums.FulfillmentMethod
	DeliveryAddress      *string
	DeliveryNotes        *string
	RequestedDeliveryAt  *time.Time
	Items                []CreateOrderItemInput
}

// OrderFilters describe the inputs supported by the order lists.
type OrderFilters struct {
	Status   *enums.OrderStatus
	DateFrom *time.Time
	DateTo   *time.Time
}

// BusinessSummary is the counterparty summary embedded in list rows.
type BusinessSummary struct {
	ID          uuid.UUID `json:"id"`
	CompanyName string    `json:"company_name"`
	TradingName *string   `json:"trading_name,omitempty"`
	LogoURL     *string   `json:"logo_url,omitempty"`
}

// OrderSummary is one row of an order list.
type OrderSummary struct {
	ID                uuid.UUID               `json:"id"`
	OrderNumber       string                  `json:"order_number"`
	CreatedAt         time.Time               `json:"created_at"`
	Status            enums.OrderStatus       `json:"status"`
	FulfillmentMethod enums.FulfillmentMethod `json:"fulfillment_method"`
	Subtotal          decimal.Decimal         `json:"subtotal"`
	DeliveryFee       decimal.Decimal         `json:"delivery_fee"`
	Total             decimal.Decimal         `json:"total"`
	TotalItems        int                     `json:"total_items"`
	Restaurant        *BusinessSummary        `json:"restaurant,omitempty"`
}

// OrderList wraps a page of orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// OrderDetail is the full order view: the persisted order plus the derived
// per-supplier settlement groups.
type OrderDetail struct {
	Order  models.Order       `json:"order"`
	Groups []settlement.Group `json:"supplier_groups"`
}

// SupplierOrderView is an order scoped to one supplier's line items.
type SupplierOrderView struct {
	Order models.Order     `json:"order"`
	Group settlement.Group `json:"group"`
}

// BulkLineItemUpdateInput captures a supplier's bulk status change on its
// line items within one order.
type BulkLineItemUpdateInput struct {
	OrderID            uuid.UUID
	SupplierBusinessID uuid.UUID
	ActorUserID        uuid.UUID
	LineItemIDs        []uuid.UUID
	TargetStatus       enums.LineItemStatus
}
