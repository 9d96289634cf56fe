package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmcastellanos/supplyline-backend/internal/settlement"
	"github.com/dmcastellanos/supplyline-backend/pkg/enums"
)

// QuoteItemInput is one requested product line in a quote request.
type QuoteItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// QuoteInput is the full quote request.
type QuoteInput struct {
	RestaurantBusinessID uuid.UUID
	Items                []QuoteItemInput
}

// QuoteWarning flags a line the quote had to adjust or drop.
type QuoteWarning struct {
	ProductID uuid.UUID `json:"product_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
}

const (
	// WarningQuantityRaised marks lines bumped up to the product minimum.
	WarningQuantityRaised = "quantity_raised_to_minimum"
	// WarningUnavailable marks lines dropped because the product is gone.
	WarningUnavailable = "product_unavailable"
)

// QuoteLine is one priced line of the quote.
type QuoteLine struct {
	ProductID          uuid.UUID       `json:"product_id"`
	SupplierBusinessID uuid.UUID       `json:"supplier_business_id"`
	Name               string          `json:"name"`
	Unit               string          `json:"unit"`
	Quantity           int             `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	BaseUnitPrice      decimal.Decimal `json:"base_unit_price"`
	SavingsPercent     int             `json:"savings_percent"`
	AppliedTierMinQty  *int            `json:"applied_tier_min_qty,omitempty"`
	LineTotal          decimal.Decimal `json:"line_total"`
}

// Quote is the priced cart: lines, per-supplier groups and order totals as
// they would be snapshotted if the cart were placed right now.
type Quote struct {
	Lines       []QuoteLine             `json:"lines"`
	Groups      []settlement.Group      `json:"supplier_groups"`
	Subtotal    decimal.Decimal         `json:"subtotal"`
	DeliveryFee decimal.Decimal         `json:"delivery_fee"`
	Total       decimal.Decimal         `json:"total"`
	Warnings    []QuoteWarning          `json:"warnings,omitempty"`
	Fulfillment enums.FulfillmentMethod `json:"fulfillment_method"`
}
