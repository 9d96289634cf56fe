package product

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmcastellanos/supplyline-backend/pkg/pagination"
)

// ProductListFilters describe the supported filter knobs for catalog browsing.
type ProductListFilters struct {
	CategoryID       *uuid.UUID       `json:"category_id,omitempty"`
	SupplierID       *uuid.UUID       `json:"supplier_id,omitempty"`
	PriceMin         *decimal.Decimal `json:"price_min,omitempty"`
	PriceMax         *decimal.Decimal `json:"price_max,omitempty"`
	HasTieredPricing *bool            `json:"has_tiered_pricing,omitempty"`
	Query            string           `json:"q,omitempty"`
}

// ListProductsInput captures the inputs needed to paginate and filter the catalog.
type ListProductsInput struct {
	Filters       ProductListFilters
	Pagination    pagination.Params
	IncludeHidden bool
}

// ProductListResult wraps a catalog page plus the next page cursor.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}
