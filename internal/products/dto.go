package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmcastellanos/supplyline-backend/pkg/db/models"
	"github.com/dmcastellanos/supplyline-backend/pkg/pricing"
)

// PriceTierDTO represents one quantity breakpoint, with the savings relative
// to the base price precomputed for display.
type PriceTierDTO struct {
	ID             uuid.UUID       `json:"id"`
	MinQty         int             `json:"min_qty"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	SavingsPercent int             `json:"savings_percent"`
}

// SupplierSummaryDTO surfaces limited supplier data for product responses.
type SupplierSummaryDTO struct {
	BusinessID  uuid.UUID `json:"business_id"`
	CompanyName string    `json:"company_name"`
	LogoURL     *string   `json:"logo_url,omitempty"`
}

// ProductDTO represents the catalog product payload returned to clients.
type ProductDTO struct {
	ID          uuid.UUID           `json:"id"`
	Name        string              `json:"name"`
	Description *string             `json:"description,omitempty"`
	CategoryID  *uuid.UUID          `json:"category_id,omitempty"`
	Unit        string              `json:"unit"`
	BasePrice   decimal.Decimal     `json:"base_price"`
	DeliveryFee decimal.Decimal     `json:"delivery_fee"`
	MinOrderQty int                 `json:"min_order_qty"`
	IsActive    bool                `json:"is_active"`
	ImageURL    *string             `json:"image_url,omitempty"`
	PriceTiers  []PriceTierDTO      `json:"price_tiers,omitempty"`
	Supplier    *SupplierSummaryDTO `json:"supplier,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// NewProductDTO builds a DTO from the persisted model and supplier summary.
func NewProductDTO(product *models.Product, supplier *models.Business) *ProductDTO {
	dto := &ProductDTO{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		CategoryID:  product.CategoryID,
		Unit:        product.Unit,
		BasePrice:   product.BasePrice,
		DeliveryFee: product.DeliveryFee,
		MinOrderQty: product.MinOrderQty,
		IsActive:    product.IsActive,
		ImageURL:    product.ImageURL,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
	if len(product.PriceTiers) > 0 {
		dto.PriceTiers = make([]PriceTierDTO, len(product.PriceTiers))
		for i, tier := range product.PriceTiers {
			dto.PriceTiers[i] = PriceTierDTO{
				ID:             tier.ID,
				MinQty:         tier.MinQty,
				UnitPrice:      tier.UnitPrice,
				SavingsPercent: pricing.SavingsPercent(product.BasePrice, tier.UnitPrice),
			}
		}
	}
	if supplier != nil {
		dto.Supplier = &SupplierSummaryDTO{
			BusinessID:  supplier.ID,
			CompanyName: supplier.CompanyName,
			LogoURL:     supplier.LogoURL,
		}
	}
	return dto
}

// PriceTierInput defines one tier of the wholesale tier replacement.
type PriceTierInput struct {
	MinQty    int             `json:"min_qty" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"required"`
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name        string
	Description *string
	CategoryID  *uuid.UUID
	Unit        string
	BasePrice   decimal.Decimal
	DeliveryFee decimal.Decimal
	MinOrderQty int
	IsActive    bool
	ImageURL    *string
	PriceTiers  []PriceTierInput
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name        *string
	Description *string
	CategoryID  *uuid.UUID
	Unit        *string
	BasePrice   *decimal.Decimal
	DeliveryFee *decimal.Decimal
	MinOrderQty *int
	IsActive    *bool
	ImageURL    *string
}
