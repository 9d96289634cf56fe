// Package cart prices a restaurant's cart without persisting anything. The
// quote reuses the same pricing and settlement code paths as order creation,
// so the numbers a restaurant sees are the numbers that get snapshotted.
package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmcastellanos/supplyline-backend/internal/settlement"
	"github.com/dmcastellanos/supplyline-backend/pkg/db/models"
	"github.com/dmcastellanos/supplyline-backend/pkg/enums"
	pkgerrors "github.com/dmcastellanos/supplyline-backend/pkg/errors"
	"github.com/dmcastellanos/supplyline-backend/pkg/pricing"
)

// ProductReader loads purchasable products with their price tiers.
type ProductReader interface {
	FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// Service exposes cart quoting.
type Service interface {
	Quote(ctx context.Context, input QuoteInput) (*Quote, error)
}

type service struct {
	products ProductReader
}

// NewService constructs a cart quote service.
func NewService(products ProductReader) (Service, error) {
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	return &service{products: products}, nil
}

// Quote prices the requested items. Unavailable products are dropped with a
// warning rather than failing the whole quote; quantities below a product's
// minimum are raised to it.
func (s *service) Quote(ctx context.Context, input QuoteInput) (*Quote, error) {
	if input.RestaurantBusinessID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "business context missing")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote requires at least one item")
	}

	quantities := make(map[uuid.UUID]int, len(input.Items))
	ids := make([]uuid.UUID, 0, len(input.Items))
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		if _, ok := quantities[item.ProductID]; ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate product in quote items")
		}
		quantities[item.ProductID] = item.Quantity
		ids = append(ids, item.ProductID)
	}

	products, err := s.products.FindActiveByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	byID := make(map[uuid.UUID]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	quote := &Quote{Fulfillment: enums.FulfillmentMethodDelivery}
	lineItems := make([]models.OrderLineItem, 0, len(ids))
	for _, id := range ids {
		product, ok := byID[id]
		if !ok {
			quote.Warnings = append(quote.Warnings, QuoteWarning{
				ProductID: id,
				Type:      WarningUnavailable,
				Message:   "product is no longer available",
			})
			continue
		}

		qty := quantities[id]
		if qty < product.MinOrderQty {
			quote.Warnings = append(quote.Warnings, QuoteWarning{
				ProductID: id,
				Type:      WarningQuantityRaised,
				Message:   fmt.Sprintf("quantity raised to minimum of %d", product.MinOrderQty),
			})
			qty = product.MinOrderQty
		}

		line := QuoteLine{
			ProductID:          product.ID,
			SupplierBusinessID: product.SupplierBusinessID,
			Name:               product.Name,
			Unit:               product.Unit,
			Quantity:           qty,
			BaseUnitPrice:      product.BasePrice,
			UnitPrice:          product.BasePrice,
		}
		if tier := pricing.ResolveApplicableTier(product.PriceTiers, qty); tier != nil {
			line.UnitPrice = tier.UnitPrice
			minQty := tier.MinQty
			line.AppliedTierMinQty = &minQty
			line.SavingsPercent = pricing.SavingsPercent(product.BasePrice, tier.UnitPrice)
		}
		line.LineTotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(qty)))
		quote.Lines = append(quote.Lines, line)

		lineItems = append(lineItems, models.OrderLineItem{
			ProductID:          product.ID,
			SupplierBusinessID: product.SupplierBusinessID,
			Name:               product.Name,
			Unit:               product.Unit,
			Quantity:           qty,
			UnitPrice:          line.UnitPrice,
			BaseUnitPrice:      product.BasePrice,
			DeliveryFee:        product.DeliveryFee,
		})
	}

	if len(quote.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no quotable items remain")
	}

	quote.Groups = settlement.GroupBySupplier(lineItems)
	totals := settlement.BuildOrderTotals(lineItems)
	quote.Subtotal = totals.Subtotal
	quote.DeliveryFee = totals.DeliveryFee
	quote.Total = totals.Total
	return quote, nil
}
