// Package pricing implements tiered quantity pricing. Resolution is pure:
// every function is total over its inputs and performs no I/O, so callers
// can quote carts, snapshot orders and render catalogs from one code path.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/dmcastellanos/supplyline-backend/pkg/db/models"
)

var hundred = decimal.NewFromInt(100)

// ResolveApplicableTier returns the tier with the largest MinQty satisfying
// MinQty <= quantity, or nil when no tier qualifies. Tier order does not
// matter and ties on MinQty resolve to the first seen.
func ResolveApplicableTier(tiers []models.PriceTier, quantity int) *models.PriceTier {
	var best *models.PriceTier
	for i := range tiers {
		t := &tiers[i]
		if t.MinQty > quantity {
			continue
		}
		if best == nil || t.MinQty > best.MinQty {
			best = t
		}
	}
	return best
}

// ResolveUnitPrice returns the effective per-unit price for the quantity:
// the qualifying tier's unit price, or the base price when no tier applies.
func ResolveUnitPrice(basePrice decimal.Decimal, tiers []models.PriceTier, quantity int) decimal.Decimal {
	if t := ResolveApplicableTier(tiers, quantity); t != nil {
		return t.UnitPrice
	}
	return basePrice
}

// SavingsPercent returns the discount of tierPrice relative to basePrice as
// a whole-number percentage, rounded half away from zero. A non-positive
// base yields 0; a tier above base yields a negative percentage.
func SavingsPercent(basePrice, tierPrice decimal.Decimal) int {
	if basePrice.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	pct := basePrice.Sub(tierPrice).Div(basePrice).Mul(hundred)
	return int(pct.Round(0).IntPart())
}

// LineTotal returns quantity times the resolved unit price.
func LineTotal(basePrice decimal.Decimal, tiers []models.PriceTier, quantity int) decimal.Decimal {
	return ResolveUnitPrice(basePrice, tiers, quantity).Mul(decimal.NewFromInt(int64(quantity)))
}
