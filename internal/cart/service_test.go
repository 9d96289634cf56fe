package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmcastellanos/supplyline-backend/pkg/db/models"
	pkgerrors "github.com/dmcastellanos/supplyline-backend/pkg/errors"
)

type stubProductReader struct {
	products []models.Product
}

func (s *stubProductReader) FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	byID := make(map[uuid.UUID]models.Product, len(s.products))
	for _, p := range s.products {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestQuoteAppliesTiersAndGroups(t *testing.T) {
	s1, s2 := uuid.New(), uuid.New()
	flour := models.Product{
		ID:                 uuid.New(),
		SupplierBusinessID: s1,
		Name:               "Flour 10kg",
		Unit:               "bag",
		BasePrice:          dec("10"),
		DeliveryFee:        dec("15"),
		MinOrderQty:        1,
		PriceTiers: []models.PriceTier{
			{MinQty: 10, UnitPrice: dec("9")},
			{MinQty: 50, UnitPrice: dec("8")},
		},
	}
	oil := models.Product{
		ID:                 uuid.New(),
		SupplierBusinessID: s2,
		Name:               "Olive oil 5l",
		Unit:               "tin",
		BasePrice:          dec("20"),
		DeliveryFee:        dec("25"),
		MinOrderQty:        1,
	}

	svc, err := NewService(&stubProductReader{products: []models.Product{flour, oil}})
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	quote, err := svc.Quote(context.Background(), QuoteInput{
		RestaurantBusinessID: uuid.New(),
		Items: []QuoteItemInput{
			{ProductID: flour.ID, Quantity: 60},
			{ProductID: oil.ID, Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}

	if len(quote.Lines) != 2 {
		t.Fatalf("expected 2 lines got %d", len(quote.Lines))
	}
	flourLine := quote.Lines[0]
	if !flourLine.UnitPrice.Equal(dec("8")) {
		t.Fatalf("expected tiered price 8 got %s", flourLine.UnitPrice)
	}
	if flourLine.AppliedTierMinQty == nil || *flourLine.AppliedTierMinQty != 50 {
		t.Fatalf("expected min qty 50 tier got %v", flourLine.AppliedTierMinQty)
	}
	if flourLine.SavingsPercent != 20 {
		t.Fatalf("expected 20%% savings got %d", flourLine.SavingsPercent)
	}
	if len(quote.Groups) != 2 {
		t.Fatalf("expected 2 supplier groups got %d", len(quote.Groups))
	}
	if !quote.Subtotal.Equal(dec("520")) {
		t.Fatalf("expected subtotal 520 got %s", quote.Subtotal)
	}
	if !quote.DeliveryFee.Equal(dec("40")) {
		t.Fatalf("expected delivery fee 40 got %s", quote.DeliveryFee)
	}
	if !quote.Total.Equal(dec("560")) {
		t.Fatalf("expected total 560 got %s", quote.Total)
	}
}

func TestQuoteWarnsAndDropsUnavailable(t *testing.T) {
	available := models.Product{
		ID:                 uuid.New(),
		SupplierBusinessID: uuid.New(),
		Name:               "Sugar 25kg",
		Unit:               "sack",
		BasePrice:          dec("12"),
		MinOrderQty:        1,
	}
	svc, _ := NewService(&stubProductReader{products: []models.Product{available}})

	missing := uuid.New()
	quote, err := svc.Quote(context.Background(), QuoteInput{
		RestaurantBusinessID: uuid.New(),
		Items: []QuoteItemInput{
			{ProductID: available.ID, Quantity: 2},
			{ProductID: missing, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(quote.Lines) != 1 {
		t.Fatalf("expected 1 line got %d", len(quote.Lines))
	}
	if len(quote.Warnings) != 1 || quote.Warnings[0].Type != WarningUnavailable {
		t.Fatalf("expected unavailable warning got %+v", quote.Warnings)
	}
}

func TestQuoteRaisesBelowMinimumQuantities(t *testing.T) {
	p := models.Product{
		ID:                 uuid.New(),
		SupplierBusinessID: uuid.New(),
		Name:               "Rice 25kg",
		Unit:               "sack",
		BasePrice:          dec("30"),
		MinOrderQty:        5,
	}
	svc, _ := NewService(&stubProductReader{products: []models.Product{p}})

	quote, err := svc.Quote(context.Background(), QuoteInput{
		RestaurantBusinessID: uuid.New(),
		Items:                []QuoteItemInput{{ProductID: p.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if quote.Lines[0].Quantity != 5 {
		t.Fatalf("expected raised quantity 5 got %d", quote.Lines[0].Quantity)
	}
	if len(quote.Warnings) != 1 || quote.Warnings[0].Type != WarningQuantityRaised {
		t.Fatalf("expected raise warning got %+v", quote.Warnings)
	}
	if !quote.Lines[0].LineTotal.Equal(dec("150")) {
		t.Fatalf("expected line total 150 got %s", quote.Lines[0].LineTotal)
	}
}

func TestQuoteRejectsAllUnavailable(t *testing.T) {
	svc, _ := NewService(&stubProductReader{})

	_, err := svc.Quote(context.Background(), QuoteInput{
		RestaurantBusinessID: uuid.New(),
		Items:                []QuoteItemInput{{ProductID: uuid.New(), Quantity: 1}},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}
