// Package settlement derives per-supplier settlement views from an order's
// line items. Groups are computed on read and never persisted; the line
// items remain the single source of truth.
package settlement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmcastellanos/supplyline-backend/pkg/db/models"
	"github.com/dmcastellanos/supplyline-backend/pkg/enums"
)

// Group is one supplier's slice of an order: the supplier's line items,
// their totals, and the payment state for that (order, supplier) pair.
type Group struct {
	SupplierBusinessID uuid.UUID              `json:"supplier_business_id"`
	SupplierName       string                 `json:"supplier_name,omitempty"`
	SupplierPhone      *string                `json:"supplier_phone,omitempty"`
	Items              []models.OrderLineItem `json:"items"`
	ItemsTotal         decimal.Decimal        `json:"items_total"`
	DeliveryFee        decimal.Decimal        `json:"delivery_fee"`
	Total              decimal.Decimal        `json:"total"`
	IsPaid             bool                   `json:"is_paid"`
	PaymentConfirmedAt *time.Time             `json:"payment_confirmed_at,omitempty"`
	PaymentReference   *string                `json:"payment_reference,omitempty"`
	ReceiptURL         *string                `json:"receipt_url"`
}

// GroupBySupplier partitions line items into one group per supplier. Groups
// come back in first-seen item order, so the result is stable for a given
// item slice. Each group's delivery fee is the maximum fee across its items,
// never the sum: a supplier delivers an order in one run.
func GroupBySupplier(items []models.OrderLineItem) []Group {
	groups := make([]Group, 0, 4)
	index := make(map[uuid.UUID]int, 4)

	for _, item := range items {
		i, ok := index[item.SupplierBusinessID]
		if !ok {
			i = len(groups)
			index[item.SupplierBusinessID] = i
			groups = append(groups, Group{SupplierBusinessID: item.SupplierBusinessID})
		}
		g := &groups[i]
		g.Items = append(g.Items, item)
		g.ItemsTotal = g.ItemsTotal.Add(item.LineTotal())
		if item.DeliveryFee.GreaterThan(g.DeliveryFee) {
			g.DeliveryFee = item.DeliveryFee
		}
	}

	for i := range groups {
		groups[i].Total = groups[i].ItemsTotal.Add(groups[i].DeliveryFee)
	}
	return groups
}

// MergePaymentStatus joins payment notifications onto the groups by
// (orderID, supplier). Suppliers without a notification stay unpaid; the
// join is left-outer so no group is ever dropped.
func MergePaymentStatus(groups []Group, orderID uuid.UUID, notifications []models.PaymentNotification) []Group {
	bySupplier := make(map[uuid.UUID]*models.PaymentNotification, len(notifications))
	for i := range notifications {
		n := &notifications[i]
		if n.OrderID == nil || *n.OrderID != orderID {
			continue
		}
		bySupplier[n.SupplierBusinessID] = n
	}

	for i := range groups {
		n, ok := bySupplier[groups[i].SupplierBusinessID]
		if !ok {
			continue
		}
		groups[i].IsPaid = n.IsPaid
		groups[i].PaymentConfirmedAt = n.ConfirmedAt
		groups[i].PaymentReference = n.Reference
		groups[i].ReceiptURL = n.ReceiptURL
	}
	return groups
}

// AttachSupplierProfiles fills each group's supplier display fields from the
// business records. Groups whose supplier is missing keep zero values.
func AttachSupplierProfiles(groups []Group, suppliers []models.Business) []Group {
	byID := make(map[uuid.UUID]*models.Business, len(suppliers))
	for i := range suppliers {
		byID[suppliers[i].ID] = &suppliers[i]
	}

	for i := range groups {
		b, ok := byID[groups[i].SupplierBusinessID]
		if !ok {
			continue
		}
		groups[i].SupplierName = b.CompanyName
		groups[i].SupplierPhone = b.Phone
	}
	return groups
}

// Totals is the order-level monetary summary snapshotted at creation.
type Totals struct {
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Total       decimal.Decimal
}

// BuildOrderTotals sums line totals into the subtotal and sums each
// supplier's maximum delivery fee into the order delivery fee.
func BuildOrderTotals(items []models.OrderLineItem) Totals {
	var t Totals
	for _, g := range GroupBySupplier(items) {
		t.Subtotal = t.Subtotal.Add(g.ItemsTotal)
		t.DeliveryFee = t.DeliveryFee.Add(g.DeliveryFee)
	}
	t.Total = t.Subtotal.Add(t.DeliveryFee)
	return t
}

// FilterDeliveryOrders keeps orders that actually need a delivery run:
// pickup orders, orders with no line items, and orders whose items were
// all cancelled are dropped. An unset fulfillment method counts as
// delivery; only explicit pickup opts out.
func FilterDeliveryOrders(orders []models.Order) []models.Order {
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if o.FulfillmentMethod == enums.FulfillmentMethodPickup {
			continue
		}
		if !hasDeliverableItems(o.LineItems) {
			continue
		}
		out = append(out, o)
	}
	return out
}

func hasDeliverableItems(items []models.OrderLineItem) bool {
	for _, item := range items {
		if item.Status != enums.LineItemStatusCancelled {
			return true
		}
	}
	return false
}
