package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmcastellanos/supplyline-backend/api/responses"
	"github.com/dmcastellanos/supplyline-backend/api/validators"
	internalorders "github.com/dmcastellanos/supplyline-backend/internal/orders"
	"github.com/dmcastellanos/supplyline-backend/pkg/enums"
	pkgerrors "github.com/dmcastellanos/supplyline-backend/pkg/errors"
	"github.com/dmcastellanos/supplyline-backend/pkg/logger"
)

type createOrderRequest struct {
	BranchID            *uuid.UUID                           `json:"branch_id,omitempty"`
	FulfillmentMethod   enums.FulfillmentMethod              `json:"fulfillment_method" validate:"required"`
	DeliveryAddress     *string                              `json:"delivery_address,omitempty"`
	DeliveryNotes       *string                              `json:"delivery_notes,omitempty"`
	RequestedDeliveryAt *time.Time                           `json:"requested_delivery_at,omitempty"`
	Items               []internalorders.CreateOrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// RestaurantCreateOrder places an order from a quoted cart. Prices are
// resolved server side and snapshotted.
func RestaurantCreateOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Create(r.Context(), internalorders.CreateOrderInput{
			RestaurantBusinessID: caller.BusinessID,
			PlacedByUserID:       caller.UserID,
			BranchID:             body.BranchID,
			FulfillmentMethod:    body.FulfillmentMethod,
			DeliveryAddress:      sanitizePtr(body.DeliveryAddress, 500),
			DeliveryNotes:        sanitizePtr(body.DeliveryNotes, 500),
			RequestedDeliveryAt:  body.RequestedDeliveryAt,
			Items:                body.Items,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, detail)
	}
}

// RestaurantListOrders pages the buyer's order history.
func RestaurantListOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := parseOrderFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListForRestaurant(r.Context(), caller.BusinessID, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// RestaurantOrderDetail returns the full order, settlement groups included,
// after confirming the caller placed it.
func RestaurantOrderDetail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := restaurantOrder(svc, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// RestaurantOrderSettlement exposes just the derived per-supplier groups of
// one order.
func RestaurantOrderSettlement(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := restaurantOrder(svc, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"order_id":        detail.Order.ID,
			"supplier_groups": detail.Groups,
		})
	}
}

func restaurantOrder(svc internalorders.Service, r *http.Request) (*internalorders.OrderDetail, error) {
	if svc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable")
	}

	caller, err := actorFromRequest(r)
	if err != nil {
		return nil, err
	}

	orderID, err := pathUUID(r, "orderId")
	if err != nil {
		return nil, err
	}

	detail, err := svc.Get(r.Context(), orderID)
	if err != nil {
		return nil, err
	}
	if detail.Order.RestaurantBusinessID != caller.BusinessID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return detail, nil
}

// SupplierListOrders pages the orders containing the supplier's line items.
func SupplierListOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := parseOrderFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListForSupplier(r.Context(), caller.BusinessID, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// SupplierOrderDetail returns the order scoped to the supplier's own line
// items and settlement slice.
func SupplierOrderDetail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.GetForSupplier(r.Context(), orderID, caller.BusinessID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// SupplierOrderSettlement exposes the supplier's own derived group for one
// order, payment state included.
func SupplierOrderSettlement(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.GetForSupplier(r.Context(), orderID, caller.BusinessID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"order_id": view.Order.ID,
			"group":    view.Group,
		})
	}
}

type bulkLineItemStatusRequest struct {
	LineItemIDs []uuid.UUID          `json:"line_item_ids" validate:"required,min=1"`
	Status      enums.LineItemStatus `json:"status" validate:"required"`
}

// SupplierBulkLineItemStatus moves a batch of the supplier's line items to a
// new status in one transaction.
func SupplierBulkLineItemStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body bulkLineItemStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.BulkUpdateLineItems(r.Context(), internalorders.BulkLineItemUpdateInput{
			OrderID:            orderID,
			SupplierBusinessID: caller.BusinessID,
			ActorUserID:        caller.UserID,
			LineItemIDs:        body.LineItemIDs,
			TargetStatus:       body.Status,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

func parseOrderFilters(r *http.Request) (internalorders.OrderFilters, error) {
	var filters internalorders.OrderFilters
	q := r.URL.Query()

	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status := enums.OrderStatus(raw)
		if !status.IsValid() {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(q.Get("date_from")); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date_from")
		}
		filters.DateFrom = &ts
	}
	if raw := strings.TrimSpace(q.Get("date_to")); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date_to")
		}
		filters.DateTo = &ts
	}

	return filters, nil
}
