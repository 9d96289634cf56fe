package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmcastellanos/supplyline-backend/api/responses"
	"github.com/dmcastellanos/supplyline-backend/api/validators"
	"github.com/dmcastellanos/supplyline-backend/internal/businesses"
	"github.com/dmcastellanos/supplyline-backend/internal/categories"
	internalorders "github.com/dmcastellanos/supplyline-backend/internal/orders"
	"github.com/dmcastellanos/supplyline-backend/internal/payments"
	"github.com/dmcastellanos/supplyline-backend/internal/settlement"
	"github.com/dmcastellanos/supplyline-backend/internal/subscriptions"
	pkgerrors "github.com/dmcastellanos/supplyline-backend/pkg/errors"
	"github.com/dmcastellanos/supplyline-backend/pkg/logger"
	"github.com/dmcastellanos/supplyline-backend/pkg/db/models"
	"github.com/dmcastellanos/supplyline-backend/pkg/pagination"
)

// AdminListPendingBusinesses lists businesses awaiting approval.
func AdminListPendingBusinesses(svc businesses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "business service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, next, err := svc.ListPendingApproval(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"businesses":  rows,
			"next_cursor": next,
		})
	}
}

// AdminApproveBusiness activates a pending business.
func AdminApproveBusiness(svc businesses.Service, logg *logger.Logger) http.HandlerFunc {
	return adminBusinessDecision(svc, logg, func(ctx context.Context, s businesses.Service, id uuid.UUID) (*businesses.BusinessDTO, error) {
		return s.Approve(ctx, id)
	})
}

// AdminRejectBusiness rejects a pending business.
func AdminRejectBusiness(svc businesses.Service, logg *logger.Logger) http.HandlerFunc {
	return adminBusinessDecision(svc, logg, func(ctx context.Context, s businesses.Service, id uuid.UUID) (*businesses.BusinessDTO, error) {
		return s.Reject(ctx, id)
	})
}

func adminBusinessDecision(svc businesses.Service, logg *logger.Logger, decide func(context.Context, businesses.Service, uuid.UUID) (*businesses.BusinessDTO, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "business service unavailable"))
			return
		}

		businessID, err := pathUUID(r, "businessId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		business, err := decide(r.Context(), svc, businessID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, business)
	}
}

type categoryRequest struct {
	Name      string `json:"name" validate:"required,max=120"`
	SortOrder int    `json:"sort_order" validate:"gte=0"`
}

// AdminCreateCategory adds a catalog category.
func AdminCreateCategory(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}

		var body categoryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.Create(r.Context(), categories.CategoryInput{Name: body.Name, SortOrder: body.SortOrder})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}

// AdminListCategories lists all categories in sort order.
func AdminListCategories(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}

		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"categories": rows})
	}
}

// AdminUpdateCategory renames or reorders a category.
func AdminUpdateCategory(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}

		categoryID, err := pathUUID(r, "categoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body categoryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.Update(r.Context(), categoryID, categories.CategoryInput{Name: body.Name, SortOrder: body.SortOrder})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, category)
	}
}

// AdminDeleteCategory removes a category. Products keep their category id
// cleared by the service.
func AdminDeleteCategory(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}

		categoryID, err := pathUUID(r, "categoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), categoryID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"status": "deleted"})
	}
}

type grantSubscriptionRequest struct {
	BusinessID uuid.UUID `json:"business_id" validate:"required"`
	Months     int       `json:"months" validate:"required,gte=1,lte=36"`
}

// AdminGrantSubscription extends or starts a business subscription.
func AdminGrantSubscription(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		adminID, err := userFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body grantSubscriptionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sub, err := svc.Grant(r.Context(), subscriptions.GrantInput{
			BusinessID: body.BusinessID,
			Months:     body.Months,
			GrantedBy:  adminID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, sub)
	}
}

// AdminGetSubscription returns the current subscription for one business.
func AdminGetSubscription(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		businessID, err := pathUUID(r, "businessId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sub, err := svc.GetForBusiness(r.Context(), businessID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sub)
	}
}

// AdminListOrders lists orders across all businesses.
func AdminListOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
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

		list, err := svc.ListAll(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// AdminListPayments lists payment notifications across all businesses.
func AdminListPayments(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListAll(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// DeliveryOrderFinder is the read surface the delivery oversight view needs.
type DeliveryOrderFinder interface {
	FindDeliveryOrders(ctx context.Context, params pagination.Params, filters internalorders.OrderFilters) ([]models.Order, string, error)
}

// AdminDeliveryOrders lists delivery orders that still have something to
// deliver. Pickup orders and orders whose items were all cancelled are
// excluded.
func AdminDeliveryOrders(finder DeliveryOrderFinder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if finder == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders repository unavailable"))
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

		rows, next, err := finder.FindDeliveryOrders(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"orders":      settlement.FilterDeliveryOrders(rows),
			"next_cursor": next,
		})
	}
}
