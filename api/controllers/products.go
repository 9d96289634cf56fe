package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmcastellanos/supplyline-backend/api/responses"
	"github.com/dmcastellanos/supplyline-backend/api/validators"
	product "github.com/dmcastellanos/supplyline-backend/internal/products"
	pkgerrors "github.com/dmcastellanos/supplyline-backend/pkg/errors"
	"github.com/dmcastellanos/supplyline-backend/pkg/logger"
)

type createProductRequest struct {
	Name        string                   `json:"name" validate:"required"`
	Description *string                  `json:"description,omitempty"`
	CategoryID  *uuid.UUID               `json:"category_id,omitempty"`
	Unit        string                   `json:"unit" validate:"required"`
	BasePrice   decimal.Decimal          `json:"base_price" validate:"required"`
	DeliveryFee decimal.Decimal          `json:"delivery_fee"`
	MinOrderQty int                      `json:"min_order_qty" validate:"gte=0"`
	IsActive    *bool                    `json:"is_active,omitempty"`
	ImageURL    *string                  `json:"image_url,omitempty"`
	PriceTiers  []product.PriceTierInput `json:"price_tiers,omitempty" validate:"omitempty,dive"`
}

// SupplierCreateProduct adds a catalog product with its initial tier set.
func SupplierCreateProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		active := true
		if body.IsActive != nil {
			active = *body.IsActive
		}

		created, err := svc.CreateProduct(r.Context(), caller.UserID, caller.BusinessID, product.CreateProductInput{
			Name:        body.Name,
			Description: body.Description,
			CategoryID:  body.CategoryID,
			Unit:        body.Unit,
			BasePrice:   body.BasePrice,
			DeliveryFee: body.DeliveryFee,
			MinOrderQty: body.MinOrderQty,
			IsActive:    active,
			ImageURL:    body.ImageURL,
			PriceTiers:  body.PriceTiers,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

type updateProductRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	CategoryID  *uuid.UUID       `json:"category_id,omitempty"`
	Unit        *string          `json:"unit,omitempty"`
	BasePrice   *decimal.Decimal `json:"base_price,omitempty"`
	DeliveryFee *decimal.Decimal `json:"delivery_fee,omitempty"`
	MinOrderQty *int             `json:"min_order_qty,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty"`
}

// SupplierUpdateProduct applies partial edits to an owned product.
func SupplierUpdateProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateProduct(r.Context(), caller.UserID, caller.BusinessID, productID, product.UpdateProductInput{
			Name:        body.Name,
			Description: body.Description,
			CategoryID:  body.CategoryID,
			Unit:        body.Unit,
			BasePrice:   body.BasePrice,
			DeliveryFee: body.DeliveryFee,
			MinOrderQty: body.MinOrderQty,
			IsActive:    body.IsActive,
			ImageURL:    body.ImageURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

type replaceTiersRequest struct {
	PriceTiers []product.PriceTierInput `json:"price_tiers" validate:"required,dive"`
}

// SupplierReplaceTiers swaps the whole tier set for a product in one
// transaction.
func SupplierReplaceTiers(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body replaceTiersRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.ReplaceTiers(r.Context(), caller.UserID, caller.BusinessID, productID, body.PriceTiers)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

// SupplierDeactivateProduct hides a product from the catalog.
func SupplierDeactivateProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeactivateProduct(r.Context(), caller.UserID, caller.BusinessID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}

// SupplierListProducts pages through the caller's own catalog, hidden rows
// included.
func SupplierListProducts(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
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

		filters, err := parseProductFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.SupplierID = &caller.BusinessID

		list, err := svc.ListProducts(r.Context(), product.ListProductsInput{
			Filters:       filters,
			Pagination:    params,
			IncludeHidden: true,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// CatalogListProducts is the restaurant-facing catalog browse.
func CatalogListProducts(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := parseProductFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListProducts(r.Context(), product.ListProductsInput{
			Filters:    filters,
			Pagination: params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// CatalogProductDetail returns one product with its tier ladder.
func CatalogProductDetail(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, detail)
	}
}

func parseProductFilters(r *http.Request) (product.ProductListFilters, error) {
	var filters product.ProductListFilters
	q := r.URL.Query()

	if raw := strings.TrimSpace(q.Get("category_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category_id")
		}
		filters.CategoryID = &id
	}
	if raw := strings.TrimSpace(q.Get("supplier_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid supplier_id")
		}
		filters.SupplierID = &id
	}
	if raw := strings.TrimSpace(q.Get("price_min")); raw != "" {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price_min")
		}
		filters.PriceMin = &value
	}
	if raw := strings.TrimSpace(q.Get("price_max")); raw != "" {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price_max")
		}
		filters.PriceMax = &value
	}
	if raw := strings.TrimSpace(q.Get("tiered")); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tiered flag")
		}
		filters.HasTieredPricing = &value
	}
	filters.Query = strings.TrimSpace(q.Get("q"))

	return filters, nil
}
