package controllers

import (
	"net/http"

	"github.com/dmcastellanos/supplyline-backend/api/responses"
	"github.com/dmcastellanos/supplyline-backend/api/validators"
	"github.com/dmcastellanos/supplyline-backend/internal/cart"
	pkgerrors "github.com/dmcastellanos/supplyline-backend/pkg/errors"
	"github.com/dmcastellanos/supplyline-backend/pkg/logger"
)

type cartQuoteRequest struct {
	Items []cart.QuoteItemInput `json:"items" validate:"required,min=1,dive"`
}

// CartQuote reprices the client-held cart: authoritative unit prices through
// the tier resolver plus per-supplier settlement groups. Nothing persists.
func CartQuote(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body cartQuoteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), cart.QuoteInput{
			RestaurantBusinessID: caller.BusinessID,
			Items:                body.Items,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quote)
	}
}
