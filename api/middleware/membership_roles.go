package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmcastellanos/supplyline-backend/api/responses"
	"github.com/dmcastellanos/supplyline-backend/pkg/enums"
	pkgerrors "github.com/dmcastellanos/supplyline-backend/pkg/errors"
	"github.com/dmcastellanos/supplyline-backend/pkg/logger"
)

type MembershipChecker interface {
	UserHasRole(ctx context.Context, userID, businessID uuid.UUID, roles ...enums.MemberRole) (bool, error)
}

type PermissionChecker interface {
	UserHasPermission(ctx context.Context, userID, businessID uuid.UUID, permission enums.Permission) (bool, error)
}

// RequireBusinessRoles filters requests by business membership roles before
// executing the handler.
func RequireBusinessRoles(checker MembershipChecker, logg *logger.Logger, allowed ...enums.MemberRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if checker == nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "membership checker unavailable"))
				return
			}
			if len(allowed) == 0 {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "allowed roles missing"))
				return
			}

			uid, bid, err := actorIDs(ctx)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}

			ok, checkErr := checker.UserHasRole(ctx, uid, bid, allowed...)
			if checkErr != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, checkErr, "check membership role"))
				return
			}
			if !ok {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient business role"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission enforces a granular membership grant. Owners pass
// implicitly through the checker.
func RequirePermission(checker PermissionChecker, logg *logger.Logger, permission enums.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if checker == nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "permission checker unavailable"))
				return
			}

			uid, bid, err := actorIDs(ctx)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}

			ok, checkErr := checker.UserHasPermission(ctx, uid, bid, permission)
			if checkErr != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, checkErr, "check membership permission"))
				return
			}
			if !ok {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "permission not granted"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func actorIDs(ctx context.Context) (uuid.UUID, uuid.UUID, error) {
	userID := UserIDFromContext(ctx)
	if userID == "" {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	businessID := BusinessIDFromContext(ctx)
	if businessID == "" {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "business context required")
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	bid, err := uuid.Parse(businessID)
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid business id")
	}
	return uid, bid, nil
}
