package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmcastellanos/supplyline-backend/internal/businesses"
	"github.com/dmcastellanos/supplyline-backend/internal/memberships"
	"github.com/dmcastellanos/supplyline-backend/internal/users"
	"github.com/dmcastellanos/supplyline-backend/pkg/config"
	"github.com/dmcastellanos/supplyline-backend/pkg/db"
	"github.com/dmcastellanos/supplyline-backend/pkg/enums"
	pkgerrors "github.com/dmcastellanos/supplyline-backend/pkg/errors"
	"github.com/dmcastellanos/supplyline-backend/pkg/security"
)

// RegisterRequest contains the payload required for onboarding a new tenant.
type RegisterRequest struct {
	FirstName    string             `json:"first_name" validate:"required"`
	LastName     string             `json:"last_name" validate:"required"`
	Email        string             `json:"email" validate:"required,email"`
	Password     string             `json:"password" validate:"required,min=8"`
	Phone        *string            `json:"phone,omitempty"`
	CompanyName  string             `json:"company_name" validate:"required"`
	TradingName  *string            `json:"trading_name,omitempty"`
	BusinessType enums.BusinessType `json:"business_type" validate:"required"`
	Address      *string            `json:"address,omitempty"`
	City         *string            `json:"city,omitempty"`
	AcceptTOS    bool               `json:"accept_tos"`
}

// RegisterService handles the onboarding transaction.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) error
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	db          *db.Client
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &registerService{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
	}, nil
}

// Register creates the owner user, the business in pending approval, and
// the owner membership in one transaction.
func (s *registerService) Register(ctx context.Context, req RegisterRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if !req.BusinessType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid business type")
	}
	if strings.TrimSpace(req.CompanyName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "company name is required")
	}
	if !req.AcceptTOS {
		return pkgerrors.New(pkgerrors.CodeValidation, "accept_tos must be true")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)
		businessRepo := businesses.NewRepository(tx)
		membershipRepo := memberships.NewRepository(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Phone:        req.Phone,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "idx_users_email") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		business, err := businessRepo.Create(ctx, businesses.CreateBusinessDTO{
			Type:        req.BusinessType,
			CompanyName: strings.TrimSpace(req.CompanyName),
			TradingName: req.TradingName,
			Address:     req.Address,
			City:        req.City,
			OwnerID:     user.ID,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create business")
		}

		if _, err := membershipRepo.CreateMembership(
			ctx,
			business.ID,
			user.ID,
			enums.MemberRoleOwner,
			nil,
			nil,
			enums.MembershipStatusActive,
		); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create membership")
		}

		if err := userRepo.UpdateBusinessIDs(ctx, user.ID, []uuid.UUID{business.ID}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "associate business with user")
		}

		return nil
	})
}
