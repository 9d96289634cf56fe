package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmcastellanos/supplyline-backend/internal/memberships"
	pkgAuth "github.com/dmcastellanos/supplyline-backend/pkg/auth"
	"github.com/dmcastellanos/supplyline-backend/pkg/auth/session"
	"github.com/dmcastellanos/supplyline-backend/pkg/config"
	"github.com/dmcastellanos/supplyline-backend/pkg/enums"
	pkgerrors "github.com/dmcastellanos/supplyline-backend/pkg/errors"
)

// SwitchBusinessInput captures the data required to switch the active business.
type SwitchBusinessInput struct {
	UserID        uuid.UUID
	BusinessID    uuid.UUID
	AccessTokenID string
}

// SwitchBusinessResult returns the tokens issued after switching businesses.
type SwitchBusinessResult struct {
	AccessToken  string
	RefreshToken string
	Business     BusinessSummary
}

type businessActivityUpdater interface {
	UpdateLastActiveAt(ctx context.Context, businessID uuid.UUID) error
}

type switchBusinessService struct {
	memberships     switchMembershipsRepository
	session         switchSessionRotator
	jwtCfg          config.JWTConfig
	businessUpdater businessActivityUpdater
}

type switchMembershipsRepository interface {
	GetMembershipWithBusiness(ctx context.Context, userID, businessID uuid.UUID) (*memberships.MembershipWithBusiness, error)
}

type switchSessionRotator interface {
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	RefreshToken(ctx context.Context, accessID string) (string, error)
}

// SwitchBusinessServiceParams bundles dependencies for the switch flow.
type SwitchBusinessServiceParams struct {
	MembershipsRepo switchMembershipsRepository
	SessionManager  switchSessionRotator
	JWTConfig       config.JWTConfig
	BusinessRepo    businessActivityUpdater
}

// NewSwitchBusinessService constructs the service.
func NewSwitchBusinessService(params SwitchBusinessServiceParams) (SwitchBusinessService, error) {
	if params.MembershipsRepo == nil {
		return nil, errors.New("memberships repository required")
	}
	if params.SessionManager == nil {
		return nil, errors.New("session manager required")
	}
	if params.BusinessRepo == nil {
		return nil, errors.New("business repository required")
	}
	return &switchBusinessService{
		memberships:     params.MembershipsRepo,
		session:         params.SessionManager,
		jwtCfg:          params.JWTConfig,
		businessUpdater: params.BusinessRepo,
	}, nil
}

// SwitchBusinessService is the interface exposed to the controller.
type SwitchBusinessService interface {
	Switch(ctx context.Context, input SwitchBusinessInput) (*SwitchBusinessResult, error)
}

func (s *switchBusinessService) Switch(ctx context.Context, input SwitchBusinessInput) (*SwitchBusinessResult, error) {
	membership, err := s.memberships.GetMembershipWithBusiness(ctx, input.UserID, input.BusinessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "business membership required")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup membership")
	}
	if membership.Status != enums.MembershipStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "business membership inactive")
	}

	if err := s.businessUpdater.UpdateLastActiveAt(ctx, input.BusinessID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update business activity")
	}

	refreshToken, err := s.session.RefreshToken(ctx, input.AccessTokenID)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid session")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load refresh token")
	}

	newAccessID, newRefreshToken, err := s.session.Rotate(ctx, input.AccessTokenID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rotate session")
	}

	businessType := membership.BusinessType
	payload := pkgAuth.AccessTokenPayload{
		UserID:           input.UserID,
		ActiveBusinessID: &input.BusinessID,
		Role:             membership.Role,
		BusinessType:     &businessType,
		JTI:              newAccessID,
	}

	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, time.Now().UTC(), payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &SwitchBusinessResult{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		Business: BusinessSummary{
			ID:   membership.BusinessID,
			Name: membership.BusinessName,
			Type: membership.BusinessType,
		},
	}, nil
}
