package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/dmcastellanos/supplyline-backend/pkg/db/models"
	"github.com/dmcastellanos/supplyline-backend/pkg/enums"
	pkgerrors "github.com/dmcastellanos/supplyline-backend/pkg/errors"
)

type subscriptionRepository interface {
	Create(ctx context.Context, sub *models.Subscription) error
	FindByBusiness(ctx context.Context, businessID uuid.UUID) (*models.Subscription, error)
	Update(ctx context.Context, sub *models.Subscription) error
	ListExpiredActive(ctx context.Context, before time.Time, limit int) ([]models.Subscription, error)
	MarkExpired(ctx context.Context, id uuid.UUID) error
}

type businessActivator interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Business, error)
	SetSubscriptionActive(ctx context.Context, id uuid.UUID, active bool) error
}

// SubscriptionDTO exposes a business's access window.
type SubscriptionDTO struct {
	ID                uuid.UUID                `json:"id"`
	BusinessID        uuid.UUID                `json:"business_id"`
	Status            enums.SubscriptionStatus `json:"status"`
	ExpiresAt         time.Time                `json:"expires_at"`
	LastExtendedBy    *uuid.UUID               `json:"last_extended_by,omitempty"`
	LastExtendedMonth int                      `json:"last_extended_months"`
	CreatedAt         time.Time                `json:"created_at"`
}

// GrantInput captures an admin extension request.
type GrantInput struct {
	BusinessID uuid.UUID
	Months     int
	GrantedBy  uuid.UUID
}

// SweepResult summarizes one expiry sweep run.
type SweepResult struct {
	Scanned int
	Expired int
}

// Service exposes subscription operations.
type Service interface {
	Grant(ctx context.Context, input GrantInput) (*SubscriptionDTO, error)
	GetForBusiness(ctx context.Context, businessID uuid.UUID) (*SubscriptionDTO, error)
	SweepExpired(ctx context.Context, batchSize int) (SweepResult, error)
}

type service struct {
	repo       subscriptionRepository
	businesses businessActivator
	now        func() time.Time
}

// NewService builds a subscription service with the provided repositories.
func NewService(repo subscriptionRepository, businesses businessActivator) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("subscription repository required")
	}
	if businesses == nil {
		return nil, fmt.Errorf("business repository required")
	}
	return &service{
		repo:       repo,
		businesses: businesses,
		now:        time.Now,
	}, nil
}

// ExtendExpiry adds whole months on top of the later of now and the
// current expiry, so extending an active subscription never discards the
// remaining window and extending a lapsed one starts from today.
func ExtendExpiry(current, now time.Time, months int) time.Time {
	base := now
	if current.After(now) {
		base = current
	}
	return base.AddDate(0, months, 0)
}

func (s *service) Grant(ctx context.Context, input GrantInput) (*SubscriptionDTO, error) {
	if input.Months <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "months must be positive")
	}

	business, err := s.businesses.FindByID(ctx, input.BusinessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "business not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load business")
	}
	if business.Type != enums.BusinessTypeSupplier {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "only suppliers hold subscriptions")
	}

	now := s.now().UTC()
	grantedBy := input.GrantedBy

	sub, err := s.repo.FindByBusiness(ctx, input.BusinessID)
	switch {
	case err == nil:
		sub.ExpiresAt = ExtendExpiry(sub.ExpiresAt, now, input.Months)
		sub.Status = enums.SubscriptionStatusActive
		sub.LastExtendedBy = &grantedBy
		sub.LastExtendedMonth = input.Months
		if err := s.repo.Update(ctx, sub); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update subscription")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub = &models.Subscription{
			BusinessID:        input.BusinessID,
			Status:            enums.SubscriptionStatusActive,
			ExpiresAt:         ExtendExpiry(time.Time{}, now, input.Months),
			LastExtendedBy:    &grantedBy,
			LastExtendedMonth: input.Months,
		}
		if err := s.repo.Create(ctx, sub); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create subscription")
		}
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}

	if err := s.businesses.SetSubscriptionActive(ctx, input.BusinessID, true); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "activate business")
	}

	return fromModel(sub), nil
}

func (s *service) GetForBusiness(ctx context.Context, businessID uuid.UUID) (*SubscriptionDTO, error) {
	sub, err := s.repo.FindByBusiness(ctx, businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}
	return fromModel(sub), nil
}

// SweepExpired marks lapsed active subscriptions expired and deactivates
// their suppliers. Per-row failures are collected so one bad row never
// stalls the rest of the batch.
func (s *service) SweepExpired(ctx context.Context, batchSize int) (SweepResult, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	now := s.now().UTC()
	rows, err := s.repo.ListExpiredActive(ctx, now, batchSize)
	if err != nil {
		return SweepResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expired subscriptions")
	}

	result := SweepResult{Scanned: len(rows)}
	var sweepErr error
	for _, sub := range rows {
		if err := s.repo.MarkExpired(ctx, sub.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			sweepErr = multierr.Append(sweepErr, fmt.Errorf("mark subscription %s expired: %w", sub.ID, err))
			continue
		}
		if err := s.businesses.SetSubscriptionActive(ctx, sub.BusinessID, false); err != nil {
			sweepErr = multierr.Append(sweepErr, fmt.Errorf("deactivate business %s: %w", sub.BusinessID, err))
			continue
		}
		result.Expired++
	}
	return result, sweepErr
}

func fromModel(m *models.Subscription) *SubscriptionDTO {
	if m == nil {
		return nil
	}
	return &SubscriptionDTO{
		ID:                m.ID,
		BusinessID:        m.BusinessID,
		Status:            m.Status,
		ExpiresAt:         m.ExpiresAt,
		LastExtendedBy:    m.LastExtendedBy,
		LastExtendedMonth: m.LastExtendedMonth,
		CreatedAt:         m.CreatedAt,
	}
}
