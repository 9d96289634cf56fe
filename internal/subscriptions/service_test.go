package subscriptions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmcastellanos/supplyline-backend/pkg/db/models"
	"github.com/dmcastellanos/supplyline-backend/pkg/enums"
	pkgerrors "github.com/dmcastellanos/supplyline-backend/pkg/errors"
)

type stubSubscriptionRepo struct {
	sub     *models.Subscription
	expired []models.Subscription
	created *models.Subscription
	updated *models.Subscription
	marked  []uuid.UUID
	markErr error
}

func (s *stubSubscriptionRepo) Create(_ context.Context, sub *models.Subscription) error {
	sub.ID = uuid.New()
	s.created = sub
	return nil
}

func (s *stubSubscriptionRepo) FindByBusiness(_ context.Context, _ uuid.UUID) (*models.Subscription, error) {
	if s.sub == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.sub, nil
}

func (s *stubSubscriptionRepo) Update(_ context.Context, sub *models.Subscription) error {
	s.updated = sub
	return nil
}

func (s *stubSubscriptionRepo) ListExpiredActive(_ context.Context, _ time.Time, _ int) ([]models.Subscription, error) {
	return s.expired, nil
}

func (s *stubSubscriptionRepo) MarkExpired(_ context.Context, id uuid.UUID) error {
	if s.markErr != nil {
		return s.markErr
	}
	s.marked = append(s.marked, id)
	return nil
}

type stubBusinessActivator struct {
	business    *models.Business
	activations map[uuid.UUID]bool
	err         error
}

func (s *stubBusinessActivator) FindByID(_ context.Context, _ uuid.UUID) (*models.Business, error) {
	if s.business == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.business, nil
}

func (s *stubBusinessActivator) SetSubscriptionActive(_ context.Context, id uuid.UUID, active bool) error {
	if s.err != nil {
		return s.err
	}
	if s.activations == nil {
		s.activations = map[uuid.UUID]bool{}
	}
	s.activations[id] = active
	return nil
}

func fixedNow() time.Time {
	return time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
}

func newSubscriptionService(t *testing.T, repo *stubSubscriptionRepo, businesses *stubBusinessActivator) *service {
	t.Helper()
	svc, err := NewService(repo, businesses)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	typed := svc.(*service)
	typed.now = fixedNow
	return typed
}

func supplierBusiness() *models.Business {
	return &models.Business{ID: uuid.New(), Type: enums.BusinessTypeSupplier, CompanyName: "Fresh Produce Co"}
}

func TestExtendExpiryFromLapsedStartsAtNow(t *testing.T) {
	now := fixedNow()
	lapsed := now.AddDate(0, -2, 0)

	got := ExtendExpiry(lapsed, now, 3)
	want := now.AddDate(0, 3, 0)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestExtendExpiryFromActiveKeepsRemainder(t *testing.T) {
	now := fixedNow()
	current := now.AddDate(0, 1, 0)

	got := ExtendExpiry(current, now, 2)
	want := current.AddDate(0, 2, 0)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestGrantCreatesSubscriptionAndActivatesSupplier(t *testing.T) {
	repo := &stubSubscriptionRepo{}
	business := supplierBusiness()
	activator := &stubBusinessActivator{business: business}
	svc := newSubscriptionService(t, repo, activator)

	adminID := uuid.New()
	dto, err := svc.Grant(context.Background(), GrantInput{BusinessID: business.ID, Months: 2, GrantedBy: adminID})
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if repo.created == nil {
		t.Fatal("expected subscription created")
	}
	want := fixedNow().AddDate(0, 2, 0)
	if !dto.ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %s, got %s", want, dto.ExpiresAt)
	}
	if dto.LastExtendedBy == nil || *dto.LastExtendedBy != adminID {
		t.Fatalf("expected grantor recorded, got %v", dto.LastExtendedBy)
	}
	if !activator.activations[business.ID] {
		t.Fatal("expected supplier activated")
	}
}

func TestGrantExtendsExistingSubscription(t *testing.T) {
	business := supplierBusiness()
	current := fixedNow().AddDate(0, 1, 0)
	repo := &stubSubscriptionRepo{sub: &models.Subscription{
		ID:         uuid.New(),
		BusinessID: business.ID,
		Status:     enums.SubscriptionStatusExpired,
		ExpiresAt:  current,
	}}
	svc := newSubscriptionService(t, repo, &stubBusinessActivator{business: business})

	dto, err := svc.Grant(context.Background(), GrantInput{BusinessID: business.ID, Months: 3, GrantedBy: uuid.New()})
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if repo.updated == nil {
		t.Fatal("expected existing subscription updated")
	}
	want := current.AddDate(0, 3, 0)
	if !dto.ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %s, got %s", want, dto.ExpiresAt)
	}
	if dto.Status != enums.SubscriptionStatusActive {
		t.Fatalf("expected reactivated subscription, got %s", dto.Status)
	}
}

func TestGrantRejectsNonSuppliers(t *testing.T) {
	business := supplierBusiness()
	business.Type = enums.BusinessTypeRestaurant
	svc := newSubscriptionService(t, &stubSubscriptionRepo{}, &stubBusinessActivator{business: business})

	_, err := svc.Grant(context.Background(), GrantInput{BusinessID: business.ID, Months: 1, GrantedBy: uuid.New()})
	if err == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGrantRejectsNonPositiveMonths(t *testing.T) {
	svc := newSubscriptionService(t, &stubSubscriptionRepo{}, &stubBusinessActivator{business: supplierBusiness()})

	_, err := svc.Grant(context.Background(), GrantInput{BusinessID: uuid.New(), Months: 0, GrantedBy: uuid.New()})
	if err == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSweepExpiredDeactivatesSuppliers(t *testing.T) {
	first := models.Subscription{ID: uuid.New(), BusinessID: uuid.New(), Status: enums.SubscriptionStatusActive}
	second := models.Subscription{ID: uuid.New(), BusinessID: uuid.New(), Status: enums.SubscriptionStatusActive}
	repo := &stubSubscriptionRepo{expired: []models.Subscription{first, second}}
	activator := &stubBusinessActivator{}
	svc := newSubscriptionService(t, repo, activator)

	result, err := svc.SweepExpired(context.Background(), 100)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if result.Scanned != 2 || result.Expired != 2 {
		t.Fatalf("expected 2 scanned and expired, got %+v", result)
	}
	if len(repo.marked) != 2 {
		t.Fatalf("expected 2 rows marked, got %d", len(repo.marked))
	}
	if active, ok := activator.activations[first.BusinessID]; !ok || active {
		t.Fatalf("expected first supplier deactivated, got %v", activator.activations)
	}
}

func TestSweepExpiredSkipsConcurrentlySweptRows(t *testing.T) {
	row := models.Subscription{ID: uuid.New(), BusinessID: uuid.New(), Status: enums.SubscriptionStatusActive}
	repo := &stubSubscriptionRepo{expired: []models.Subscription{row}, markErr: gorm.ErrRecordNotFound}
	activator := &stubBusinessActivator{}
	svc := newSubscriptionService(t, repo, activator)

	result, err := svc.SweepExpired(context.Background(), 100)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if result.Expired != 0 {
		t.Fatalf("expected no rows expired, got %d", result.Expired)
	}
	if len(activator.activations) != 0 {
		t.Fatal("expected no deactivations")
	}
}

func TestSweepExpiredCollectsPerRowErrors(t *testing.T) {
	first := models.Subscription{ID: uuid.New(), BusinessID: uuid.New(), Status: enums.SubscriptionStatusActive}
	second := models.Subscription{ID: uuid.New(), BusinessID: uuid.New(), Status: enums.SubscriptionStatusActive}
	repo := &stubSubscriptionRepo{expired: []models.Subscription{first, second}}
	activator := &stubBusinessActivator{err: errors.New("boom")}
	svc := newSubscriptionService(t, repo, activator)

	result, err := svc.SweepExpired(context.Background(), 100)
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	if result.Scanned != 2 {
		t.Fatalf("expected 2 scanned, got %d", result.Scanned)
	}
	if result.Expired != 0 {
		t.Fatalf("expected 0 expired, got %d", result.Expired)
	}
}
