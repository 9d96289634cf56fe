package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/dmcastellanos/supplyline-backend/internal/orders"
	"github.com/dmcastellanos/supplyline-backend/pkg/db/models"
	"github.com/dmcastellanos/supplyline-backend/pkg/enums"
	"github.com/dmcastellanos/supplyline-backend/pkg/logger"
)

const defaultOrderExpirationDays = 10

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// OrderExpiryJobParams configure the stale pending order sweep.
type OrderExpiryJobParams struct {
	Logger                   *logger.Logger
	DB                       txRunner
	PendingReader            pendingOrderReader
	ExpirationDays           int
	TransactionalRepoFactory transactionalRepoFactory
}

type pendingOrderReader interface {
	FindPendingOrdersBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error)
}

type transactionalOrderRepo interface {
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindLineItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderLineItem, error)
	UpdateLineItemStatuses(ctx context.Context, lineItemIDs []uuid.UUID, status enums.LineItemStatus) error
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, source string) error
}

type transactionalRepoFactory func(tx *gorm.DB) transactionalOrderRepo

func defaultTransactionalRepo(tx *gorm.DB) transactionalOrderRepo {
	return orders.NewRepository(tx)
}

// NewOrderExpiryJob builds the cron job that cancels pending orders no
// supplier acted on within the expiration window.
func NewOrderExpiryJob(params OrderExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.PendingReader == nil {
		return nil, fmt.Errorf("pending orders reader required")
	}
	days := params.ExpirationDays
	if days <= 0 {
		days = defaultOrderExpirationDays
	}
	repoFactory := params.TransactionalRepoFactory
	if repoFactory == nil {
		repoFactory = defaultTransactionalRepo
	}
	return &orderExpiryJob{
		logg:           params.Logger,
		db:             params.DB,
		pendingReader:  params.PendingReader,
		expirationDays: days,
		repoFactory:    repoFactory,
		now:            time.Now,
	}, nil
}

type orderExpiryJob struct {
	logg           *logger.Logger
	db             txRunner
	pendingReader  pendingOrderReader
	expirationDays int
	repoFactory    transactionalRepoFactory
	now            func() time.Time
}

func (j *orderExpiryJob) Name() string { return "order-expiry" }

func (j *orderExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.expirationDays) * 24 * time.Hour)
	stale, err := j.pendingReader.FindPendingOrdersBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("query stale pending orders: %w", err)
	}
	var errs error
	expired := 0
	for _, order := range stale {
		if err := j.expireOrder(ctx, order.ID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("expire order %s: %w", order.ID, err))
			continue
		}
		expired++
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":  cutoff,
		"scanned": len(stale),
		"expired": expired,
	})
	j.logg.Info(logCtx, "order expiry sweep complete")
	return errs
}

func (j *orderExpiryJob) expireOrder(ctx context.Context, orderID uuid.UUID) error {
	return j.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := j.repoFactory(tx)
		current, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			return err
		}
		// A supplier may have acted between the scan and this transaction.
		if current.Status != enums.OrderStatusPending {
			return nil
		}
		items, err := repo.FindLineItems(ctx, orderID)
		if err != nil {
			return err
		}
		var open []uuid.UUID
		for _, item := range items {
			if item.Status.IsTerminal() {
				continue
			}
			open = append(open, item.ID)
		}
		if err := repo.UpdateLineItemStatuses(ctx, open, enums.LineItemStatusCancelled); err != nil {
			return err
		}
		return repo.UpdateOrderStatus(ctx, orderID, enums.OrderStatusCancelled, enums.OrderStatusSourceSystemExpiry)
	})
}
