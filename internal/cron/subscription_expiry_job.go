package cron

import (
	"context"
	"fmt"

	"github.com/dmcastellanos/supplyline-backend/internal/subscriptions"
	"github.com/dmcastellanos/supplyline-backend/pkg/logger"
)

const defaultSubscriptionSweepBatch = 100

type SubscriptionExpiryJobParams struct {
	Logger    *logger.Logger
	Sweeper   subscriptionSweeper
	BatchSize int
}

type subscriptionSweeper interface {
	SweepExpired(ctx context.Context, batchSize int) (subscriptions.SweepResult, error)
}

func NewSubscriptionExpiryJob(params SubscriptionExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sweeper == nil {
		return nil, fmt.Errorf("subscription sweeper required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultSubscriptionSweepBatch
	}
	return &subscriptionExpiryJob{
		logg:    params.Logger,
		sweeper: params.Sweeper,
		batch:   batch,
	}, nil
}

type subscriptionExpiryJob struct {
	logg    *logger.Logger
	sweeper subscriptionSweeper
	batch   int
}

func (j *subscriptionExpiryJob) Name() string { return "subscription-expiry" }

func (j *subscriptionExpiryJob) Run(ctx context.Context) error {
	result, err := j.sweeper.SweepExpired(ctx, j.batch)
	if err != nil {
		return fmt.Errorf("subscription expiry sweep: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"scanned": result.Scanned,
		"expired": result.Expired,
	})
	j.logg.Info(logCtx, "subscription expiry sweep complete")
	return nil
}
