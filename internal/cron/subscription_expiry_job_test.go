package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/dmcastellanos/supplyline-backend/internal/subscriptions"
	"github.com/dmcastellanos/supplyline-backend/pkg/logger"
)

type fakeSweeper struct {
	result    subscriptions.SweepResult
	err       error
	lastBatch int
	calls     int
}

func (f *fakeSweeper) SweepExpired(ctx context.Context, batchSize int) (subscriptions.SweepResult, error) {
	f.calls++
	f.lastBatch = batchSize
	return f.result, f.err
}

func TestSubscriptionExpiryJobSweepsWithConfiguredBatch(t *testing.T) {
	sweeper := &fakeSweeper{result: subscriptions.SweepResult{Scanned: 7, Expired: 3}}
	job, err := NewSubscriptionExpiryJob(SubscriptionExpiryJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "test"}),
		Sweeper:   sweeper,
		BatchSize: 50,
	})
	if err != nil {
		t.Fatalf("NewSubscriptionExpiryJob: %v", err)
	}
	if job.Name() != "subscription-expiry" {
		t.Fatalf("unexpected job name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sweeper.calls != 1 {
		t.Fatalf("expected one sweep, got %d", sweeper.calls)
	}
	if sweeper.lastBatch != 50 {
		t.Fatalf("expected batch 50, got %d", sweeper.lastBatch)
	}
}

func TestSubscriptionExpiryJobDefaultsBatchSize(t *testing.T) {
	sweeper := &fakeSweeper{}
	job, err := NewSubscriptionExpiryJob(SubscriptionExpiryJobParams{
		Logger:  logger.New(logger.Options{ServiceName: "test"}),
		Sweeper: sweeper,
	})
	if err != nil {
		t.Fatalf("NewSubscriptionExpiryJob: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sweeper.lastBatch != defaultSubscriptionSweepBatch {
		t.Fatalf("expected default batch %d, got %d", defaultSubscriptionSweepBatch, sweeper.lastBatch)
	}
}

func TestSubscriptionExpiryJobPropagatesErrors(t *testing.T) {
	sweeper := &fakeSweeper{err: errors.New("boom")}
	job, err := NewSubscriptionExpiryJob(SubscriptionExpiryJobParams{
		Logger:  logger.New(logger.Options{ServiceName: "test"}),
		Sweeper: sweeper,
	})
	if err != nil {
		t.Fatalf("NewSubscriptionExpiryJob: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewSubscriptionExpiryJobRequiresSweeper(t *testing.T) {
	_, err := NewSubscriptionExpiryJob(SubscriptionExpiryJobParams{
		Logger: logger.New(logger.Options{ServiceName: "test"}),
	})
	if err == nil {
		t.Fatal("expected error")
	}
}
