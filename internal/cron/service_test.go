package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/dmcastellanos/supplyline-backend/pkg/logger"
)

type stubLock struct {
	held   bool
	denied int
}

func (s *stubLock) Acquire(context.Context) (bool, error) {
	if s.held {
		s.denied++
		return false, nil
	}
	s.held = true
	return true, nil
}

func (s *stubLock) Release(context.Context) error {
	s.held = false
	return nil
}

type countingJob struct {
	name string
	err  error
	runs int
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(context.Context) error {
	j.runs++
	return j.err
}

func newCycleService(t *testing.T, lock Lock, jobs ...Job) *Service {
	t.Helper()
	service, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test"}),
		Registry: NewRegistry(jobs...),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	return service
}

func TestRunCycleRunsRemainingJobsAfterFailure(t *testing.T) {
	expiry := &countingJob{name: "subscription-expiry", err: errors.New("boom")}
	reminders := &countingJob{name: "order-expiry"}
	service := newCycleService(t, &stubLock{}, expiry, reminders)

	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}

	if expiry.runs != 1 {
		t.Fatalf("failing job ran %d times, want 1", expiry.runs)
	}
	if reminders.runs != 1 {
		t.Fatalf("job after the failure ran %d times, want 1", reminders.runs)
	}
}

func TestRunCycleSkipsWhenLockHeld(t *testing.T) {
	job := &countingJob{name: "order-expiry"}
	lock := &stubLock{held: true}
	service := newCycleService(t, lock, job)

	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}

	if job.runs != 0 {
		t.Fatalf("job ran %d times while lock was held elsewhere", job.runs)
	}
	if lock.denied != 1 {
		t.Fatalf("expected one denied acquire, got %d", lock.denied)
	}
	if !lock.held {
		t.Fatal("skipped cycle must not release a lock it never acquired")
	}
}

func TestRunCycleReleasesLock(t *testing.T) {
	lock := &stubLock{}
	service := newCycleService(t, lock, &countingJob{name: "subscription-expiry"})

	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if lock.held {
		t.Fatal("lock still held after the cycle finished")
	}
}
