package services

import (
	"context"
	"testing"
	"time"
)

func TestPeriodOpener_OpenCurrentPeriods(t *testing.T) {
	store := &fakePeriodStore{households: []string{"casa", "piso", "roto"}, failFor: "roto"}
	opener := NewPeriodOpener(store, false)
	ctx := context.Background()
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	created, err := opener.OpenCurrentPeriods(ctx, now)
	if err != nil {
		t.Fatalf("OpenCurrentPeriods() error = %v", err)
	}
	if created != 2 {
		t.Errorf("created = %d, want 2 (failing household skipped)", created)
	}
	if !store.open["casa|2025-03"] || !store.open["piso|2025-03"] {
		t.Errorf("open periods = %v", store.open)
	}

	created, err = opener.OpenCurrentPeriods(ctx, now.Add(24*time.Hour))
	if err != nil || created != 0 {
		t.Errorf("second run created %d, err %v; want 0, nil", created, err)
	}

	created, _ = opener.OpenCurrentPeriods(ctx, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
	if created != 2 {
		t.Errorf("new month created %d, want 2", created)
	}
}

func TestPeriodOpener_NotInitialized(t *testing.T) {
	if _, err := NewPeriodOpener(nil, false).OpenCurrentPeriods(context.Background(), time.Now()); err == nil {
		t.Error("expected error without a store")
	}
}

func TestPeriodOpener_CancelledContext(t *testing.T) {
	store := &fakePeriodStore{households: []string{"casa"}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewPeriodOpener(store, false).OpenCurrentPeriods(ctx, time.Now()); err == nil {
		t.Error("expected context error")
	}
}

func TestDefaultPeriodSchedulerConfig(t *testing.T) {
	if got := DefaultPeriodSchedulerConfig().Interval; got != time.Hour {
		t.Errorf("expected Interval 1h, got %v", got)
	}
	s := NewPeriodScheduler(NewPeriodOpener(nil, false), PeriodSchedulerConfig{})
	if s.config.Interval != time.Hour {
		t.Errorf("zero interval not defaulted: %v", s.config.Interval)
	}
}

func TestPeriodScheduler_Lifecycle(t *testing.T) {
	store := &fakePeriodStore{households: []string{"casa"}}
	s := NewPeriodScheduler(NewPeriodOpener(store, false), PeriodSchedulerConfig{Interval: time.Hour})
	s.now = func() time.Time { return time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	if s.IsRunning() {
		t.Error("scheduler should not be running initially")
	}
	if err := s.Stop(ctx); err != nil {
		t.Errorf("Stop should not error when not running: %v", err)
	}

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := s.Start(ctx); err == nil {
		t.Error("expected error when starting already running scheduler")
	}

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := s.Stop(stopCtx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if s.IsRunning() {
		t.Error("scheduler still running after Stop")
	}
	// The immediate startup check ran before the loop observed the stop.
	if !store.open["casa|2025-03"] {
		t.Error("startup check did not open the current period")
	}
}
