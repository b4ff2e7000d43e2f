package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"hogar/internal/core"
)

// PeriodOpener makes sure every household has a budget period for the
// current month, so month reports pick up explicit lines and rollover.
type PeriodOpener struct {
	store    PeriodStore
	seedZero bool
}

func NewPeriodOpener(store PeriodStore, seedZero bool) *PeriodOpener {
	return &PeriodOpener{store: store, seedZero: seedZero}
}

// OpenCurrentPeriods ensures a period for the month containing now in every
// household and returns how many were created. A failing household is logged
// and skipped.
func (p *PeriodOpener) OpenCurrentPeriods(ctx context.Context, now time.Time) (int, error) {
	if p.store == nil {
		return 0, fmt.Errorf("period opener not properly initialized")
	}

	ids, err := p.store.ListHouseholdIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list households: %w", err)
	}

	month := core.MonthOf(now)
	slog.InfoContext(ctx, "Opening budget periods",
		"households", len(ids),
		"month", month.String())

	created := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return created, err
		}
		period, isNew, err := p.store.EnsurePeriod(ctx, id, month, p.seedZero)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to open budget period",
				"household_id", id,
				"month", month.String(),
				"error", err)
			continue
		}
		if isNew {
			created++
			slog.InfoContext(ctx, "Opened budget period",
				"household_id", id,
				"period_id", period.ID,
				"month", month.String(),
				"seed_zero_lines", p.seedZero)
		}
	}

	slog.InfoContext(ctx, "Budget period check complete",
		"created", created,
		"total_checked", len(ids))
	return created, nil
}

// PeriodSchedulerConfig holds configuration for the period scheduler.
type PeriodSchedulerConfig struct {
	// Interval is how often to check for missing periods (default: 1h)
	Interval time.Duration
}

func DefaultPeriodSchedulerConfig() PeriodSchedulerConfig {
	return PeriodSchedulerConfig{Interval: time.Hour}
}

// PeriodScheduler runs a PeriodOpener on an interval.
type PeriodScheduler struct {
	opener *PeriodOpener
	config PeriodSchedulerConfig
	now    func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewPeriodScheduler(opener *PeriodOpener, config PeriodSchedulerConfig) *PeriodScheduler {
	if config.Interval <= 0 {
		config.Interval = DefaultPeriodSchedulerConfig().Interval
	}
	return &PeriodScheduler{opener: opener, config: config, now: time.Now}
}

// Start begins the check loop. Returns an error if already running.
func (s *PeriodScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("period scheduler is already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	go s.runLoop(ctx)

	slog.InfoContext(ctx, "Period scheduler started", "interval", s.config.Interval)
	return nil
}

// Stop signals the loop and waits for it to finish or ctx to expire.
func (s *PeriodScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Period scheduler stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Period scheduler stop timed out")
		return ctx.Err()
	}

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	return nil
}

func (s *PeriodScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *PeriodScheduler) runLoop(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	// Check immediately on startup
	s.runOnce(ctx)

	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *PeriodScheduler) runOnce(ctx context.Context) {
	if _, err := s.opener.OpenCurrentPeriods(ctx, s.now()); err != nil {
		slog.ErrorContext(ctx, "Budget period check failed", "error", err)
	}
}
