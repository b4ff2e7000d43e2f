package services

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"

	"hogar/internal/cache"
	"hogar/internal/core"
	"hogar/internal/engine"
	"hogar/internal/log"
	"hogar/internal/storage"
)

// BudgetReport is an engine result stamped with the data version it was
// computed from.
type BudgetReport struct {
	HouseholdID string `json:"householdId"`
	DataVersion int64  `json:"dataVersion"`
	engine.Result
}

// snapshot is everything one engine run reads.
type snapshot struct {
	categories   []core.Category
	book         engine.OverrideBook
	transactions []core.Transaction
}

// BudgetService loads household snapshots from storage, runs the engine and
// memoises reports by data version.
type BudgetService struct {
	store   BudgetStore
	engine  *engine.Engine
	reports cache.Cache[BudgetReport]
	alerts  *AlertService
	logger  *log.StructuredLogger
}

// NewBudgetService wires a service. reports and alerts may be nil.
func NewBudgetService(store BudgetStore, eng *engine.Engine, reports cache.Cache[BudgetReport], alerts *AlertService, logger *log.Logger) *BudgetService {
	if eng == nil {
		eng = engine.New(nil)
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &BudgetService{
		store:   store,
		engine:  eng,
		reports: reports,
		alerts:  alerts,
		logger:  log.NewStructuredLogger(logger.WithComponent(log.ComponentBudget)),
	}
}

func reportKey(householdID string, w core.Window, version int64) string {
	return householdID + "|" + w.Key() + "|" + strconv.FormatInt(version, 10)
}

// Report computes the budget for a household over window. Results are cached
// until the household's data version changes.
func (s *BudgetService) Report(ctx context.Context, hh core.HouseholdContext, window core.Window) (BudgetReport, error) {
	if err := hh.Validate(); err != nil {
		return BudgetReport{}, err
	}
	if err := window.Validate(); err != nil {
		return BudgetReport{}, err
	}

	version, err := s.store.DataVersion(ctx, hh.HouseholdID)
	if err != nil {
		return BudgetReport{}, fmt.Errorf("read data version: %w", err)
	}

	key := reportKey(hh.HouseholdID, window, version)
	if s.reports != nil {
		if cached, ok := s.reports.Get(key); ok {
			s.logger.LogBudgetComputed(ctx, hh.HouseholdID, window.Key(), version, true, len(cached.Warnings))
			return cached, nil
		}
	}

	in := engine.Input{Household: hh, Window: window}

	g, gctx := errgroup.WithContext(ctx)
	var current snapshot
	g.Go(func() error {
		var err error
		current, err = s.loadSnapshot(gctx, hh.HouseholdID, window)
		return err
	})
	if window.IsMonth() {
		g.Go(func() error {
			prev, err := s.previousTotals(gctx, hh, window.Previous())
			in.Previous = prev
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return BudgetReport{}, err
	}

	in.Categories = current.categories
	in.Overrides = current.book
	in.Transactions = current.transactions

	result, err := s.engine.Compute(in)
	if err != nil {
		return BudgetReport{}, fmt.Errorf("compute budget: %w", err)
	}

	for _, w := range result.Warnings {
		s.logger.LogDataQuality(ctx, hh.HouseholdID, result.Window, string(w.Kind), w.CategoryID, w.Message)
	}

	report := BudgetReport{HouseholdID: hh.HouseholdID, DataVersion: version, Result: result}
	if s.alerts != nil {
		s.alerts.Publish(ctx, s.alerts.Evaluate(hh, version, result))
	}
	if s.reports != nil {
		s.reports.Set(key, report)
	}
	s.logger.LogBudgetComputed(ctx, hh.HouseholdID, result.Window, version, false, len(result.Warnings))
	return report, nil
}

// Invalidate drops every cached report for a household.
func (s *BudgetService) Invalidate(householdID string) int {
	if s.reports == nil {
		return 0
	}
	return s.reports.DeletePrefix(householdID + "|")
}

func (s *BudgetService) loadSnapshot(ctx context.Context, householdID string, window core.Window) (snapshot, error) {
	var snap snapshot

	categories, err := s.store.ListCategories(ctx, householdID)
	if err != nil {
		return snap, fmt.Errorf("load categories: %w", err)
	}
	snap.categories = categories

	// Ranges project defaults only, so only month windows need lines.
	snap.book = engine.NewOverrideBook()
	if window.IsMonth() {
		periods, err := s.store.LoadOverrides(ctx, householdID, window.Months())
		if err != nil {
			return snap, fmt.Errorf("load budget lines: %w", err)
		}
		snap.book = buildOverrideBook(periods)
	}

	start, end := window.Bounds()
	txns, err := s.store.ListTransactions(ctx, householdID, start, end)
	if err != nil {
		return snap, fmt.Errorf("load transactions: %w", err)
	}
	snap.transactions = txns
	return snap, nil
}

// previousTotals computes the month before a month window. It returns nil
// when that month has no budget period, in which case nothing rolls over.
func (s *BudgetService) previousTotals(ctx context.Context, hh core.HouseholdContext, prev core.Window) (*engine.PeriodTotals, error) {
	periods, err := s.store.LoadOverrides(ctx, hh.HouseholdID, prev.Months())
	if err != nil {
		return nil, fmt.Errorf("load previous budget lines: %w", err)
	}
	book := buildOverrideBook(periods)
	if !book.HasPeriod(prev.First()) {
		return nil, nil
	}

	categories, err := s.store.ListCategories(ctx, hh.HouseholdID)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	start, end := prev.Bounds()
	txns, err := s.store.ListTransactions(ctx, hh.HouseholdID, start, end)
	if err != nil {
		return nil, fmt.Errorf("load previous transactions: %w", err)
	}

	result, err := s.engine.Compute(engine.Input{
		Household:    hh,
		Categories:   categories,
		Overrides:    book,
		Transactions: txns,
		Window:       prev,
	})
	if err != nil {
		return nil, fmt.Errorf("compute previous month: %w", err)
	}
	totals := engine.PreviousTotals(result)
	return &totals, nil
}

// buildOverrideBook opens every active period and records its lines. Lines
// of closed periods end up as orphans.
func buildOverrideBook(periods []storage.PeriodLines) engine.OverrideBook {
	book := engine.NewOverrideBook()
	for _, pl := range periods {
		if pl.Period.Status == core.PeriodActive {
			book.OpenPeriod(pl.Period.Month)
		}
		for _, line := range pl.Lines {
			book.AddLine(pl.Period.Month, line)
		}
	}
	return book
}
