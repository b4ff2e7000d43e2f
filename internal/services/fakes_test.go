package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"hogar/internal/amqp"
	"hogar/internal/core"
	"hogar/internal/log"
	"hogar/internal/storage"
)

func quietLogger() *log.Logger {
	return log.New(log.Config{Output: io.Discard})
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func month(y int, m time.Month) core.MonthKey {
	return core.NewMonthKey(y, m)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func expense(categoryID, amt string, at time.Time) core.Transaction {
	id := categoryID
	return core.Transaction{
		HouseholdID: "casa",
		Amount:      dec(amt),
		Kind:        core.KindExpense,
		CategoryID:  &id,
		Scope:       core.ScopeShared,
		Date:        at,
	}
}

// fakeStore is an in-memory BudgetStore and PeriodStore.
type fakeStore struct {
	mu sync.Mutex

	version      int64
	versionErr   error
	categories   []core.Category
	periods      map[core.MonthKey]storage.PeriodLines
	transactions []core.Transaction

	categoryCalls int
	overrideCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{periods: make(map[core.MonthKey]storage.PeriodLines)}
}

func (f *fakeStore) openPeriod(m core.MonthKey, status core.PeriodStatus, lines ...core.BudgetLine) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.periods[m] = storage.PeriodLines{
		Period: core.BudgetPeriod{ID: int64(len(f.periods) + 1), HouseholdID: "casa", Month: m, Status: status},
		Lines:  lines,
	}
}

func (f *fakeStore) DataVersion(_ context.Context, _ string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.version, f.versionErr
}

func (f *fakeStore) ListCategories(_ context.Context, _ string) ([]core.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categoryCalls++
	return append([]core.Category(nil), f.categories...), nil
}

func (f *fakeStore) LoadOverrides(_ context.Context, _ string, months []core.MonthKey) ([]storage.PeriodLines, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overrideCalls++
	var out []storage.PeriodLines
	for _, m := range months {
		if pl, ok := f.periods[m]; ok {
			out = append(out, pl)
		}
	}
	return out, nil
}

func (f *fakeStore) ListTransactions(_ context.Context, _ string, start, end time.Time) ([]core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Transaction
	for _, tx := range f.transactions {
		if !tx.Date.Before(start) && tx.Date.Before(end) {
			out = append(out, tx)
		}
	}
	return out, nil
}

// fakePeriodStore records which household months have a period.
type fakePeriodStore struct {
	households []string
	open       map[string]bool
	failFor    string
}

func (f *fakePeriodStore) ListHouseholdIDs(_ context.Context) ([]string, error) {
	return f.households, nil
}

func (f *fakePeriodStore) EnsurePeriod(_ context.Context, householdID string, m core.MonthKey, _ bool) (core.BudgetPeriod, bool, error) {
	if householdID == f.failFor {
		return core.BudgetPeriod{}, false, errors.New("database is locked")
	}
	if f.open == nil {
		f.open = make(map[string]bool)
	}
	key := householdID + "|" + m.String()
	p := core.BudgetPeriod{ID: int64(len(f.open) + 1), HouseholdID: householdID, Month: m, Status: core.PeriodActive}
	if f.open[key] {
		return p, false, nil
	}
	f.open[key] = true
	return p, true, nil
}

type fakePublisher struct {
	mu   sync.Mutex
	sent []*amqp.BudgetAlertMessage
	err  error
}

func (p *fakePublisher) PublishBudgetAlert(_ context.Context, msg *amqp.BudgetAlertMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, msg)
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

var errBroker = errors.New("broker down")
