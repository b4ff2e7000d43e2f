package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"hogar/internal/core"
)

// OrphanLine is an explicit amount recorded for a month that has no active
// budget period. It is never applied.
type OrphanLine struct {
	Month      core.MonthKey
	CategoryID string
	Amount     decimal.Decimal
}

// OverrideBook holds shared-scope budget lines grouped by month. A month is
// present in the book only once its budget period has been opened, so
// presence of a line (even with a zero amount) means an explicit override.
// The zero value is an empty book.
type OverrideBook struct {
	months  map[core.MonthKey]map[string]decimal.Decimal
	orphans []OrphanLine
}

// NewOverrideBook returns an empty book.
func NewOverrideBook() OverrideBook {
	return OverrideBook{months: make(map[core.MonthKey]map[string]decimal.Decimal)}
}

// OpenPeriod records that month has an active budget period.
func (b *OverrideBook) OpenPeriod(month core.MonthKey) {
	if b.months == nil {
		b.months = make(map[core.MonthKey]map[string]decimal.Decimal)
	}
	if _, ok := b.months[month]; !ok {
		b.months[month] = make(map[string]decimal.Decimal)
	}
}

// Set stores an explicit shared amount for a category in month. It returns
// false, keeping the line as an orphan, when the month has no open period.
func (b *OverrideBook) Set(month core.MonthKey, categoryID string, amount decimal.Decimal) bool {
	lines, ok := b.months[month]
	if !ok {
		b.orphans = append(b.orphans, OrphanLine{Month: month, CategoryID: categoryID, Amount: amount})
		return false
	}
	lines[categoryID] = amount
	return true
}

// AddLine stores a budget line. Only shared-scope lines feed the household
// budget; member lines are skipped.
func (b *OverrideBook) AddLine(month core.MonthKey, line core.BudgetLine) bool {
	if line.Scope != core.ScopeShared {
		return false
	}
	return b.Set(month, line.CategoryID, line.Amount)
}

// HasPeriod reports whether month has an active budget period.
func (b OverrideBook) HasPeriod(month core.MonthKey) bool {
	_, ok := b.months[month]
	return ok
}

// Resolve returns the override for a category in month, or Unset when the
// month has no period or the period has no line for the category.
func (b OverrideBook) Resolve(categoryID string, month core.MonthKey) core.Override {
	lines, ok := b.months[month]
	if !ok {
		return core.Unset()
	}
	amount, ok := lines[categoryID]
	if !ok {
		return core.Unset()
	}
	return core.Explicit(amount)
}

// Orphans lists lines that were recorded against months without a period,
// ordered by month then category.
func (b OverrideBook) Orphans() []OrphanLine {
	out := make([]OrphanLine, len(b.orphans))
	copy(out, b.orphans)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month.Before(out[j].Month)
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	return out
}

// EffectiveBudget resolves the budget for one category in one month: an
// explicit line wins, including zero, otherwise model projects the category
// default over that single month. The bool reports whether a line decided it.
func EffectiveBudget(cat core.Category, month core.MonthKey, book OverrideBook, model RecurrenceModel) (decimal.Decimal, bool, error) {
	if amount, ok := book.Resolve(cat.ID, month).Amount(); ok {
		return amount, true, nil
	}
	if model == nil {
		model = DiscreteOccurrences{}
	}
	p, _ := NormalizePeriod(cat.PeriodMonths)
	projected, err := model.Project(cat.DefaultAmount, p, 1)
	if err != nil {
		return decimal.Zero, false, err
	}
	return projected, false, nil
}
