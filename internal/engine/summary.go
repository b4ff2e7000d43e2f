package engine

import (
	"github.com/shopspring/decimal"

	"hogar/internal/core"
)

// Consumption status used for colouring and alerting.
const (
	StatusOnTrack    Status = "on_track"
	StatusWarning    Status = "warning"
	StatusOverBudget Status = "over_budget"
)

type Status string

var (
	hundred          = decimal.NewFromInt(100)
	warningThreshold = decimal.NewFromInt(85)
)

// PercentConsumed returns spent as a percentage of expected. A non-positive
// budget reports 100 when anything was spent and 0 otherwise.
func PercentConsumed(expected, spent decimal.Decimal) decimal.Decimal {
	if expected.IsPositive() {
		return spent.Mul(hundred).Div(expected)
	}
	if spent.IsPositive() {
		return hundred
	}
	return decimal.Zero
}

// StatusFor classifies a consumption percentage. Spending against a zero or
// negative budget is always over budget.
func StatusFor(expected, spent, percent decimal.Decimal) Status {
	if !expected.IsPositive() && spent.IsPositive() {
		return StatusOverBudget
	}
	switch {
	case percent.GreaterThan(hundred):
		return StatusOverBudget
	case percent.GreaterThan(warningThreshold):
		return StatusWarning
	default:
		return StatusOnTrack
	}
}

// Summary holds household-level totals for a window.
type Summary struct {
	Income      decimal.Decimal `json:"income"`
	Expense     decimal.Decimal `json:"expense"`
	Balance     decimal.Decimal `json:"balance"`
	BudgetTotal decimal.Decimal `json:"budgetTotal"`
	Available   decimal.Decimal `json:"available"`
	// Rollover is the carry from the previous month; always zero for ranges.
	Rollover           decimal.Decimal `json:"rollover"`
	EffectiveAvailable decimal.Decimal `json:"effectiveAvailable"`
	Percent            decimal.Decimal `json:"percent"`
	Status             Status          `json:"status"`
}

// Summarize reduces per-category results and the raw transactions into
// household totals. Income and expense come straight from shared
// transactions in the window, so uncategorised spend counts here even though
// it belongs to no category. carry is ignored for range windows.
func Summarize(results []CategoryResult, txns []core.Transaction, window core.Window, carry decimal.Decimal) Summary {
	var s Summary
	for _, r := range results {
		s.BudgetTotal = s.BudgetTotal.Add(r.Expected)
	}
	for _, tx := range txns {
		if !window.Contains(tx.Date) {
			continue
		}
		switch {
		case tx.CountsAsSharedExpense():
			s.Expense = s.Expense.Add(tx.Amount)
		case tx.CountsAsSharedIncome():
			s.Income = s.Income.Add(tx.Amount)
		}
	}
	s.Balance = s.Income.Sub(s.Expense)

	if window.IsMonth() {
		s.Rollover = carry
	}
	s.EffectiveAvailable = s.BudgetTotal.Add(s.Rollover)
	s.Available = s.EffectiveAvailable.Sub(s.Expense)
	s.Percent = PercentConsumed(s.EffectiveAvailable, s.Expense)
	s.Status = StatusFor(s.EffectiveAvailable, s.Expense, s.Percent)
	return s
}
