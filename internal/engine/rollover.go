package engine

import "github.com/shopspring/decimal"

// PeriodTotals are the budget and shared spend of a closed-out month, used to
// compute the carry into the following month.
type PeriodTotals struct {
	Budget decimal.Decimal `json:"budget"`
	Spent  decimal.Decimal `json:"spent"`
}

// Rollover returns prevBudget - prevSpent. Surpluses and deficits are both
// carried; nothing is clamped.
func Rollover(prevBudget, prevSpent decimal.Decimal) decimal.Decimal {
	return prevBudget.Sub(prevSpent)
}

// CarryFrom returns the carry for optional previous totals. A month with no
// previous budget period has nothing to carry.
func CarryFrom(prev *PeriodTotals) decimal.Decimal {
	if prev == nil {
		return decimal.Zero
	}
	return Rollover(prev.Budget, prev.Spent)
}
