// Package engine computes household budget figures from a read-only snapshot
// of categories, explicit budget lines and transactions.
//
// The package performs no I/O and keeps no state between calls: every
// exported function is a pure function of its arguments, so results can be
// computed concurrently and memoised freely by the caller.
package engine

import (
	"github.com/shopspring/decimal"
)

// NormalizePeriod returns the recurrence period to use for a category and
// whether the declared one was usable. Non-positive periods fall back to
// monthly so a report is always produced.
func NormalizePeriod(periodMonths int) (int, bool) {
	if periodMonths <= 0 {
		return 1, false
	}
	return periodMonths, true
}

// MonthlyEquivalent converts a per-occurrence amount into its monthly
// equivalent. A null amount normalises to zero.
//
//	MonthlyEquivalent(300, 3)  -> 100
//	MonthlyEquivalent(1200, 12) -> 100
//	MonthlyEquivalent(null, 1) -> 0
func MonthlyEquivalent(amount decimal.NullDecimal, periodMonths int) decimal.Decimal {
	if !amount.Valid {
		return decimal.Zero
	}
	p, _ := NormalizePeriod(periodMonths)
	if p == 1 {
		return amount.Decimal
	}
	return amount.Decimal.Div(decimal.NewFromInt(int64(p)))
}
