package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"hogar/internal/core"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func amount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}

func month(y int, m time.Month) core.MonthKey {
	return core.MonthKey{Year: y, Month: m}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func expenseCategory(id, def string, period int) core.Category {
	c := core.Category{ID: id, Name: id, Kind: core.KindExpense, PeriodMonths: period}
	if def != "" {
		c.DefaultAmount = amount(def)
	}
	return c
}

func spend(categoryID string, amt string, at time.Time) core.Transaction {
	tx := core.Transaction{Amount: dec(amt), Kind: core.KindExpense, Scope: core.ScopeShared, Date: at}
	if categoryID != "" {
		id := categoryID
		tx.CategoryID = &id
	}
	return tx
}

func income(amt string, at time.Time) core.Transaction {
	return core.Transaction{Amount: dec(amt), Kind: core.KindIncome, Scope: core.ScopeShared, Date: at}
}

func assertDecimal(t *testing.T, label string, got, want decimal.Decimal) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("%s = %s, want %s", label, got, want)
	}
}

// assertClose compares within 1e-9, for figures that went through division.
func assertClose(t *testing.T, label string, got, want decimal.Decimal) {
	t.Helper()
	if got.Sub(want).Abs().GreaterThan(dec("0.000000001")) {
		t.Errorf("%s = %s, want ~%s", label, got, want)
	}
}
