package engine

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"hogar/internal/core"
)

var household = core.HouseholdContext{HouseholdID: "casa"}

func TestComputeScenarioMonthWithOverride(t *testing.T) {
	mar := month(2025, time.March)
	book := NewOverrideBook()
	book.OpenPeriod(mar)
	book.Set(mar, "food", dec("150"))

	res, err := New(nil).Compute(Input{
		Household:    household,
		Categories:   []core.Category{expenseCategory("food", "100", 1)},
		Overrides:    book,
		Transactions: []core.Transaction{spend("food", "200", day(2025, 3, 14))},
		Window:       core.MonthWindow(mar),
	})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	food := res.PerCategory["food"]
	assertDecimal(t, "expected", food.Expected, dec("150"))
	assertDecimal(t, "spent", food.Spent, dec("200"))
	assertDecimal(t, "remaining", food.Remaining, dec("-50"))
	assertDecimal(t, "percent", food.Percent.Round(1), dec("133.3"))
	if food.Status != StatusOverBudget || !food.Overridden {
		t.Errorf("status = %s overridden = %v", food.Status, food.Overridden)
	}
	if food.AverageSpent != nil {
		t.Errorf("month results must not carry averageSpent")
	}
}

func TestComputeScenarioQuarterlyRange(t *testing.T) {
	res, err := New(DiscreteOccurrences{}).Compute(Input{
		Household:  household,
		Categories: []core.Category{expenseCategory("insurance", "300", core.Quarterly)},
		Transactions: []core.Transaction{
			spend("insurance", "90", day(2025, 1, 20)),
			spend("insurance", "30", day(2025, 3, 31)),
			spend("insurance", "1000", day(2025, 4, 1)),
		},
		Window: core.RangeWindow(month(2025, time.March), 3),
	})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	ins := res.PerCategory["insurance"]
	assertDecimal(t, "expected", ins.Expected, dec("100"))
	assertDecimal(t, "spent", ins.Spent, dec("120"))
	assertDecimal(t, "remaining", ins.Remaining, dec("-20"))
	if ins.AverageSpent == nil {
		t.Fatalf("range results must carry averageSpent")
	}
	assertDecimal(t, "averageSpent", *ins.AverageSpent, dec("40"))
	assertDecimal(t, "rollover", res.Summary.Rollover, dec("0"))
}

func TestComputeRangeIgnoresOverrides(t *testing.T) {
	mar := month(2025, time.March)
	book := NewOverrideBook()
	book.OpenPeriod(mar)
	book.Set(mar, "food", dec("0"))

	res, err := New(nil).Compute(Input{
		Categories: []core.Category{expenseCategory("food", "100", 1)},
		Overrides:  book,
		Window:     core.RangeWindow(mar, 2),
		Previous:   &PeriodTotals{Budget: dec("10"), Spent: dec("0")},
	})
	if err != nil {
		t.Fatal(err)
	}
	assertDecimal(t, "expected", res.PerCategory["food"].Expected, dec("200"))
	assertDecimal(t, "effectiveAvailable", res.Summary.EffectiveAvailable, dec("200"))
}

func TestComputeScenarioRolloverChain(t *testing.T) {
	prevMonth := month(2025, time.February)
	cats := []core.Category{expenseCategory("home", "200", 1)}

	prev, err := New(nil).Compute(Input{
		Categories:   cats,
		Transactions: []core.Transaction{spend("home", "250", day(2025, 2, 10))},
		Window:       core.MonthWindow(prevMonth),
	})
	if err != nil {
		t.Fatal(err)
	}
	totals := PreviousTotals(prev)

	cur, err := New(nil).Compute(Input{
		Categories:   cats,
		Transactions: []core.Transaction{spend("home", "180", day(2025, 3, 10))},
		Window:       core.MonthWindow(prevMonth.AddMonths(1)),
		Previous:     &totals,
	})
	if err != nil {
		t.Fatal(err)
	}

	assertDecimal(t, "rollover", cur.Summary.Rollover, dec("-50"))
	assertDecimal(t, "effectiveAvailable", cur.Summary.EffectiveAvailable, dec("150"))
	assertDecimal(t, "available", cur.Summary.Available, dec("-30"))
	assertDecimal(t, "budgetTotal", cur.Summary.BudgetTotal, dec("200"))
	assertDecimal(t, "expense", cur.Summary.Expense, dec("180"))
}

func TestComputeExplicitZeroOverride(t *testing.T) {
	mar := month(2025, time.March)
	book := NewOverrideBook()
	book.OpenPeriod(mar)
	book.Set(mar, "fun", dec("0"))

	res, err := New(nil).Compute(Input{
		Categories:   []core.Category{expenseCategory("fun", "80", 1)},
		Overrides:    book,
		Transactions: []core.Transaction{spend("fun", "25", day(2025, 3, 2))},
		Window:       core.MonthWindow(mar),
	})
	if err != nil {
		t.Fatal(err)
	}
	fun := res.PerCategory["fun"]
	assertDecimal(t, "expected", fun.Expected, dec("0"))
	assertDecimal(t, "percent", fun.Percent, dec("100"))
	if fun.Status != StatusOverBudget {
		t.Errorf("status = %s, want over_budget", fun.Status)
	}
}

func TestComputeWarnings(t *testing.T) {
	mar := month(2025, time.March)
	var book OverrideBook
	book.Set(mar, "food", dec("10"))

	res, err := New(nil).Compute(Input{
		Categories: []core.Category{
			expenseCategory("food", "100", 0),
			{ID: "salary", Name: "salary", Kind: core.KindIncome},
		},
		Overrides: book,
		Window:    core.MonthWindow(mar),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Warnings) != 2 || res.Warnings[0].Kind != WarnMissingRecurrence || res.Warnings[1].Kind != WarnOrphanOverride {
		t.Fatalf("warnings = %+v", res.Warnings)
	}
	assertDecimal(t, "expected", res.PerCategory["food"].Expected, dec("100"))
	if _, ok := res.PerCategory["salary"]; ok {
		t.Errorf("income categories must not be projected")
	}
}

func TestComputeRejectsInvalidWindow(t *testing.T) {
	_, err := New(nil).Compute(Input{Window: core.RangeWindow(month(2025, time.March), 0)})
	if !errors.Is(err, core.ErrInvalidWindow) {
		t.Fatalf("error = %v, want ErrInvalidWindow", err)
	}
}

func TestComputeOrder(t *testing.T) {
	cats := []core.Category{
		{ID: "c", Name: "Zeta", Kind: core.KindExpense, SortOrder: 1},
		{ID: "a", Name: "Beta", Kind: core.KindExpense, SortOrder: 2},
		{ID: "b", Name: "Alpha", Kind: core.KindExpense, SortOrder: 2},
		{ID: "i", Name: "Income", Kind: core.KindIncome},
	}
	res, err := New(nil).Compute(Input{Categories: cats, Window: core.MonthWindow(month(2025, time.March))})
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"c", "b", "a"}; !reflect.DeepEqual(res.Order, want) {
		t.Fatalf("Order = %v, want %v", res.Order, want)
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	mar := month(2025, time.March)
	book := NewOverrideBook()
	book.OpenPeriod(mar)
	book.Set(mar, "food", dec("123.45"))

	in := Input{
		Categories: []core.Category{
			expenseCategory("food", "100", 1),
			expenseCategory("car", "1000", core.Yearly),
		},
		Overrides: book,
		Transactions: []core.Transaction{
			spend("food", "33.33", day(2025, 3, 1)),
			spend("car", "12", day(2025, 3, 9)),
			income("2000", day(2025, 3, 1)),
		},
		Window:   core.MonthWindow(mar),
		Previous: &PeriodTotals{Budget: dec("500"), Spent: dec("480.5")},
	}

	e := New(FractionalMonthly{})
	first, err := e.Compute(in)
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Compute(in)
	if err != nil {
		t.Fatal(err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Fatalf("results differ:\n%s\n%s", a, b)
	}
}
