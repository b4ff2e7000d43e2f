package engine

import (
	"fmt"

	"hogar/internal/core"
)

// Data-quality warnings. They never fail a computation.
const (
	WarnMissingRecurrence WarningKind = "missing_recurrence"
	WarnOrphanOverride    WarningKind = "orphan_override"
)

type WarningKind string

// Warning describes an input the engine had to work around.
type Warning struct {
	Kind       WarningKind `json:"kind"`
	CategoryID string      `json:"categoryId,omitempty"`
	Month      string      `json:"month,omitempty"`
	Message    string      `json:"message"`
}

// Input is the snapshot a computation runs on. Categories, transactions and
// overrides must already be scoped to Household.
type Input struct {
	Household    core.HouseholdContext
	Categories   []core.Category
	Overrides    OverrideBook
	Transactions []core.Transaction
	Window       core.Window
	// Previous holds last month's totals for month windows. Nil means the
	// previous month had no budget period and nothing is carried.
	Previous *PeriodTotals
}

type Result struct {
	Window      string                    `json:"window"`
	PerCategory map[string]CategoryResult `json:"perCategory"`
	// Order lists PerCategory keys in display order.
	Order    []string  `json:"order"`
	Summary  Summary   `json:"summary"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// Engine binds a recurrence model. It holds no other state and is safe for
// concurrent use.
type Engine struct {
	model RecurrenceModel
}

// New returns an engine using model, or the discrete model when nil.
func New(model RecurrenceModel) *Engine {
	if model == nil {
		model = DiscreteOccurrences{}
	}
	return &Engine{model: model}
}

// Compute produces the budget report for in. The only error is an invalid
// window; every other degenerate input resolves to a number and, where
// relevant, a warning.
func (e *Engine) Compute(in Input) (Result, error) {
	if err := in.Window.Validate(); err != nil {
		return Result{}, err
	}

	results, err := Project(in.Categories, in.Overrides, in.Transactions, in.Window, e.model)
	if err != nil {
		return Result{}, err
	}

	// Ranges never chain rollover.
	var prev *PeriodTotals
	if in.Window.IsMonth() {
		prev = in.Previous
	}

	out := Result{
		Window:      in.Window.Key(),
		PerCategory: make(map[string]CategoryResult, len(results)),
		Order:       orderCategories(in.Categories),
		Summary:     Summarize(results, in.Transactions, in.Window, CarryFrom(prev)),
		Warnings:    collectWarnings(in),
	}
	for _, r := range results {
		out.PerCategory[r.CategoryID] = r
	}
	return out, nil
}

// PreviousTotals extracts the figures a month result contributes to the
// rollover of the month after it.
func PreviousTotals(r Result) PeriodTotals {
	return PeriodTotals{Budget: r.Summary.BudgetTotal, Spent: r.Summary.Expense}
}

func collectWarnings(in Input) []Warning {
	var warnings []Warning
	for _, cat := range in.Categories {
		if !cat.IsExpense() {
			continue
		}
		if _, ok := NormalizePeriod(cat.PeriodMonths); !ok {
			warnings = append(warnings, Warning{
				Kind:       WarnMissingRecurrence,
				CategoryID: cat.ID,
				Message:    fmt.Sprintf("category %q has no usable recurrence period (%d), treated as monthly", cat.Name, cat.PeriodMonths),
			})
		}
	}
	for _, o := range in.Overrides.Orphans() {
		warnings = append(warnings, Warning{
			Kind:       WarnOrphanOverride,
			CategoryID: o.CategoryID,
			Month:      o.Month.String(),
			Message:    fmt.Sprintf("budget line for %s ignored: no budget period", o.Month),
		})
	}
	return warnings
}
