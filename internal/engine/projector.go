package engine

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"hogar/internal/core"
)

// CategoryResult is the projection of one expense category over a window.
type CategoryResult struct {
	CategoryID   string          `json:"categoryId"`
	Name         string          `json:"name"`
	PeriodMonths int             `json:"periodMonths"`
	Expected     decimal.Decimal `json:"expected"`
	Spent        decimal.Decimal `json:"spent"`
	Remaining    decimal.Decimal `json:"remaining"`
	Percent      decimal.Decimal `json:"percent"`
	Status       Status          `json:"status"`
	// Overridden is set when an explicit budget line decided Expected.
	Overridden bool `json:"overridden"`
	// AverageSpent is spent per month, reported for range windows only.
	AverageSpent *decimal.Decimal `json:"averageSpent,omitempty"`
}

// Project computes expected, spent and derived figures for every expense
// category over window.
//
// Month windows reconcile against stored budget lines: an explicit line wins,
// otherwise the model projects the default over one month. Range windows
// project from defaults only and never consult the book.
//
// Spend is the sum of shared expense transactions dated in [start, end) and
// assigned to the category. The result follows the order of categories.
func Project(categories []core.Category, book OverrideBook, txns []core.Transaction, window core.Window, model RecurrenceModel) ([]CategoryResult, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}
	if model == nil {
		model = DiscreteOccurrences{}
	}

	spent := spendByCategory(txns, window)
	months := decimal.NewFromInt(int64(window.Length))

	results := make([]CategoryResult, 0, len(categories))
	for _, cat := range categories {
		if !cat.IsExpense() {
			continue
		}
		p, _ := NormalizePeriod(cat.PeriodMonths)
		r := CategoryResult{
			CategoryID:   cat.ID,
			Name:         cat.Name,
			PeriodMonths: p,
			Spent:        spent[cat.ID],
		}

		var err error
		if window.IsMonth() {
			r.Expected, r.Overridden, err = EffectiveBudget(cat, window.Anchor, book, model)
		} else {
			r.Expected, err = model.Project(cat.DefaultAmount, p, window.Length)
			avg := r.Spent.Div(months)
			r.AverageSpent = &avg
		}
		if err != nil {
			return nil, fmt.Errorf("project category %s: %w", cat.ID, err)
		}
		r.Remaining = r.Expected.Sub(r.Spent)
		r.Percent = PercentConsumed(r.Expected, r.Spent)
		r.Status = StatusFor(r.Expected, r.Spent, r.Percent)
		results = append(results, r)
	}
	return results, nil
}

func spendByCategory(txns []core.Transaction, window core.Window) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, tx := range txns {
		if !tx.CountsAsSharedExpense() || tx.CategoryID == nil || !window.Contains(tx.Date) {
			continue
		}
		out[*tx.CategoryID] = out[*tx.CategoryID].Add(tx.Amount)
	}
	return out
}

// orderCategories returns expense category IDs sorted by display order, then
// name, then ID.
func orderCategories(categories []core.Category) []string {
	cats := make([]core.Category, 0, len(categories))
	for _, c := range categories {
		if c.IsExpense() {
			cats = append(cats, c)
		}
	}
	sort.SliceStable(cats, func(i, j int) bool {
		if cats[i].SortOrder != cats[j].SortOrder {
			return cats[i].SortOrder < cats[j].SortOrder
		}
		if cats[i].Name != cats[j].Name {
			return cats[i].Name < cats[j].Name
		}
		return cats[i].ID < cats[j].ID
	})
	ids := make([]string, len(cats))
	for i, c := range cats {
		ids[i] = c.ID
	}
	return ids
}
