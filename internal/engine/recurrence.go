package engine

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Names of the built-in recurrence models.
const (
	ModelDiscrete   = "discrete"
	ModelFractional = "fractional"
)

// RecurrenceModel turns a category default into the amount expected over a
// window of default-only months. Implementations must be pure.
type RecurrenceModel interface {
	Name() string
	// Project returns the expected amount for a per-occurrence default
	// recurring every periodMonths months over windowMonths months.
	Project(amount decimal.NullDecimal, periodMonths, windowMonths int) (decimal.Decimal, error)
}

// DiscreteOccurrences charges the whole default once per occurrence inside
// the window, anchored at the window start.
type DiscreteOccurrences struct{}

func (DiscreteOccurrences) Name() string { return ModelDiscrete }

// Project returns monthlyEquivalent(amount, p) × occurrences(w, p).
func (DiscreteOccurrences) Project(amount decimal.NullDecimal, periodMonths, windowMonths int) (decimal.Decimal, error) {
	occ, err := Occurrences(windowMonths, periodMonths)
	if err != nil {
		return decimal.Zero, err
	}
	if !amount.Valid {
		return decimal.Zero, nil
	}
	p, _ := NormalizePeriod(periodMonths)
	// Multiply before dividing so whole-period windows stay exact.
	return amount.Decimal.Mul(decimal.NewFromInt(int64(occ))).Div(decimal.NewFromInt(int64(p))), nil
}

// FractionalMonthly spreads the default evenly over every month of the
// window with no occurrence counting.
type FractionalMonthly struct{}

func (FractionalMonthly) Name() string { return ModelFractional }

// Project returns monthlyEquivalent(amount, p) × windowMonths.
func (FractionalMonthly) Project(amount decimal.NullDecimal, periodMonths, windowMonths int) (decimal.Decimal, error) {
	if windowMonths <= 0 {
		return decimal.Zero, errWindowLength(windowMonths)
	}
	if !amount.Valid {
		return decimal.Zero, nil
	}
	p, _ := NormalizePeriod(periodMonths)
	return amount.Decimal.Mul(decimal.NewFromInt(int64(windowMonths))).Div(decimal.NewFromInt(int64(p))), nil
}

// recurrenceModels maps model names to implementations.
var recurrenceModels = map[string]RecurrenceModel{
	ModelDiscrete:   DiscreteOccurrences{},
	ModelFractional: FractionalMonthly{},
}

// GetRecurrenceModel returns the model registered under name. An empty name
// selects the discrete model.
func GetRecurrenceModel(name string) (RecurrenceModel, error) {
	if name == "" {
		name = ModelDiscrete
	}
	m, ok := recurrenceModels[name]
	if !ok {
		return nil, fmt.Errorf("unknown recurrence model: %s", name)
	}
	return m, nil
}

// RegisterRecurrenceModel adds or replaces a model. It is meant to be called
// during program initialisation, before any computation runs.
func RegisterRecurrenceModel(model RecurrenceModel) {
	recurrenceModels[model.Name()] = model
}

// RecurrenceModelNames lists registered models in lexical order.
func RecurrenceModelNames() []string {
	names := make([]string, 0, len(recurrenceModels))
	for name := range recurrenceModels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
