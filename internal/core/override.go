package core

import "github.com/shopspring/decimal"

// Override is either Unset ("use the computed default") or Explicit(amount).
// An explicit zero is a deliberate zero budget and must never be confused
// with Unset.
type Override struct {
	amount decimal.Decimal
	set    bool
}

func Unset() Override {
	return Override{}
}

func Explicit(amount decimal.Decimal) Override {
	return Override{amount: amount, set: true}
}

func (o Override) IsSet() bool {
	return o.set
}

// Amount returns the explicit amount and true, or zero and false when unset.
func (o Override) Amount() (decimal.Decimal, bool) {
	if !o.set {
		return decimal.Zero, false
	}
	return o.amount, true
}

// Or returns the explicit amount, falling back to def when unset.
func (o Override) Or(def decimal.Decimal) decimal.Decimal {
	if o.set {
		return o.amount
	}
	return def
}
