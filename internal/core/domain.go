package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Recurrence periods offered for a category, in months.
const (
	Monthly   = 1
	Bimonthly = 2
	Quarterly = 3
	Yearly    = 12
)

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

const (
	ScopeShared Scope = "shared"
	ScopeMember Scope = "member"
)

const (
	PeriodActive PeriodStatus = "active"
	PeriodClosed PeriodStatus = "closed"
)

type (
	Kind         string
	Scope        string
	PeriodStatus string

	// HouseholdContext identifies who a computation is run for. It is passed
	// explicitly into every entry point instead of living in session state.
	HouseholdContext struct {
		HouseholdID string
		MemberID    string
	}

	Category struct {
		ID          string
		HouseholdID string
		Name        string
		Kind        Kind
		// DefaultAmount is denominated per occurrence, not per month.
		DefaultAmount decimal.NullDecimal
		PeriodMonths  int
		SortOrder     int
	}

	// BudgetPeriod marks that a household has an active budget for a month.
	BudgetPeriod struct {
		ID          int64
		HouseholdID string
		Month       MonthKey
		Status      PeriodStatus
		CreatedAt   time.Time
	}

	// BudgetLine is an explicit per-month amount for one category.
	BudgetLine struct {
		PeriodID   int64
		CategoryID string
		Scope      Scope
		Amount     decimal.Decimal
	}

	Transaction struct {
		ID          int64
		HouseholdID string
		Amount      decimal.Decimal
		Kind        Kind
		CategoryID  *string // nil for uncategorised
		Scope       Scope
		Date        time.Time
		Description string
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidPeriod     = errors.New("invalid recurrence period")
	ErrUnknownKind       = errors.New("unknown kind")
	ErrUnknownScope      = errors.New("unknown scope")
	ErrEmptyName         = errors.New("empty name")
	ErrEmptyHousehold    = errors.New("empty household id")
	ErrPeriodNotFound    = errors.New("budget period not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrHouseholdNotFound = errors.New("household not found")
)

func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

func (s Scope) Valid() bool {
	return s == ScopeShared || s == ScopeMember
}

func (h HouseholdContext) Validate() error {
	if strings.TrimSpace(h.HouseholdID) == "" {
		return ErrEmptyHousehold
	}
	return nil
}

// IsExpense reports whether the category takes part in budget projection.
func (c Category) IsExpense() bool {
	return c.Kind == KindExpense
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if !c.Kind.Valid() {
		return ErrUnknownKind
	}
	if c.PeriodMonths < 0 {
		return ErrInvalidPeriod
	}
	if c.DefaultAmount.Valid && c.DefaultAmount.Decimal.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

func (l BudgetLine) Validate() error {
	if strings.TrimSpace(l.CategoryID) == "" {
		return ErrCategoryNotFound
	}
	if !l.Scope.Valid() {
		return ErrUnknownScope
	}
	if l.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return errors.New("date cannot be zero")
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !t.Kind.Valid() {
		return ErrUnknownKind
	}
	if !t.Scope.Valid() {
		return ErrUnknownScope
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

// CountsAsSharedExpense reports whether t feeds household expense totals.
func (t Transaction) CountsAsSharedExpense() bool {
	return t.Scope == ScopeShared && t.Kind == KindExpense
}

// CountsAsSharedIncome reports whether t feeds household income totals.
func (t Transaction) CountsAsSharedIncome() bool {
	return t.Scope == ScopeShared && t.Kind == KindIncome
}
