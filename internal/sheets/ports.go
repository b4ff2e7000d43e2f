// Package sheets defines the outbound ports budget alerts are written to.
package sheets

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// AlertRow is one alert as recorded by a sink.
type AlertRow struct {
	HouseholdID string
	Window      string
	CategoryID  string
	Category    string
	Status      string
	Percent     decimal.Decimal
	Expected    decimal.Decimal
	Spent       decimal.Decimal
	Timestamp   time.Time
}

var ErrInvalidAlert = errors.New("invalid alert")

func (a AlertRow) Validate() error {
	if a.HouseholdID == "" || a.Window == "" || a.CategoryID == "" || a.Status == "" {
		return ErrInvalidAlert
	}
	return nil
}

// Ports for outbound adapters.
type (
	AlertWriter interface {
		AppendAlert(ctx context.Context, a AlertRow) (rowRef string, err error)
	}

	// AlertLister returns recorded alerts for a household, oldest first.
	AlertLister interface {
		ListAlerts(ctx context.Context, householdID string) ([]AlertRow, error)
	}

	AlertStore interface {
		AlertWriter
		AlertLister
	}
)
