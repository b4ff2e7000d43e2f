package services

import (
	"context"
	"time"

	"hogar/internal/amqp"
	"hogar/internal/core"
	"hogar/internal/storage"
)

// Ports the services depend on. *storage.SQLiteRepository satisfies the
// store ports and *amqp.Client the publisher.
type (
	BudgetStore interface {
		DataVersion(ctx context.Context, householdID string) (int64, error)
		ListCategories(ctx context.Context, householdID string) ([]core.Category, error)
		LoadOverrides(ctx context.Context, householdID string, months []core.MonthKey) ([]storage.PeriodLines, error)
		ListTransactions(ctx context.Context, householdID string, start, end time.Time) ([]core.Transaction, error)
	}

	PeriodStore interface {
		ListHouseholdIDs(ctx context.Context) ([]string, error)
		EnsurePeriod(ctx context.Context, householdID string, month core.MonthKey, seedZero bool) (core.BudgetPeriod, bool, error)
	}

	AlertPublisher interface {
		PublishBudgetAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error
	}
)

var (
	_ BudgetStore    = (*storage.SQLiteRepository)(nil)
	_ PeriodStore    = (*storage.SQLiteRepository)(nil)
	_ AlertPublisher = (*amqp.Client)(nil)
)
