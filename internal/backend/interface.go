package backend

import (
	"context"

	"hogar/internal/amqp"
	"hogar/internal/cache"
	"hogar/internal/services"
	"hogar/internal/sheets"
	"hogar/internal/storage"
)

// CleanupFunc releases resources held by a built component.
type CleanupFunc func() error

// App is the wired budget backend shared by the binaries.
type App struct {
	Repo    *storage.SQLiteRepository
	Budgets *services.BudgetService
	// AMQP is nil when alert publishing is disabled or unavailable.
	AMQP    *amqp.Client
	Caches  *cache.Manager
	Cleanup CleanupFunc
}

// Factory builds backends based on configuration.
type Factory interface {
	Build(ctx context.Context, config Config) (*App, error)
	AlertSink(ctx context.Context, config Config) (sheets.AlertStore, error)
}

// SinkType selects where the alert worker records alerts.
type SinkType string

const (
	MemorySink SinkType = "memory"
	SheetsSink SinkType = "sheets"
)

func (st SinkType) String() string {
	return string(st)
}

func (st SinkType) IsValid() bool {
	switch st {
	case MemorySink, SheetsSink:
		return true
	default:
		return false
	}
}
