package backend

import (
	"context"
	"errors"
	"fmt"

	"hogar/internal/amqp"
	"hogar/internal/cache"
	"hogar/internal/engine"
	"hogar/internal/log"
	"hogar/internal/services"
	"hogar/internal/sheets"
	gsheet "hogar/internal/sheets/google"
	"hogar/internal/sheets/memory"
	"hogar/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// Build opens storage, connects AMQP when configured and wires the budget
// service. A broker that cannot be reached only disables alert publishing.
func (f *DefaultFactory) Build(ctx context.Context, config Config) (*App, error) {
	if config.SQLiteDBPath == "" {
		return nil, fmt.Errorf("SQLite database path is required")
	}

	model, err := engine.GetRecurrenceModel(config.RecurrenceModel)
	if err != nil {
		return nil, err
	}

	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without alerts", "error", err)
			amqpClient = nil
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	reports := cache.NewLRUCache[services.BudgetReport](config.CacheSize, config.CacheTTL)
	caches := cache.NewManager()
	caches.Register(reports)

	var publisher services.AlertPublisher
	if amqpClient != nil {
		publisher = amqpClient
	}
	alerts := services.NewAlertService(publisher, f.logger)
	budgets := services.NewBudgetService(repo, engine.New(model), reports, alerts, f.logger)

	f.logger.InfoContext(ctx, "Initialized budget backend",
		"db_path", config.SQLiteDBPath,
		log.FieldModel, model.Name(),
		"cache_size", config.CacheSize,
		"amqp_enabled", amqpClient != nil)

	return &App{
		Repo:    repo,
		Budgets: budgets,
		AMQP:    amqpClient,
		Caches:  caches,
		Cleanup: func() error {
			caches.Stop()
			var errs []error
			if amqpClient != nil {
				if err := amqpClient.Close(); err != nil {
					errs = append(errs, fmt.Errorf("amqp: %w", err))
				}
			}
			if err := repo.Close(); err != nil {
				errs = append(errs, fmt.Errorf("storage: %w", err))
			}
			return errors.Join(errs...)
		},
	}, nil
}

// AlertSink returns the store alerts are recorded in.
func (f *DefaultFactory) AlertSink(ctx context.Context, config Config) (sheets.AlertStore, error) {
	switch config.Sink {
	case SheetsSink:
		cli, err := gsheet.New(ctx, gsheet.Options{
			SpreadsheetID:   config.GoogleSpreadsheetID,
			SheetName:       config.GoogleSheetName,
			CredentialsJSON: config.GoogleServiceAccountJSON,
			CredentialsFile: config.GoogleServiceAccountFile,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized Google Sheets alert sink", "sheet", config.GoogleSheetName)
		return cli, nil
	case MemorySink, "":
		f.logger.InfoContext(ctx, "Initialized in-memory alert sink")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported alert sink: %s", config.Sink)
	}
}
