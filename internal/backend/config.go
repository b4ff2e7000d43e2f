package backend

import (
	"fmt"
	"time"

	"hogar/internal/config"
)

// Config holds configuration for backend creation.
type Config struct {
	SQLiteDBPath string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	RecurrenceModel string
	CacheSize       int
	CacheTTL        time.Duration

	Sink                     SinkType
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	sink := SinkType(appConfig.AlertSink)
	if !sink.IsValid() {
		return Config{}, fmt.Errorf("invalid alert sink in config: %s", appConfig.AlertSink)
	}

	return Config{
		SQLiteDBPath: appConfig.SQLiteDBPath,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,

		RecurrenceModel: appConfig.RecurrenceModel,
		CacheSize:       appConfig.CacheSize,
		CacheTTL:        appConfig.CacheTTL,

		Sink:                     sink,
		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleSheetName:          appConfig.GoogleSheetName,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
	}, nil
}

// Validate checks what Build and AlertSink need.
func (c Config) Validate() error {
	if c.SQLiteDBPath == "" {
		return fmt.Errorf("SQLite database path is required")
	}
	if !c.Sink.IsValid() {
		return fmt.Errorf("invalid alert sink: %s", c.Sink)
	}
	if c.Sink == SheetsSink {
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets sink")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			return fmt.Errorf("either GoogleServiceAccountJSON or GoogleServiceAccountFile must be provided for sheets sink")
		}
	}
	return nil
}
