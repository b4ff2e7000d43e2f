package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"hogar/internal/amqp"
	"hogar/internal/cache"
	"hogar/internal/sheets"
)

// AlertWorker records budget alerts consumed from AMQP in an alert sink.
type AlertWorker struct {
	writer sheets.AlertWriter
	// recorded holds alert keys already written, so redeliveries are not
	// appended twice.
	recorded *cache.LRUCache[struct{}]
}

func NewAlertWorker(writer sheets.AlertWriter) *AlertWorker {
	return &AlertWorker{
		writer:   writer,
		recorded: cache.NewLRUCache[struct{}](4096, 24*time.Hour),
	}
}

func recordKey(msg *amqp.BudgetAlertMessage) string {
	return msg.Key() + "|" + strconv.FormatInt(msg.DataVersion, 10)
}

// HandleBudgetAlert appends one alert to the sink. Returning an error
// requeues the message, so only sink failures are reported; alerts the sink
// rejects as invalid are logged and dropped.
func (w *AlertWorker) HandleBudgetAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error {
	if w.writer == nil {
		return errors.New("alert worker has no sink")
	}

	key := recordKey(msg)
	if _, ok := w.recorded.Get(key); ok {
		slog.DebugContext(ctx, "Skipping already recorded alert", "key", key)
		return nil
	}

	slog.InfoContext(ctx, "Processing budget alert",
		"household_id", msg.HouseholdID,
		"window", msg.Window,
		"category_id", msg.CategoryID,
		"status", msg.Status,
		"data_version", msg.DataVersion)

	ref, err := w.writer.AppendAlert(ctx, toAlertRow(msg))
	if errors.Is(err, sheets.ErrInvalidAlert) {
		slog.WarnContext(ctx, "Dropping invalid budget alert",
			"household_id", msg.HouseholdID,
			"error", err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("append alert: %w", err)
	}

	w.recorded.Set(key, struct{}{})
	slog.InfoContext(ctx, "Recorded budget alert",
		"household_id", msg.HouseholdID,
		"category_id", msg.CategoryID,
		"ref", ref)
	return nil
}

func toAlertRow(msg *amqp.BudgetAlertMessage) sheets.AlertRow {
	category := msg.Category
	if msg.IsHouseholdTotal() && category == "" {
		category = "Total"
	}
	return sheets.AlertRow{
		HouseholdID: msg.HouseholdID,
		Window:      msg.Window,
		CategoryID:  msg.CategoryID,
		Category:    category,
		Status:      msg.Status,
		Percent:     msg.Percent,
		Expected:    msg.Expected,
		Spent:       msg.Spent,
		Timestamp:   msg.Timestamp,
	}
}
