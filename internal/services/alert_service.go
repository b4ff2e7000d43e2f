package services

import (
	"context"
	"time"

	"hogar/internal/amqp"
	"hogar/internal/cache"
	"hogar/internal/core"
	"hogar/internal/engine"
	"hogar/internal/log"
)

// AlertService turns budget results into threshold alerts and publishes them.
type AlertService struct {
	publisher AlertPublisher
	// sent remembers alert keys already published at a data version.
	sent   *cache.LRUCache[int64]
	logger *log.Logger
	now    func() time.Time
}

// NewAlertService returns a service publishing through publisher. A nil
// publisher turns Publish into a logged no-op.
func NewAlertService(publisher AlertPublisher, logger *log.Logger) *AlertService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &AlertService{
		publisher: publisher,
		sent:      cache.NewLRUCache[int64](1024, 24*time.Hour),
		logger:    logger.WithComponent(log.ComponentAMQP),
		now:       time.Now,
	}
}

func alerting(s engine.Status) bool {
	return s == engine.StatusWarning || s == engine.StatusOverBudget
}

// Evaluate lists alerts for every category in warning or over budget, in
// display order, followed by the household total when it is alerting too.
func (s *AlertService) Evaluate(hh core.HouseholdContext, dataVersion int64, result engine.Result) []*amqp.BudgetAlertMessage {
	ts := s.now().UTC()
	var out []*amqp.BudgetAlertMessage
	for _, id := range result.Order {
		r, ok := result.PerCategory[id]
		if !ok || !alerting(r.Status) {
			continue
		}
		msg := amqp.NewBudgetAlertMessage(hh.HouseholdID, result.Window, r.CategoryID, string(r.Status))
		msg.Category = r.Name
		msg.Percent = r.Percent
		msg.Expected = r.Expected
		msg.Spent = r.Spent
		msg.DataVersion = dataVersion
		msg.Timestamp = ts
		out = append(out, msg)
	}

	sum := result.Summary
	if alerting(sum.Status) {
		msg := amqp.NewBudgetAlertMessage(hh.HouseholdID, result.Window, amqp.HouseholdTotal, string(sum.Status))
		msg.Percent = sum.Percent
		msg.Expected = sum.EffectiveAvailable
		msg.Spent = sum.Expense
		msg.DataVersion = dataVersion
		msg.Timestamp = ts
		out = append(out, msg)
	}
	return out
}

// Publish sends alerts not yet published for their data version. Failures are
// logged and never reach the caller; the report is already computed.
func (s *AlertService) Publish(ctx context.Context, alerts []*amqp.BudgetAlertMessage) int {
	if len(alerts) == 0 {
		return 0
	}
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP publisher not available, skipping budget alerts", "count", len(alerts))
		return 0
	}

	published := 0
	for _, msg := range alerts {
		key := msg.Key()
		if v, ok := s.sent.Get(key); ok && v >= msg.DataVersion {
			continue
		}
		if err := s.publisher.PublishBudgetAlert(ctx, msg); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish budget alert",
				log.FieldHousehold, msg.HouseholdID,
				log.FieldWindow, msg.Window,
				log.FieldCategory, msg.CategoryID,
				"error", err)
			continue
		}
		s.sent.Set(key, msg.DataVersion)
		published++
	}

	if published > 0 {
		s.logger.InfoContext(ctx, "Published budget alerts",
			"count", published,
			log.FieldDataVersion, alerts[0].DataVersion)
	}
	return published
}
