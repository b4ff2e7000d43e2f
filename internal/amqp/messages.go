package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// HouseholdTotal is the CategoryID used for alerts about the household as a
// whole rather than one category.
const HouseholdTotal = "*"

// BudgetAlertMessage reports a category (or the household total) crossing a
// consumption threshold in a reporting window.
type BudgetAlertMessage struct {
	HouseholdID string          `json:"householdId"`
	Window      string          `json:"window"`
	CategoryID  string          `json:"categoryId"`
	Category    string          `json:"category,omitempty"`
	Status      string          `json:"status"`
	Percent     decimal.Decimal `json:"percent"`
	Expected    decimal.Decimal `json:"expected"`
	Spent       decimal.Decimal `json:"spent"`
	DataVersion int64           `json:"dataVersion"`
	Timestamp   time.Time       `json:"timestamp"`
}

// NewBudgetAlertMessage creates an alert stamped with the current time.
func NewBudgetAlertMessage(householdID, window, categoryID, status string) *BudgetAlertMessage {
	return &BudgetAlertMessage{
		HouseholdID: householdID,
		Window:      window,
		CategoryID:  categoryID,
		Status:      status,
		Timestamp:   time.Now().UTC(),
	}
}

// IsHouseholdTotal reports whether the alert is about the whole household.
func (m *BudgetAlertMessage) IsHouseholdTotal() bool {
	return m.CategoryID == HouseholdTotal
}

// Key identifies the alert for deduplication: one per household, window,
// category and status at a given data version.
func (m *BudgetAlertMessage) Key() string {
	return m.HouseholdID + "|" + m.Window + "|" + m.CategoryID + "|" + m.Status
}

func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.HouseholdID == "" || msg.CategoryID == "" || msg.Window == "" {
		return nil, errors.New("alert message missing household, window or category")
	}
	return &msg, nil
}
