package google

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"hogar/internal/sheets"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{CredentialsJSON: "{}"})
	if err == nil || err.Error() != "missing spreadsheet ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Options{SpreadsheetID: "id"})
	if err == nil || !strings.Contains(err.Error(), "credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = New(context.Background(), Options{SpreadsheetID: "id", CredentialsFile: "/non/existent.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_AppendAlertWithoutService(t *testing.T) {
	c := &Client{spreadsheetID: "test", alertsSheet: "Alerts"}

	_, err := c.AppendAlert(context.Background(), sheets.AlertRow{HouseholdID: "casa"})
	if !errors.Is(err, sheets.ErrInvalidAlert) {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = c.AppendAlert(context.Background(), sheets.AlertRow{
		HouseholdID: "casa", Window: "month:2025-03", CategoryID: "food", Status: "warning",
	})
	if err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Fatalf("expected uninitialised service error, got %v", err)
	}
}

func TestAlertRowRoundTrip(t *testing.T) {
	a := sheets.AlertRow{
		Timestamp:   time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
		HouseholdID: "casa",
		Window:      "month:2025-03",
		CategoryID:  "food",
		Category:    "Comida",
		Status:      "over_budget",
		Percent:     decimal.RequireFromString("133.3333"),
		Expected:    decimal.RequireFromString("150"),
		Spent:       decimal.RequireFromString("200"),
	}

	values := [][]interface{}{
		{"Timestamp", "Household", "Window", "CategoryID", "Category", "Status", "Percent", "Expected", "Spent"},
		alertToRow(a),
		{},
		{"2025-03-15T00:00:00Z", "piso", "month:2025-03", "*", "", "warning", "90.0", "100.00", "90.00"},
	}
	got, err := parseAlerts(values, "casa")
	if err != nil {
		t.Fatalf("parseAlerts() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(got))
	}
	if !got[0].Timestamp.Equal(a.Timestamp) || got[0].Category != "Comida" || got[0].Status != "over_budget" {
		t.Errorf("parsed = %+v", got[0])
	}
	if !got[0].Percent.Equal(decimal.RequireFromString("133.3")) {
		t.Errorf("percent = %s, want rounded 133.3", got[0].Percent)
	}
	if !got[0].Spent.Equal(a.Spent) {
		t.Errorf("spent = %s", got[0].Spent)
	}
}

func TestParseAlerts_BadRows(t *testing.T) {
	tests := []struct {
		name string
		row  []interface{}
	}{
		{"bad timestamp", []interface{}{"yesterday", "casa", "w", "c", "", "warning", "1", "1", "1"}},
		{"bad amount", []interface{}{"2025-03-15T00:00:00Z", "casa", "w", "c", "", "warning", "lots", "1", "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseAlerts([][]interface{}{tt.row}, "casa"); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	cases := map[string]string{"12,5": "12.5", "": "0", "100.00": "100"}
	for in, want := range cases {
		got, ok := parseAmount(in)
		if !ok || !got.Equal(decimal.RequireFromString(want)) {
			t.Errorf("parseAmount(%q) = %s, %v", in, got, ok)
		}
	}
	if _, ok := parseAmount("abc"); ok {
		t.Error("parseAmount(abc) should fail")
	}
}
