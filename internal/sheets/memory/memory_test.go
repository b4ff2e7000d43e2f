package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"hogar/internal/sheets"
)

func TestMemoryStoreAppendAndList(t *testing.T) {
	s := New()
	ctx := context.Background()

	ref, err := s.AppendAlert(ctx, sheets.AlertRow{
		HouseholdID: "casa",
		Window:      "month:2025-03",
		CategoryID:  "food",
		Status:      "over_budget",
		Percent:     decimal.NewFromInt(120),
	})
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}
	if _, err := s.AppendAlert(ctx, sheets.AlertRow{HouseholdID: "piso", Window: "month:2025-03", CategoryID: "*", Status: "warning"}); err != nil {
		t.Fatal(err)
	}

	got, err := s.ListAlerts(ctx, "casa")
	if err != nil || len(got) != 1 || got[0].CategoryID != "food" {
		t.Fatalf("unexpected list: %v err=%v", got, err)
	}
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
}

func TestMemoryStoreRejectsIncompleteAlert(t *testing.T) {
	_, err := New().AppendAlert(context.Background(), sheets.AlertRow{HouseholdID: "casa"})
	if !errors.Is(err, sheets.ErrInvalidAlert) {
		t.Fatalf("expected ErrInvalidAlert, got %v", err)
	}
}
