package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseMonthKey(t *testing.T) {
	tests := []struct {
		in      string
		want    MonthKey
		wantErr bool
	}{
		{"2025-03", MonthKey{2025, time.March}, false},
		{"2025-03-01", MonthKey{2025, time.March}, false},
		{" 2024-12 ", MonthKey{2024, time.December}, false},
		{"2025-03-15", MonthKey{}, true},
		{"2025-13", MonthKey{}, true},
		{"2025-3", MonthKey{}, true},
		{"march", MonthKey{}, true},
		{"", MonthKey{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMonthKey(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMonthKey(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidMonthKey) {
					t.Fatalf("expected ErrInvalidMonthKey, got %v", err)
				}
				return
			}
			if got != tt.want {
				t.Fatalf("ParseMonthKey(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMonthKeyArithmetic(t *testing.T) {
	jan := MonthKey{2025, time.January}
	if got := jan.AddMonths(-1); got != (MonthKey{2024, time.December}) {
		t.Fatalf("AddMonths(-1) = %v", got)
	}
	if got := jan.AddMonths(14); got != (MonthKey{2026, time.March}) {
		t.Fatalf("AddMonths(14) = %v", got)
	}
	if !jan.Before(jan.AddMonths(1)) || jan.AddMonths(1).Before(jan) {
		t.Fatalf("Before is inconsistent")
	}
	if jan.String() != "2025-01" {
		t.Fatalf("String() = %q", jan.String())
	}
}

func TestMonthKeyBoundsAreHalfOpen(t *testing.T) {
	feb := MonthKey{2024, time.February}
	if !feb.Contains(time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC)) {
		t.Fatalf("leap day must be inside February")
	}
	if feb.Contains(feb.End()) {
		t.Fatalf("end boundary must be excluded")
	}
	if !feb.Contains(feb.Start()) {
		t.Fatalf("start boundary must be included")
	}
}

func TestMonthKeyText(t *testing.T) {
	var m MonthKey
	if err := m.UnmarshalText([]byte("2025-07")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	b, _ := m.MarshalText()
	if string(b) != "2025-07" {
		t.Fatalf("MarshalText = %q", b)
	}
}
