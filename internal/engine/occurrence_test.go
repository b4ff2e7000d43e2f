package engine

import (
	"errors"
	"testing"

	"hogar/internal/core"
)

func TestOccurrences(t *testing.T) {
	tests := []struct {
		window, period, want int
	}{
		{1, 1, 1},
		{3, 1, 3},
		{3, 3, 1},
		{4, 3, 2},
		{6, 2, 3},
		{12, 12, 1},
		{13, 12, 2},
		{2, 12, 1},
		{1, 3, 1},
		{5, 0, 5},
	}
	for _, tt := range tests {
		got, err := Occurrences(tt.window, tt.period)
		if err != nil {
			t.Fatalf("Occurrences(%d, %d) error: %v", tt.window, tt.period, err)
		}
		if got != tt.want {
			t.Errorf("Occurrences(%d, %d) = %d, want %d", tt.window, tt.period, got, tt.want)
		}
	}
}

func TestOccurrencesLargeWindow(t *testing.T) {
	tests := []struct {
		window, period, want int
	}{
		{2_000_000_000, 1, 2_000_000_000},
		{2_000_000_000, 12, 166_666_667},
		{9_000_000_000_000_000_000, 3, 3_000_000_000_000_000_000},
	}
	for _, tt := range tests {
		got, err := Occurrences(tt.window, tt.period)
		if err != nil {
			t.Fatalf("Occurrences(%d, %d) error: %v", tt.window, tt.period, err)
		}
		if got != tt.want {
			t.Errorf("Occurrences(%d, %d) = %d, want %d", tt.window, tt.period, got, tt.want)
		}
	}
}

func TestOccurrencesRejectsEmptyWindow(t *testing.T) {
	for _, w := range []int{0, -1} {
		if _, err := Occurrences(w, 1); !errors.Is(err, core.ErrInvalidWindow) {
			t.Fatalf("Occurrences(%d, 1) error = %v, want ErrInvalidWindow", w, err)
		}
	}
}

func TestOccurrencesMonotonic(t *testing.T) {
	for _, p := range []int{1, 2, 3, 5, 12} {
		prev := 0
		for w := 1; w <= 36; w++ {
			got, err := Occurrences(w, p)
			if err != nil {
				t.Fatal(err)
			}
			if got < 1 {
				t.Fatalf("Occurrences(%d, %d) = %d, want >= 1", w, p, got)
			}
			if got < prev {
				t.Fatalf("Occurrences decreased at w=%d p=%d: %d < %d", w, p, got, prev)
			}
			prev = got
		}
	}
}
