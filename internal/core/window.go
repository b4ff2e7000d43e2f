package core

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidWindow = errors.New("invalid window")

const (
	WindowMonth WindowMode = "month"
	WindowRange WindowMode = "range"
)

type WindowMode string

// Window is a reporting range. A month window covers exactly one calendar
// month. A range window covers Length months ending with (and including)
// Anchor.
type Window struct {
	Mode   WindowMode
	Anchor MonthKey
	Length int
}

func MonthWindow(m MonthKey) Window {
	return Window{Mode: WindowMonth, Anchor: m, Length: 1}
}

func RangeWindow(anchor MonthKey, length int) Window {
	return Window{Mode: WindowRange, Anchor: anchor, Length: length}
}

// ParseWindow builds a window from its wire form. view is "month" (default)
// or "range"; length is ignored for month windows.
func ParseWindow(view, month string, length int) (Window, error) {
	m, err := ParseMonthKey(month)
	if err != nil {
		return Window{}, fmt.Errorf("%w: %w", ErrInvalidWindow, err)
	}
	var w Window
	switch WindowMode(view) {
	case "", WindowMonth:
		w = MonthWindow(m)
	case WindowRange:
		w = RangeWindow(m, length)
	default:
		return Window{}, fmt.Errorf("%w: unknown view %q", ErrInvalidWindow, view)
	}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

func (w Window) Validate() error {
	if err := w.Anchor.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidWindow, err)
	}
	switch w.Mode {
	case WindowMonth:
		if w.Length != 1 {
			return fmt.Errorf("%w: month window must span 1 month, got %d", ErrInvalidWindow, w.Length)
		}
	case WindowRange:
		if w.Length < 1 {
			return fmt.Errorf("%w: length must be positive, got %d", ErrInvalidWindow, w.Length)
		}
		if w.Length > w.Anchor.monthsSinceEpoch() {
			return fmt.Errorf("%w: %d months before %s starts before year 1", ErrInvalidWindow, w.Length, w.Anchor)
		}
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidWindow, w.Mode)
	}
	return nil
}

func (w Window) IsMonth() bool {
	return w.Mode == WindowMonth
}

// First is the earliest month in the window.
func (w Window) First() MonthKey {
	return w.Anchor.AddMonths(-(w.Length - 1))
}

// Months lists every month in the window, oldest first.
func (w Window) Months() []MonthKey {
	if w.Length < 1 {
		return nil
	}
	out := make([]MonthKey, w.Length)
	first := w.First()
	for i := range out {
		out[i] = first.AddMonths(i)
	}
	return out
}

// Bounds returns the half-open interval [start, end) covered by the window.
func (w Window) Bounds() (time.Time, time.Time) {
	return w.First().Start(), w.Anchor.End()
}

// Contains reports whether t falls in [start, end).
func (w Window) Contains(t time.Time) bool {
	start, end := w.Bounds()
	return !t.Before(start) && t.Before(end)
}

// Previous is the month window immediately before a month window.
func (w Window) Previous() Window {
	return MonthWindow(w.Anchor.AddMonths(-1))
}

// Key is a stable textual form, used in cache keys and log fields.
func (w Window) Key() string {
	if w.Mode == WindowMonth {
		return "month:" + w.Anchor.String()
	}
	return fmt.Sprintf("range:%s:%d", w.Anchor.String(), w.Length)
}
