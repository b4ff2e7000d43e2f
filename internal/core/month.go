package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidMonthKey = errors.New("invalid month key")

// MonthKey identifies a calendar month. The zero value is not a valid month.
type MonthKey struct {
	Year  int
	Month time.Month
}

// NewMonthKey builds a MonthKey, normalising out-of-range months
// (e.g. month 13 of 2024 becomes January 2025).
func NewMonthKey(year int, month time.Month) MonthKey {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// MonthOf returns the month a date falls in.
func MonthOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// ParseMonthKey accepts "YYYY-MM" or "YYYY-MM-01".
func ParseMonthKey(s string) (MonthKey, error) {
	s = strings.TrimSpace(s)
	layout := "2006-01"
	if len(s) == len("2006-01-02") {
		layout = "2006-01-02"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return MonthKey{}, fmt.Errorf("%w: %q", ErrInvalidMonthKey, s)
	}
	if t.Day() != 1 {
		return MonthKey{}, fmt.Errorf("%w: %q is not the first day of a month", ErrInvalidMonthKey, s)
	}
	return MonthOf(t), nil
}

func (m MonthKey) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

func (m MonthKey) Validate() error {
	if m.Month < time.January || m.Month > time.December || m.Year < 1 || m.Year > 9999 {
		return fmt.Errorf("%w: %04d-%02d", ErrInvalidMonthKey, m.Year, int(m.Month))
	}
	return nil
}

// String renders the canonical "YYYY-MM" form used as map and cache keys.
func (m MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Start is the first instant of the month in UTC.
func (m MonthKey) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the first instant of the following month; months are half-open.
func (m MonthKey) End() time.Time {
	return m.Start().AddDate(0, 1, 0)
}

func (m MonthKey) AddMonths(n int) MonthKey {
	return NewMonthKey(m.Year, m.Month+time.Month(n))
}

// monthsSinceEpoch counts the months from 0001-01 through m inclusive, which
// is the longest trailing window m can anchor.
func (m MonthKey) monthsSinceEpoch() int {
	return (m.Year-1)*12 + int(m.Month)
}

func (m MonthKey) Before(o MonthKey) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// Contains reports whether t falls inside the month.
func (m MonthKey) Contains(t time.Time) bool {
	return MonthOf(t) == m
}

func (m MonthKey) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *MonthKey) UnmarshalText(b []byte) error {
	k, err := ParseMonthKey(string(b))
	if err != nil {
		return err
	}
	*m = k
	return nil
}
