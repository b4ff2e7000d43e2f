// Package memory is an in-process alert sink, used in development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"hogar/internal/sheets"
)

type Store struct {
	mu    sync.Mutex
	items []sheets.AlertRow
}

var _ sheets.AlertStore = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// AppendAlert stores the alert and returns a synthetic row reference.
func (s *Store) AppendAlert(_ context.Context, a sheets.AlertRow) (string, error) {
	if err := a.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, a)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

func (s *Store) ListAlerts(_ context.Context, householdID string) ([]sheets.AlertRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []sheets.AlertRow
	for _, a := range s.items {
		if a.HouseholdID == householdID {
			out = append(out, a)
		}
	}
	return out, nil
}

// Len returns the number of stored alerts across households.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
