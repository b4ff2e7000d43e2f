package engine

import (
	"fmt"

	"hogar/internal/core"
)

// Occurrences counts how many times a cost recurring every periodMonths
// months posts inside a window of windowMonths months. Occurrences are
// anchored at the first month of the window, which always counts.
func Occurrences(windowMonths, periodMonths int) (int, error) {
	if windowMonths <= 0 {
		return 0, errWindowLength(windowMonths)
	}
	p, _ := NormalizePeriod(periodMonths)
	return (windowMonths-1)/p + 1, nil
}

func errWindowLength(windowMonths int) error {
	return fmt.Errorf("%w: window of %d months", core.ErrInvalidWindow, windowMonths)
}
