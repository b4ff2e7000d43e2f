package google

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"hogar/internal/sheets"
)

// Column order of the alerts sheet.
var alertHeaders = []string{"Timestamp", "Household", "Window", "CategoryID", "Category", "Status", "Percent", "Expected", "Spent"}

// alertToRow renders an alert as a sheet row. Amounts go out as strings
// rounded to cents; the sheet is a presentation surface.
func alertToRow(a sheets.AlertRow) []interface{} {
	return []interface{}{
		a.Timestamp.UTC().Format(time.RFC3339),
		a.HouseholdID,
		a.Window,
		a.CategoryID,
		a.Category,
		a.Status,
		a.Percent.StringFixed(1),
		a.Expected.StringFixed(2),
		a.Spent.StringFixed(2),
	}
}

// parseAlerts converts a values matrix into alerts for householdID. A header
// row, blank rows and rows of other households are skipped.
func parseAlerts(values [][]interface{}, householdID string) ([]sheets.AlertRow, error) {
	var out []sheets.AlertRow
	for i, raw := range values {
		row := toStrings(raw)
		if len(row) == 0 || strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		if i == 0 && strings.EqualFold(safeGet(row, 0), alertHeaders[0]) {
			continue
		}
		if safeGet(row, 1) != householdID {
			continue
		}

		ts, err := time.Parse(time.RFC3339, safeGet(row, 0))
		if err != nil {
			return nil, fmt.Errorf("row %d: bad timestamp %q: %w", i+1, safeGet(row, 0), err)
		}
		a := sheets.AlertRow{
			Timestamp:   ts,
			HouseholdID: safeGet(row, 1),
			Window:      safeGet(row, 2),
			CategoryID:  safeGet(row, 3),
			Category:    safeGet(row, 4),
			Status:      safeGet(row, 5),
		}
		for col, dst := range map[int]*decimal.Decimal{6: &a.Percent, 7: &a.Expected, 8: &a.Spent} {
			v, ok := parseAmount(safeGet(row, col))
			if !ok {
				return nil, fmt.Errorf("row %d: bad %s %q", i+1, alertHeaders[col], safeGet(row, col))
			}
			*dst = v
		}
		out = append(out, a)
	}
	return out, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

// parseAmount accepts dot or comma decimals; an empty cell reads as zero.
func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, true
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
