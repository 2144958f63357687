package sheet

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cruscotto/internal/core"
)

// parseRows converts a values matrix (as returned by the Sheets API)
// into raw points, skipping headers and malformed rows. Only rows whose
// timestamp sits inside the fetch window are kept; the window bounds
// are padded by a day on each side so the aligner's one-day shift never
// loses an edge row.
func parseRows(values [][]interface{}, window core.DateRange) []core.RawPoint {
	lo := window.From.SubDays(1)
	hi := window.To.AddDays(1)
	var out []core.RawPoint
	for _, row := range values {
		if len(row) < 2 {
			continue
		}
		ts, ok := parseCellDate(cellString(row[0]))
		if !ok {
			continue
		}
		amount, ok := parseCellAmount(cellString(row[1]))
		if !ok {
			continue
		}
		d := core.DateOf(ts)
		if d.Before(lo.Time) || d.After(hi.Time) {
			continue
		}
		out = append(out, core.RawPoint{Date: ts, Amount: amount})
	}
	return out
}

func cellString(v interface{}) string {
	return strings.TrimSpace(fmt.Sprint(v))
}

func parseCellDate(s string) (time.Time, bool) {
	if s == "" || strings.HasPrefix(s, "#") {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", "02/01/2006", time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseCellAmount(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	// Normalize decimal comma
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
