package core

import "time"

type (
	// RawPoint is a single observation as returned by a row source.
	RawPoint struct {
		Date   time.Time `json:"dateField"`
		Amount float64   `json:"amount"`
	}

	// AlignedPoint pairs a current-period value with its positional
	// counterpart in the previous period. The previous side is nil once
	// the previous partition runs out.
	AlignedPoint struct {
		CurrDate   Date     `json:"currDateField"`
		CurrAmount float64  `json:"currAmount"`
		PrevDate   *Date    `json:"prevDateField"`
		PrevAmount *float64 `json:"prevAmount"`
	}
)

// normalizePointDate truncates a source timestamp to its local day and
// shifts it forward by one day, compensating for the day-boundary offset
// in warehouse timestamps. Applied uniformly before any window test.
func normalizePointDate(t time.Time) Date {
	return DateOf(t).AddDays(1)
}

// Align partitions rows into the current and previous windows and zips
// the partitions by ordinal position, not by matching dates: day 5 of the
// current period is compared to day 5 of the previous one even when the
// two periods have different calendar lengths. The output always has
// exactly as many entries as rows fall inside the current window; the
// previous side is truncated, never interpolated. Partitions keep the
// input order. Returns nil unless both ranges have both bounds set.
func Align(rows []RawPoint, prev, curr DateRange) []AlignedPoint {
	if !prev.Valid() || !curr.Valid() {
		return nil
	}

	type datedAmount struct {
		date   Date
		amount float64
	}
	var currData, prevData []datedAmount
	for _, row := range rows {
		d := normalizePointDate(row.Date)
		if curr.Contains(d) {
			currData = append(currData, datedAmount{date: d, amount: row.Amount})
		}
		if prev.Contains(d) {
			prevData = append(prevData, datedAmount{date: d, amount: row.Amount})
		}
	}

	aligned := make([]AlignedPoint, 0, len(currData))
	for i, c := range currData {
		p := AlignedPoint{CurrDate: c.date, CurrAmount: c.amount}
		if i < len(prevData) {
			d := prevData[i].date
			a := prevData[i].amount
			p.PrevDate = &d
			p.PrevAmount = &a
		}
		aligned = append(aligned, p)
	}
	return aligned
}
