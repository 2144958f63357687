package core

import (
	"time"
)

type (
	// Date is a calendar date at day granularity. The zero value means
	// "not set"; arithmetic always works on the start of the local day.
	Date struct {
		time.Time
	}

	// DateRange is an inclusive [From, To] day window. A range is usable
	// only once both bounds are set.
	DateRange struct {
		From Date `json:"from"`
		To   Date `json:"to"`
	}
)

// NewDate creates a Date from year, month, day in the local calendar.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)}
}

// DateOf truncates a timestamp to the start of its local day.
func DateOf(t time.Time) Date {
	y, m, d := t.Local().Date()
	return NewDate(y, int(m), d)
}

// IsSet reports whether the date carries a value.
func (d Date) IsSet() bool {
	return !d.IsZero()
}

// String formats the date as YYYY-MM-DD using the local calendar date.
func (d Date) String() string {
	return d.Time.Format("2006-01-02")
}

// MarshalJSON emits the date as a bare "YYYY-MM-DD" string.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`null`), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts "YYYY-MM-DD" or null.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	t, err := time.ParseInLocation(`"2006-01-02"`, s, time.Local)
	if err != nil {
		return err
	}
	*d = Date{Time: t}
	return nil
}

// ParseDate parses a YYYY-MM-DD string in the local calendar.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// AddDays moves the date forward by n calendar days (n may be negative).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// SubDays moves the date back by n calendar days.
func (d Date) SubDays(n int) Date {
	return d.AddDays(-n)
}

// SubMonths moves the date back by n calendar months.
func (d Date) SubMonths(n int) Date {
	return Date{Time: d.Time.AddDate(0, -n, 0)}
}

// StartOfMonth returns the first day of the date's month.
func (d Date) StartOfMonth() Date {
	y, m, _ := d.Time.Date()
	return NewDate(y, int(m), 1)
}

// EndOfMonth returns the last day of the date's month.
func (d Date) EndOfMonth() Date {
	y, m, _ := d.Time.Date()
	// Day zero of the next month is the last day of this one.
	return Date{Time: time.Date(y, m+1, 0, 0, 0, 0, 0, time.Local)}
}

// MinDate returns the earlier of a and b.
func MinDate(a, b Date) Date {
	if b.Time.Before(a.Time) {
		return b
	}
	return a
}

// MaxDate returns the later of a and b.
func MaxDate(a, b Date) Date {
	if b.Time.After(a.Time) {
		return b
	}
	return a
}

// DaysBetween returns the number of whole calendar days from a to b
// (positive when b is after a). Rounding absorbs DST offsets so the
// result matches the calendar difference, not the elapsed hours.
func DaysBetween(a, b Date) int {
	h := b.Time.Sub(a.Time).Hours()
	if h >= 0 {
		return int(h/24 + 0.5)
	}
	return -int(-h/24 + 0.5)
}

// Valid reports whether both bounds are set.
func (r DateRange) Valid() bool {
	return r.From.IsSet() && r.To.IsSet()
}

// Contains reports whether d falls inside the inclusive window.
func (r DateRange) Contains(d Date) bool {
	return !d.Time.Before(r.From.Time) && !d.Time.After(r.To.Time)
}

// Days returns the inclusive day count of the range, 0 when unset.
func (r DateRange) Days() int {
	if !r.Valid() {
		return 0
	}
	return DaysBetween(r.From, r.To) + 1
}
