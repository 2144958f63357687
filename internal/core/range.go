package core

const (
	PreviousPeriod PreviousPreset = "Previous Period"
	PreviousMonth  PreviousPreset = "Previous Month"
	Previous30Days PreviousPreset = "Previous 30 days"
	Previous90Days PreviousPreset = "Previous 90 days"
)

const (
	PresetCurrentMonth CurrentPreset = "Current Month"
	PresetLast30Days   CurrentPreset = "Last 30 days"
	PresetLast90Days   CurrentPreset = "Last 90 days"
	PresetManual       CurrentPreset = "Select"
)

type (
	// PreviousPreset selects how the comparison window is derived from
	// the current one.
	PreviousPreset string

	// CurrentPreset seeds the current window before resolution. Manual
	// means the caller picked both bounds explicitly.
	CurrentPreset string

	// RangeSet pairs the resolved current and previous windows with the
	// minimal window covering both, which is what must be fetched.
	RangeSet struct {
		Curr     DateRange `json:"currRange"`
		Prev     DateRange `json:"prevRange"`
		Required DateRange `json:"requiredRange"`
	}
)

// Valid reports whether p is a known previous-period preset.
func (p PreviousPreset) Valid() bool {
	switch p {
	case PreviousPeriod, PreviousMonth, Previous30Days, Previous90Days:
		return true
	}
	return false
}

// Valid reports whether p is a known current-period preset.
func (p CurrentPreset) Valid() bool {
	switch p {
	case PresetCurrentMonth, PresetLast30Days, PresetLast90Days, PresetManual:
		return true
	}
	return false
}

// ApplyCurrentPreset re-derives the start of r from the preset, anchored
// at r.To, never moving it earlier than the start the caller selected.
// Manual selection leaves the range untouched.
func ApplyCurrentPreset(r DateRange, preset CurrentPreset) DateRange {
	if !r.Valid() {
		return r
	}
	from := r.From
	switch preset {
	case PresetCurrentMonth:
		from = r.To.StartOfMonth()
	case PresetLast30Days:
		from = r.To.SubDays(29)
	case PresetLast90Days:
		from = r.To.SubDays(89)
	}
	return DateRange{From: MaxDate(from, r.From), To: r.To}
}

// Resolve derives the previous window for the given preset and the
// required fetch window covering both. The reference date anchors the
// Previous Month preset, which compares against the month before it no
// matter what the current selection is. Returns ok=false when the
// current range is missing a bound; nothing is computed in that case.
func Resolve(curr DateRange, previous PreviousPreset, today Date) (RangeSet, bool) {
	if !curr.Valid() {
		return RangeSet{}, false
	}

	currLength := DaysBetween(curr.From, curr.To) + 1

	var prev DateRange
	switch previous {
	case PreviousMonth:
		// Subtract from the first of the month: stepping back from a
		// month-end date would normalize past short months.
		prev.From = today.StartOfMonth().SubMonths(1)
		prev.To = prev.From.EndOfMonth()
	case Previous30Days:
		prev.From = curr.From.SubDays(30)
		prev.To = curr.From.SubDays(1)
	case Previous90Days:
		prev.From = curr.From.SubDays(90)
		prev.To = curr.From.SubDays(1)
	default: // PreviousPeriod
		prev.From = curr.From.SubDays(currLength)
		prev.To = curr.From.SubDays(1)
	}

	required := DateRange{
		From: MinDate(curr.From, prev.From),
		To:   MaxDate(curr.To, prev.To),
	}

	return RangeSet{Curr: curr, Prev: prev, Required: required}, true
}
