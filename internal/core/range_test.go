package core

import "testing"

func rng(fromY, fromM, fromD, toY, toM, toD int) DateRange {
	return DateRange{From: NewDate(fromY, fromM, fromD), To: NewDate(toY, toM, toD)}
}

func TestResolveNotReady(t *testing.T) {
	today := NewDate(2023, 4, 15)
	tests := []struct {
		name string
		curr DateRange
	}{
		{"both bounds missing", DateRange{}},
		{"missing from", DateRange{To: NewDate(2023, 3, 31)}},
		{"missing to", DateRange{From: NewDate(2023, 3, 1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := Resolve(tt.curr, PreviousPeriod, today); ok {
				t.Error("Resolve reported ok for an incomplete range")
			}
		})
	}
}

func TestResolvePresets(t *testing.T) {
	today := NewDate(2023, 4, 15)
	curr := rng(2023, 3, 1, 2023, 3, 31)

	tests := []struct {
		name     string
		previous PreviousPreset
		wantPrev DateRange
		wantReq  DateRange
	}{
		{
			// 31-day current window shifts back 31 days.
			name:     "previous period",
			previous: PreviousPeriod,
			wantPrev: rng(2023, 1, 29, 2023, 2, 28),
			wantReq:  rng(2023, 1, 29, 2023, 3, 31),
		},
		{
			// Anchored to the reference date, not the selection.
			name:     "previous month",
			previous: PreviousMonth,
			wantPrev: rng(2023, 3, 1, 2023, 3, 31),
			wantReq:  rng(2023, 3, 1, 2023, 3, 31),
		},
		{
			name:     "previous 30 days",
			previous: Previous30Days,
			wantPrev: rng(2023, 1, 30, 2023, 2, 28),
			wantReq:  rng(2023, 1, 30, 2023, 3, 31),
		},
		{
			name:     "previous 90 days",
			previous: Previous90Days,
			wantPrev: rng(2022, 12, 1, 2023, 2, 28),
			wantReq:  rng(2022, 12, 1, 2023, 3, 31),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(curr, tt.previous, today)
			if !ok {
				t.Fatal("Resolve not ok")
			}
			if !got.Curr.From.Equal(curr.From.Time) || !got.Curr.To.Equal(curr.To.Time) {
				t.Errorf("Curr = %v..%v, want unchanged %v..%v", got.Curr.From, got.Curr.To, curr.From, curr.To)
			}
			if !got.Prev.From.Equal(tt.wantPrev.From.Time) || !got.Prev.To.Equal(tt.wantPrev.To.Time) {
				t.Errorf("Prev = %v..%v, want %v..%v", got.Prev.From, got.Prev.To, tt.wantPrev.From, tt.wantPrev.To)
			}
			if !got.Required.From.Equal(tt.wantReq.From.Time) || !got.Required.To.Equal(tt.wantReq.To.Time) {
				t.Errorf("Required = %v..%v, want %v..%v", got.Required.From, got.Required.To, tt.wantReq.From, tt.wantReq.To)
			}
		})
	}
}

func TestResolvePreviousMonthFromMonthEnd(t *testing.T) {
	// A reference date the prior month lacks must still yield the month
	// before it, never the reference date's own month.
	curr := rng(2026, 3, 1, 2026, 3, 31)
	tests := []struct {
		name     string
		today    Date
		wantPrev DateRange
	}{
		{"march 31 to february", NewDate(2026, 3, 31), rng(2026, 2, 1, 2026, 2, 28)},
		{"march 30 to february", NewDate(2026, 3, 30), rng(2026, 2, 1, 2026, 2, 28)},
		{"march 31 to leap february", NewDate(2024, 3, 31), rng(2024, 2, 1, 2024, 2, 29)},
		{"may 31 to april", NewDate(2026, 5, 31), rng(2026, 4, 1, 2026, 4, 30)},
		{"december 31 to november", NewDate(2026, 12, 31), rng(2026, 11, 1, 2026, 11, 30)},
		{"january 31 to december", NewDate(2026, 1, 31), rng(2025, 12, 1, 2025, 12, 31)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(curr, PreviousMonth, tt.today)
			if !ok {
				t.Fatal("Resolve not ok")
			}
			if !got.Prev.From.Equal(tt.wantPrev.From.Time) || !got.Prev.To.Equal(tt.wantPrev.To.Time) {
				t.Errorf("Prev = %v..%v, want %v..%v", got.Prev.From, got.Prev.To, tt.wantPrev.From, tt.wantPrev.To)
			}
		})
	}
}

func TestResolvePrevEndsDayBeforeCurrent(t *testing.T) {
	today := NewDate(2023, 6, 2)
	curr := rng(2023, 5, 10, 2023, 5, 20)
	for _, previous := range []PreviousPreset{PreviousPeriod, Previous30Days, Previous90Days} {
		got, ok := Resolve(curr, previous, today)
		if !ok {
			t.Fatalf("%s: Resolve not ok", previous)
		}
		if want := curr.From.SubDays(1); !got.Prev.To.Equal(want.Time) {
			t.Errorf("%s: Prev.To = %v, want %v", previous, got.Prev.To, want)
		}
	}
}

func TestResolveRequiredRangeOrdered(t *testing.T) {
	today := NewDate(2023, 4, 15)
	ranges := []DateRange{
		rng(2023, 3, 1, 2023, 3, 31),
		rng(2023, 3, 1, 2023, 3, 1), // single day
		rng(2022, 12, 25, 2023, 1, 5),
	}
	presets := []PreviousPreset{PreviousPeriod, PreviousMonth, Previous30Days, Previous90Days}
	for _, curr := range ranges {
		for _, previous := range presets {
			got, ok := Resolve(curr, previous, today)
			if !ok {
				t.Fatalf("Resolve(%v..%v, %s) not ok", curr.From, curr.To, previous)
			}
			if got.Required.From.After(got.Required.To.Time) {
				t.Errorf("Resolve(%v..%v, %s): required from %v after to %v",
					curr.From, curr.To, previous, got.Required.From, got.Required.To)
			}
			if !got.Required.Contains(got.Prev.From) || !got.Required.Contains(got.Prev.To) {
				t.Errorf("Resolve(%v..%v, %s): required window does not cover previous range",
					curr.From, curr.To, previous)
			}
			if !got.Required.Contains(got.Curr.From) || !got.Required.Contains(got.Curr.To) {
				t.Errorf("Resolve(%v..%v, %s): required window does not cover current range",
					curr.From, curr.To, previous)
			}
		}
	}
}

func TestResolveIdempotent(t *testing.T) {
	today := NewDate(2023, 4, 15)
	curr := rng(2023, 3, 1, 2023, 3, 31)
	first, _ := Resolve(curr, PreviousPeriod, today)
	second, _ := Resolve(curr, PreviousPeriod, today)
	if first != second {
		t.Errorf("Resolve is not idempotent: %+v vs %+v", first, second)
	}
}

func TestApplyCurrentPreset(t *testing.T) {
	tests := []struct {
		name   string
		in     DateRange
		preset CurrentPreset
		want   DateRange
	}{
		{
			name:   "current month snaps to start of end month",
			in:     rng(2023, 1, 1, 2023, 3, 15),
			preset: PresetCurrentMonth,
			want:   rng(2023, 3, 1, 2023, 3, 15),
		},
		{
			name:   "last 30 days",
			in:     rng(2023, 1, 1, 2023, 3, 15),
			preset: PresetLast30Days,
			want:   rng(2023, 2, 14, 2023, 3, 15),
		},
		{
			name:   "last 90 days",
			in:     rng(2022, 11, 1, 2023, 3, 15),
			preset: PresetLast90Days,
			want:   rng(2022, 12, 16, 2023, 3, 15),
		},
		{
			// Preset start would fall before the explicit selection;
			// the selection wins.
			name:   "clamped by selected start",
			in:     rng(2023, 3, 10, 2023, 3, 15),
			preset: PresetLast90Days,
			want:   rng(2023, 3, 10, 2023, 3, 15),
		},
		{
			name:   "manual selection untouched",
			in:     rng(2023, 1, 5, 2023, 3, 15),
			preset: PresetManual,
			want:   rng(2023, 1, 5, 2023, 3, 15),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyCurrentPreset(tt.in, tt.preset)
			if !got.From.Equal(tt.want.From.Time) || !got.To.Equal(tt.want.To.Time) {
				t.Errorf("ApplyCurrentPreset = %v..%v, want %v..%v", got.From, got.To, tt.want.From, tt.want.To)
			}
		})
	}

	if got := ApplyCurrentPreset(DateRange{}, PresetLast30Days); got.Valid() {
		t.Error("incomplete range should pass through unchanged")
	}
}

func TestPresetValidity(t *testing.T) {
	for _, p := range []PreviousPreset{PreviousPeriod, PreviousMonth, Previous30Days, Previous90Days} {
		if !p.Valid() {
			t.Errorf("%q should be valid", p)
		}
	}
	if PreviousPreset("Previous Year").Valid() {
		t.Error("unknown previous preset reported valid")
	}
	for _, p := range []CurrentPreset{PresetCurrentMonth, PresetLast30Days, PresetLast90Days, PresetManual} {
		if !p.Valid() {
			t.Errorf("%q should be valid", p)
		}
	}
	if CurrentPreset("Last Year").Valid() {
		t.Error("unknown current preset reported valid")
	}
}
