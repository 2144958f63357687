package core

import "math"

const (
	LineChart ChartType = "line"
	BarChart  ChartType = "bar"
)

type (
	// ChartType selects bucket semantics downstream.
	ChartType string

	// VolumeSummary holds the most recent bucket's totals for both
	// periods and the rounded percent change between them.
	VolumeSummary struct {
		Curr    float64 `json:"curr"`
		Prev    float64 `json:"prev"`
		Percent int     `json:"percent"`
	}

	// BarPoint is one plotted bar pair: PV carries the current period,
	// UV the previous one.
	BarPoint struct {
		UV float64 `json:"uv"`
		PV float64 `json:"pv"`
	}
)

// bucketWidth maps the span of the current window to the number of
// points summed per bucket: monthly buckets from 90 days up, weekly from
// 28, daily below that.
func bucketWidth(spanDays int) int {
	switch {
	case spanDays >= 90:
		return 30
	case spanDays >= 28:
		return 7
	default:
		return 1
	}
}

// Volume totals the most recent bucket of the aligned series for each
// period independently, walking backward from the latest point and
// collecting up to one bucket's worth of non-zero values per side. This
// is deliberately the last bucket's total, not a full-series sum.
// Percent is 0 when the previous total is 0; the division is guarded.
func Volume(points []AlignedPoint, curr DateRange) VolumeSummary {
	if !curr.Valid() {
		return VolumeSummary{}
	}
	width := bucketWidth(curr.Days())

	var currSum, prevSum float64
	var currN, prevN int
	for i := len(points) - 1; i >= 0; i-- {
		if points[i].CurrAmount != 0 && currN < width {
			currSum += points[i].CurrAmount
			currN++
		}
		if p := points[i].PrevAmount; p != nil && *p != 0 && prevN < width {
			prevSum += *p
			prevN++
		}
	}

	percent := 0
	if prevSum != 0 {
		percent = int(math.Round((currSum - prevSum) / prevSum * 100))
	}
	return VolumeSummary{Curr: currSum, Prev: prevSum, Percent: percent}
}

// BarInterval returns the grouping interval for the legacy single-series
// bar transform: line charts are never grouped, 90-day bars group by
// month, everything else by week.
func BarInterval(preset CurrentPreset, chartType ChartType) int {
	if chartType != BarChart {
		return 1
	}
	if preset == PresetLast90Days {
		return 30
	}
	return 7
}

// GroupBars sums consecutive chunks of interval points and emits each
// chunk's average. The trailing partial chunk is divided by the full
// interval as well, matching the historical output even though it
// under-reports the last bar.
func GroupBars(points []BarPoint, interval int) []BarPoint {
	if interval <= 1 {
		return points
	}
	var grouped []BarPoint
	var acc BarPoint
	for i, p := range points {
		acc.UV += p.UV
		acc.PV += p.PV
		if (i+1)%interval == 0 || i == len(points)-1 {
			grouped = append(grouped, BarPoint{
				UV: acc.UV / float64(interval),
				PV: acc.PV / float64(interval),
			})
			acc = BarPoint{}
		}
	}
	return grouped
}

// Bars converts an aligned series into plotted bar pairs, dropping the
// date labels. Only paired positions are plotted: the current-period
// tail beyond the previous partition is cut off, not padded with zeros.
func Bars(points []AlignedPoint) []BarPoint {
	var bars []BarPoint
	for _, p := range points {
		if p.PrevAmount == nil {
			break
		}
		bars = append(bars, BarPoint{UV: *p.PrevAmount, PV: p.CurrAmount})
	}
	return bars
}
