// Package services wires the comparison pipeline together: preset
// application, range resolution, row retrieval, alignment and
// aggregation, in that order.
package services

import (
	"context"
	"fmt"
	"time"

	"cruscotto/internal/charts"
	"cruscotto/internal/core"
	"cruscotto/internal/rows"
)

type (
	// CompareRequest carries the user's selection for one comparison.
	CompareRequest struct {
		Range    core.DateRange
		Preset   core.CurrentPreset
		Previous core.PreviousPreset
	}

	// Comparison is the full payload for rendering one chart's
	// comparison view. Ready is false when the selection was missing a
	// bound; everything else is zero in that case.
	Comparison struct {
		ChartID   string              `json:"chartId"`
		ChartName string              `json:"chartName"`
		ChartType core.ChartType      `json:"chartType"`
		Ready     bool                `json:"ready"`
		Points    []core.AlignedPoint `json:"points"`
		Bars      []core.BarPoint     `json:"bars,omitempty"`
		Volume    core.VolumeSummary  `json:"volume"`
		Ranges    core.RangeSet       `json:"ranges"`
	}

	// CompareService resolves charts and runs the pipeline. The clock
	// is injected because the Previous Month preset anchors to today.
	CompareService struct {
		store  charts.Store
		source rows.Source
		clock  func() time.Time
	}
)

func NewCompareService(store charts.Store, source rows.Source, clock func() time.Time) *CompareService {
	if clock == nil {
		clock = time.Now
	}
	return &CompareService{store: store, source: source, clock: clock}
}

// Plan resolves the chart and the date ranges for a request without
// touching the row source. ok is false when the selection is not ready;
// that is not an error.
func (s *CompareService) Plan(ctx context.Context, chartID string, req CompareRequest) (charts.Chart, core.RangeSet, bool, error) {
	chart, err := s.store.GetChart(ctx, chartID)
	if err != nil {
		return charts.Chart{}, core.RangeSet{}, false, fmt.Errorf("resolve chart %q: %w", chartID, err)
	}

	curr := core.ApplyCurrentPreset(req.Range, req.Preset)
	set, ok := core.Resolve(curr, req.Previous, core.DateOf(s.clock()))
	return chart, set, ok, nil
}

// Build turns fetched rows into the comparison payload. Pure.
func (s *CompareService) Build(chart charts.Chart, preset core.CurrentPreset, set core.RangeSet, fetched []core.RawPoint) Comparison {
	points := core.Align(fetched, set.Prev, set.Curr)
	cmp := Comparison{
		ChartID:   chart.ID,
		ChartName: chart.Name,
		ChartType: chart.ChartType,
		Ready:     true,
		Points:    points,
		Volume:    core.Volume(points, set.Curr),
		Ranges:    set,
	}
	if chart.ChartType == core.BarChart {
		cmp.Bars = core.GroupBars(core.Bars(points), core.BarInterval(preset, chart.ChartType))
	}
	return cmp
}

// Compare runs the whole pipeline against the service's own row source.
// Callers that cache fetched windows use Plan and Build around their
// cache instead.
func (s *CompareService) Compare(ctx context.Context, chartID string, req CompareRequest) (Comparison, error) {
	chart, set, ok, err := s.Plan(ctx, chartID, req)
	if err != nil {
		return Comparison{}, err
	}
	if !ok {
		return Comparison{ChartID: chart.ID, ChartName: chart.Name, ChartType: chart.ChartType}, nil
	}

	fetched, err := s.source.FetchRows(ctx, chart, set.Required)
	if err != nil {
		return Comparison{}, err
	}
	return s.Build(chart, req.Preset, set, fetched), nil
}
