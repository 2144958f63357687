// Package charts holds the dashboard and chart metadata owned by the
// configuration store, plus the port the rest of the app reads it through.
package charts

import (
	"context"
	"errors"

	"cruscotto/internal/core"
)

const (
	InitialLast90Days   = "LAST_90_DAYS"
	InitialLast30Days   = "LAST_30_DAYS"
	InitialCurrentMonth = "CURRENT_MONTH"
)

var ErrNotFound = errors.New("not found")

type (
	// DateFilter names the filter widget and its initial preset.
	DateFilter struct {
		Name         string `json:"name"`
		InitialRange string `json:"initialDateRange"`
	}

	Dashboard struct {
		ID         string     `json:"id"`
		Name       string     `json:"name"`
		DateFilter DateFilter `json:"dateFilter"`
	}

	// DateField locates the timestamp column the row filter applies to.
	DateField struct {
		Table string `json:"table"`
		Field string `json:"field"`
	}

	Chart struct {
		ID            string         `json:"id"`
		Name          string         `json:"name"`
		DashboardName string         `json:"dashboardName"`
		ChartType     core.ChartType `json:"chartType"`
		// Query is an opaque handle passed to the row source: a SQL
		// fragment for the query API and SQLite backends, an A1 range
		// for the sheet backend.
		Query      string    `json:"query"`
		XAxisField string    `json:"xAxisField"`
		YAxisField string    `json:"yAxisField"`
		DateField  DateField `json:"dateField"`
	}

	// Store resolves dashboards and charts by identifier.
	Store interface {
		GetDashboard(ctx context.Context, name string) (Dashboard, error)
		ListCharts(ctx context.Context, dashboardName string) ([]Chart, error)
		GetChart(ctx context.Context, id string) (Chart, error)
	}
)

// InitialPreset maps a dashboard's stored initial range to the preset
// used to seed the current window.
func (d Dashboard) InitialPreset() core.CurrentPreset {
	switch d.DateFilter.InitialRange {
	case InitialLast90Days:
		return core.PresetLast90Days
	case InitialLast30Days:
		return core.PresetLast30Days
	case InitialCurrentMonth:
		return core.PresetCurrentMonth
	}
	return core.PresetCurrentMonth
}

// DateColumn returns the column name rows are filtered on, falling back
// to the conventional created_at when the chart does not name one.
func (c Chart) DateColumn() string {
	if c.DateField.Field != "" {
		return c.DateField.Field
	}
	return "created_at"
}
