// Package memory provides an in-memory charts.Store seeded from JSON
// files, used as the default backend for local development and tests.
package memory

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"cruscotto/internal/charts"
	"cruscotto/internal/core"
)

type Store struct {
	mu         sync.Mutex
	dashboards map[string]charts.Dashboard
	byChart    map[string]charts.Chart
	byBoard    map[string][]charts.Chart
}

var _ charts.Store = (*Store)(nil)

func New(dashboards []charts.Dashboard, chartList []charts.Chart) *Store {
	s := &Store{
		dashboards: make(map[string]charts.Dashboard),
		byChart:    make(map[string]charts.Chart),
		byBoard:    make(map[string][]charts.Chart),
	}
	for _, d := range dashboards {
		s.dashboards[d.Name] = d
	}
	for _, c := range chartList {
		s.byChart[c.ID] = c
		s.byBoard[c.DashboardName] = append(s.byBoard[c.DashboardName], c)
	}
	return s
}

// NewFromFiles loads dashboards.json and charts.json from base, falling
// back to a built-in demo dashboard when either file is absent.
func NewFromFiles(base string) *Store {
	var dashboards []charts.Dashboard
	var chartList []charts.Chart
	readJSON(filepath.Join(base, "dashboards.json"), &dashboards)
	readJSON(filepath.Join(base, "charts.json"), &chartList)
	if len(dashboards) == 0 {
		dashboards = demoDashboards()
	}
	if len(chartList) == 0 {
		chartList = demoCharts()
	}
	return New(dashboards, chartList)
}

func (s *Store) GetDashboard(_ context.Context, name string) (charts.Dashboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.dashboards[name]
	if !ok {
		return charts.Dashboard{}, charts.ErrNotFound
	}
	return d, nil
}

func (s *Store) ListCharts(_ context.Context, dashboardName string) ([]charts.Chart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.dashboards[dashboardName]; !ok {
		return nil, charts.ErrNotFound
	}
	list := append([]charts.Chart(nil), s.byBoard[dashboardName]...)
	return list, nil
}

func (s *Store) GetChart(_ context.Context, id string) (charts.Chart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byChart[id]
	if !ok {
		return charts.Chart{}, charts.ErrNotFound
	}
	return c, nil
}

func readJSON(path string, out any) {
	b, err := os.ReadFile(path)
	if err != nil {
		return
	}
	_ = json.Unmarshal(b, out)
}

func demoDashboards() []charts.Dashboard {
	return []charts.Dashboard{
		{
			ID:   "demo",
			Name: "Sales",
			DateFilter: charts.DateFilter{
				Name:         "Period",
				InitialRange: charts.InitialCurrentMonth,
			},
		},
	}
}

func demoCharts() []charts.Chart {
	return []charts.Chart{
		{
			ID:            "orders",
			Name:          "Orders",
			DashboardName: "Sales",
			ChartType:     core.LineChart,
			Query:         "SELECT created_at, amount FROM orders",
			XAxisField:    "created_at",
			YAxisField:    "amount",
			DateField:     charts.DateField{Table: "orders", Field: "created_at"},
		},
		{
			ID:            "revenue",
			Name:          "Revenue",
			DashboardName: "Sales",
			ChartType:     core.BarChart,
			Query:         "SELECT created_at, amount FROM revenue",
			XAxisField:    "created_at",
			YAxisField:    "amount",
			DateField:     charts.DateField{Table: "revenue", Field: "created_at"},
		},
	}
}
