// Package storage implements the charts store and the row source on a
// local SQLite database.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"cruscotto/internal/charts"
	"cruscotto/internal/core"
	"cruscotto/internal/rows"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

var (
	_ charts.Store = (*SQLiteRepository)(nil)
	_ rows.Source  = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// GetDashboard implements charts.Store
func (r *SQLiteRepository) GetDashboard(ctx context.Context, name string) (charts.Dashboard, error) {
	const q = `SELECT id, name, date_filter_name, initial_date_range FROM dashboards WHERE name = ?`
	var d charts.Dashboard
	err := r.db.QueryRowContext(ctx, q, name).Scan(
		&d.ID, &d.Name, &d.DateFilter.Name, &d.DateFilter.InitialRange)
	if errors.Is(err, sql.ErrNoRows) {
		return charts.Dashboard{}, charts.ErrNotFound
	}
	if err != nil {
		return charts.Dashboard{}, fmt.Errorf("get dashboard %q: %w", name, err)
	}
	return d, nil
}

// ListCharts implements charts.Store
func (r *SQLiteRepository) ListCharts(ctx context.Context, dashboardName string) ([]charts.Chart, error) {
	if _, err := r.GetDashboard(ctx, dashboardName); err != nil {
		return nil, err
	}

	const q = `SELECT id, name, dashboard_name, chart_type, query, x_axis_field, y_axis_field, date_table, date_field
		FROM charts WHERE dashboard_name = ? ORDER BY name`
	rws, err := r.db.QueryContext(ctx, q, dashboardName)
	if err != nil {
		return nil, fmt.Errorf("list charts for %q: %w", dashboardName, err)
	}
	defer rws.Close()

	var list []charts.Chart
	for rws.Next() {
		c, err := scanChart(rws)
		if err != nil {
			return nil, fmt.Errorf("scan chart: %w", err)
		}
		list = append(list, c)
	}
	return list, rws.Err()
}

// GetChart implements charts.Store
func (r *SQLiteRepository) GetChart(ctx context.Context, id string) (charts.Chart, error) {
	const q = `SELECT id, name, dashboard_name, chart_type, query, x_axis_field, y_axis_field, date_table, date_field
		FROM charts WHERE id = ?`
	c, err := scanChart(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return charts.Chart{}, charts.ErrNotFound
	}
	if err != nil {
		return charts.Chart{}, fmt.Errorf("get chart %q: %w", id, err)
	}
	return c, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanChart(s scanner) (charts.Chart, error) {
	var c charts.Chart
	var chartType string
	err := s.Scan(&c.ID, &c.Name, &c.DashboardName, &chartType, &c.Query,
		&c.XAxisField, &c.YAxisField, &c.DateField.Table, &c.DateField.Field)
	if err != nil {
		return charts.Chart{}, err
	}
	c.ChartType = core.ChartType(chartType)
	return c, nil
}

// FetchRows implements rows.Source against the local warehouse table,
// filtering inclusively on the chart's day window. The upper bound is
// extended to the end of its day so timestamps with a time-of-day
// component stay inside the window.
func (r *SQLiteRepository) FetchRows(ctx context.Context, chart charts.Chart, window core.DateRange) ([]core.RawPoint, error) {
	if !window.Valid() {
		return nil, nil
	}

	const q = `SELECT recorded_at, amount FROM chart_rows
		WHERE chart_id = ? AND recorded_at >= ? AND recorded_at < ?
		ORDER BY recorded_at, id`
	rws, err := r.db.QueryContext(ctx, q, chart.ID,
		window.From.Time, window.To.AddDays(1).Time)
	if err != nil {
		return nil, fmt.Errorf("fetch rows for chart %q: %w", chart.ID, err)
	}
	defer rws.Close()

	var points []core.RawPoint
	for rws.Next() {
		var p core.RawPoint
		if err := rws.Scan(&p.Date, &p.Amount); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		points = append(points, p)
	}
	if err := rws.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows for chart %q: %w", chart.ID, err)
	}

	slog.DebugContext(ctx, "Fetched rows from SQLite",
		"chart_id", chart.ID,
		"from", window.From.String(),
		"to", window.To.String(),
		"rows", len(points))
	return points, nil
}

// AppendRow records a single observation for a chart. Used by ingest
// tooling and tests; the serving path only reads.
func (r *SQLiteRepository) AppendRow(ctx context.Context, chartID string, recordedAt time.Time, amount float64) error {
	const q = `INSERT INTO chart_rows (chart_id, recorded_at, amount) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, chartID, recordedAt, amount); err != nil {
		return fmt.Errorf("append row for chart %q: %w", chartID, err)
	}
	return nil
}
