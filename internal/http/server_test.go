package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"cruscotto/internal/charts"
	"cruscotto/internal/charts/memory"
	"cruscotto/internal/core"
	"cruscotto/internal/rows"
	"cruscotto/internal/services"
)

// countingSource returns the configured rows for every fetch and
// records the windows it was asked for.
type countingSource struct {
	mu      sync.Mutex
	rows    []core.RawPoint
	err     error
	windows []core.DateRange
}

func (f *countingSource) FetchRows(_ context.Context, _ charts.Chart, window core.DateRange) ([]core.RawPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windows = append(f.windows, window)
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *countingSource) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.windows)
}

// srow builds an observation that lands on the given day after the
// day-shift normalization applied during alignment.
func srow(year int, month time.Month, day int, amount float64) core.RawPoint {
	return core.RawPoint{
		Date:   time.Date(year, month, day-1, 12, 0, 0, 0, time.UTC),
		Amount: amount,
	}
}

func marchClock() time.Time {
	return time.Date(2023, 3, 15, 10, 0, 0, 0, time.UTC)
}

func newTestServer(t *testing.T, source rows.Source) *Server {
	t.Helper()
	srv := NewServer(":0", memory.NewFromFiles(t.TempDir()), source, marchClock, 100, time.Minute)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, &countingSource{})

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := get(t, srv, path)
		if rr.Code != 200 {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestChartMeta(t *testing.T) {
	srv := newTestServer(t, &countingSource{})

	rr := get(t, srv, "/chart/orders")
	if rr.Code != 200 {
		t.Fatalf("status=%d", rr.Code)
	}
	var chart charts.Chart
	if err := json.Unmarshal(rr.Body.Bytes(), &chart); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if chart.ID != "orders" || chart.ChartType != core.LineChart {
		t.Fatalf("got chart %+v", chart)
	}

	if rr := get(t, srv, "/chart/missing"); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown chart, got %d", rr.Code)
	}
}

func TestDashboardMeta(t *testing.T) {
	srv := newTestServer(t, &countingSource{})

	rr := get(t, srv, "/dashboard/Sales")
	if rr.Code != 200 {
		t.Fatalf("status=%d", rr.Code)
	}
	var body struct {
		Dashboard charts.Dashboard `json:"dashboard"`
		Charts    []charts.Chart   `json:"charts"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Dashboard.Name != "Sales" || len(body.Charts) != 2 {
		t.Fatalf("got %+v", body)
	}

	if rr := get(t, srv, "/dashboard/Nope"); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown dashboard, got %d", rr.Code)
	}
}

func TestChartCompare(t *testing.T) {
	source := &countingSource{rows: []core.RawPoint{
		srow(2023, 2, 20, 100),
		srow(2023, 3, 1, 10),
		srow(2023, 3, 5, 20),
	}}
	srv := newTestServer(t, source)

	rr := get(t, srv, "/chart/orders/compare?from=2023-03-01&to=2023-03-10")
	if rr.Code != 200 {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}

	var cmp services.Comparison
	if err := json.Unmarshal(rr.Body.Bytes(), &cmp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !cmp.Ready {
		t.Fatalf("expected ready comparison")
	}
	if len(cmp.Points) != 2 {
		t.Fatalf("got %d points, want 2", len(cmp.Points))
	}

	// The fetch must cover both windows: prev starts 2023-02-19 under
	// Previous Period.
	if got := source.windows[0]; got.From != core.NewDate(2023, 2, 19) || got.To != core.NewDate(2023, 3, 10) {
		t.Fatalf("fetched window %v..%v", got.From, got.To)
	}
}

func TestChartCompareNotReady(t *testing.T) {
	source := &countingSource{}
	srv := newTestServer(t, source)

	rr := get(t, srv, "/chart/orders/compare?from=2023-03-01")
	if rr.Code != 200 {
		t.Fatalf("status=%d", rr.Code)
	}
	var cmp services.Comparison
	if err := json.Unmarshal(rr.Body.Bytes(), &cmp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cmp.Ready {
		t.Fatalf("expected not-ready comparison")
	}
	if source.calls() != 0 {
		t.Fatalf("incomplete selection must not fetch rows")
	}
}

func TestChartCompareBadParams(t *testing.T) {
	srv := newTestServer(t, &countingSource{})

	for _, path := range []string{
		"/chart/orders/compare?from=03-01-2023&to=2023-03-10",
		"/chart/orders/compare?from=2023-03-01&to=2023-03-10&preset=Weird",
		"/chart/orders/compare?from=2023-03-01&to=2023-03-10&previous=Weird",
	} {
		if rr := get(t, srv, path); rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, rr.Code)
		}
	}
}

func TestChartCompareFetchErrorIsBadGateway(t *testing.T) {
	source := &countingSource{err: &rows.FetchError{URL: "http://rows.internal/query", Status: 500}}
	srv := newTestServer(t, source)

	rr := get(t, srv, "/chart/orders/compare?from=2023-03-01&to=2023-03-10")
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}
}

func TestDashboardCompare(t *testing.T) {
	source := &countingSource{rows: []core.RawPoint{
		srow(2023, 2, 20, 5), // previous window under Previous Period
		srow(2023, 3, 2, 10),
	}}
	srv := newTestServer(t, source)

	rr := get(t, srv, "/dashboard/Sales/compare?from=2023-03-01&to=2023-03-10")
	if rr.Code != 200 {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}

	var body struct {
		Dashboard   charts.Dashboard      `json:"dashboard"`
		Comparisons []services.Comparison `json:"comparisons"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Comparisons) != 2 {
		t.Fatalf("got %d comparisons, want 2", len(body.Comparisons))
	}
	for _, cmp := range body.Comparisons {
		if !cmp.Ready {
			t.Fatalf("chart %s not ready", cmp.ChartID)
		}
	}
	if body.Comparisons[1].ChartID != "revenue" || body.Comparisons[1].Bars == nil {
		t.Fatalf("expected grouped bars for the bar chart, got %+v", body.Comparisons[1])
	}
}

func TestSeriesCacheServesRepeatRequests(t *testing.T) {
	source := &countingSource{rows: []core.RawPoint{srow(2023, 3, 2, 10)}}
	srv := newTestServer(t, source)

	for i := 0; i < 2; i++ {
		if rr := get(t, srv, "/chart/orders/compare?from=2023-03-01&to=2023-03-10"); rr.Code != 200 {
			t.Fatalf("request %d status=%d", i, rr.Code)
		}
	}
	if got := source.calls(); got != 1 {
		t.Fatalf("source called %d times, want 1", got)
	}

	// A narrower selection is covered by the cached window.
	if rr := get(t, srv, "/chart/orders/compare?from=2023-03-02&to=2023-03-08"); rr.Code != 200 {
		t.Fatalf("narrower request status=%d", rr.Code)
	}
	if got := source.calls(); got != 1 {
		t.Fatalf("narrower window refetched, calls=%d", got)
	}

	// Widening past the cached window forces a refetch.
	if rr := get(t, srv, "/chart/orders/compare?from=2023-01-01&to=2023-03-10"); rr.Code != 200 {
		t.Fatalf("wider request status=%d", rr.Code)
	}
	if got := source.calls(); got != 2 {
		t.Fatalf("wider window served from cache, calls=%d", got)
	}
}

func TestInvalidateChartForcesRefetch(t *testing.T) {
	source := &countingSource{rows: []core.RawPoint{srow(2023, 3, 2, 10)}}
	srv := newTestServer(t, source)

	path := "/chart/orders/compare?from=2023-03-01&to=2023-03-10"
	get(t, srv, path)
	srv.InvalidateChart("orders")
	get(t, srv, path)

	if got := source.calls(); got != 2 {
		t.Fatalf("source called %d times, want 2", got)
	}
}
