package queryapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cruscotto/internal/charts"
	"cruscotto/internal/core"
	"cruscotto/internal/rows"
)

func testChart() charts.Chart {
	return charts.Chart{
		ID:        "orders",
		ChartType: core.LineChart,
		Query:     "SELECT created_at, amount FROM orders",
		DateField: charts.DateField{Table: "orders", Field: "created_at"},
	}
}

func testWindow() core.DateRange {
	return core.DateRange{From: core.NewDate(2023, 3, 1), To: core.NewDate(2023, 3, 31)}
}

func TestFetchRowsNoRequestWithoutBounds(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	got, err := c.FetchRows(context.Background(), testChart(), core.DateRange{From: core.NewDate(2023, 3, 1)})
	if err != nil {
		t.Fatalf("FetchRows: %v", err)
	}
	if got != nil {
		t.Errorf("rows = %v, want nil", got)
	}
	if called {
		t.Error("request was made despite missing window bound")
	}
}

func TestFetchRowsWrapsQueryWithDateFilter(t *testing.T) {
	// Decode the request body before asserting: the JSON encoder
	// escapes the comparison operators in transit.
	var req queryRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(b, &req); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.FetchRows(context.Background(), testChart(), testWindow()); err != nil {
		t.Fatalf("FetchRows: %v", err)
	}
	for _, want := range []string{
		"SELECT * FROM (SELECT created_at, amount FROM orders) sub",
		"created_at >= '2023-03-01'",
		"created_at <= '2023-03-31'",
	} {
		if !strings.Contains(req.SQLQuery, want) {
			t.Errorf("wrapped query missing %q:\n%s", want, req.SQLQuery)
		}
	}
}

func TestFetchRowsDecodesPoints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"created_at": "2023-03-04T10:00:00Z", "amount": 12.5},
			{"created_at": "2023-03-05", "amount": 3},
			{"created_at": "not a date", "amount": 99},
			{"amount": 7}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	got, err := c.FetchRows(context.Background(), testChart(), testWindow())
	if err != nil {
		t.Fatalf("FetchRows: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("decoded %d rows, want 2 (bad rows skipped)", len(got))
	}
	if got[0].Amount != 12.5 || got[1].Amount != 3 {
		t.Errorf("amounts = %v, %v", got[0].Amount, got[1].Amount)
	}
}

func TestFetchRowsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.FetchRows(context.Background(), testChart(), testWindow())
	var fe *rows.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want *rows.FetchError", err)
	}
	if fe.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d", fe.Status)
	}
}

func TestFetchRowsContentTypeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.FetchRows(context.Background(), testChart(), testWindow())
	var fe *rows.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want *rows.FetchError", err)
	}
	if fe.ContentType != "text/html" {
		t.Errorf("ContentType = %q", fe.ContentType)
	}
}

func TestFetchRowsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := NewClient(srv.URL)
	_, err := c.FetchRows(context.Background(), testChart(), testWindow())
	var fe *rows.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want *rows.FetchError", err)
	}
	if fe.Err == nil {
		t.Error("network failure should carry the underlying error")
	}
}
