// Package queryapi fetches chart rows from the external query endpoint
// by posting the chart's SQL wrapped in a date-filtered subquery.
package queryapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"cruscotto/internal/charts"
	"cruscotto/internal/core"
	"cruscotto/internal/rows"
)

type Client struct {
	baseURL string
	http    *http.Client
}

var _ rows.Source = (*Client)(nil)

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type queryRequest struct {
	SQLQuery string `json:"sqlQuery"`
}

// buildQuery wraps the chart's opaque SQL in a subquery filtered
// inclusively on the chart's date column. Bounds are embedded as local
// YYYY-MM-DD strings, matching what the endpoint expects.
func buildQuery(chart charts.Chart, window core.DateRange) string {
	col := chart.DateColumn()
	return fmt.Sprintf(
		"SELECT * FROM (%s) sub WHERE %s >= '%s' AND %s <= '%s'",
		chart.Query, col, window.From.String(), col, window.To.String(),
	)
}

// FetchRows posts the wrapped query and decodes the returned rows. A
// window missing either bound makes no request and returns nil rows.
func (c *Client) FetchRows(ctx context.Context, chart charts.Chart, window core.DateRange) ([]core.RawPoint, error) {
	if !window.Valid() {
		return nil, nil
	}

	url := c.baseURL + "/query"
	body, err := json.Marshal(queryRequest{SQLQuery: buildQuery(chart, window)})
	if err != nil {
		return nil, &rows.FetchError{URL: url, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &rows.FetchError{URL: url, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &rows.FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &rows.FetchError{URL: url, Status: resp.StatusCode}
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		return nil, &rows.FetchError{URL: url, Status: resp.StatusCode, ContentType: ct}
	}

	var raw []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &rows.FetchError{URL: url, Status: resp.StatusCode, Err: err}
	}

	points := decodeRows(raw, chart.DateColumn())
	slog.DebugContext(ctx, "Fetched chart rows",
		"chart_id", chart.ID,
		"from", window.From.String(),
		"to", window.To.String(),
		"rows", len(points),
		"duration_ms", time.Since(start).Milliseconds())
	return points, nil
}

// decodeRows extracts {amount, <dateColumn>} pairs, skipping rows whose
// timestamp or amount cannot be read.
func decodeRows(raw []map[string]any, dateColumn string) []core.RawPoint {
	points := make([]core.RawPoint, 0, len(raw))
	for _, row := range raw {
		ts, ok := parseTimestamp(row[dateColumn])
		if !ok {
			continue
		}
		amount, ok := parseAmount(row["amount"])
		if !ok {
			continue
		}
		points = append(points, core.RawPoint{Date: ts, Amount: amount})
	}
	return points
}

func parseTimestamp(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseAmount(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		var f float64
		if _, err := fmt.Sscanf(strings.TrimSpace(n), "%g", &f); err == nil {
			return f, true
		}
	}
	return 0, false
}
