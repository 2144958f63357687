package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"cruscotto/internal/charts"
	"cruscotto/internal/rows"
	"cruscotto/internal/services"
)

// fanOutLimit caps concurrent row fetches during a dashboard-wide
// comparison.
const fanOutLimit = 4

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/dashboard/"), "/"), "/")
	switch {
	case len(parts) == 1 && parts[0] != "":
		s.handleDashboardMeta(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "compare":
		s.handleDashboardCompare(w, r, parts[0])
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/chart/"), "/"), "/")
	switch {
	case len(parts) == 1 && parts[0] != "":
		s.handleChartMeta(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "compare":
		s.handleChartCompare(w, r, parts[0])
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) handleDashboardMeta(w http.ResponseWriter, r *http.Request, name string) {
	dash, err := s.store.GetDashboard(r.Context(), name)
	if err != nil {
		s.writeStoreError(w, r, err, "dashboard", name)
		return
	}
	chs, err := s.store.ListCharts(r.Context(), dash.Name)
	if err != nil {
		s.writeStoreError(w, r, err, "dashboard", name)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Dashboard charts.Dashboard `json:"dashboard"`
		Charts    []charts.Chart   `json:"charts"`
	}{Dashboard: dash, Charts: chs})
}

func (s *Server) handleChartMeta(w http.ResponseWriter, r *http.Request, id string) {
	chart, err := s.store.GetChart(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err, "chart", id)
		return
	}
	writeJSON(w, http.StatusOK, chart)
}

func (s *Server) handleChartCompare(w http.ResponseWriter, r *http.Request, id string) {
	req, err := parseCompareRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cmp, err := s.compareChart(r.Context(), id, req)
	if err != nil {
		s.writeCompareError(w, r, err, id)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

// handleDashboardCompare compares every chart on the dashboard against
// the same selection, fetching rows concurrently. One failing chart
// fails the whole response.
func (s *Server) handleDashboardCompare(w http.ResponseWriter, r *http.Request, name string) {
	req, err := parseCompareRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	dash, err := s.store.GetDashboard(r.Context(), name)
	if err != nil {
		s.writeStoreError(w, r, err, "dashboard", name)
		return
	}
	// The dashboard's configured initial range seeds the preset unless
	// the caller picked one.
	if strings.TrimSpace(r.URL.Query().Get("preset")) == "" {
		req.Preset = dash.InitialPreset()
	}

	chs, err := s.store.ListCharts(r.Context(), dash.Name)
	if err != nil {
		s.writeStoreError(w, r, err, "dashboard", name)
		return
	}

	results := make([]services.Comparison, len(chs))
	g, gctx := errgroup.WithContext(r.Context())
	g.SetLimit(fanOutLimit)
	for i, ch := range chs {
		g.Go(func() error {
			cmp, err := s.compareChart(gctx, ch.ID, req)
			if err != nil {
				return err
			}
			results[i] = cmp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.writeCompareError(w, r, err, name)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Dashboard   charts.Dashboard      `json:"dashboard"`
		Comparisons []services.Comparison `json:"comparisons"`
	}{Dashboard: dash, Comparisons: results})
}

// compareChart runs the pipeline for one chart through the series
// cache.
func (s *Server) compareChart(ctx context.Context, chartID string, req services.CompareRequest) (services.Comparison, error) {
	chart, set, ok, err := s.compare.Plan(ctx, chartID, req)
	if err != nil {
		return services.Comparison{}, err
	}
	if !ok {
		return services.Comparison{ChartID: chart.ID, ChartName: chart.Name, ChartType: chart.ChartType}, nil
	}

	fetched, err := s.getRows(ctx, chart, set.Required)
	if err != nil {
		return services.Comparison{}, err
	}
	return s.compare.Build(chart, req.Preset, set, fetched), nil
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error, kind, id string) {
	if errors.Is(err, charts.ErrNotFound) {
		writeError(w, http.StatusNotFound, kind+" not found")
		return
	}
	slog.ErrorContext(r.Context(), "Store lookup failed", "error", err, "kind", kind, "id", id)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func (s *Server) writeCompareError(w http.ResponseWriter, r *http.Request, err error, id string) {
	var fe *rows.FetchError
	switch {
	case errors.Is(err, charts.ErrNotFound):
		writeError(w, http.StatusNotFound, "chart not found")
	case errors.As(err, &fe):
		slog.ErrorContext(r.Context(), "Row source failed", "error", err, "id", id, "url", fe.URL, "status", fe.Status)
		writeError(w, http.StatusBadGateway, "row source unavailable")
	default:
		slog.ErrorContext(r.Context(), "Comparison failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
