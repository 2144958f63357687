package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"cruscotto/internal/core"
	"cruscotto/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parseCompareRequest reads the selection from query parameters.
// Missing bounds leave the range unset, which resolves to a not-ready
// comparison; malformed values are an error.
func parseCompareRequest(r *http.Request) (services.CompareRequest, error) {
	q := r.URL.Query()
	req := services.CompareRequest{
		Preset:   core.PresetManual,
		Previous: core.PreviousPeriod,
	}

	if v := strings.TrimSpace(q.Get("from")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return req, fmt.Errorf("invalid from date %q", v)
		}
		req.Range.From = d
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return req, fmt.Errorf("invalid to date %q", v)
		}
		req.Range.To = d
	}
	if v := strings.TrimSpace(q.Get("preset")); v != "" {
		p := core.CurrentPreset(v)
		if !p.Valid() {
			return req, fmt.Errorf("unknown preset %q", v)
		}
		req.Preset = p
	}
	if v := strings.TrimSpace(q.Get("previous")); v != "" {
		p := core.PreviousPreset(v)
		if !p.Valid() {
			return req, fmt.Errorf("unknown previous preset %q", v)
		}
		req.Previous = p
	}

	return req, nil
}
