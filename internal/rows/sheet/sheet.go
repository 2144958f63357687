// Package sheet reads chart rows out of a Google Spreadsheet. The
// chart's query handle is an A1 range (e.g. "Orders!A:B") whose first
// column holds timestamps and second column amounts.
package sheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"cruscotto/internal/charts"
	"cruscotto/internal/core"
	"cruscotto/internal/rows"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Source struct {
	svc           *gsheet.Service
	spreadsheetID string
}

var _ rows.Source = (*Source)(nil)

// NewFromEnv creates a sheet source using environment variables.
// Required: GOOGLE_SPREADSHEET_ID. Credentials come from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Source, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Source{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// FetchRows reads the chart's range and keeps the rows whose shifted
// date falls inside the window. The window filter happens client-side
// because the Sheets API has no server-side value filter.
func (s *Source) FetchRows(ctx context.Context, chart charts.Chart, window core.DateRange) ([]core.RawPoint, error) {
	if !window.Valid() {
		return nil, nil
	}
	if s.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := strings.TrimSpace(chart.Query)
	if rng == "" {
		return nil, fmt.Errorf("chart %s has no sheet range", chart.ID)
	}

	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, &rows.FetchError{URL: "spreadsheet:" + s.spreadsheetID + "/" + rng, Err: err}
	}

	points := parseRows(resp.Values, window)
	slog.DebugContext(ctx, "Fetched sheet rows",
		"chart_id", chart.ID,
		"range", rng,
		"rows", len(points))
	return points, nil
}
