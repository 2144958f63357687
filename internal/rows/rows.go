// Package rows defines the port for fetching time-series rows for a
// chart restricted to a date window, and the error surfaced when the
// collaborator fails.
package rows

import (
	"context"
	"fmt"

	"cruscotto/internal/charts"
	"cruscotto/internal/core"
)

// Source fetches observations for a chart across an inclusive day
// window. A window missing either bound yields (nil, nil) without any
// request being made. Sources never retry; that belongs to callers.
type Source interface {
	FetchRows(ctx context.Context, chart charts.Chart, window core.DateRange) ([]core.RawPoint, error)
}

// FetchError reports a failed row fetch: network trouble, a non-2xx
// status, or an unexpected content type from the query endpoint.
type FetchError struct {
	URL         string
	Status      int
	ContentType string
	Err         error
}

func (e *FetchError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("fetch rows from %s: %v", e.URL, e.Err)
	case e.ContentType != "":
		return fmt.Sprintf("fetch rows from %s: unexpected content type %q", e.URL, e.ContentType)
	default:
		return fmt.Sprintf("fetch rows from %s: status %d", e.URL, e.Status)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
