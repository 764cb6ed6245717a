// Package stats is the click-analytics aggregation engine: dimension
// rollups, deterministic ranking, realtime window counters, and report
// composition over an append-only click store.
package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"link-analytics/internal/model"
	"link-analytics/internal/store"
)

var (
	// ErrInvalidRange reports a date range whose start is after its end.
	ErrInvalidRange = errors.New("invalid date range")
	// ErrEmptyScope reports a scope that resolves to zero links. Zero
	// events inside a valid scope is not an error.
	ErrEmptyScope = errors.New("empty scope")
	// ErrTimeout reports an underlying query that exceeded the caller's
	// deadline. A composition never returns a partial report.
	ErrTimeout = errors.New("aggregation timed out")
)

// Dimension is a grouping attribute of a click event.
type Dimension string

const (
	DimDay      Dimension = "day"
	DimCountry  Dimension = "country"
	DimDevice   Dimension = "device"
	DimBrowser  Dimension = "browser"
	DimOS       Dimension = "os"
	DimReferrer Dimension = "referrer"
)

// Valid reports whether d is a known dimension.
func (d Dimension) Valid() bool {
	switch d {
	case DimDay, DimCountry, DimDevice, DimBrowser, DimOS, DimReferrer:
		return true
	}
	return false
}

// EventStore is the query surface the engine needs from the click store.
// *store.Client satisfies it; tests provide in-memory fakes.
type EventStore interface {
	CountClicks(ctx context.Context, f store.Filter) (int64, error)
	CountDistinct(ctx context.Context, f store.Filter, field string) (int64, error)
	GroupedCount(ctx context.Context, f store.Filter, dimension string) ([]model.DimensionBucket, error)
	GroupedCountByLink(ctx context.Context, f store.Filter) ([]model.DimensionBucket, error)
}

// DateRange bounds an aggregation by inclusive calendar dates. Zero values
// mean unbounded on that side.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Validate fails with ErrInvalidRange when both bounds are set and reversed.
func (r DateRange) Validate() error {
	if !r.From.IsZero() && !r.To.IsZero() && r.From.After(r.To) {
		return fmt.Errorf("%w: from %s after to %s", ErrInvalidRange,
			r.From.Format("2006-01-02"), r.To.Format("2006-01-02"))
	}
	return nil
}

// Days returns the number of calendar days the range spans, 0 when unbounded.
func (r DateRange) Days() int {
	if r.From.IsZero() || r.To.IsZero() {
		return 0
	}
	return int(dayStart(r.To).Sub(dayStart(r.From))/(24*time.Hour)) + 1
}

// filter converts the inclusive date range into instant bounds: the To date
// covers the whole UTC day.
func (r DateRange) filter(linkIDs []string) store.Filter {
	f := store.Filter{LinkIDs: linkIDs}
	if !r.From.IsZero() {
		f.From = dayStart(r.From)
	}
	if !r.To.IsZero() {
		f.To = dayStart(r.To).Add(24 * time.Hour)
	}
	return f
}

func dayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// asEngineErr translates transport failures into the engine's taxonomy.
func asEngineErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}
