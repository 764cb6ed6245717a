package stats

import (
	"context"
	"fmt"

	"link-analytics/internal/model"
)

// Aggregator computes single-dimension rollups over a filtered click set.
// It owns date bucketing semantics; grouping keys mirror stored values
// exactly, with missing values mapped to a sentinel bucket upstream in the
// store so no event is ever dropped.
type Aggregator struct {
	Events EventStore
}

// Aggregate groups the clicks of linkIDs inside r by dim. Day buckets come
// back in chronological order; categorical buckets are unordered until the
// ranker runs.
func (a *Aggregator) Aggregate(ctx context.Context, linkIDs []string, dim Dimension, r DateRange) ([]model.DimensionBucket, error) {
	if !dim.Valid() {
		return nil, fmt.Errorf("unknown dimension %q", dim)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	buckets, err := a.Events.GroupedCount(ctx, r.filter(linkIDs), string(dim))
	if err != nil {
		return nil, asEngineErr(err)
	}
	return buckets, nil
}

// Total counts the clicks of linkIDs inside r.
func (a *Aggregator) Total(ctx context.Context, linkIDs []string, r DateRange) (int64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	total, err := a.Events.CountClicks(ctx, r.filter(linkIDs))
	if err != nil {
		return 0, asEngineErr(err)
	}
	return total, nil
}

// UniqueVisitors counts distinct hashed visitor IPs inside r.
func (a *Aggregator) UniqueVisitors(ctx context.Context, linkIDs []string, r DateRange) (int64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	total, err := a.Events.CountDistinct(ctx, r.filter(linkIDs), "ip_hash")
	if err != nil {
		return 0, asEngineErr(err)
	}
	return total, nil
}

// PerLinkTotals returns click totals keyed by link id, for cross-link
// rankings.
func (a *Aggregator) PerLinkTotals(ctx context.Context, linkIDs []string, r DateRange) ([]model.DimensionBucket, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	buckets, err := a.Events.GroupedCountByLink(ctx, r.filter(linkIDs))
	if err != nil {
		return nil, asEngineErr(err)
	}
	return buckets, nil
}
