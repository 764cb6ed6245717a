package stats

import (
	"context"
	"time"

	"link-analytics/internal/model"
	"link-analytics/internal/store"
)

// Realtime answers trailing-window questions (last hour, last 24h) with a
// fresh bounded query per call. No counters are retained between calls, so
// concurrent callers need no coordination here.
type Realtime struct {
	Events EventStore

	// DemoCountries, when non-empty and DemoEnabled, substitutes for a
	// window with zero rows. Substituted results are always marked
	// synthetic and never mixed with genuine rows.
	DemoCountries []model.DimensionBucket
	DemoEnabled   bool
}

// CountInWindow counts clicks with click_time >= now-windowSeconds.
func (rt *Realtime) CountInWindow(ctx context.Context, linkIDs []string, windowSeconds int, now time.Time) (model.RealtimeCounter, error) {
	f := store.Filter{LinkIDs: linkIDs, From: now.UTC().Add(-time.Duration(windowSeconds) * time.Second)}
	count, err := rt.Events.CountClicks(ctx, f)
	if err != nil {
		return model.RealtimeCounter{}, asEngineErr(err)
	}
	counter := model.RealtimeCounter{WindowSeconds: windowSeconds, Count: count}
	if count == 0 && rt.demoActive() {
		for _, b := range rt.DemoCountries {
			counter.Count += b.Count
		}
		counter.Synthetic = true
	}
	return counter, nil
}

// TopDimensionInWindow ranks one dimension inside the trailing window. The
// returned flag reports whether the demo placeholder was substituted.
func (rt *Realtime) TopDimensionInWindow(ctx context.Context, linkIDs []string, dim Dimension, windowSeconds int, now time.Time, limit int) ([]model.DimensionBucket, bool, error) {
	f := store.Filter{LinkIDs: linkIDs, From: now.UTC().Add(-time.Duration(windowSeconds) * time.Second)}
	buckets, err := rt.Events.GroupedCount(ctx, f, string(dim))
	if err != nil {
		return nil, false, asEngineErr(err)
	}
	if len(buckets) == 0 && dim == DimCountry && rt.demoActive() {
		return Rank(rt.DemoCountries, limit), true, nil
	}
	return Rank(buckets, limit), false, nil
}

func (rt *Realtime) demoActive() bool {
	return rt.DemoEnabled && len(rt.DemoCountries) > 0
}
