package stats_test

import (
	"context"
	"sort"
	"time"

	"link-analytics/internal/model"
	"link-analytics/internal/store"
)

// memStore answers the engine's query contract from an in-memory event
// slice, mirroring the store's sentinel-bucket behavior.
type memStore struct {
	events []model.ClickEvent
}

func (m *memStore) matched(f store.Filter) []model.ClickEvent {
	ids := make(map[string]bool, len(f.LinkIDs))
	for _, id := range f.LinkIDs {
		ids[id] = true
	}
	var out []model.ClickEvent
	for _, evt := range m.events {
		if len(ids) > 0 && !ids[evt.LinkID] {
			continue
		}
		if !f.From.IsZero() && evt.ClickTime.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && !evt.ClickTime.Before(f.To) {
			continue
		}
		out = append(out, evt)
	}
	return out
}

func (m *memStore) CountClicks(_ context.Context, f store.Filter) (int64, error) {
	return int64(len(m.matched(f))), nil
}

func (m *memStore) CountDistinct(_ context.Context, f store.Filter, field string) (int64, error) {
	seen := make(map[string]bool)
	for _, evt := range m.matched(f) {
		if field == "link_id" {
			seen[evt.LinkID] = true
		} else {
			seen[evt.IPHash] = true
		}
	}
	return int64(len(seen)), nil
}

func (m *memStore) GroupedCount(_ context.Context, f store.Filter, dimension string) ([]model.DimensionBucket, error) {
	counts := make(map[string]int64)
	for _, evt := range m.matched(f) {
		counts[bucketKey(evt, dimension)]++
	}
	out := make([]model.DimensionBucket, 0, len(counts))
	for key, count := range counts {
		out = append(out, model.DimensionBucket{Key: key, Count: count})
	}
	if dimension == "day" {
		sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	}
	return out, nil
}

func (m *memStore) GroupedCountByLink(_ context.Context, f store.Filter) ([]model.DimensionBucket, error) {
	counts := make(map[string]int64)
	for _, evt := range m.matched(f) {
		counts[evt.LinkID]++
	}
	out := make([]model.DimensionBucket, 0, len(counts))
	for key, count := range counts {
		out = append(out, model.DimensionBucket{Key: key, Count: count})
	}
	return out, nil
}

func bucketKey(evt model.ClickEvent, dimension string) string {
	sentinel := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}
	switch dimension {
	case "day":
		return evt.ClickDate.Format("2006-01-02")
	case "country":
		return sentinel(evt.CountryCode, "unknown")
	case "device":
		return sentinel(evt.Device, "unknown")
	case "browser":
		return sentinel(evt.Browser, "unknown")
	case "os":
		return sentinel(evt.OS, "unknown")
	case "referrer":
		return sentinel(evt.Referrer, "direct")
	}
	return "unknown"
}

// blockingStore parks every call until the context deadline fires.
type blockingStore struct{}

func (blockingStore) wait(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (b blockingStore) CountClicks(ctx context.Context, _ store.Filter) (int64, error) {
	return 0, b.wait(ctx)
}

func (b blockingStore) CountDistinct(ctx context.Context, _ store.Filter, _ string) (int64, error) {
	return 0, b.wait(ctx)
}

func (b blockingStore) GroupedCount(ctx context.Context, _ store.Filter, _ string) ([]model.DimensionBucket, error) {
	return nil, b.wait(ctx)
}

func (b blockingStore) GroupedCountByLink(ctx context.Context, _ store.Filter) ([]model.DimensionBucket, error) {
	return nil, b.wait(ctx)
}

func click(linkID string, at time.Time, country, device, browser, osName, referrer, ipHash string) model.ClickEvent {
	at = at.UTC()
	return model.ClickEvent{
		LinkID:      linkID,
		ClickTime:   at,
		ClickDate:   time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC),
		CountryCode: country,
		Device:      device,
		Browser:     browser,
		OS:          osName,
		Referrer:    referrer,
		IPHash:      ipHash,
	}
}
