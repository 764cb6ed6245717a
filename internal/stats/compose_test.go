package stats_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"link-analytics/internal/model"
	"link-analytics/internal/stats"
)

func newComposer(events *memStore) *stats.Composer {
	return &stats.Composer{Aggregator: &stats.Aggregator{Events: events}}
}

func scenarioEvents() []model.ClickEvent {
	return []model.ClickEvent{
		click("lx", time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), "US", "mobile", "chrome", "android", "https://news.example", "h1"),
		click("lx", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), "US", "desktop", "firefox", "linux", "", "h2"),
		click("lx", time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC), "US", "desktop", "chrome", "windows", "", "h1"),
		click("lx", time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC), "ES", "mobile", "safari", "ios", "", "h3"),
		click("lx", time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC), "ES", "tablet", "safari", "ios", "", "h3"),
	}
}

func TestComposeScenario(t *testing.T) {
	composer := newComposer(&memStore{events: scenarioEvents()})
	scope := stats.Scope{Links: []model.Link{{ID: "lx", Slug: "launch"}}}

	report, err := composer.Compose(context.Background(), scope, stats.DateRange{
		From: date(2024, 1, 1), To: date(2024, 1, 2),
	})
	require.NoError(t, err)

	require.Equal(t, int64(5), report.TotalClicks)
	require.Equal(t, int64(3), report.TotalUniqueVisitors)
	require.Equal(t, []model.DimensionBucket{
		{Key: "2024-01-01", Count: 3},
		{Key: "2024-01-02", Count: 2},
	}, report.ClicksByDay)
	require.Equal(t, []model.DimensionBucket{
		{Key: "US", Count: 3},
		{Key: "ES", Count: 2},
	}, report.ClicksByCountry)
	require.Nil(t, report.TopEntities)
}

func TestComposeSumInvariant(t *testing.T) {
	composer := newComposer(&memStore{events: scenarioEvents()})
	scope := stats.Scope{Links: []model.Link{{ID: "lx"}}}

	report, err := composer.Compose(context.Background(), scope, stats.DateRange{})
	require.NoError(t, err)

	sum := func(buckets []model.DimensionBucket) int64 {
		var total int64
		for _, b := range buckets {
			total += b.Count
		}
		return total
	}
	require.Equal(t, report.TotalClicks, sum(report.ClicksByDay))
	require.Equal(t, report.TotalClicks, sum(report.ClicksByCountry))
	require.Equal(t, report.TotalClicks, sum(report.ClicksByDevice))
	require.Equal(t, report.TotalClicks, sum(report.ClicksByBrowser))
	require.Equal(t, report.TotalClicks, sum(report.ClicksByOS))
	require.Equal(t, report.TotalClicks, sum(report.ClicksByReferrer))
}

func TestComposeEmptyScopeVersusZeroEvents(t *testing.T) {
	composer := newComposer(&memStore{})

	_, err := composer.Compose(context.Background(), stats.Scope{}, stats.DateRange{})
	require.ErrorIs(t, err, stats.ErrEmptyScope)

	report, err := composer.Compose(context.Background(),
		stats.Scope{Links: []model.Link{{ID: "quiet-link"}}}, stats.DateRange{})
	require.NoError(t, err)
	require.Zero(t, report.TotalClicks)
	require.Zero(t, report.TotalUniqueVisitors)
	require.Empty(t, report.ClicksByDay)
	require.Empty(t, report.ClicksByCountry)
}

func TestComposePortfolioRanksEntitiesWithLabels(t *testing.T) {
	events := &memStore{events: []model.ClickEvent{
		click("l1", time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC), "US", "desktop", "chrome", "linux", "", "h1"),
		click("l2", time.Date(2024, 3, 1, 2, 0, 0, 0, time.UTC), "US", "desktop", "chrome", "linux", "", "h2"),
		click("l2", time.Date(2024, 3, 1, 3, 0, 0, 0, time.UTC), "ES", "mobile", "safari", "ios", "", "h3"),
	}}
	composer := newComposer(events)
	scope := stats.Scope{Links: []model.Link{
		{ID: "l1", Slug: "blog", Title: "My Blog"},
		{ID: "l2", Slug: "shop"},
	}}

	report, err := composer.Compose(context.Background(), scope, stats.DateRange{})
	require.NoError(t, err)
	require.Equal(t, []model.EntityStat{
		{EntityID: "l2", Label: "shop", Clicks: 2},
		{EntityID: "l1", Label: "My Blog", Clicks: 1},
	}, report.TopEntities)
}

func TestComposeDeadlineMapsToTimeout(t *testing.T) {
	composer := &stats.Composer{Aggregator: &stats.Aggregator{Events: blockingStore{}}}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := composer.Compose(ctx, stats.Scope{Links: []model.Link{{ID: "l1"}}}, stats.DateRange{})
	require.ErrorIs(t, err, stats.ErrTimeout)
}

func TestComposeRejectsReversedRange(t *testing.T) {
	composer := newComposer(&memStore{})
	_, err := composer.Compose(context.Background(),
		stats.Scope{Links: []model.Link{{ID: "l1"}}},
		stats.DateRange{From: date(2024, 2, 1), To: date(2024, 1, 1)})
	require.ErrorIs(t, err, stats.ErrInvalidRange)
}
