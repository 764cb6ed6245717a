package stats

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"link-analytics/internal/model"
)

// Scope is the already-authorized set of links one composition covers.
// Resolving ownership happens at the caller; the engine only checks that the
// scope is non-empty.
type Scope struct {
	Links []model.Link
}

// IDs returns the link ids in scope.
func (s Scope) IDs() []string {
	ids := make([]string, 0, len(s.Links))
	for _, l := range s.Links {
		ids = append(ids, l.ID)
	}
	return ids
}

// Composer fans one report request out into independent dimension queries
// and joins them into a StatisticsReport. Queries are read-only and share
// the same filter, so they run concurrently under one deadline.
type Composer struct {
	Aggregator *Aggregator
}

// Compose builds the full report for scope inside r. A scope with zero links
// fails with ErrEmptyScope; a valid scope with zero events yields a zero
// report. If any dimension query exceeds the deadline the whole composition
// fails with ErrTimeout rather than omitting a dimension.
func (c *Composer) Compose(ctx context.Context, scope Scope, r DateRange) (*model.StatisticsReport, error) {
	if len(scope.Links) == 0 {
		return nil, ErrEmptyScope
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	ids := scope.IDs()
	report := &model.StatisticsReport{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		report.TotalClicks, err = c.Aggregator.Total(gctx, ids, r)
		return err
	})
	g.Go(func() (err error) {
		report.TotalUniqueVisitors, err = c.Aggregator.UniqueVisitors(gctx, ids, r)
		return err
	})
	g.Go(func() (err error) {
		report.ClicksByDay, err = c.Aggregator.Aggregate(gctx, ids, DimDay, r)
		return err
	})
	ranked := []struct {
		dim  Dimension
		dest *[]model.DimensionBucket
	}{
		{DimCountry, &report.ClicksByCountry},
		{DimDevice, &report.ClicksByDevice},
		{DimBrowser, &report.ClicksByBrowser},
		{DimOS, &report.ClicksByOS},
		{DimReferrer, &report.ClicksByReferrer},
	}
	for _, rd := range ranked {
		g.Go(func() error {
			buckets, err := c.Aggregator.Aggregate(gctx, ids, rd.dim, r)
			if err != nil {
				return err
			}
			*rd.dest = Rank(buckets, 0)
			return nil
		})
	}
	if len(scope.Links) > 1 {
		g.Go(func() error {
			totals, err := c.Aggregator.PerLinkTotals(gctx, ids, r)
			if err != nil {
				return err
			}
			report.TopEntities = labelEntities(Rank(totals, 0), scope.Links)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compose report: %w", asEngineErr(err))
	}
	return report, nil
}

func labelEntities(ranked []model.DimensionBucket, links []model.Link) []model.EntityStat {
	byID := make(map[string]model.Link, len(links))
	for _, l := range links {
		byID[l.ID] = l
	}
	out := make([]model.EntityStat, 0, len(ranked))
	for _, b := range ranked {
		stat := model.EntityStat{EntityID: b.Key, Label: b.Key, Clicks: b.Count}
		if l, ok := byID[b.Key]; ok {
			stat.Label = l.Label()
		}
		out = append(out, stat)
	}
	return out
}
