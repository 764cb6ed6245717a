package narrative_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"link-analytics/internal/model"
	"link-analytics/internal/narrative"
)

func portfolio(total int64) *model.StatisticsReport {
	return &model.StatisticsReport{
		TotalClicks:         total,
		TotalUniqueVisitors: total / 2,
		ClicksByCountry: []model.DimensionBucket{
			{Key: "US", Count: total * 8 / 10},
			{Key: "ES", Count: total - total*8/10},
		},
		ClicksByDevice: []model.DimensionBucket{
			{Key: "mobile", Count: total * 6 / 10},
			{Key: "desktop", Count: total - total*6/10},
		},
		ClicksByBrowser: []model.DimensionBucket{
			{Key: "chrome", Count: total},
		},
	}
}

func perLink(clicks ...int64) []narrative.LinkReport {
	labels := []string{"blog", "shop", "promo"}
	out := make([]narrative.LinkReport, 0, len(clicks))
	for i, c := range clicks {
		out = append(out, narrative.LinkReport{
			Label:  labels[i%len(labels)],
			Report: &model.StatisticsReport{TotalClicks: c},
		})
	}
	return out
}

func TestSummarizeIsDeterministic(t *testing.T) {
	report := portfolio(100)
	links := perLink(70, 30)
	first := narrative.Summarize(report, links, 30)
	second := narrative.Summarize(report, links, 30)
	require.Equal(t, first, second)
	require.NotEmpty(t, first)
}

func TestSectionsCoverAllRules(t *testing.T) {
	sections := narrative.Sections(portfolio(100), perLink(70, 30), 30)
	titles := make([]string, 0, len(sections))
	for _, s := range sections {
		titles = append(titles, s.Title)
	}
	require.Equal(t, []string{"Overview", "Best performer", "Geography", "Devices", "Recommendations"}, titles)
}

func TestOverviewReportsAverage(t *testing.T) {
	sections := narrative.Sections(portfolio(100), perLink(70, 30), 30)
	require.Contains(t, sections[0].Lines[1], "50.0 clicks per link")
}

func TestBestPerformerPrefersHighestClicks(t *testing.T) {
	sections := narrative.Sections(portfolio(100), perLink(30, 70), 30)
	require.Contains(t, sections[1].Title, "Best performer")
	require.Contains(t, sections[1].Lines[0], `"shop"`)
	require.Contains(t, sections[1].Lines[0], "70 clicks")
}

func TestGeographyFlagsConcentration(t *testing.T) {
	sections := narrative.Sections(portfolio(100), perLink(70, 30), 30)
	var geo *narrative.Section
	for i := range sections {
		if sections[i].Title == "Geography" {
			geo = &sections[i]
		}
	}
	require.NotNil(t, geo)
	require.Contains(t, geo.Lines[0], "US")
	require.Contains(t, geo.Lines[1], "concentrated")
}

func TestRecommendationThresholds(t *testing.T) {
	last := func(report *model.StatisticsReport, links []narrative.LinkReport) string {
		sections := narrative.Sections(report, links, 30)
		rec := sections[len(sections)-1]
		require.Equal(t, "Recommendations", rec.Title)
		return rec.Lines[0]
	}

	require.Contains(t, last(&model.StatisticsReport{}, perLink(0, 0)), "No clicks recorded yet")
	require.Contains(t, last(portfolio(10), perLink(6, 4)), "still low")
	require.Contains(t, last(portfolio(60), perLink(40, 20)), "Steady traffic")
	require.Contains(t, last(portfolio(200), perLink(150, 50)), "Strong click volume")
}

func TestSummarizeZeroLinks(t *testing.T) {
	text := narrative.Summarize(&model.StatisticsReport{}, nil, 7)
	require.True(t, strings.Contains(text, "0 clicks"))
	require.Contains(t, text, "0.0 clicks per link")
}
