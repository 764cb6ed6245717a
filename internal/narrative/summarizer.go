// Package narrative derives human-readable insight text from a composed
// statistics report. It is a rule evaluator over bucket rankings, not text
// generation: identical inputs always produce identical output.
package narrative

import (
	"fmt"
	"strings"

	"link-analytics/internal/model"
	"link-analytics/internal/stats"
)

// LinkReport pairs one link's label with its composed report.
type LinkReport struct {
	Label  string
	Report *model.StatisticsReport
}

// Section is one block of the summary, kept structured so rules stay
// testable independent of final wording.
type Section struct {
	Title string
	Lines []string
}

// Sections evaluates the summary rules for a portfolio report.
func Sections(report *model.StatisticsReport, perLink []LinkReport, rangeDays int) []Section {
	sections := []Section{overview(report, perLink, rangeDays)}
	if best := bestPerformer(perLink); best != nil {
		sections = append(sections, *best)
	}
	if geo := geography(report); geo != nil {
		sections = append(sections, *geo)
	}
	if devices := deviceMix(report); devices != nil {
		sections = append(sections, *devices)
	}
	sections = append(sections, recommendations(report, perLink))
	return sections
}

// Summarize renders the evaluated sections as plain text.
func Summarize(report *model.StatisticsReport, perLink []LinkReport, rangeDays int) string {
	var b strings.Builder
	for i, s := range Sections(report, perLink, rangeDays) {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(s.Title)
		b.WriteString("\n")
		for _, line := range s.Lines {
			b.WriteString("- ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func avgClicksPerLink(report *model.StatisticsReport, perLink []LinkReport) float64 {
	if len(perLink) == 0 {
		return 0
	}
	return float64(report.TotalClicks) / float64(len(perLink))
}

func overview(report *model.StatisticsReport, perLink []LinkReport, rangeDays int) Section {
	lines := []string{
		fmt.Sprintf("%d clicks from %d unique visitors across %d links over the last %d days.",
			report.TotalClicks, report.TotalUniqueVisitors, len(perLink), rangeDays),
		fmt.Sprintf("Average of %.1f clicks per link.", avgClicksPerLink(report, perLink)),
	}
	return Section{Title: "Overview", Lines: lines}
}

func bestPerformer(perLink []LinkReport) *Section {
	var best *LinkReport
	for i := range perLink {
		if best == nil || perLink[i].Report.TotalClicks > best.Report.TotalClicks ||
			(perLink[i].Report.TotalClicks == best.Report.TotalClicks && perLink[i].Label < best.Label) {
			best = &perLink[i]
		}
	}
	if best == nil || best.Report.TotalClicks == 0 {
		return nil
	}
	return &Section{
		Title: "Best performer",
		Lines: []string{fmt.Sprintf("%q leads with %d clicks.", best.Label, best.Report.TotalClicks)},
	}
}

func geography(report *model.StatisticsReport) *Section {
	top := stats.Rank(report.ClicksByCountry, 1)
	if len(top) == 0 || report.TotalClicks == 0 {
		return nil
	}
	share := float64(top[0].Count) * 100 / float64(report.TotalClicks)
	lines := []string{fmt.Sprintf("Most clicks come from %s (%.0f%% of traffic).", top[0].Key, share)}
	if share >= 70 {
		lines = append(lines, "Traffic is heavily concentrated in a single country.")
	}
	return &Section{Title: "Geography", Lines: lines}
}

func deviceMix(report *model.StatisticsReport) *Section {
	top := stats.Rank(report.ClicksByDevice, 1)
	if len(top) == 0 || report.TotalClicks == 0 {
		return nil
	}
	share := float64(top[0].Count) * 100 / float64(report.TotalClicks)
	lines := []string{fmt.Sprintf("%s is the dominant device type (%.0f%%).", top[0].Key, share)}
	if browser := stats.Rank(report.ClicksByBrowser, 1); len(browser) > 0 {
		lines = append(lines, fmt.Sprintf("%s is the most common browser.", browser[0].Key))
	}
	return &Section{Title: "Devices", Lines: lines}
}

func recommendations(report *model.StatisticsReport, perLink []LinkReport) Section {
	avg := avgClicksPerLink(report, perLink)
	var lines []string
	switch {
	case report.TotalClicks == 0:
		lines = append(lines, "No clicks recorded yet. Share your links to start collecting statistics.")
	case avg < 10:
		lines = append(lines, "Click volume is still low. Consider promoting your links in more channels.")
	case avg < 50:
		lines = append(lines, "Steady traffic. Focus promotion on the best performing link to grow further.")
	default:
		lines = append(lines, "Strong click volume. Review the geography section to localize top content.")
	}
	return Section{Title: "Recommendations", Lines: lines}
}
