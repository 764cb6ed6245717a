// Package export renders composed statistics reports into download
// encodings and keeps rendered artifacts in a TTL store on behalf of the
// caller.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"link-analytics/internal/model"
)

// ErrUnsupportedFormat reports an encoding outside {csv, json}.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Audience controls redaction. Public renderings never contain referrer
// values or entity identifiers beyond slug/title.
type Audience string

const (
	AudienceOwner  Audience = "owner"
	AudiencePublic Audience = "public"
)

// Metadata labels one rendering of a report.
type Metadata struct {
	EntityLabel      string
	EntitySlug       string
	EntityID         string
	GeneratedAt      time.Time
	RangeDescription string
	Audience         Audience
	Portfolio        bool
}

// Format renders report as enc ("csv" or "json"). Rendering is
// deterministic: the same report and metadata yield byte-identical output
// apart from the generatedAt field.
func Format(report *model.StatisticsReport, enc string, meta Metadata) ([]byte, error) {
	redacted := redact(report, meta.Audience)
	switch enc {
	case "csv":
		return formatCSV(redacted, meta), nil
	case "json":
		return formatJSON(redacted, meta)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, enc)
	}
}

// redact returns a shallow copy of report with owner-only fields stripped
// for public audiences.
func redact(report *model.StatisticsReport, audience Audience) *model.StatisticsReport {
	if audience != AudiencePublic {
		return report
	}
	out := *report
	out.ClicksByReferrer = nil
	if len(out.TopEntities) > 0 {
		entities := make([]model.EntityStat, len(out.TopEntities))
		copy(entities, out.TopEntities)
		for i := range entities {
			entities[i].EntityID = ""
		}
		out.TopEntities = entities
	}
	return &out
}

type csvSection struct {
	title   string
	header  string
	buckets []model.DimensionBucket
	quoted  bool
}

func formatCSV(report *model.StatisticsReport, meta Metadata) []byte {
	var b strings.Builder
	if meta.Portfolio {
		b.WriteString("# Portfolio statistics export\n")
	} else {
		b.WriteString("# Link statistics export\n")
	}
	fmt.Fprintf(&b, "# Entity: %s\n", meta.EntityLabel)
	fmt.Fprintf(&b, "# Generated: %s\n", meta.GeneratedAt.UTC().Format(time.RFC3339))
	if meta.RangeDescription != "" {
		fmt.Fprintf(&b, "# Range: %s\n", meta.RangeDescription)
	}
	fmt.Fprintf(&b, "# Total clicks: %d\n", report.TotalClicks)
	fmt.Fprintf(&b, "# Unique visitors: %d\n", report.TotalUniqueVisitors)

	sections := []csvSection{
		{"Clicks by day", "Date,Clicks", report.ClicksByDay, false},
		{"Clicks by country", "Country,Clicks", report.ClicksByCountry, true},
		{"Clicks by device", "Device,Clicks", report.ClicksByDevice, true},
		{"Clicks by browser", "Browser,Clicks", report.ClicksByBrowser, true},
		{"Clicks by operating system", "OS,Clicks", report.ClicksByOS, true},
	}
	if report.ClicksByReferrer != nil {
		sections = append(sections, csvSection{"Clicks by referrer", "Referrer,Clicks", report.ClicksByReferrer, true})
	}
	for _, s := range sections {
		b.WriteString("\n")
		b.WriteString(s.title)
		b.WriteString("\n")
		b.WriteString(s.header)
		b.WriteString("\n")
		for _, bucket := range s.buckets {
			key := bucket.Key
			if s.quoted {
				key = quoteField(key)
			}
			b.WriteString(key)
			b.WriteString(",")
			b.WriteString(strconv.FormatInt(bucket.Count, 10))
			b.WriteString("\n")
		}
	}
	if len(report.TopEntities) > 0 {
		b.WriteString("\nTop links\n")
		b.WriteString("Link,Clicks\n")
		for _, e := range report.TopEntities {
			fmt.Fprintf(&b, "%s,%d\n", quoteField(e.Label), e.Clicks)
		}
	}
	return []byte(b.String())
}

func quoteField(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

type jsonExport struct {
	LinkInfo   map[string]string       `json:"linkInfo,omitempty"`
	ExportInfo map[string]string       `json:"exportInfo"`
	Statistics *model.StatisticsReport `json:"statistics"`
}

func formatJSON(report *model.StatisticsReport, meta Metadata) ([]byte, error) {
	doc := jsonExport{
		ExportInfo: map[string]string{
			"generatedAt": meta.GeneratedAt.UTC().Format(time.RFC3339),
			"range":       meta.RangeDescription,
			"format":      "json",
		},
		Statistics: report,
	}
	if !meta.Portfolio {
		doc.LinkInfo = map[string]string{
			"label": meta.EntityLabel,
			"slug":  meta.EntitySlug,
		}
		if meta.Audience != AudiencePublic && meta.EntityID != "" {
			doc.LinkInfo["id"] = meta.EntityID
		}
	}
	return json.MarshalIndent(doc, "", "  ")
}
