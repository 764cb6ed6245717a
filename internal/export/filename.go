package export

import (
	"fmt"
	"strings"
	"time"
)

// Filename builds the download name: {reportKind}_{entitySlugOrGlobal}_{yyyy-MM-dd_HH-mm-ss}.{ext}.
func Filename(reportKind, entitySlug string, at time.Time, enc string) string {
	slug := strings.TrimSpace(entitySlug)
	if slug == "" {
		slug = "global"
	}
	return fmt.Sprintf("%s_%s_%s.%s", reportKind, slug, at.UTC().Format("2006-01-02_15-04-05"), enc)
}

// ContentType maps an encoding to its download media type.
func ContentType(enc string) string {
	if enc == "csv" {
		return "text/csv"
	}
	return "application/json"
}
