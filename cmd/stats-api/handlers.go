package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"link-analytics/internal/auth"
	"link-analytics/internal/config"
	"link-analytics/internal/export"
	"link-analytics/internal/model"
	"link-analytics/internal/narrative"
	"link-analytics/internal/stats"
	"link-analytics/internal/store"
)

const apiKeyHeader = "X-LA-API-Key"

// linkReader is the slice of *store.Client the handlers need for scope
// resolution.
type linkReader interface {
	LinkByID(ctx context.Context, id string) (model.Link, error)
	LinksByOwner(ctx context.Context, ownerID string) ([]model.Link, error)
}

type server struct {
	cfg       config.Config
	links     linkReader
	composer  *stats.Composer
	realtime  *stats.Realtime
	artifacts export.ArtifactStore
}

func (s *server) handleLinkStats(c *gin.Context) {
	link, audience, ok := s.resolveLink(c)
	if !ok {
		return
	}
	dateRange, ok := parseRange(c)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.QueryTimeout)
	defer cancel()

	report, err := s.composer.Compose(ctx, stats.Scope{Links: []model.Link{link}}, dateRange)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	if audience == export.AudiencePublic {
		report.ClicksByReferrer = nil
	}
	c.Header("Cache-Control", "public, max-age=30")
	c.JSON(http.StatusOK, gin.H{
		"link":       gin.H{"slug": link.Slug, "title": link.Title},
		"range":      rangeDescription(dateRange),
		"statistics": report,
	})
}

func (s *server) handleLinkExport(c *gin.Context) {
	link, audience, ok := s.resolveLink(c)
	if !ok {
		return
	}
	dateRange, ok := parseRange(c)
	if !ok {
		return
	}
	enc := c.DefaultQuery("format", "csv")
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.QueryTimeout)
	defer cancel()

	report, err := s.composer.Compose(ctx, stats.Scope{Links: []model.Link{link}}, dateRange)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	now := time.Now().UTC()
	meta := export.Metadata{
		EntityLabel:      link.Label(),
		EntitySlug:       link.Slug,
		EntityID:         link.ID,
		GeneratedAt:      now,
		RangeDescription: rangeDescription(dateRange),
		Audience:         audience,
	}
	s.respondExport(c, report, enc, meta, "link_stats", link.Slug, link.OwnerID, now)
}

func (s *server) handleLinkRealtime(c *gin.Context) {
	link, _, ok := s.resolveLink(c)
	if !ok {
		return
	}
	window, err := strconv.Atoi(c.DefaultQuery("window", "3600"))
	if err != nil || window <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "window must be a positive number of seconds"})
		return
	}
	if window > 86400 {
		window = 86400
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.QueryTimeout)
	defer cancel()

	now := time.Now().UTC()
	ids := []string{link.ID}
	counter, err := s.realtime.CountInWindow(ctx, ids, window, now)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	countries, synthetic, err := s.realtime.TopDimensionInWindow(ctx, ids, stats.DimCountry, window, now, 5)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"windowSeconds": counter.WindowSeconds,
		"count":         counter.Count,
		"topCountries":  countries,
		"synthetic":     counter.Synthetic || synthetic,
	})
}

func (s *server) handleOwnerStats(c *gin.Context) {
	links, ok := s.resolveOwner(c)
	if !ok {
		return
	}
	dateRange, rangeOK := parseRange(c)
	if !rangeOK {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.QueryTimeout)
	defer cancel()

	report, err := s.composer.Compose(ctx, stats.Scope{Links: links}, dateRange)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"range":      rangeDescription(dateRange),
		"linkCount":  len(links),
		"statistics": report,
	})
}

func (s *server) handleOwnerExport(c *gin.Context) {
	links, ok := s.resolveOwner(c)
	if !ok {
		return
	}
	dateRange, rangeOK := parseRange(c)
	if !rangeOK {
		return
	}
	enc := c.DefaultQuery("format", "csv")
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.QueryTimeout)
	defer cancel()

	report, err := s.composer.Compose(ctx, stats.Scope{Links: links}, dateRange)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	now := time.Now().UTC()
	ownerID := c.Param("id")
	meta := export.Metadata{
		EntityLabel:      fmt.Sprintf("portfolio of %d links", len(links)),
		GeneratedAt:      now,
		RangeDescription: rangeDescription(dateRange),
		Audience:         export.AudienceOwner,
		Portfolio:        true,
	}
	s.respondExport(c, report, enc, meta, "portfolio_stats", "", ownerID, now)
}

func (s *server) handleOwnerSummary(c *gin.Context) {
	links, ok := s.resolveOwner(c)
	if !ok {
		return
	}
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive number"})
		return
	}
	now := time.Now().UTC()
	dateRange := stats.DateRange{From: now.AddDate(0, 0, -(days - 1)), To: now}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.QueryTimeout)
	defer cancel()

	portfolio, err := s.composer.Compose(ctx, stats.Scope{Links: links}, dateRange)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	perLink := make([]narrative.LinkReport, 0, len(links))
	for _, link := range links {
		report, err := s.composer.Compose(ctx, stats.Scope{Links: []model.Link{link}}, dateRange)
		if err != nil {
			respondEngineError(c, err)
			return
		}
		perLink = append(perLink, narrative.LinkReport{Label: link.Label(), Report: report})
	}
	c.JSON(http.StatusOK, gin.H{
		"rangeDays": days,
		"summary":   narrative.Summarize(portfolio, perLink, days),
		"sections":  narrative.Sections(portfolio, perLink, days),
	})
}

// respondExport writes the download body and keeps a copy in the artifact
// store under the configured TTL.
func (s *server) respondExport(c *gin.Context, report *model.StatisticsReport, enc string, meta export.Metadata, reportKind, slug, ownerID string, now time.Time) {
	payload, err := export.Format(report, enc, meta)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	filename := export.Filename(reportKind, slug, now, enc)
	artifact := model.ExportArtifact{
		ExportID:    fmt.Sprintf("%s-%d", reportKind, now.UnixNano()),
		OwnerID:     ownerID,
		Filename:    filename,
		ContentType: export.ContentType(enc),
		Payload:     payload,
		CreatedAt:   now,
	}
	if err := s.artifacts.Put(c.Request.Context(), artifact.ExportID, artifact, s.cfg.ExportTTL); err != nil {
		log.Printf("store export artifact: %v", err)
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Data(http.StatusOK, artifact.ContentType, payload)
}

// resolveLink loads the link and decides the rendering audience. Owner
// audience requires the owner's API key; public audience requires the link
// to have public stats enabled.
func (s *server) resolveLink(c *gin.Context) (model.Link, export.Audience, bool) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.QueryTimeout)
	defer cancel()
	link, err := s.links.LinkByID(ctx, c.Param("id"))
	if errors.Is(err, store.ErrLinkNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "link not found"})
		return model.Link{}, "", false
	}
	if err != nil {
		log.Printf("resolve link: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return model.Link{}, "", false
	}
	if cred, ok := s.cfg.Owners[link.OwnerID]; ok && auth.VerifyAPIKey(cred.APIKey, c.GetHeader(apiKeyHeader)) {
		return link, export.AudienceOwner, true
	}
	if !link.PublicStats {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "stats for this link are private"})
		return model.Link{}, "", false
	}
	return link, export.AudiencePublic, true
}

// resolveOwner authorizes the owner's API key and loads the portfolio.
func (s *server) resolveOwner(c *gin.Context) ([]model.Link, bool) {
	ownerID := c.Param("id")
	cred, ok := s.cfg.Owners[ownerID]
	if !ok || !auth.VerifyAPIKey(cred.APIKey, c.GetHeader(apiKeyHeader)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid api key"})
		return nil, false
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.QueryTimeout)
	defer cancel()
	links, err := s.links.LinksByOwner(ctx, ownerID)
	if err != nil {
		log.Printf("resolve owner links: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return nil, false
	}
	if len(links) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no links in scope"})
		return nil, false
	}
	return links, true
}

func parseRange(c *gin.Context) (stats.DateRange, bool) {
	var r stats.DateRange
	if fromStr := c.Query("from"); fromStr != "" {
		from, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
			return r, false
		}
		r.From = from
	}
	if toStr := c.Query("to"); toStr != "" {
		to, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
			return r, false
		}
		r.To = to
	}
	return r, true
}

func rangeDescription(r stats.DateRange) string {
	switch {
	case r.From.IsZero() && r.To.IsZero():
		return "all time"
	case r.From.IsZero():
		return "until " + r.To.Format("2006-01-02")
	case r.To.IsZero():
		return "since " + r.From.Format("2006-01-02")
	default:
		return r.From.Format("2006-01-02") + " to " + r.To.Format("2006-01-02")
	}
}

func respondEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, stats.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, export.ErrUnsupportedFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, stats.ErrEmptyScope):
		c.JSON(http.StatusNotFound, gin.H{"error": "no links in scope"})
	case errors.Is(err, stats.ErrTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "statistics query timed out, retry shortly"})
	default:
		log.Printf("compose stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
	}
}
