package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2"

	"link-analytics/internal/model"
)

// Client wraps a ClickHouse connection.
type Client struct {
	db *sql.DB
}

// New creates a ClickHouse client from a DSN.
func New(ctx context.Context, dsn string) (*Client, error) {
	db, err := sql.Open("clickhouse", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxIdleConns(5)
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Client{db: db}, nil
}

// Close releases database resources.
func (c *Client) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// EnsureSchema creates the clicks and links tables if they do not exist.
func (c *Client) EnsureSchema(ctx context.Context) error {
	const clicksDDL = `
CREATE TABLE IF NOT EXISTS clicks
(
  link_id        String,
  click_time     DateTime64(3, 'UTC'),
  click_date     Date,
  country_code   LowCardinality(String),
  city           String,
  region         String,
  language       LowCardinality(String),
  device         LowCardinality(String),
  os             LowCardinality(String),
  browser        LowCardinality(String),
  referrer       String,
  ip_hash        FixedString(64),
  _ingested_at   DateTime64(3, 'UTC')
)
ENGINE = MergeTree
PARTITION BY toYYYYMM(click_date)
ORDER BY (link_id, click_date, click_time)`
	if _, err := c.db.ExecContext(ctx, clicksDDL); err != nil {
		return err
	}
	const linksDDL = `
CREATE TABLE IF NOT EXISTS links
(
  id            String,
  owner_id      String,
  slug          String,
  title         String,
  public_stats  UInt8,
  active        UInt8,
  created_at    DateTime64(3, 'UTC')
)
ENGINE = ReplacingMergeTree
ORDER BY id`
	_, err := c.db.ExecContext(ctx, linksDDL)
	return err
}

// InsertClicks writes a batch of enriched clicks with a single prepared statement.
func (c *Client) InsertClicks(ctx context.Context, events []model.ClickEvent) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO clicks (
	link_id, click_time, click_date, country_code, city, region,
	language, device, os, browser, referrer, ip_hash, _ingested_at
) VALUES (
	?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, evt := range events {
		if _, err := stmt.ExecContext(
			ctx,
			evt.LinkID,
			evt.ClickTime,
			evt.ClickDate,
			evt.CountryCode,
			evt.City,
			evt.Region,
			evt.Language,
			evt.Device,
			evt.OS,
			evt.Browser,
			evt.Referrer,
			evt.IPHash,
			evt.IngestedAt,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Filter bounds a click query by link set and time. Zero times mean
// unbounded; From and To are instants, inclusive at From and exclusive at To.
type Filter struct {
	LinkIDs []string
	From    time.Time
	To      time.Time
}

func (f Filter) whereClause() (string, []any) {
	conds := make([]string, 0, 3)
	args := make([]any, 0, len(f.LinkIDs)+2)
	if len(f.LinkIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(f.LinkIDs)), ",")
		conds = append(conds, fmt.Sprintf("link_id IN (%s)", placeholders))
		for _, id := range f.LinkIDs {
			args = append(args, id)
		}
	}
	if !f.From.IsZero() {
		conds = append(conds, "click_time >= ?")
		args = append(args, f.From.UTC())
	}
	if !f.To.IsZero() {
		conds = append(conds, "click_time < ?")
		args = append(args, f.To.UTC())
	}
	if len(conds) == 0 {
		return "1 = 1", nil
	}
	return strings.Join(conds, " AND "), args
}

// dimensionExprs maps engine dimension names onto grouping SQL. Empty stored
// values surface as the "unknown" sentinel so every event lands in a bucket.
var dimensionExprs = map[string]string{
	"day":      "toString(click_date)",
	"country":  "if(country_code = '', 'unknown', country_code)",
	"device":   "if(device = '', 'unknown', device)",
	"browser":  "if(browser = '', 'unknown', browser)",
	"os":       "if(os = '', 'unknown', os)",
	"referrer": "if(referrer = '', 'direct', referrer)",
}

// CountClicks returns the total matching rows.
func (c *Client) CountClicks(ctx context.Context, f Filter) (int64, error) {
	where, args := f.whereClause()
	row := c.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT count() FROM clicks WHERE %s`, where), args...)
	var total int64
	if err := row.Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// CountDistinct returns the exact distinct count of a column, used for
// unique-visitor totals over ip_hash.
func (c *Client) CountDistinct(ctx context.Context, f Filter, field string) (int64, error) {
	if field != "ip_hash" && field != "link_id" {
		return 0, fmt.Errorf("distinct count on unsupported field %q", field)
	}
	where, args := f.whereClause()
	row := c.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT uniqExact(%s) FROM clicks WHERE %s`, field, where), args...)
	var total int64
	if err := row.Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// GroupedCount returns per-bucket counts for one dimension. Day buckets come
// back ordered chronologically; categorical dimensions are left for the
// ranker to order.
func (c *Client) GroupedCount(ctx context.Context, f Filter, dimension string) ([]model.DimensionBucket, error) {
	expr, ok := dimensionExprs[dimension]
	if !ok {
		return nil, fmt.Errorf("grouped count on unsupported dimension %q", dimension)
	}
	where, args := f.whereClause()
	query := fmt.Sprintf(`
SELECT %s AS bucket, count() AS clicks
FROM clicks
WHERE %s
GROUP BY bucket`, expr, where)
	if dimension == "day" {
		query += "\nORDER BY bucket ASC"
	}
	return c.queryBuckets(ctx, query, args)
}

// GroupedCountByLink returns per-link totals keyed by link_id, used for
// cross-link rankings in portfolio reports.
func (c *Client) GroupedCountByLink(ctx context.Context, f Filter) ([]model.DimensionBucket, error) {
	where, args := f.whereClause()
	query := fmt.Sprintf(`
SELECT link_id AS bucket, count() AS clicks
FROM clicks
WHERE %s
GROUP BY bucket`, where)
	return c.queryBuckets(ctx, query, args)
}

func (c *Client) queryBuckets(ctx context.Context, query string, args []any) ([]model.DimensionBucket, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.DimensionBucket
	for rows.Next() {
		var b model.DimensionBucket
		if err := rows.Scan(&b.Key, &b.Count); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Ping ensures the database is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("clickhouse ping: %w", err)
	}
	return nil
}
