package store

import (
	"context"
	"database/sql"
	"errors"

	"link-analytics/internal/model"
)

// ErrLinkNotFound reports a link id with no row in the links table.
var ErrLinkNotFound = errors.New("link not found")

// LinkByID resolves one link's metadata.
func (c *Client) LinkByID(ctx context.Context, id string) (model.Link, error) {
	row := c.db.QueryRowContext(ctx, `
SELECT id, owner_id, slug, title, public_stats, active, created_at
FROM links FINAL
WHERE id = ?`, id)
	link, err := scanLink(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Link{}, ErrLinkNotFound
	}
	return link, err
}

// LinksByOwner returns every link in an owner's portfolio, newest first.
func (c *Client) LinksByOwner(ctx context.Context, ownerID string) ([]model.Link, error) {
	rows, err := c.db.QueryContext(ctx, `
SELECT id, owner_id, slug, title, public_stats, active, created_at
FROM links FINAL
WHERE owner_id = ?
ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Link
	for rows.Next() {
		link, err := scanLink(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, link)
	}
	return out, rows.Err()
}

func scanLink(scan func(dest ...any) error) (model.Link, error) {
	var (
		link        model.Link
		publicStats uint8
		active      uint8
	)
	if err := scan(&link.ID, &link.OwnerID, &link.Slug, &link.Title, &publicStats, &active, &link.CreatedAt); err != nil {
		return model.Link{}, err
	}
	link.PublicStats = publicStats != 0
	link.Active = active != 0
	return link, nil
}
