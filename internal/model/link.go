package model

import "time"

// Link is the shortened-link metadata the engine reads to resolve scope and
// label aggregated link IDs. Owned by the link-management service; read-only
// here.
type Link struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	PublicStats bool      `json:"public_stats"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Label returns the human-readable name used in exports and rankings.
func (l Link) Label() string {
	if l.Title != "" {
		return l.Title
	}
	return l.Slug
}
