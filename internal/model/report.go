package model

import "time"

// DimensionBucket is one grouped row of a single-dimension rollup.
type DimensionBucket struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// EntityStat ranks one link inside a multi-link (portfolio) report.
type EntityStat struct {
	EntityID string `json:"entityId,omitempty"`
	Label    string `json:"label"`
	Clicks   int64  `json:"clicks"`
}

// StatisticsReport is the composed set of rollups for one request. It is
// built fresh per request and never cached by the engine. For a fixed event
// set, every dimension's bucket counts sum to TotalClicks.
type StatisticsReport struct {
	TotalClicks         int64             `json:"totalClicks"`
	TotalUniqueVisitors int64             `json:"totalUniqueVisitors"`
	ClicksByDay         []DimensionBucket `json:"clicksByDay"`
	ClicksByCountry     []DimensionBucket `json:"clicksByCountry"`
	ClicksByDevice      []DimensionBucket `json:"clicksByDevice"`
	ClicksByBrowser     []DimensionBucket `json:"clicksByBrowser"`
	ClicksByOS          []DimensionBucket `json:"clicksByOS"`
	ClicksByReferrer    []DimensionBucket `json:"clicksByReferrer,omitempty"`
	TopEntities         []EntityStat      `json:"topEntities,omitempty"`
}

// RealtimeCounter is a rolling count over a trailing window, recomputed on
// every call from a bounded query. Synthetic marks the documented demo
// fallback; synthetic data is never blended with genuine rows.
type RealtimeCounter struct {
	WindowSeconds int   `json:"windowSeconds"`
	Count         int64 `json:"count"`
	Synthetic     bool  `json:"synthetic"`
}

// ExportArtifact is a rendered export kept by the caller under a TTL. The
// engine only produces the payload; storage and expiry live in the artifact
// store.
type ExportArtifact struct {
	ExportID    string    `json:"export_id"`
	OwnerID     string    `json:"owner_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Payload     []byte    `json:"payload"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}
