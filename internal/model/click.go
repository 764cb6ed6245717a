package model

import "time"

// RawClick is the message produced to the clicks.raw topic by the redirect
// edge for every followed short link.
type RawClick struct {
	LinkID      string `json:"link_id"`
	TS          int64  `json:"ts"` // milliseconds epoch
	IP          string `json:"ip"`
	UA          string `json:"ua"`
	Referrer    string `json:"referrer"`
	Language    string `json:"language"`
	CountryCode string `json:"country_code"`
	City        string `json:"city"`
	Region      string `json:"region"`
}

// ClickEvent is the denormalized click row stored in ClickHouse. Rows are
// append-only: the analytics engine reads them, never mutates them.
type ClickEvent struct {
	LinkID      string    `json:"link_id"`
	ClickTime   time.Time `json:"click_time"`
	ClickDate   time.Time `json:"click_date"`
	CountryCode string    `json:"country_code"`
	City        string    `json:"city"`
	Region      string    `json:"region"`
	Language    string    `json:"language"`
	Device      string    `json:"device"`
	OS          string    `json:"os"`
	Browser     string    `json:"browser"`
	Referrer    string    `json:"referrer"`
	IPHash      string    `json:"ip_hash"`
	IngestedAt  time.Time `json:"_ingested_at"`
}
