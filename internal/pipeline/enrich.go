// Package pipeline turns raw redirect clicks into the denormalized rows the
// analytics engine queries. It runs upstream of the engine, in the loader.
package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"link-analytics/internal/model"
	"link-analytics/internal/util"
)

// ErrMissingLinkID reports a raw click without a link reference.
var ErrMissingLinkID = errors.New("raw click missing link_id")

// Enrich transforms a raw click into the ClickHouse-ready schema: UTC day
// truncation, UA classification, and salted IP hashing. Raw IPs never leave
// this function.
func Enrich(raw model.RawClick, ipSalt string) (model.ClickEvent, error) {
	if raw.LinkID == "" {
		return model.ClickEvent{}, ErrMissingLinkID
	}
	clickTime := time.UnixMilli(raw.TS).UTC()
	if raw.TS == 0 {
		clickTime = time.Now().UTC()
	}
	clickDate := time.Date(clickTime.Year(), clickTime.Month(), clickTime.Day(), 0, 0, 0, 0, time.UTC)
	ua := util.ClassifyUA(raw.UA)

	return model.ClickEvent{
		LinkID:      raw.LinkID,
		ClickTime:   clickTime,
		ClickDate:   clickDate,
		CountryCode: raw.CountryCode,
		City:        raw.City,
		Region:      raw.Region,
		Language:    raw.Language,
		Device:      ua.Device,
		OS:          ua.OS,
		Browser:     ua.Browser,
		Referrer:    raw.Referrer,
		IPHash:      hashIP(ipSalt, raw.IP),
		IngestedAt:  time.Now().UTC(),
	}, nil
}

func hashIP(salt, ip string) string {
	hasher := sha256.New()
	hasher.Write([]byte(salt))
	hasher.Write([]byte(ip))
	return hex.EncodeToString(hasher.Sum(nil))
}
