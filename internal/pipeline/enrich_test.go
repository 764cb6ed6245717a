package pipeline_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"link-analytics/internal/model"
	"link-analytics/internal/pipeline"
)

func TestEnrichClassifiesAndHashes(t *testing.T) {
	raw := model.RawClick{
		LinkID:      "l1",
		TS:          time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC).UnixMilli(),
		IP:          "1.2.3.4",
		UA:          "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/90.0",
		Referrer:    "https://google.com",
		Language:    "en",
		CountryCode: "US",
		City:        "Austin",
		Region:      "TX",
	}

	evt, err := pipeline.Enrich(raw, "salt")
	require.NoError(t, err)
	require.Equal(t, "l1", evt.LinkID)
	require.Equal(t, "chrome", evt.Browser)
	require.Equal(t, "desktop", evt.Device)
	require.Equal(t, "windows", evt.OS)
	require.Equal(t, "US", evt.CountryCode)
	require.Equal(t, raw.Referrer, evt.Referrer)
	require.Len(t, evt.IPHash, 64)
	require.NotContains(t, evt.IPHash, raw.IP)
}

func TestEnrichTruncatesToUTCDay(t *testing.T) {
	raw := model.RawClick{
		LinkID: "l1",
		TS:     time.Date(2024, 6, 15, 23, 59, 59, 0, time.UTC).UnixMilli(),
	}
	evt, err := pipeline.Enrich(raw, "salt")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), evt.ClickDate)
	require.Equal(t, time.Date(2024, 6, 15, 23, 59, 59, 0, time.UTC), evt.ClickTime)
}

func TestEnrichSameDayDifferentTimesShareBucket(t *testing.T) {
	morning, err := pipeline.Enrich(model.RawClick{
		LinkID: "l1",
		TS:     time.Date(2024, 6, 15, 0, 0, 1, 0, time.UTC).UnixMilli(),
	}, "salt")
	require.NoError(t, err)
	night, err := pipeline.Enrich(model.RawClick{
		LinkID: "l1",
		TS:     time.Date(2024, 6, 15, 23, 59, 59, 0, time.UTC).UnixMilli(),
	}, "salt")
	require.NoError(t, err)
	require.Equal(t, morning.ClickDate, night.ClickDate)
}

func TestEnrichRejectsMissingLinkID(t *testing.T) {
	_, err := pipeline.Enrich(model.RawClick{}, "salt")
	require.ErrorIs(t, err, pipeline.ErrMissingLinkID)
}

func TestEnrichSameIPSameHash(t *testing.T) {
	first, err := pipeline.Enrich(model.RawClick{LinkID: "l1", IP: "1.2.3.4", TS: 1}, "salt")
	require.NoError(t, err)
	second, err := pipeline.Enrich(model.RawClick{LinkID: "l2", IP: "1.2.3.4", TS: 2}, "salt")
	require.NoError(t, err)
	require.Equal(t, first.IPHash, second.IPHash)

	other, err := pipeline.Enrich(model.RawClick{LinkID: "l1", IP: "1.2.3.4", TS: 1}, "other-salt")
	require.NoError(t, err)
	require.NotEqual(t, first.IPHash, other.IPHash)
}
