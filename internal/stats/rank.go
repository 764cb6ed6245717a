package stats

import (
	"sort"

	"link-analytics/internal/model"
)

// Rank orders buckets descending by count, breaking ties ascending by key so
// equal counts always render in the same order. A positive topN truncates
// the result after sorting. The input slice is never mutated.
func Rank(buckets []model.DimensionBucket, topN int) []model.DimensionBucket {
	out := make([]model.DimensionBucket, len(buckets))
	copy(out, buckets)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	if topN > 0 && topN < len(out) {
		out = out[:topN]
	}
	return out
}
