package search

import (
	"sort"

	"github.com/kailas-cloud/flavorsearch/internal/domain/search/result"
)

// Rank orders scored documents by score descending, breaking ties by
// ascending id, and keeps the first topK. topK is clamped to [0, len(scored)].
// The input slice is not modified.
func Rank(scored []result.Scored, topK int) []result.Scored {
	if topK < 0 {
		topK = 0
	}
	if topK > len(scored) {
		topK = len(scored)
	}

	ranked := make([]result.Scored, len(scored))
	copy(ranked, scored)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ID < ranked[j].ID
	})

	return ranked[:topK:topK]
}
