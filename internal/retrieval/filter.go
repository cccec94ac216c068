package retrieval

import (
	"sort"
	"strings"
)

// Filter re-ranks similarity-ordered candidates by a persona's keyword
// table: each case-insensitive substring hit counts one personality point,
// and candidates re-sort by points descending. The sort is stable, so the
// incoming similarity order breaks ties. A persona missing from the table
// makes the filter a no-op.
//
// This is a coarse relevance boost, not a correctness-critical ranking.
func Filter(candidates []RankedCandidate, persona string, table map[string][]string) []RankedCandidate {
	keywords, ok := table[persona]
	if !ok {
		return candidates
	}

	filtered := make([]RankedCandidate, len(candidates))
	copy(filtered, candidates)
	for i := range filtered {
		lower := strings.ToLower(filtered[i].Text)
		score := 0
		for _, kw := range keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				score++
			}
		}
		filtered[i].PersonalityScore = score
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].PersonalityScore > filtered[j].PersonalityScore
	})
	return filtered
}
