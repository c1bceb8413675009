package risk

import (
	"sort"
)

// Rank orders results by score descending, breaking ties with the
// authentication probability so likely session cookies surface first. The
// sort is stable so equal entries keep their input order.
func Rank(results []Result) []Result {
	ranked := make([]Result, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Assessment.Score != ranked[j].Assessment.Score {
			return ranked[i].Assessment.Score > ranked[j].Assessment.Score
		}
		return ranked[i].Classification.AuthProbability() > ranked[j].Classification.AuthProbability()
	})
	return ranked
}
