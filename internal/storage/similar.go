package storage

import (
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

// SimilarPair is two establishments whose names are close but not equal
// after normalization.
type SimilarPair struct {
	Left, Right Member
	Similarity  float64
}

// SimilarNames compares every pair of names with Jaro-Winkler and returns
// the pairs scoring at least threshold, best first. Exact duplicates are
// left to Duplicates.
func SimilarNames(members []Member, threshold float64) []SimilarPair {
	norm := make([]string, len(members))
	for i, m := range members {
		norm[i] = strings.ToLower(strings.TrimSpace(m.Name))
	}

	var pairs []SimilarPair
	for i := range members {
		for j := i + 1; j < len(members); j++ {
			if norm[i] == norm[j] || norm[i] == "" || norm[j] == "" {
				continue
			}
			similarity := matchr.JaroWinkler(norm[i], norm[j], false)
			if similarity >= threshold {
				pairs = append(pairs, SimilarPair{Left: members[i], Right: members[j], Similarity: similarity})
			}
		}
	}

	sort.SliceStable(pairs, func(a, b int) bool {
		return pairs[a].Similarity > pairs[b].Similarity
	})
	return pairs
}
