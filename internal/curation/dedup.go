package curation

import (
	"strings"
)

// Suppressor removes near-duplicate texts from an ordered sequence. The
// contract is order-preserving and greedy: the first occurrence wins.
// Implementations with sub-quadratic approximate matching (signature
// banding) can substitute without changing callers.
type Suppressor interface {
	Suppress(texts []string) []string
}

// TrigramSuppressor compares texts by trigram multiset Jaccard similarity
type TrigramSuppressor struct {
	threshold float64
}

// NewTrigramSuppressor creates a suppressor dropping any text whose
// similarity to an already-retained text exceeds the threshold
func NewTrigramSuppressor(threshold float64) *TrigramSuppressor {
	return &TrigramSuppressor{threshold: threshold}
}

// Suppress returns the subsequence of texts that are pairwise at or below
// the threshold against all previously retained texts
func (ts *TrigramSuppressor) Suppress(texts []string) []string {
	var unique []string
	profiles := make([]map[string]int, 0, len(texts))

	for _, text := range texts {
		profile := trigrams(text)
		dup := false
		for _, existing := range profiles {
			if jaccard(profile, existing) > ts.threshold {
				dup = true
				break
			}
		}
		if !dup {
			unique = append(unique, text)
			profiles = append(profiles, profile)
		}
	}
	return unique
}

// TrigramJaccard computes the multiset Jaccard similarity of two strings
// over their case-folded 3-character windows. Strings too short to yield a
// trigram have similarity 0.
func TrigramJaccard(a, b string) float64 {
	return jaccard(trigrams(a), trigrams(b))
}

// trigrams counts the overlapping case-folded 3-rune windows of a string
func trigrams(s string) map[string]int {
	runes := []rune(strings.ToLower(s))
	counts := make(map[string]int)
	for i := 0; i+3 <= len(runes); i++ {
		counts[string(runes[i:i+3])]++
	}
	return counts
}

// jaccard is multiset intersection size over multiset union size
func jaccard(a, b map[string]int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	union := 0
	for gram, countA := range a {
		countB := b[gram]
		if countA < countB {
			intersection += countA
		} else {
			intersection += countB
		}
		if countA > countB {
			union += countA
		} else {
			union += countB
		}
	}
	for gram, countB := range b {
		if _, ok := a[gram]; !ok {
			union += countB
		}
	}
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
