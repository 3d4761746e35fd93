package catalog

import (
	"github.com/agnivade/levenshtein"
)

// DefaultThreshold matches the acceptance cutoff the bot has always used for
// typed category names.
const DefaultThreshold = 0.6

// Resolver maps free-text input to a known category name, tolerating small
// typos. Matching is case-sensitive; candidates are expected in a stable
// order so ties resolve to the first best candidate.
type Resolver struct {
	threshold float64
}

// NewResolver creates a Resolver with the given acceptance threshold. A
// non-positive threshold falls back to DefaultThreshold.
func NewResolver(threshold float64) *Resolver {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	return &Resolver{threshold: threshold}
}

// Resolve returns the candidate most similar to input, if its similarity
// ratio reaches the threshold. The ratio is 1 - editDistance/maxLen over the
// whole strings.
func (r *Resolver) Resolve(input string, candidates []string) (string, bool) {
	if input == "" {
		return "", false
	}

	var (
		best      string
		bestRatio float64
		found     bool
	)

	for _, candidate := range candidates {
		ratio := similarity(input, candidate)
		if ratio < r.threshold {
			continue
		}

		// Strict comparison keeps the first candidate on equal ratios.
		if !found || ratio > bestRatio {
			best = candidate
			bestRatio = ratio
			found = true
		}
	}

	return best, found
}

func similarity(a, b string) float64 {
	if a == b {
		return 1
	}

	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1
	}

	distance := levenshtein.ComputeDistance(a, b)

	return 1 - float64(distance)/float64(longest)
}
