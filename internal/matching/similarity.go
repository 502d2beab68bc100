package matching

import (
	"context"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/agnivade/levenshtein"
)

// SimilarityProvider computes a semantic similarity score in [0,1] between
// two strings. It is an optional capability: a nil provider means the
// engine runs on lexical signals only. Implementations may be slow (an
// embedding round-trip) and must honor the context.
type SimilarityProvider interface {
	Similarity(ctx context.Context, a, b string) (float64, error)
}

// jaroWinkler is safe for concurrent use; the metric holds no state beyond
// its parameters.
var jaroWinkler = metrics.NewJaroWinkler()

// LexicalSimilarity returns the stronger of Jaro-Winkler similarity and
// normalized Levenshtein similarity between two strings. Inputs are
// expected to be normalized already; comparison is exact on what it gets.
func LexicalSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	jw := strutil.Similarity(a, b, jaroWinkler)
	lev := levenshteinSimilarity(a, b)
	if lev > jw {
		return lev
	}
	return jw
}

// levenshteinSimilarity converts edit distance to a [0,1] similarity by
// dividing by the longer string's rune length.
func levenshteinSimilarity(a, b string) float64 {
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// TokenJaccard computes |intersection| / |union| over two token slices.
// Duplicate tokens collapse; two empty sets have zero similarity.
func TokenJaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]struct{}, len(a))
	for _, t := range a {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, t := range b {
		setB[t] = struct{}{}
	}
	intersection := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}
