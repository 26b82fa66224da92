// Package similarity provides accent-insensitive fuzzy string comparison used
// to match free-text job areas.
package similarity

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lower-cases s, decomposes it (NFD) and drops combining marks, so
// "São Paulo" becomes "sao paulo". Outer whitespace is trimmed.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		// transform only fails on invalid state; fall back to lower-casing.
		out = strings.ToLower(s)
	}
	return strings.TrimSpace(out)
}

// Distance returns the Levenshtein edit distance between a and b, counted in
// runes with unit costs for insertion, deletion and substitution.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Two rolling rows over the shorter string.
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Similarity returns a score in [0,1] for how alike a and b are after
// normalization. Two empty strings are identical.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	longer := max(utf8.RuneCountInString(na), utf8.RuneCountInString(nb))
	if longer == 0 {
		return 1.0
	}
	return float64(longer-Distance(na, nb)) / float64(longer)
}
