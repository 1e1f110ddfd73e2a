// Package suggest ranks command names by similarity to a mistyped token.
package suggest

import (
	"cmp"
	"slices"
	"strings"
)

// threshold is the minimum similarity score required for a string to be considered similar.
const threshold = 0.5

type suggestion struct {
	name  string
	score float64
}

// FindSimilar returns up to maxResults candidates similar to target, most similar first. Ties are
// ordered by name and duplicate candidates are reported once.
func FindSimilar(target string, candidates []string, maxResults int) []string {
	if target == "" || maxResults <= 0 {
		return []string{}
	}

	seen := make(map[string]bool, len(candidates))
	suggestions := make([]suggestion, 0, len(candidates))
	for _, name := range candidates {
		if seen[name] {
			continue
		}
		seen[name] = true
		if score := calculateSimilarity(target, name); score > threshold {
			suggestions = append(suggestions, suggestion{name: name, score: score})
		}
	}

	slices.SortFunc(suggestions, func(a, b suggestion) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return strings.Compare(a.name, b.name)
	})

	result := make([]string, 0, min(maxResults, len(suggestions)))
	for _, s := range suggestions[:min(maxResults, len(suggestions))] {
		result = append(result, s.name)
	}
	return result
}

func calculateSimilarity(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)

	if a == b {
		return 1.0
	}
	// Prefix match bonus
	if strings.HasPrefix(b, a) {
		return 0.9
	}
	ra, rb := []rune(a), []rune(b)
	distance := levenshteinDistance(ra, rb)
	maxLen := float64(max(len(ra), len(rb)))

	return 1.0 - float64(distance)/maxLen
}

// levenshteinDistance computes the edit distance between a and b keeping only two rows of the
// matrix.
func levenshteinDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
