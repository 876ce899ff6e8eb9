package errors

import (
	"fmt"
	"strings"
)

// blockKeywords are the keywords that may start a line outside a rule body.
var blockKeywords = []string{"MODULE", "RULESET", "RULE", "END"}

// SuggestKeyword suggests a block keyword when a line starts with an unknown word.
// It returns an empty string when nothing is close enough to be useful.
func SuggestKeyword(unknown string) string {
	if keyword, ok := ClosestKeyword(unknown); ok {
		return fmt.Sprintf("Did you mean '%s'?", keyword)
	}
	return ""
}

// ClosestKeyword returns the block keyword within two edits of unknown.
func ClosestKeyword(unknown string) (string, bool) {
	upper := strings.ToUpper(unknown)
	best, dist := closest(upper, blockKeywords)
	if best != "" && dist <= 2 && dist < len(upper) {
		return best, true
	}
	return "", false
}

// SuggestName suggests the closest known name (fact, ruleset or rule) for an unknown one.
// It uses Levenshtein distance to find similar names.
func SuggestName(unknown string, known []string) string {
	if len(known) == 0 {
		return ""
	}

	best, dist := closest(unknown, known)

	// Only suggest if the distance is reasonable (< 5 edits)
	if dist < 5 {
		return fmt.Sprintf("Did you mean '%s'?", best)
	}

	if len(known) > 5 {
		return fmt.Sprintf("Known names include: %s, ...", strings.Join(known[:5], ", "))
	}
	return fmt.Sprintf("Known names: %s", strings.Join(known, ", "))
}

// SuggestEnd suggests closing an open block.
func SuggestEnd(kind, name string) string {
	return fmt.Sprintf("Add 'END' to close %s [%s]", kind, name)
}

// closest returns the candidate with the smallest edit distance to s.
func closest(s string, candidates []string) (string, int) {
	minDistance := 1000
	var bestMatch string

	for _, candidate := range candidates {
		dist := levenshteinDistance(s, candidate)
		if dist < minDistance {
			minDistance = dist
			bestMatch = candidate
		}
	}

	return bestMatch, minDistance
}

// levenshteinDistance computes the Levenshtein distance between two strings.
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	len1 := len(s1)
	len2 := len(s2)

	matrix := make([][]int, len1+1)
	for i := range matrix {
		matrix[i] = make([]int, len2+1)
	}

	for i := 0; i <= len1; i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len2; j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len1; i++ {
		for j := 1; j <= len2; j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}

			matrix[i][j] = min(
				matrix[i-1][j]+1,      // Deletion
				matrix[i][j-1]+1,      // Insertion
				matrix[i-1][j-1]+cost, // Substitution
			)
		}
	}

	return matrix[len1][len2]
}
