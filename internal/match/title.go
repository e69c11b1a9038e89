// Package match provides the pure string-matching primitives used to pick
// the right bibliographic record out of noisy search results: title
// normalization and similarity, author token matching and year comparison
// with drift tolerance.
package match

import (
	"strings"
	"unicode"
)

// quoteTrimSet covers ASCII and typographic quotation variants.
const quoteTrimSet = "\"'“”‘’"

// CleanTitle strips surrounding quotation marks and whitespace from a title
// as written in the source text.
func CleanTitle(title string) string {
	title = strings.TrimSpace(title)
	title = strings.Trim(title, quoteTrimSet)
	return strings.TrimSpace(title)
}

// normalize lower-cases and drops everything that is not a letter, digit or
// whitespace, so punctuation differences never affect similarity.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Similarity returns a symmetric similarity ratio in [0, 1] between two
// titles after normalization: 2*LCS(a,b) / (len(a)+len(b)) over runes.
// Identical inputs score 1.0.
func Similarity(a, b string) float64 {
	ra := []rune(normalize(a))
	rb := []rune(normalize(b))

	if len(ra) == 0 && len(rb) == 0 {
		return 1.0
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}

	lcs := longestCommonSubsequence(ra, rb)
	return 2.0 * float64(lcs) / float64(len(ra)+len(rb))
}

// longestCommonSubsequence computes LCS length with a two-row DP table.
func longestCommonSubsequence(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
