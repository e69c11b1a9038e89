package match

import "strings"

// authorTokens splits an author string into comparable lower-case tokens,
// discarding commas, periods and the "et"/"al" filler.
func authorTokens(author string) map[string]bool {
	cleaned := strings.NewReplacer(",", "", ".", "").Replace(strings.ToLower(author))

	tokens := make(map[string]bool)
	for _, tok := range strings.Fields(cleaned) {
		if tok == "et" || tok == "al" {
			continue
		}
		tokens[tok] = true
	}
	return tokens
}

// AuthorMatch reports whether the queried author plausibly appears among the
// candidate's authors. Matching is permissive: any shared name token counts,
// and an empty query always matches so that missing author information never
// blocks resolution.
func AuthorMatch(query string, candidates []string) bool {
	queryTokens := authorTokens(query)
	if len(queryTokens) == 0 {
		return true
	}

	for _, candidate := range candidates {
		for tok := range authorTokens(candidate) {
			if queryTokens[tok] {
				return true
			}
		}
	}
	return false
}
