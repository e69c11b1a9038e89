package model

// CitationClaim represents one citation mentioned in the source text,
// together with what the text asserts the cited work says.
// Claims are produced by the extractor and consumed read-only downstream.
type CitationClaim struct {
	ID             int      `json:"id"`                        // 1-based position in extraction order
	RawText        string   `json:"raw_text"`                  // The substring that mentioned the work
	Title          string   `json:"title,omitempty"`           // Likely title, as written
	Author         string   `json:"author,omitempty"`          // Likely author(s), as written
	Year           string   `json:"year,omitempty"`            // Free-form; may contain non-digits
	DOI            string   `json:"doi,omitempty"`             // Present only when cited explicitly
	SummaryIntent  string   `json:"summary_intent"`            // Verbatim claim of what the work is about
	SpecificClaims []string `json:"specific_claims,omitempty"` // Verbatim asserted facts
}

// ClaimText concatenates the summary intent and the specific claims into
// the text handed to the consistency judge.
func (c CitationClaim) ClaimText() string {
	text := c.SummaryIntent
	for _, sc := range c.SpecificClaims {
		if text != "" {
			text += " "
		}
		text += sc
	}
	return text
}
