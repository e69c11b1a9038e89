package model

// SourceRecord is a candidate bibliographic entry returned by one source
// adapter. Records are ephemeral - they exist only for the lifetime of one
// resolution.
type SourceRecord struct {
	Found         bool     `json:"found"`
	Title         string   `json:"title,omitempty"`
	DOI           string   `json:"doi,omitempty"`
	Year          string   `json:"year,omitempty"`
	Authors       []string `json:"authors,omitempty"`
	Abstract      string   `json:"abstract,omitempty"`
	CitationCount int      `json:"cited_by_count"`    // Authority signal, never negative
	OpenAccessURL string   `json:"oa_url,omitempty"`  // Open-access location, if any
	OriginSource  string   `json:"source,omitempty"`  // Name of the adapter that produced it
	Reason        string   `json:"reason,omitempty"`  // Why not found / rejected, for observability
}

// NotFoundRecord returns a record describing a failed lookup with a reason.
func NotFoundRecord(source, reason string) SourceRecord {
	return SourceRecord{Found: false, OriginSource: source, Reason: reason}
}

// ResolutionResult is the outcome of competitive resolution for one claim.
// When Found is true exactly one winning record is exposed, never a set.
type ResolutionResult struct {
	Record       SourceRecord `json:"record"`
	SourceName   string       `json:"source_name,omitempty"` // Adapter that won
	Found        bool         `json:"found"`
	YearMismatch bool         `json:"year_mismatch"` // Winner's year conflicts with the claim's
}
