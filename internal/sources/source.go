// Package sources contains the bibliographic database adapters. Each adapter
// answers title/author queries with raw candidate records and resolves exact
// DOIs; it never errors on "not found", only on transport failure.
package sources

import (
	"context"
	"strings"

	"github.com/realibuddy/citecheck/internal/model"
)

// Query carries the claim-side fields an adapter can search on.
type Query struct {
	Title  string
	Author string
	Year   string
	DOI    string
}

// Source is one bibliographic database adapter.
type Source interface {
	// Name identifies the adapter in outcomes and logs.
	Name() string

	// Lookup returns candidate records for the query, possibly empty.
	Lookup(ctx context.Context, q Query) ([]model.SourceRecord, error)

	// LookupDOI resolves an exact DOI. A miss is a record with Found=false,
	// not an error.
	LookupDOI(ctx context.Context, doi string) (model.SourceRecord, error)
}

// NormalizeDOI lower-cases a DOI and strips resolver URL prefixes so that
// records from different sources compare equal.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(strings.ToLower(doi))
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "doi:"} {
		doi = strings.TrimPrefix(doi, prefix)
	}
	return doi
}

// maxBodyBytes caps how much of a source response is read.
const maxBodyBytes = 4 << 20
