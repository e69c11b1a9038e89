// Package rank scores raw source candidates against a citation claim and
// decides whether the best one is trustworthy enough to accept.
package rank

import (
	"fmt"

	"github.com/realibuddy/citecheck/internal/match"
	"github.com/realibuddy/citecheck/internal/model"
)

// Scoring constants. The composite score starts from raw title similarity
// and is adjusted by corroborating metadata.
const (
	authorMismatchPenalty = 0.6  // Multiplier when an author was supplied and does not match
	yearBonus             = 0.15 // Added when the candidate's year matches the claim's
	authorityBonus        = 0.05 // Added when the candidate clears the citation threshold
	authorityThreshold    = 100  // Citation count regarded as high authority

	acceptThreshold  = 0.6 // Minimum raw title similarity for acceptance
	relaxedThreshold = 0.4 // Applies when author and year both corroborate
)

// Query carries the claim-side fields the ranker compares against.
type Query struct {
	Title  string // Cleaned title
	Author string // Optional
	Year   string // Optional, free-form
}

// Scored is one candidate with its scoring breakdown, kept transparent so
// rejections can be explained.
type Scored struct {
	Record      model.SourceRecord
	Composite   float64
	RawSim      float64
	AuthorMatch bool
	Year        match.YearResult
	Reason      string // Set when the candidate was rejected
}

func score(q Query, rec model.SourceRecord) Scored {
	sim := match.Similarity(q.Title, rec.Title)
	authorOK := match.AuthorMatch(q.Author, rec.Authors)
	yearRes := match.CompareYears(q.Year, rec.Year)

	composite := sim
	if q.Author != "" && !authorOK {
		composite *= authorMismatchPenalty
	}
	if yearRes == match.YearMatch {
		composite += yearBonus
	}
	if rec.CitationCount > authorityThreshold {
		composite += authorityBonus
	}

	return Scored{
		Record:      rec,
		Composite:   composite,
		RawSim:      sim,
		AuthorMatch: authorOK,
		Year:        yearRes,
	}
}

// Select scores every candidate and returns the winner, or ok=false with a
// reason when no candidate clears the acceptance threshold. Selection is
// deterministic: candidates are scored in input order, higher composite
// wins, composite ties go to the higher citation count.
func Select(q Query, candidates []model.SourceRecord) (Scored, bool) {
	if len(candidates) == 0 {
		return Scored{Reason: "no candidates returned"}, false
	}

	best := score(q, candidates[0])
	for _, rec := range candidates[1:] {
		s := score(q, rec)
		if s.Composite > best.Composite ||
			(s.Composite == best.Composite && s.Record.CitationCount > best.Record.CitationCount) {
			best = s
		}
	}

	// Strong corroborating metadata relaxes the title threshold, which
	// keeps legitimately abbreviated or retitled entries.
	threshold := acceptThreshold
	if q.Author != "" && best.AuthorMatch && best.Year == match.YearMatch {
		threshold = relaxedThreshold
	}

	if best.RawSim < threshold {
		best.Reason = fmt.Sprintf("low confidence match (%.2f)", best.RawSim)
		return best, false
	}

	return best, true
}
