// Package resolve drives competitive resolution of one citation claim
// across an ordered list of bibliographic sources, querying the secondary
// source only when the primary answer is absent or contradicts the cited
// year.
package resolve

import (
	"context"

	"github.com/realibuddy/citecheck/internal/cache"
	"github.com/realibuddy/citecheck/internal/match"
	"github.com/realibuddy/citecheck/internal/model"
	"github.com/realibuddy/citecheck/internal/rank"
	"github.com/realibuddy/citecheck/internal/sources"
)

// Resolver resolves claims against sources in priority order.
type Resolver struct {
	sources []sources.Source
	cache   *cache.Memory // nil disables memoization
}

// New creates a resolver over the given sources, primary first.
func New(srcs []sources.Source, c *cache.Memory) *Resolver {
	return &Resolver{sources: srcs, cache: c}
}

// answer is one source's verdict for a claim.
type answer struct {
	record model.SourceRecord
	source string
	found  bool
	year   match.YearResult // Winner's year vs. the claim's
}

// Resolve runs the claim through the source list and returns the single
// winning record, or a not-found result when every source comes up empty.
//
// Decision policy: accept the primary immediately when it is found and its
// year does not contradict the claim (unknown years are not a contradiction).
// Otherwise consult the next source; a challenger wins only when it is found
// and, if the incumbent was found too, when the challenger's year matches
// where the incumbent's did not.
func (r *Resolver) Resolve(ctx context.Context, claim model.CitationClaim) model.ResolutionResult {
	// A DOI hit is authoritative and bypasses scoring entirely.
	if claim.DOI != "" {
		for _, src := range r.sources {
			rec, err := r.lookupDOI(ctx, src, claim.DOI)
			if err != nil || !rec.Found {
				continue
			}
			return model.ResolutionResult{
				Record:       rec,
				SourceName:   src.Name(),
				Found:        true,
				YearMismatch: match.CompareYears(claim.Year, rec.Year) == match.YearMismatch,
			}
		}
		// A claimed DOI that resolves nowhere still gets the scored path:
		// the DOI itself may be the fabricated part.
	}

	var best answer
	var lastReason string

	for _, src := range r.sources {
		if best.found && best.year != match.YearMismatch {
			break
		}

		challenger := r.query(ctx, src, claim)
		if !challenger.found {
			if challenger.record.Reason != "" {
				lastReason = challenger.record.Reason
			}
			continue
		}

		switch {
		case !best.found:
			best = challenger
		case challenger.year == match.YearMatch:
			// The incumbent's year mismatched; a corroborated year is a
			// strong reason to switch.
			best = challenger
		}
		// Otherwise the challenger offers no improvement; keep the incumbent.
	}

	if !best.found {
		if lastReason == "" {
			lastReason = "no matches in any source"
		}
		return model.ResolutionResult{
			Record: model.SourceRecord{Found: false, Reason: lastReason},
		}
	}

	return model.ResolutionResult{
		Record:       best.record,
		SourceName:   best.source,
		Found:        true,
		YearMismatch: best.year == match.YearMismatch,
	}
}

// query runs one source's search plus ranking. Transport failures are
// absorbed into a not-found answer so one flaky source never aborts
// resolution.
func (r *Resolver) query(ctx context.Context, src sources.Source, claim model.CitationClaim) answer {
	title := match.CleanTitle(claim.Title)
	if len(title) < 3 {
		return answer{record: model.NotFoundRecord(src.Name(), "title too short"), source: src.Name()}
	}

	candidates, err := r.lookup(ctx, src, sources.Query{
		Title:  title,
		Author: claim.Author,
		Year:   claim.Year,
	})
	if err != nil {
		return answer{record: model.NotFoundRecord(src.Name(), "source unavailable: "+err.Error()), source: src.Name()}
	}

	selected, ok := rank.Select(rank.Query{Title: title, Author: claim.Author, Year: claim.Year}, candidates)
	if !ok {
		return answer{record: model.NotFoundRecord(src.Name(), selected.Reason), source: src.Name()}
	}

	return answer{
		record: selected.Record,
		source: src.Name(),
		found:  true,
		year:   selected.Year,
	}
}

func (r *Resolver) lookup(ctx context.Context, src sources.Source, q sources.Query) ([]model.SourceRecord, error) {
	if r.cache == nil {
		return src.Lookup(ctx, q)
	}

	key := cache.LookupKey(src.Name(), q.Title, q.Author, q.Year)
	if records, found := r.cache.GetRecords(key); found {
		return records, nil
	}

	records, err := src.Lookup(ctx, q)
	if err != nil {
		return nil, err
	}
	r.cache.SetRecords(key, records)
	return records, nil
}

func (r *Resolver) lookupDOI(ctx context.Context, src sources.Source, doi string) (model.SourceRecord, error) {
	if r.cache == nil {
		return src.LookupDOI(ctx, doi)
	}

	key := cache.DOIKey(src.Name(), sources.NormalizeDOI(doi))
	if rec, found := r.cache.GetRecord(key); found {
		return rec, nil
	}

	rec, err := src.LookupDOI(ctx, doi)
	if err != nil {
		return model.SourceRecord{}, err
	}
	r.cache.SetRecord(key, rec)
	return rec, nil
}
