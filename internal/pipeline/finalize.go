package pipeline

import (
	"context"
	"fmt"

	"github.com/realibuddy/citecheck/internal/match"
	"github.com/realibuddy/citecheck/internal/model"
)

// finalize turns a resolution result into the claim's final outcome, calling
// the consistency judge for located records and the fallback judge for
// everything else.
func (a *Auditor) finalize(ctx context.Context, claim model.CitationClaim, res model.ResolutionResult) model.AuditOutcome {
	if !res.Found {
		return a.finalizeNotFound(ctx, claim, res)
	}

	metadata := recordMetadata(res)

	if len(res.Record.Abstract) < a.config.MinAbstractLen {
		return model.AuditOutcome{
			CitationText: claim.RawText,
			Status:       model.StatusUnverified,
			Source:       res.SourceName,
			Confidence:   0.0,
			Metadata:     metadata,
			Message:      "Record located. Consistency check: UNVERIFIED - abstract missing or too short to judge",
		}
	}

	verdict := a.consistency.Judge(ctx, claim.ClaimText(), res.Record.Abstract)

	outcome := model.AuditOutcome{
		CitationText: claim.RawText,
		Status:       verdict.Status,
		Source:       res.SourceName,
		Confidence:   verdict.Confidence,
		Metadata:     metadata,
		Message:      fmt.Sprintf("Record located. Consistency check: %s - %s", verdict.Status, verdict.Reason),
	}

	return a.reconcileYear(claim, res, outcome)
}

// reconcileYear demotes an otherwise REAL verdict when the cited year
// differs from the record's, even by one: the one-year tolerance applies to
// resolution only, not to the final verdict. A record published after the
// cited year stays REAL: the author likely cited a preprint.
func (a *Auditor) reconcileYear(claim model.CitationClaim, res model.ResolutionResult, outcome model.AuditOutcome) model.AuditOutcome {
	if outcome.Status != model.StatusReal {
		return outcome
	}
	if !match.IsFourDigitYear(claim.Year) || !match.IsFourDigitYear(res.Record.Year) {
		return outcome
	}
	if claim.Year == res.Record.Year {
		return outcome
	}

	claimYear, _ := match.ParseYear(claim.Year)
	recordYear, _ := match.ParseYear(res.Record.Year)

	if recordYear > claimYear {
		outcome.Message += fmt.Sprintf(" Note: published in %s but cited as %s; possibly a preprint citation.",
			res.Record.Year, claim.Year)
		return outcome
	}

	outcome.Status = model.StatusMinorError
	outcome.Message += fmt.Sprintf(" Year mismatch: cited as %s but published in %s.",
		claim.Year, res.Record.Year)
	return outcome
}

// finalizeNotFound asks the fallback judge whether the work exists at all.
func (a *Auditor) finalizeNotFound(ctx context.Context, claim model.CitationClaim, res model.ResolutionResult) model.AuditOutcome {
	verdict := a.fallback.Judge(ctx, claim.Title, claim.Author, claim.SummaryIntent)

	status := model.StatusUnverified
	switch verdict.Verdict {
	case string(model.StatusReal):
		status = model.StatusReal
	case string(model.StatusFake):
		status = model.StatusFake
	case string(model.StatusMismatch):
		status = model.StatusMismatch
	case string(model.StatusUnverified):
		status = model.StatusUnverified
	}

	metadata := map[string]interface{}{
		"lookup_reason": res.Record.Reason,
	}
	if verdict.PaperInfo != "" {
		metadata["actual_paper_info"] = verdict.PaperInfo
	}

	return model.AuditOutcome{
		CitationText: claim.RawText,
		Status:       status,
		Source:       a.fallback.Name(),
		Confidence:   verdict.Confidence,
		Metadata:     metadata,
		Message:      fmt.Sprintf("Not indexed in any source. Web verification: %s - %s", verdict.Verdict, verdict.Reason),
	}
}

// recordMetadata exposes the winning record in the outcome.
func recordMetadata(res model.ResolutionResult) map[string]interface{} {
	m := map[string]interface{}{
		"title":          res.Record.Title,
		"year":           res.Record.Year,
		"cited_by_count": res.Record.CitationCount,
	}
	if res.Record.DOI != "" {
		m["doi"] = res.Record.DOI
	}
	if len(res.Record.Authors) > 0 {
		m["authors"] = res.Record.Authors
	}
	if res.Record.OpenAccessURL != "" {
		m["oa_url"] = res.Record.OpenAccessURL
	}
	return m
}
