package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/realibuddy/citecheck/internal/judge"
	"github.com/realibuddy/citecheck/internal/model"
	"github.com/realibuddy/citecheck/internal/resolve"
	"github.com/realibuddy/citecheck/internal/sources"
)

type fakeExtractor struct {
	claims []model.CitationClaim
	err    error
}

func (f *fakeExtractor) Extract(ctx context.Context, text string) ([]model.CitationClaim, error) {
	return f.claims, f.err
}

// fakeSource answers lookups from a fixed title->record table.
type fakeSource struct {
	name    string
	records map[string]model.SourceRecord
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Lookup(ctx context.Context, q sources.Query) ([]model.SourceRecord, error) {
	if rec, ok := f.records[q.Title]; ok {
		return []model.SourceRecord{rec}, nil
	}
	return nil, nil
}

func (f *fakeSource) LookupDOI(ctx context.Context, doi string) (model.SourceRecord, error) {
	return model.NotFoundRecord(f.name, "doi not found"), nil
}

type fakeConsistency struct {
	verdict model.ConsistencyVerdict
	calls   atomic.Int64
	panicOn string
}

func (f *fakeConsistency) Name() string { return "consistency" }

func (f *fakeConsistency) Judge(ctx context.Context, claimText, abstract string) model.ConsistencyVerdict {
	f.calls.Add(1)
	if f.panicOn != "" && strings.Contains(claimText, f.panicOn) {
		panic("judge blew up")
	}
	return f.verdict
}

type fakeFallback struct {
	verdict model.FallbackVerdict
	calls   atomic.Int64
}

func (f *fakeFallback) Name() string { return "web-search" }

func (f *fakeFallback) Judge(ctx context.Context, title, author, claimSummary string) model.FallbackVerdict {
	f.calls.Add(1)
	return f.verdict
}

var _ judge.ConsistencyJudge = (*fakeConsistency)(nil)
var _ judge.FallbackJudge = (*fakeFallback)(nil)

func newAuditor(ex *fakeExtractor, src *fakeSource, cj *fakeConsistency, fj *fakeFallback) *Auditor {
	r := resolve.New([]sources.Source{src}, nil)
	return New(ex, r, cj, fj, nil, model.DefaultConfig().Pipeline)
}

func realClaim(id int, title, year string) model.CitationClaim {
	return model.CitationClaim{
		ID:            id,
		RawText:       fmt.Sprintf("ref %d: %s", id, title),
		Title:         title,
		Year:          year,
		SummaryIntent: "about " + title,
	}
}

func longAbstract() string {
	return strings.Repeat("A thorough study of the matter at hand. ", 5)
}

func TestAudit_RealCitation(t *testing.T) {
	title := "Attention Is All You Need"
	src := &fakeSource{name: "openalex", records: map[string]model.SourceRecord{
		title: {Found: true, Title: title, Year: "2017", Abstract: longAbstract(), OriginSource: "openalex"},
	}}
	ex := &fakeExtractor{claims: []model.CitationClaim{realClaim(1, title, "2017")}}
	cj := &fakeConsistency{verdict: model.ConsistencyVerdict{Status: model.StatusReal, Confidence: 0.9, Reason: "matches"}}
	fj := &fakeFallback{}

	outcomes, err := newAuditor(ex, src, cj, fj).Audit(context.Background(), "text")
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	if len(outcomes) != 1 {
		t.Fatalf("got %d outcomes", len(outcomes))
	}
	o := outcomes[0]
	if o.Status != model.StatusReal {
		t.Errorf("status = %s", o.Status)
	}
	if o.Source != "openalex" {
		t.Errorf("source = %s", o.Source)
	}
	if !strings.Contains(o.Message, "Record located") {
		t.Errorf("message = %q", o.Message)
	}
	if fj.calls.Load() != 0 {
		t.Error("fallback judge must not run for located records")
	}
}

func TestAudit_FallbackFake(t *testing.T) {
	src := &fakeSource{name: "openalex", records: nil}
	ex := &fakeExtractor{claims: []model.CitationClaim{realClaim(1, "Quantum Spaghetti Networks", "2023")}}
	cj := &fakeConsistency{}
	fj := &fakeFallback{verdict: model.FallbackVerdict{Verdict: "FAKE", Confidence: 0.95, Reason: "no trace anywhere"}}

	outcomes, err := newAuditor(ex, src, cj, fj).Audit(context.Background(), "text")
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	o := outcomes[0]
	if o.Status != model.StatusFake {
		t.Errorf("status = %s", o.Status)
	}
	if o.Source != "web-search" {
		t.Errorf("source = %s", o.Source)
	}
	if !strings.Contains(o.Message, "Not indexed in any source") {
		t.Errorf("message = %q", o.Message)
	}
	if cj.calls.Load() != 0 {
		t.Error("consistency judge must not run without a record")
	}
}

func TestAudit_UnknownFallbackVerdictMapsToUnverified(t *testing.T) {
	src := &fakeSource{name: "openalex"}
	ex := &fakeExtractor{claims: []model.CitationClaim{realClaim(1, "Some Missing Work", "")}}
	fj := &fakeFallback{verdict: model.FallbackVerdict{Verdict: "MAYBE", Confidence: 0.5, Reason: "odd"}}

	outcomes, _ := newAuditor(ex, src, &fakeConsistency{}, fj).Audit(context.Background(), "text")
	if outcomes[0].Status != model.StatusUnverified {
		t.Errorf("status = %s", outcomes[0].Status)
	}
}

func TestAudit_YearMismatchDemotesToMinorError(t *testing.T) {
	title := "Deep Residual Learning"
	src := &fakeSource{name: "openalex", records: map[string]model.SourceRecord{
		title: {Found: true, Title: title, Year: "2018", Abstract: longAbstract(), OriginSource: "openalex"},
	}}
	ex := &fakeExtractor{claims: []model.CitationClaim{realClaim(1, title, "2020")}}
	cj := &fakeConsistency{verdict: model.ConsistencyVerdict{Status: model.StatusReal, Confidence: 0.9, Reason: "matches"}}

	outcomes, _ := newAuditor(ex, src, cj, &fakeFallback{}).Audit(context.Background(), "text")
	o := outcomes[0]
	if o.Status != model.StatusMinorError {
		t.Errorf("status = %s, want MINOR_ERROR for a record older than cited", o.Status)
	}
	if !strings.Contains(o.Message, "2020") || !strings.Contains(o.Message, "2018") {
		t.Errorf("message must cite both years: %q", o.Message)
	}
}

func TestAudit_OneYearOffStillDemotes(t *testing.T) {
	title := "Generative Adversarial Networks"
	src := &fakeSource{name: "openalex", records: map[string]model.SourceRecord{
		title: {Found: true, Title: title, Year: "2019", Abstract: longAbstract(), OriginSource: "openalex"},
	}}
	ex := &fakeExtractor{claims: []model.CitationClaim{realClaim(1, title, "2020")}}
	cj := &fakeConsistency{verdict: model.ConsistencyVerdict{Status: model.StatusReal, Confidence: 0.9, Reason: "matches"}}

	outcomes, _ := newAuditor(ex, src, cj, &fakeFallback{}).Audit(context.Background(), "text")
	o := outcomes[0]
	if o.Status != model.StatusMinorError {
		t.Errorf("status = %s, a one-year-older record must still demote the verdict", o.Status)
	}
	if !strings.Contains(o.Message, "2020") || !strings.Contains(o.Message, "2019") {
		t.Errorf("message must cite both years: %q", o.Message)
	}
}

func TestAudit_OneYearLaterGetsPreprintNote(t *testing.T) {
	title := "Proximal Policy Optimization"
	src := &fakeSource{name: "openalex", records: map[string]model.SourceRecord{
		title: {Found: true, Title: title, Year: "2018", Abstract: longAbstract(), OriginSource: "openalex"},
	}}
	ex := &fakeExtractor{claims: []model.CitationClaim{realClaim(1, title, "2017")}}
	cj := &fakeConsistency{verdict: model.ConsistencyVerdict{Status: model.StatusReal, Confidence: 0.9, Reason: "matches"}}

	outcomes, _ := newAuditor(ex, src, cj, &fakeFallback{}).Audit(context.Background(), "text")
	o := outcomes[0]
	if o.Status != model.StatusReal {
		t.Errorf("status = %s, a record one year newer must stay REAL", o.Status)
	}
	if !strings.Contains(o.Message, "preprint") {
		t.Errorf("message must carry the advisory note: %q", o.Message)
	}
}

func TestAudit_MatchingYearNoNote(t *testing.T) {
	title := "Adam A Method for Stochastic Optimization"
	src := &fakeSource{name: "openalex", records: map[string]model.SourceRecord{
		title: {Found: true, Title: title, Year: "2015", Abstract: longAbstract(), OriginSource: "openalex"},
	}}
	ex := &fakeExtractor{claims: []model.CitationClaim{realClaim(1, title, "2015")}}
	cj := &fakeConsistency{verdict: model.ConsistencyVerdict{Status: model.StatusReal, Confidence: 0.9, Reason: "matches"}}

	outcomes, _ := newAuditor(ex, src, cj, &fakeFallback{}).Audit(context.Background(), "text")
	o := outcomes[0]
	if o.Status != model.StatusReal {
		t.Errorf("status = %s", o.Status)
	}
	if strings.Contains(o.Message, "Year mismatch") || strings.Contains(o.Message, "preprint") {
		t.Errorf("identical years must not add a note: %q", o.Message)
	}
}

func TestAudit_PreprintYearStaysReal(t *testing.T) {
	title := "Language Models Are Few Shot Learners"
	src := &fakeSource{name: "openalex", records: map[string]model.SourceRecord{
		title: {Found: true, Title: title, Year: "2022", Abstract: longAbstract(), OriginSource: "openalex"},
	}}
	ex := &fakeExtractor{claims: []model.CitationClaim{realClaim(1, title, "2020")}}
	cj := &fakeConsistency{verdict: model.ConsistencyVerdict{Status: model.StatusReal, Confidence: 0.9, Reason: "matches"}}

	outcomes, _ := newAuditor(ex, src, cj, &fakeFallback{}).Audit(context.Background(), "text")
	o := outcomes[0]
	if o.Status != model.StatusReal {
		t.Errorf("status = %s, a later publication year must not demote the verdict", o.Status)
	}
	if !strings.Contains(o.Message, "preprint") {
		t.Errorf("message = %q", o.Message)
	}
}

func TestAudit_MissingAbstractSkipsJudge(t *testing.T) {
	title := "An Obscure Paper"
	src := &fakeSource{name: "openalex", records: map[string]model.SourceRecord{
		title: {Found: true, Title: title, Year: "2019", Abstract: "short", OriginSource: "openalex"},
	}}
	ex := &fakeExtractor{claims: []model.CitationClaim{realClaim(1, title, "2019")}}
	cj := &fakeConsistency{verdict: model.ConsistencyVerdict{Status: model.StatusReal}}

	outcomes, _ := newAuditor(ex, src, cj, &fakeFallback{}).Audit(context.Background(), "text")
	o := outcomes[0]
	if o.Status != model.StatusUnverified {
		t.Errorf("status = %s", o.Status)
	}
	if cj.calls.Load() != 0 {
		t.Error("judge must not run on a missing abstract")
	}
}

func TestAudit_TruncatesAtCap(t *testing.T) {
	var claims []model.CitationClaim
	for i := 1; i <= 15; i++ {
		claims = append(claims, realClaim(i, fmt.Sprintf("Paper Number %d", i), "2020"))
	}
	ex := &fakeExtractor{claims: claims}
	fj := &fakeFallback{verdict: model.FallbackVerdict{Verdict: "UNVERIFIED", Reason: "thin evidence"}}

	outcomes, err := newAuditor(ex, &fakeSource{name: "openalex"}, &fakeConsistency{}, fj).Audit(context.Background(), "text")
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	if len(outcomes) != 10 {
		t.Fatalf("got %d outcomes, want the first 10", len(outcomes))
	}
	for i, o := range outcomes {
		want := fmt.Sprintf("ref %d:", i+1)
		if !strings.HasPrefix(o.CitationText, want) {
			t.Errorf("outcome %d = %q, order not preserved", i, o.CitationText)
		}
	}
}

func TestAudit_PanicIsolatedToOneClaim(t *testing.T) {
	abstract := longAbstract()
	src := &fakeSource{name: "openalex", records: map[string]model.SourceRecord{
		"Good Paper One": {Found: true, Title: "Good Paper One", Year: "2020", Abstract: abstract, OriginSource: "openalex"},
		"Cursed Paper":   {Found: true, Title: "Cursed Paper", Year: "2020", Abstract: abstract, OriginSource: "openalex"},
		"Good Paper Two": {Found: true, Title: "Good Paper Two", Year: "2020", Abstract: abstract, OriginSource: "openalex"},
	}}
	claims := []model.CitationClaim{
		realClaim(1, "Good Paper One", "2020"),
		realClaim(2, "Cursed Paper", "2020"),
		realClaim(3, "Good Paper Two", "2020"),
	}
	ex := &fakeExtractor{claims: claims}
	cj := &fakeConsistency{
		verdict: model.ConsistencyVerdict{Status: model.StatusReal, Confidence: 0.9, Reason: "matches"},
		panicOn: "Cursed Paper",
	}

	outcomes, err := newAuditor(ex, src, cj, &fakeFallback{}).Audit(context.Background(), "text")
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	if outcomes[0].Status != model.StatusReal || outcomes[2].Status != model.StatusReal {
		t.Errorf("healthy claims affected: %s, %s", outcomes[0].Status, outcomes[2].Status)
	}
	if outcomes[1].Status != model.StatusError {
		t.Errorf("panicked claim status = %s, want ERROR", outcomes[1].Status)
	}
}

func TestAudit_NoCitations(t *testing.T) {
	ex := &fakeExtractor{claims: nil}

	outcomes, err := newAuditor(ex, &fakeSource{name: "openalex"}, &fakeConsistency{}, &fakeFallback{}).Audit(context.Background(), "plain prose")
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	if outcomes == nil || len(outcomes) != 0 {
		t.Errorf("outcomes = %v, want empty non-nil slice", outcomes)
	}
}

func TestAudit_ExtractorError(t *testing.T) {
	ex := &fakeExtractor{err: fmt.Errorf("provider down")}

	if _, err := newAuditor(ex, &fakeSource{name: "openalex"}, &fakeConsistency{}, &fakeFallback{}).Audit(context.Background(), "text"); err == nil {
		t.Error("expected error when extraction fails")
	}
}
