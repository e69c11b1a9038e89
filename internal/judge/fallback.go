package judge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/realibuddy/citecheck/internal/llm"
	"github.com/realibuddy/citecheck/internal/model"
)

// FallbackJudge verifies a citation's existence when no source database
// produced a record, typically by searching the open web.
type FallbackJudge interface {
	Name() string
	Judge(ctx context.Context, title, author, claimSummary string) model.FallbackVerdict
}

// WebSearchJudge implements FallbackJudge using a provider with search
// grounding. Providers without grounding still answer from model knowledge,
// which is better than declaring every unindexed work fake.
type WebSearchJudge struct {
	provider llm.Provider
}

// NewWebSearchJudge creates a fallback judge backed by the provider.
func NewWebSearchJudge(provider llm.Provider) *WebSearchJudge {
	return &WebSearchJudge{provider: provider}
}

// Name identifies the judge; it becomes the outcome source for fallback
// verdicts.
func (j *WebSearchJudge) Name() string { return "web-search" }

const fallbackSystem = "You are a research librarian verifying whether cited works actually exist."

const fallbackPromptTemplate = `A citation was not found in any academic database. Search the web to determine whether this work actually exists.

Cited Title: %q
Cited Author: %q
The text claims this work is about: %q

VERDICT DEFINITIONS:
- "REAL": You found clear evidence this exact work exists (matching title and author).
- "FAKE": You found no trace of this work anywhere; it appears fabricated.
- "MISMATCH": A work with this title exists but by different authors or about a different topic.
- "UNVERIFIED": Evidence is too thin to decide either way.

Be strict: a vaguely similar work is not this work. If you found the real paper, put its title, authors and year in actual_paper_info.

Provide a confidence score (0.0 - 1.0) and a brief reason.`

var fallbackSchema = &llm.Schema{
	Properties: map[string]llm.Field{
		"verdict":           {Type: "string", Enum: []string{"REAL", "FAKE", "MISMATCH", "UNVERIFIED"}},
		"confidence":        {Type: "number"},
		"reason":            {Type: "string"},
		"actual_paper_info": {Type: "string", Nullable: true},
	},
	Required: []string{"verdict", "confidence", "reason"},
}

// Judge checks the open web for evidence of the cited work. It always
// returns a well-formed verdict, degrading to UNVERIFIED on failure.
func (j *WebSearchJudge) Judge(ctx context.Context, title, author, claimSummary string) model.FallbackVerdict {
	resp, err := j.provider.Complete(ctx, llm.Request{
		System:      fallbackSystem,
		Prompt:      fmt.Sprintf(fallbackPromptTemplate, title, author, claimSummary),
		Schema:      fallbackSchema,
		WebSearch:   true,
		Temperature: 0.1,
	})
	if err != nil {
		return model.FallbackVerdict{
			Verdict:    string(model.StatusUnverified),
			Confidence: 0.0,
			Reason:     fmt.Sprintf("web verification error: %v", err),
		}
	}
	if resp.SafetyBlocked {
		return model.FallbackVerdict{
			Verdict:    string(model.StatusUnverified),
			Confidence: 0.0,
			Reason:     "content blocked by safety filters",
		}
	}

	var verdict model.FallbackVerdict
	if err := json.Unmarshal([]byte(cleanJSON(resp.Text)), &verdict); err != nil {
		return model.FallbackVerdict{
			Verdict:    string(model.StatusUnverified),
			Confidence: 0.0,
			Reason:     fmt.Sprintf("failed to parse web verification response: %v", err),
		}
	}
	if verdict.Verdict == "" {
		verdict.Verdict = string(model.StatusUnverified)
		verdict.Reason = "web verification returned no verdict: " + resp.Text
	}

	return verdict
}
