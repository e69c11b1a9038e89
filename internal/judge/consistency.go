// Package judge holds the verification collaborators: the consistency judge
// that compares claimed content against a record's real abstract, and the
// web-search fallback judge used when no database record exists. Both honor
// a no-throw contract - failures become degraded verdicts, never errors.
package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/realibuddy/citecheck/internal/llm"
	"github.com/realibuddy/citecheck/internal/model"
)

// ConsistencyJudge verifies that the claimed content matches the abstract.
type ConsistencyJudge interface {
	Name() string
	Judge(ctx context.Context, claimText, abstract string) model.ConsistencyVerdict
}

// LLMConsistencyJudge implements ConsistencyJudge on a completion provider.
type LLMConsistencyJudge struct {
	provider llm.Provider
}

// NewConsistencyJudge creates a consistency judge backed by the provider.
func NewConsistencyJudge(provider llm.Provider) *LLMConsistencyJudge {
	return &LLMConsistencyJudge{provider: provider}
}

// Name identifies the judge in logs.
func (j *LLMConsistencyJudge) Name() string { return "consistency" }

const consistencySystem = "You are a forensic academic auditor."

const consistencyPromptTemplate = `Your Task: Verify if the "Author's Claim" is supported by the "Actual Abstract".

Author's Claim: %q
Actual Abstract: %q

AUDIT RULES:
1. **Topic Match**: Does the paper discuss the same core topic? If no -> "MISMATCH".
2. **Data Integrity (CRITICAL)**:
   - If the claim includes specific metrics (e.g., "95%% accuracy", "p < 0.05", "300 participants") that are NOT in the abstract, mark as "SUSPICIOUS".
   - Do not assume these numbers exist in the full text unless the abstract strongly implies them.
3. **Terminology**: Allow for synonyms (e.g., "Global Attention" matching "Luong Attention" is OK).
4. **Language**: Ignore language differences between the claim and the abstract if the meaning matches.

VERDICT DEFINITIONS:
- "REAL": The claim accurately reflects the abstract's content.
- "MISMATCH": The paper is about a completely different topic (e.g., a biology paper cited for AI).
- "SUSPICIOUS": The topic matches, but the claim invents specific details/findings not present in the text.
- "UNVERIFIED": Abstract is too short or ambiguous to judge.

Provide a confidence score (0.0 - 1.0) and a brief reason.`

var consistencySchema = &llm.Schema{
	Properties: map[string]llm.Field{
		"status":     {Type: "string", Enum: []string{"REAL", "MISMATCH", "SUSPICIOUS", "UNVERIFIED"}},
		"confidence": {Type: "number"},
		"reason":     {Type: "string"},
	},
	Required: []string{"status", "confidence", "reason"},
}

// Judge compares the claim against the abstract. It always returns a
// well-formed verdict, substituting ERROR on internal failure.
func (j *LLMConsistencyJudge) Judge(ctx context.Context, claimText, abstract string) model.ConsistencyVerdict {
	resp, err := j.provider.Complete(ctx, llm.Request{
		System:      consistencySystem,
		Prompt:      fmt.Sprintf(consistencyPromptTemplate, claimText, abstract),
		Schema:      consistencySchema,
		Temperature: 0.1,
	})
	if err != nil {
		return model.ConsistencyVerdict{
			Status: model.StatusError,
			Reason: fmt.Sprintf("audit error: %v", err),
		}
	}
	if resp.SafetyBlocked {
		return model.ConsistencyVerdict{
			Status:     model.StatusUnverified,
			Confidence: 0.0,
			Reason:     "content blocked by safety filters",
		}
	}

	var verdict model.ConsistencyVerdict
	if err := json.Unmarshal([]byte(cleanJSON(resp.Text)), &verdict); err != nil {
		return model.ConsistencyVerdict{
			Status: model.StatusError,
			Reason: fmt.Sprintf("malformed judge output: %v: %s", err, resp.Text),
		}
	}
	// Only Gemini enforces the enum server-side; other providers can emit
	// anything that happens to be JSON.
	switch verdict.Status {
	case model.StatusReal, model.StatusMismatch, model.StatusSuspicious, model.StatusUnverified:
	default:
		return model.ConsistencyVerdict{
			Status: model.StatusError,
			Reason: "malformed judge output: unexpected status: " + resp.Text,
		}
	}

	return verdict
}

// cleanJSON strips markdown fences models sometimes wrap JSON in.
func cleanJSON(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
