// Package extract turns free text into structured citation claims using an
// LLM with a verbatim-extraction prompt. The extractor captures what the
// text asserts, including its potential lies, without correcting anything.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/realibuddy/citecheck/internal/llm"
	"github.com/realibuddy/citecheck/internal/model"
)

// Extractor produces citation claims from free text.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]model.CitationClaim, error)
}

// LLMExtractor implements Extractor on top of a completion provider.
type LLMExtractor struct {
	provider llm.Provider
}

// NewLLMExtractor creates an extractor backed by the given provider.
func NewLLMExtractor(provider llm.Provider) *LLMExtractor {
	return &LLMExtractor{provider: provider}
}

const extractorSystem = "You are a forensic text auditor. You extract academic citations verbatim, never correcting them."

const extractorPromptTemplate = `Analyze the text and extract ALL academic papers mentioned.

CRITICAL INSTRUCTION - ANTI-HALLUCINATION:
1. Extract the summary and claims EXACTLY AS WRITTEN in the text.
2. DO NOT correct the text using your internal knowledge.
3. If the text says "ResNet is used for cooking spaghetti", you MUST extract "cooking spaghetti" as the summary.
4. Your job is to capture the author's potential lies/errors verbatim.

For each paper mentioned:
1. raw_text: The specific substring that mentions it.
2. title: The likely title.
3. author: The likely author.
4. year: The year if mentioned, else null.
5. doi: The DOI if written out, else null.
6. summary_intent: What does the TEXT claim this paper is about? (Verbatim extraction).
7. specific_claims: Specific facts/methodologies the text attributes to this paper.

Output ONLY a valid JSON object of the form:
{"citations": [{"raw_text": "...", "title": "...", "author": "...", "year": "2023", "doi": null, "summary_intent": "...", "specific_claims": []}]}

Input Text:
%s`

// extractorSchema forces the response shape on providers that support it.
var extractorSchema = &llm.Schema{
	Properties: map[string]llm.Field{
		"citations": {
			Type: "array",
			Items: &llm.Field{
				Type: "object",
				Properties: map[string]llm.Field{
					"raw_text":        {Type: "string"},
					"title":           {Type: "string", Nullable: true},
					"author":          {Type: "string", Nullable: true},
					"year":            {Type: "string", Nullable: true},
					"doi":             {Type: "string", Nullable: true},
					"summary_intent":  {Type: "string"},
					"specific_claims": {Type: "array", Items: &llm.Field{Type: "string"}},
				},
				Required: []string{"raw_text", "summary_intent"},
			},
		},
	},
	Required: []string{"citations"},
}

// rawClaim tolerates the type drift LLMs produce (e.g. year as a number).
type rawClaim struct {
	RawText        string     `json:"raw_text"`
	Title          string     `json:"title"`
	Author         string     `json:"author"`
	Year           flexString `json:"year"`
	DOI            string     `json:"doi"`
	SummaryIntent  string     `json:"summary_intent"`
	SpecificClaims []string   `json:"specific_claims"`
}

type extractorEnvelope struct {
	Citations []rawClaim `json:"citations"`
}

// flexString accepts a JSON string, number or null.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	*s = flexString(b)
	return nil
}

// Extract sanitizes the text, prompts the provider and normalizes its
// output into well-formed claims numbered in extraction order.
func (e *LLMExtractor) Extract(ctx context.Context, text string) ([]model.CitationClaim, error) {
	text = Sanitize(text)
	if text == "" {
		return nil, nil
	}

	resp, err := e.provider.Complete(ctx, llm.Request{
		System:      extractorSystem,
		Prompt:      fmt.Sprintf(extractorPromptTemplate, text),
		Schema:      extractorSchema,
		Temperature: 0.0,
		MaxTokens:   2000,
	})
	if err != nil {
		return nil, fmt.Errorf("extract citations: %w", err)
	}
	if resp.SafetyBlocked {
		return nil, nil
	}

	return ParseClaims(resp.Text)
}

// ParseClaims decodes the model output into claims, tolerating markdown
// fences and missing optional fields.
func ParseClaims(raw string) ([]model.CitationClaim, error) {
	cleaned := stripFences(raw)

	var envelope extractorEnvelope
	if err := json.Unmarshal([]byte(cleaned), &envelope); err != nil {
		// Some models ignore the envelope and emit a bare list.
		var list []rawClaim
		if listErr := json.Unmarshal([]byte(cleaned), &list); listErr != nil {
			return nil, fmt.Errorf("parse extractor output: %w", err)
		}
		envelope.Citations = list
	}

	claims := make([]model.CitationClaim, 0, len(envelope.Citations))
	for i, rc := range envelope.Citations {
		claim := model.CitationClaim{
			ID:             i + 1,
			RawText:        rc.RawText,
			Title:          rc.Title,
			Author:         rc.Author,
			Year:           string(rc.Year),
			DOI:            rc.DOI,
			SummaryIntent:  rc.SummaryIntent,
			SpecificClaims: rc.SpecificClaims,
		}
		if claim.RawText == "" {
			claim.RawText = claim.Title
		}
		if claim.RawText == "" {
			claim.RawText = "Unknown Reference"
		}
		if claim.SpecificClaims == nil {
			claim.SpecificClaims = []string{}
		}
		claims = append(claims, claim)
	}
	return claims, nil
}

// stripFences removes markdown code fences the model may wrap JSON in.
func stripFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
