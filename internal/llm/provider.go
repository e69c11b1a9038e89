// Package llm abstracts the completion providers behind the extractor and
// the judges, so model backends can be swapped (or faked in tests) without
// touching resolution logic.
package llm

import (
	"context"

	"github.com/realibuddy/citecheck/internal/model"
)

// Provider defines the interface for LLM completion providers.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Complete generates a completion for the request.
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Request contains the input for one completion.
type Request struct {
	// System is the system/role instruction.
	System string

	// Prompt is the user prompt.
	Prompt string

	// Schema forces structured JSON output when the provider supports it.
	Schema *Schema

	// WebSearch grounds the answer in live web search when the provider
	// supports it; others ignore the flag and answer from model knowledge.
	WebSearch bool

	// MaxTokens limits the response length (0 uses the provider default).
	MaxTokens int

	// Temperature controls sampling (judges run cool, near 0).
	Temperature float64
}

// Response contains the provider's completion output.
type Response struct {
	// Text is the raw completion text (JSON when a schema was requested).
	Text string

	// Model is the model that generated the response.
	Model string

	// TokensUsed tracks token consumption.
	TokensUsed int

	// SafetyBlocked reports that the provider refused to answer; callers
	// map this to an UNVERIFIED verdict rather than an error.
	SafetyBlocked bool
}

// Schema is a provider-neutral description of the expected JSON object.
type Schema struct {
	Properties map[string]Field
	Required   []string
}

// Field describes one schema property.
type Field struct {
	Type       string // "string", "number", "integer", "boolean", "array", "object"
	Enum       []string
	Nullable   bool
	Items      *Field           // Element type when Type is "array"
	Properties map[string]Field // Nested fields when Type is "object"
	Required   []string
}

// Config holds LLM provider configuration.
type Config struct {
	// Provider name: "gemini", "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for Gemini/OpenAI
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests, in seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:  "",
		Timeout:   30,
		MaxTokens: 1000,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config.
func ConfigFromModel(cfg model.LLMConfig) Config {
	return Config{
		Provider:  cfg.Provider,
		Model:     cfg.Model,
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
		MaxTokens: cfg.MaxTokens,
	}
}
