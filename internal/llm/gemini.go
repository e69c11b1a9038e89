package llm

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// GeminiProvider implements the Provider interface for Google Gemini models.
// It is the only provider with native web-search grounding, which makes it
// the default backend for the fallback judge.
type GeminiProvider struct {
	client *genai.Client
	config Config
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(config Config) (*GeminiProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: config.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		config: config,
	}, nil
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Complete generates a completion using the Gemini generateContent API.
func (p *GeminiProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	model := p.config.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 1000
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens: int32(maxTokens),
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = toGenAISchema(req.Schema)
	}
	if req.WebSearch {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	contents := []*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)}

	resp, err := p.client.Models.GenerateContent(ctxWithTimeout, model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no response candidates from Gemini")
	}

	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return &Response{Model: model, SafetyBlocked: true}, nil
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &Response{
		Text:       resp.Text(),
		Model:      model,
		TokensUsed: tokens,
	}, nil
}

// toGenAISchema translates the provider-neutral schema into Gemini's.
func toGenAISchema(s *Schema) *genai.Schema {
	properties := make(map[string]*genai.Schema, len(s.Properties))
	for name, field := range s.Properties {
		properties[name] = toGenAIField(field)
	}
	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: properties,
		Required:   s.Required,
	}
}

func toGenAIField(f Field) *genai.Schema {
	out := &genai.Schema{Enum: f.Enum}
	switch f.Type {
	case "number":
		out.Type = genai.TypeNumber
	case "integer":
		out.Type = genai.TypeInteger
	case "boolean":
		out.Type = genai.TypeBoolean
	case "array":
		out.Type = genai.TypeArray
		if f.Items != nil {
			out.Items = toGenAIField(*f.Items)
		}
	case "object":
		out.Type = genai.TypeObject
		out.Required = f.Required
		out.Properties = make(map[string]*genai.Schema, len(f.Properties))
		for name, nested := range f.Properties {
			out.Properties[name] = toGenAIField(nested)
		}
	default:
		out.Type = genai.TypeString
	}
	if f.Nullable {
		out.Nullable = genai.Ptr(true)
	}
	return out
}
