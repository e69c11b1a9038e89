package llm

import "testing"

func TestNewProvider_Disabled(t *testing.T) {
	p, err := NewProvider(Config{})
	if err != nil {
		t.Fatalf("empty provider must be a no-op, got %v", err)
	}
	if p != nil {
		t.Error("expected nil provider when disabled")
	}
}

func TestNewProvider_Unknown(t *testing.T) {
	if _, err := NewProvider(Config{Provider: "clippy"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewProvider_MissingKeys(t *testing.T) {
	if _, err := NewProvider(Config{Provider: "openai"}); err == nil {
		t.Error("OpenAI without an API key must fail")
	}
	if _, err := NewProvider(Config{Provider: "gemini"}); err == nil {
		t.Error("Gemini without an API key must fail")
	}
}

func TestNewProvider_OllamaNeedsNoKey(t *testing.T) {
	p, err := NewProvider(Config{Provider: "ollama"})
	if err != nil {
		t.Fatalf("Ollama needs no key: %v", err)
	}
	if p.Name() != "ollama" {
		t.Errorf("name = %q", p.Name())
	}
}
