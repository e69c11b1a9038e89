package model

import "time"

// Config is the complete citecheck configuration, assembled from defaults,
// the config file, CITECHECK_* environment variables and CLI flags.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http" mapstructure:"http"`
	Sources  SourcesConfig  `yaml:"sources" mapstructure:"sources"`
	LLM      LLMConfig      `yaml:"llm" mapstructure:"llm"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Cache    CacheConfig    `yaml:"cache" mapstructure:"cache"`
}

// HTTPConfig controls outbound HTTP behavior shared by the source adapters.
type HTTPConfig struct {
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent  string        `yaml:"user_agent" mapstructure:"user_agent"`
	HTTPProxy  string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy    string        `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// SourcesConfig configures the bibliographic source adapters.
type SourcesConfig struct {
	// Order lists adapter names, primary first.
	Order []string `yaml:"order" mapstructure:"order"`

	// Mailto is sent to OpenAlex as the polite-pool identifier.
	Mailto string `yaml:"mailto" mapstructure:"mailto"`

	// S2APIKey raises Semantic Scholar rate limits when present.
	S2APIKey string `yaml:"s2_api_key" mapstructure:"s2_api_key"`

	// RequestsPerSecond is the per-adapter outbound rate.
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// LLMConfig configures the provider backing the extractor and both judges.
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // gemini, openai, ollama
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"-"` // Env only, never persisted
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// PipelineConfig controls per-request audit behavior.
type PipelineConfig struct {
	// MaxClaims caps claims per request; extras are dropped in order.
	MaxClaims int `yaml:"max_claims" mapstructure:"max_claims"`

	// Concurrency bounds the per-claim fan-out.
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`

	// MinAbstractLen is the minimum abstract length worth judging.
	MinAbstractLen int `yaml:"min_abstract_len" mapstructure:"min_abstract_len"`
}

// ServerConfig configures the HTTP request surface.
type ServerConfig struct {
	Addr        string        `yaml:"addr" mapstructure:"addr"`
	MaxTextLen  int           `yaml:"max_text_len" mapstructure:"max_text_len"`
	RateQuota   int           `yaml:"rate_quota" mapstructure:"rate_quota"` // Requests per window per client
	RateWindow  time.Duration `yaml:"rate_window" mapstructure:"rate_window"`
	ReadTimeout time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
}

// CacheConfig controls in-process memoization of source lookups.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:   20 * time.Second,
			UserAgent: "citecheck/0.1 (+https://github.com/realibuddy/citecheck)",
		},
		Sources: SourcesConfig{
			Order:             []string{"openalex", "semanticscholar"},
			Mailto:            "audit@veru.app",
			RequestsPerSecond: 5,
		},
		LLM: LLMConfig{
			Provider:  "gemini",
			Model:     "",
			Timeout:   30,
			MaxTokens: 1000,
		},
		Pipeline: PipelineConfig{
			MaxClaims:      10,
			Concurrency:    5,
			MinAbstractLen: 20,
		},
		Server: ServerConfig{
			Addr:        ":8000",
			MaxTextLen:  20000,
			RateQuota:   10,
			RateWindow:  time.Minute,
			ReadTimeout: 30 * time.Second,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     15 * time.Minute,
		},
	}
}
