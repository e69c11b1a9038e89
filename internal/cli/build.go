package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/realibuddy/citecheck/internal/cache"
	"github.com/realibuddy/citecheck/internal/extract"
	"github.com/realibuddy/citecheck/internal/judge"
	"github.com/realibuddy/citecheck/internal/llm"
	"github.com/realibuddy/citecheck/internal/model"
	"github.com/realibuddy/citecheck/internal/pipeline"
	"github.com/realibuddy/citecheck/internal/resolve"
	"github.com/realibuddy/citecheck/internal/sources"
	"github.com/realibuddy/citecheck/internal/util"
)

// loadConfig assembles the configuration from defaults, the config file,
// CITECHECK_* environment variables and provider API keys from the
// environment.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}

	switch strings.ToLower(cfg.LLM.Provider) {
	case "gemini", "google":
		cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}

	if cfg.Sources.S2APIKey == "" {
		cfg.Sources.S2APIKey = os.Getenv("S2_API_KEY")
	}

	return cfg, nil
}

// newLogger builds the process logger.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// buildAuditor wires the full pipeline from configuration.
func buildAuditor(cfg *model.Config, logger *zap.Logger) (*pipeline.Auditor, error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, fmt.Errorf("an LLM provider is required (set llm.provider)")
	}

	httpClient := util.NewHTTPClient(cfg.HTTP)

	var srcs []sources.Source
	for _, name := range cfg.Sources.Order {
		switch name {
		case "openalex":
			srcs = append(srcs, sources.NewOpenAlex(
				sources.WithOpenAlexHTTPClient(httpClient),
				sources.WithOpenAlexMailto(cfg.Sources.Mailto),
				sources.WithOpenAlexRate(cfg.Sources.RequestsPerSecond),
				sources.WithOpenAlexUserAgent(cfg.HTTP.UserAgent),
			))
		case "semanticscholar":
			srcs = append(srcs, sources.NewSemanticScholar(
				sources.WithS2HTTPClient(httpClient),
				sources.WithS2APIKey(cfg.Sources.S2APIKey),
				sources.WithS2Rate(cfg.Sources.RequestsPerSecond),
				sources.WithS2UserAgent(cfg.HTTP.UserAgent),
			))
		default:
			return nil, fmt.Errorf("unknown source %q (supported: openalex, semanticscholar)", name)
		}
	}
	if len(srcs) == 0 {
		return nil, fmt.Errorf("no sources configured")
	}

	var mem *cache.Memory
	if cfg.Cache.Enabled {
		mem = cache.NewMemory(cfg.Cache.TTL, 10*time.Minute)
	}

	return pipeline.New(
		extract.NewLLMExtractor(provider),
		resolve.New(srcs, mem),
		judge.NewConsistencyJudge(provider),
		judge.NewWebSearchJudge(provider),
		logger,
		cfg.Pipeline,
	), nil
}
