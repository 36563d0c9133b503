// Package llm builds langchaingo chat models from configuration and
// converts between stored messages and the langchaingo message format.
package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Supported provider names.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderOllama    = "ollama"
)

// Config selects a provider and model.
type Config struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string // OpenAI-compatible endpoints
	Host     string // Ollama server URL
}

// New creates a chat model for the configured provider.
func New(ctx context.Context, cfg Config) (llms.Model, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		var opts []openai.Option
		if cfg.Model != "" {
			opts = append(opts, openai.WithModel(cfg.Model))
		}
		if cfg.APIKey != "" {
			opts = append(opts, openai.WithToken(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.New(opts...)

	case ProviderAnthropic:
		var opts []anthropic.Option
		if cfg.Model != "" {
			opts = append(opts, anthropic.WithModel(cfg.Model))
		}
		if cfg.APIKey != "" {
			opts = append(opts, anthropic.WithToken(cfg.APIKey))
		}
		return anthropic.New(opts...)

	case ProviderGemini:
		var opts []googleai.Option
		if cfg.APIKey != "" {
			opts = append(opts, googleai.WithAPIKey(cfg.APIKey))
		}
		if cfg.Model != "" {
			opts = append(opts, googleai.WithDefaultModel(cfg.Model))
		}
		return googleai.New(ctx, opts...)

	case ProviderOllama:
		var opts []ollama.Option
		if cfg.Model != "" {
			opts = append(opts, ollama.WithModel(cfg.Model))
		}
		if cfg.Host != "" {
			opts = append(opts, ollama.WithServerURL(cfg.Host))
		}
		return ollama.New(opts...)

	default:
		return nil, fmt.Errorf("unknown llm provider: %q", cfg.Provider)
	}
}
