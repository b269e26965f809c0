package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/examgen/internal/store"
)

// NewProvider builds the provider selected by cfg.Provider and wraps it so
// that a call is bounded by cfg.Timeout, retried per cfg.Retry, and every
// attempt is logged to eventRepo (which may be nil).
//
// The "mock" provider serves a fixed sample exam and is not retried.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo) (Provider, error) {
	base, err := newBaseProvider(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	p := WithLogging(base, cfg.Provider, eventRepo)
	if cfg.Provider != "mock" {
		p = WithRetry(p, cfg.Retry)
	}
	return WithTimeout(p, cfg.Timeout), nil
}

func newBaseProvider(ctx context.Context, cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiProvider(ctx, cfg.Gemini)
	case "anthropic":
		return NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		return NewOpenAIProvider(cfg.OpenAI)
	case "openrouter":
		return NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		return NewSampleProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
}
