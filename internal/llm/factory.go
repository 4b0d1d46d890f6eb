package llm

import (
	"context"
	"fmt"

	"github.com/raysh454/clauseguard/internal/config"
	"github.com/raysh454/clauseguard/internal/logging"
)

// NewClient builds the configured provider wrapped in Resilient. It returns
// a nil Client when the provider is "none" or no API key is available; the
// callers then fall back to template explanations.
func NewClient(ctx context.Context, cfg config.LLMConfig, logger logging.Logger) (Client, error) {
	if cfg.Provider == "none" || cfg.APIKey == "" {
		return nil, nil
	}

	var (
		base Client
		err  error
	)
	switch cfg.Provider {
	case "openai":
		base, err = NewOpenAI(OpenAIOptions{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			APIKey:  cfg.APIKey,
			Timeout: cfg.Timeout,
		})
	case "gemini":
		base, err = NewGemini(ctx, GeminiOptions{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return NewResilient(base, ResilientConfig{
		RequestsPerMinute: cfg.RequestsPerMinute,
		MaxRetries:        cfg.MaxRetries,
		MaxElapsed:        cfg.MaxElapsed,
	}, logger), nil
}
