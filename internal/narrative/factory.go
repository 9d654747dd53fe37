package narrative

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderNone      = "none"
)

type Config struct {
	Provider      string        `yaml:"provider" default:"anthropic" validate:"oneof=anthropic openai gemini none"`
	Model         string        `yaml:"model"`
	APIKey        string        `yaml:"api_key"`
	MaxTokens     int           `yaml:"max_tokens" default:"400" validate:"gte=1"`
	Timeout       time.Duration `yaml:"timeout" default:"45s"`
	MaxAttempts   int           `yaml:"max_attempts" default:"3" validate:"gte=1,lte=10"`
	BackfillAfter time.Duration `yaml:"backfill_after" default:"5m"`
}

var apiKeyEnv = map[string]string{
	ProviderAnthropic: "ANTHROPIC_API_KEY",
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderGemini:    "GEMINI_API_KEY",
}

// NewGeneratorFromConfig builds the configured provider wrapped in retries.
// A nil Generator with a nil error means narratives are disabled.
func NewGeneratorFromConfig(ctx context.Context, cfg Config, log zerolog.Logger) (Generator, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" || provider == ProviderNone {
		log.Info().Msg("narratives disabled")
		return nil, nil
	}
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		key = strings.TrimSpace(os.Getenv(apiKeyEnv[provider]))
	}
	if key == "" {
		log.Warn().Str("provider", provider).Str("env", apiKeyEnv[provider]).Msg("no api key, narratives disabled")
		return nil, nil
	}

	var g Generator
	switch provider {
	case ProviderAnthropic:
		g = NewAnthropicGenerator(key, cfg.Model, int64(cfg.MaxTokens))
	case ProviderOpenAI:
		g = NewOpenAIGenerator(key, cfg.Model, cfg.MaxTokens)
	case ProviderGemini:
		gg, err := NewGeminiGenerator(ctx, key, cfg.Model)
		if err != nil {
			return nil, err
		}
		g = gg
	default:
		return nil, fmt.Errorf("unknown narrative provider %q", cfg.Provider)
	}
	return WithRetry(g, cfg.MaxAttempts), nil
}
