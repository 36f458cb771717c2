package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	ProviderGroq      = "groq"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderMock      = "mock"
)

// ProviderConfig selects and configures one provider.
type ProviderConfig struct {
	Name      string
	APIKey    string
	BaseURL   string
	Model     string
	Timeout   time.Duration
	RateLimit int // requests per minute, 0 for unlimited
	Burst     int
	MaxTokens int
	Logger    *slog.Logger
}

// NewProvider builds the provider named by cfg.Name. Network providers
// require an API key.
func NewProvider(ctx context.Context, cfg ProviderConfig) (Provider, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Name == ProviderMock {
		return NewMockClient(), nil
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s provider: %w", cfg.Name, ErrNoAPIKey)
	}

	opts := []Option{
		WithLogger(logger),
		WithRateLimit(cfg.RateLimit, cfg.Burst),
		WithMaxTokens(cfg.MaxTokens),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, WithTimeout(cfg.Timeout))
	}

	switch cfg.Name {
	case ProviderGroq, "":
		opts = append(opts, WithAPIType(APITypeOpenAI), WithAPIConfig(orDefault(cfg.BaseURL, DefaultGroqBaseURL), orDefault(cfg.Model, DefaultGroqModel)))
	case ProviderOpenAI:
		opts = append(opts, WithAPIType(APITypeOpenAI), WithAPIConfig(orDefault(cfg.BaseURL, DefaultOpenAIBaseURL), orDefault(cfg.Model, DefaultOpenAIModel)))
	case ProviderAnthropic:
		opts = append(opts, WithAPIType(APITypeAnthropic), WithAPIConfig(orDefault(cfg.BaseURL, DefaultAnthropicBaseURL), orDefault(cfg.Model, DefaultAnthropicModel)))
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model, newLimiter(cfg.RateLimit, cfg.Burst), logger)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Name)
	}

	return NewClient(cfg.APIKey, opts...), nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
