package config

import "time"

type Limits struct {
	// MaxRetries is the total number of provider attempts per call.
	MaxRetries        int             `yaml:"max_retries" validate:"min=1,max=10"`
	RetryDelay        time.Duration   `yaml:"retry_delay" validate:"min=0,max=5m"`
	TotalTimeout      time.Duration   `yaml:"total_timeout" validate:"min=1m,max=24h"`
	MaxConcurrentRuns int             `yaml:"max_concurrent_runs" validate:"min=1,max=32"`
	MaxStorySize      int             `yaml:"max_story_size" validate:"min=0,max=1000000"`
	RateLimit         RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig configures the client-side limiter. Zero requests per
// minute disables it.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" validate:"min=0,max=1000"`
	BurstSize         int `yaml:"burst_size" validate:"min=0,max=100"`
}

func DefaultLimits() Limits {
	return Limits{
		MaxRetries:        3,
		RetryDelay:        2 * time.Second,
		TotalTimeout:      30 * time.Minute,
		MaxConcurrentRuns: 2,
		MaxStorySize:      200000,
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 0,
			BurstSize:         1,
		},
	}
}
