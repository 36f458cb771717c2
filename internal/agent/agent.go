package agent

import (
	"context"
	"log/slog"
	"time"
)

// Agent is the completion adapter used by the pipeline phases. It forwards
// each prompt to a Provider and applies the retry policy to transport,
// rate-limit and service failures.
type Agent struct {
	provider Provider
	policy   RetryPolicy
	logger   *slog.Logger
}

type AgentOption func(*Agent)

func WithRetryPolicy(policy RetryPolicy) AgentOption {
	return func(a *Agent) {
		a.policy = policy
	}
}

// WithAgentLogger sets a custom logger for the agent.
func WithAgentLogger(logger *slog.Logger) AgentOption {
	return func(a *Agent) {
		a.logger = logger.With("component", "agent")
	}
}

func New(provider Provider, opts ...AgentOption) *Agent {
	a := &Agent{
		provider: provider,
		policy:   DefaultRetryPolicy(),
		logger:   slog.Default().With("component", "agent"),
	}

	for _, opt := range opts {
		opt(a)
	}
	a.policy = a.policy.withDefaults()

	return a
}

// Complete sends prompt to the provider. A cancelled context is returned
// unchanged; errors the policy does not cover are returned after one attempt.
func (a *Agent) Complete(ctx context.Context, prompt string, structured bool) (string, error) {
	startTime := time.Now()
	var lastErr error

	for attempt := 1; attempt <= a.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := a.policy.Delay(attempt - 1)
			a.logger.Debug("retry backoff",
				"attempt", attempt,
				"delay", delay)

			if err := a.policy.Sleep(ctx, delay); err != nil {
				a.logger.Warn("request cancelled during backoff",
					"attempt", attempt,
					"error", err)
				return "", err
			}
		}

		if err := ctx.Err(); err != nil {
			return "", err
		}

		attemptStart := time.Now()
		a.logger.Debug("attempting completion",
			"attempt", attempt,
			"prompt_length", len(prompt),
			"structured", structured)

		response, err := a.provider.Complete(ctx, prompt, structured)
		if err == nil {
			a.logger.Info("completion succeeded",
				"attempt", attempt,
				"duration_ms", time.Since(attemptStart).Milliseconds(),
				"response_length", len(response))
			return response, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}

		lastErr = err
		if !IsRetryable(err) {
			a.logger.Error("completion failed with non-retryable error",
				"attempt", attempt,
				"error", err)
			return "", err
		}

		a.logger.Warn("completion failed",
			"attempt", attempt,
			"max_attempts", a.policy.MaxAttempts,
			"duration_ms", time.Since(attemptStart).Milliseconds(),
			"error", err)
	}

	a.logger.Error("completion failed after max attempts",
		"max_attempts", a.policy.MaxAttempts,
		"total_duration_ms", time.Since(startTime).Milliseconds(),
		"last_error", lastErr)

	return "", &ExhaustedError{Attempts: a.policy.MaxAttempts, Last: lastErr}
}
