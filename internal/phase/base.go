// Package phase implements the three pipeline stages: extract, map and
// generate. Each stage checks its preconditions before calling the model,
// renders its prompt, makes exactly one adapter call and validates the reply.
package phase

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Completer is the adapter a stage sends prompts through.
type Completer interface {
	Complete(ctx context.Context, prompt string, structured bool) (string, error)
}

// Renderer renders a named prompt template.
type Renderer interface {
	Render(key string, data any) (string, error)
}

// BasePhase provides common functionality for all phases
type BasePhase struct {
	name   string
	logger *slog.Logger
}

type Option func(*BasePhase)

// WithLogger configures a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(b *BasePhase) {
		b.logger = logger
	}
}

func newBasePhase(name string, opts ...Option) BasePhase {
	base := BasePhase{
		name:   name,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&base)
	}
	base.logger = base.logger.With("phase", name)
	return base
}

// Name returns the phase name
func (b BasePhase) Name() string {
	return b.name
}

func (b BasePhase) checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("phase %s: %w", b.name, err)
	}
	return nil
}

func (b BasePhase) logStart(inputLength int) time.Time {
	b.logger.Info("Starting phase execution", "input_length", inputLength)
	return time.Now()
}

func (b BasePhase) logComplete(start time.Time, attrs ...any) {
	attrs = append([]any{"duration_ms", time.Since(start).Milliseconds()}, attrs...)
	b.logger.Info("Phase completed successfully", attrs...)
}

func (b BasePhase) logError(start time.Time, err error) {
	b.logger.Error("Phase execution failed",
		"duration_ms", time.Since(start).Milliseconds(),
		"error", err)
}
