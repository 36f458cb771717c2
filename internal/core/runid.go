package core

import "context"

type runIDKey struct{}

// ContextWithRunID makes Run use id instead of generating a new one.
func ContextWithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

func (o *Orchestrator) runIDFor(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey{}).(string); ok && id != "" {
		return id
	}
	return o.newRunID()
}

// NewRunID returns a fresh run ID from the configured generator.
func (o *Orchestrator) NewRunID() string {
	return o.newRunID()
}
