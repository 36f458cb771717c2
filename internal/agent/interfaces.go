package agent

import "context"

// Provider makes exactly one completion call against a remote service.
// When structured is true the service is asked to emit a single JSON object.
type Provider interface {
	Complete(ctx context.Context, prompt string, structured bool) (string, error)
}
