package agent

import (
	"context"
	"time"
)

const (
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 2 * time.Second
)

// RetryPolicy controls how many times a completion is attempted and how long
// to wait before each retry.
type RetryPolicy struct {
	// MaxAttempts counts every call, including the first.
	MaxAttempts int
	// Delay returns the wait before retry n, where n starts at 1.
	Delay func(retry int) time.Duration
	// Sleep waits for d or until ctx is done.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy makes three attempts with a fixed two second pause.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		Delay:       FixedDelay(DefaultRetryDelay),
		Sleep:       SleepContext,
	}
}

// FixedDelay waits d before every retry.
func FixedDelay(d time.Duration) func(int) time.Duration {
	return func(int) time.Duration { return d }
}

// SleepContext blocks for d, returning early with ctx.Err() if ctx ends first.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.Delay == nil {
		p.Delay = FixedDelay(DefaultRetryDelay)
	}
	if p.Sleep == nil {
		p.Sleep = SleepContext
	}
	return p
}
