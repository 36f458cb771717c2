package agent

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoAPIKey is returned when a network provider is built without a key.
var ErrNoAPIKey = errors.New("API key not configured")

// TransportError covers network failures and timeouts.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RateLimitError is returned when the service rejects a call for quota reasons.
type RateLimitError struct {
	RetryAfter time.Duration
	Body       string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited (retry after %v): %s", e.RetryAfter, e.Body)
	}
	return fmt.Sprintf("rate limited: %s", e.Body)
}

// ServiceError is a non-2xx response or an envelope that could not be read.
type ServiceError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ServiceError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("service error (status %d): %v", e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("service error: %v", e.Err)
	default:
		return fmt.Sprintf("service error (status %d): %s", e.StatusCode, e.Body)
	}
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// ExhaustedError is returned once every attempt allowed by the retry policy
// has failed. It wraps the error of the final attempt.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("completion failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// IsRetryable reports whether err is one of the adapter-level kinds the
// retry policy applies to.
func IsRetryable(err error) bool {
	var (
		transport *TransportError
		limited   *RateLimitError
		service   *ServiceError
	)
	return errors.As(err, &transport) || errors.As(err, &limited) || errors.As(err, &service)
}
