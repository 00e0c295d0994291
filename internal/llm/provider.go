// Package llm wraps text-generation providers behind a uniform
// "produce a structured recommendation from numeric context" contract,
// with ordered failover, bounded retry, and malformed-output recovery.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Provider is a single text-generation backend.
type Provider interface {
	// Name identifies the provider for provenance tagging and logs.
	Name() string

	// Generate sends a prompt and returns the raw, unstructured response
	// text. Transient failures (network, timeouts, 5xx) are retryable;
	// configuration failures (bad credentials) are wrapped in
	// PermanentError and not retried within this provider.
	Generate(ctx context.Context, prompt string) (string, error)
}

// PermanentError marks a provider failure that retrying cannot fix,
// e.g. rejected credentials. Failover still proceeds to the next provider.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// IsPermanent reports whether err carries a PermanentError.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// ErrNoProviderConfigured is returned when the provider chain is empty.
var ErrNoProviderConfigured = errors.New("no llm providers configured: set GEMINI_API_KEY or GROQ_API_KEY")

// AllProvidersFailedError is returned when every configured provider was
// exhausted without producing a valid recommendation.
type AllProvidersFailedError struct {
	Attempted []string
	LastErr   error
}

func (e *AllProvidersFailedError) Error() string {
	return fmt.Sprintf("all llm providers failed (tried %v): %v", e.Attempted, e.LastErr)
}

func (e *AllProvidersFailedError) Unwrap() error { return e.LastErr }
