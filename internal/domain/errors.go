package domain

import "fmt"

// ErrorKind classifies a decision failure for routing and HTTP mapping.
type ErrorKind string

const (
	// ErrDataKind covers unknown products and missing required fields.
	// Surfaced immediately, never retried.
	ErrDataKind ErrorKind = "data_error"

	// ErrCalculationKind covers insufficient demand history and invalid
	// statistical parameters. Indicates a caller or config bug.
	ErrCalculationKind ErrorKind = "calculation_error"

	// ErrReasoningKind is surfaced when every configured provider has been
	// exhausted.
	ErrReasoningKind ErrorKind = "reasoning_error"

	// ErrActionKind marks a malformed recommendation reaching the action
	// builder. Should be unreachable when recommendation validation holds.
	ErrActionKind ErrorKind = "action_error"
)

// DecisionError is the terminal error carried by a failed DecisionResult.
type DecisionError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`

	cause error
}

func (e *DecisionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As checks.
func (e *DecisionError) Unwrap() error { return e.cause }

// NewDecisionError wraps an underlying error with a kind.
func NewDecisionError(kind ErrorKind, err error) *DecisionError {
	return &DecisionError{Kind: kind, Message: err.Error(), cause: err}
}

// ClientError reports whether the failure maps to a client-side (4xx) cause.
func (e *DecisionError) ClientError() bool {
	return e.Kind == ErrDataKind || e.Kind == ErrCalculationKind
}

// ValidationError reports an input parameter that violated its precondition.
type ValidationError struct {
	Param  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Reason)
}
