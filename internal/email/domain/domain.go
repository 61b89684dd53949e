package domain

import (
	"context"
	"errors"
	"fmt"
)

// Message is one outbound notification, built per dispatch attempt and never
// persisted here. CorrelationID ties it back to the originating referral for
// tracing.
type Message struct {
	From          string
	To            string
	Subject       string
	Text          string
	HTML          string
	CorrelationID string
}

// Result is returned when a provider accepts a message. ProviderRef is the
// provider-side reference (message id) kept for audit.
type Result struct {
	ProviderRef string
}

// Sender is a pluggable transport. Implementations encapsulate credentials
// and connection setup; the provider is chosen once at startup, callers are
// provider-agnostic.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) (Result, error)
}

// FailureKind drives retry policy: transient failures may be retried,
// rejections may not.
type FailureKind int

const (
	// FailureTransient covers network and provider-side errors where a
	// later attempt could succeed.
	FailureTransient FailureKind = iota
	// FailureRejected covers hard validation errors: the message itself is
	// invalid and retrying cannot help.
	FailureRejected
)

func (k FailureKind) String() string {
	if k == FailureRejected {
		return "rejected"
	}
	return "transient"
}

// SendError is the classified failure of one send attempt.
type SendError struct {
	Kind     FailureKind
	Provider string
	Err      error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("%s send %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

// Rejected wraps err as a non-retryable failure.
func Rejected(provider string, err error) *SendError {
	return &SendError{Kind: FailureRejected, Provider: provider, Err: err}
}

// Transient wraps err as a retryable failure.
func Transient(provider string, err error) *SendError {
	return &SendError{Kind: FailureTransient, Provider: provider, Err: err}
}

// IsRejected reports whether err is a classified rejection.
func IsRejected(err error) bool {
	var se *SendError
	return errors.As(err, &se) && se.Kind == FailureRejected
}

// IsTransient reports whether err should be treated as retryable. Unknown
// errors count as transient; only an explicit rejection stops the retry
// loop early.
func IsTransient(err error) bool {
	return err != nil && !IsRejected(err)
}
