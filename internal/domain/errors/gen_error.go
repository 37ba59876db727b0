// Package errors defines error types and classification for the generation pipeline.
package errors

import (
	"errors"
	"fmt"
)

// Kind categorizes a generation error for retry and fallback decisions.
type Kind string

const (
	// Transient kinds - handled by backoff and model fallback.
	KindRateLimit     Kind = "RATE_LIMIT"
	KindUnavailable   Kind = "SERVICE_UNAVAILABLE"
	KindTransport     Kind = "TRANSPORT"
	KindEmptyResponse Kind = "EMPTY_RESPONSE"

	// Permanent model-output kinds - never retried at the normalizer level.
	KindMalformedOutput Kind = "MALFORMED_OUTPUT"
	KindMissingField    Kind = "MISSING_FIELD"

	// Permanent configuration and validation kinds - fail fast.
	KindQuotaExhausted Kind = "QUOTA_EXHAUSTED"
	KindModelNotFound  Kind = "MODEL_NOT_FOUND"
	KindCredentials    Kind = "CREDENTIALS"
	KindConfiguration  Kind = "CONFIGURATION"
	KindValidation     Kind = "VALIDATION"
	KindInternal       Kind = "INTERNAL"
)

// GenError is an error with a classified kind and an optional underlying cause.
type GenError struct {
	Kind    Kind
	Stage   string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *GenError) Error() string {
	prefix := string(e.Kind)
	if e.Stage != "" {
		prefix = fmt.Sprintf("%s[%s]", e.Kind, e.Stage)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying cause.
func (e *GenError) Unwrap() error {
	return e.Cause
}

// WithStage annotates the error with the pipeline stage it occurred in.
func (e *GenError) WithStage(stage string) *GenError {
	e.Stage = stage
	return e
}

// New creates a GenError with a kind and message.
func New(kind Kind, message string) *GenError {
	return &GenError{Kind: kind, Message: message}
}

// Wrap wraps an underlying error with a kind and message.
func Wrap(kind Kind, message string, cause error) *GenError {
	return &GenError{Kind: kind, Message: message, Cause: cause}
}

// KindOf returns the kind of err, or KindInternal when err carries no kind.
func KindOf(err error) Kind {
	var ge *GenError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// IsRetryable reports whether err is worth retrying with backoff.
// Quota exhaustion counts as retryable for the dispatcher (the fallback
// model runs in a separate quota domain) but trips the image breaker.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindRateLimit, KindUnavailable, KindTransport, KindEmptyResponse:
		return true
	default:
		return false
	}
}

// IsFallbackWorthy reports whether err justifies switching to the
// fallback model after the preferred model's retry budget is spent.
func IsFallbackWorthy(err error) bool {
	switch KindOf(err) {
	case KindRateLimit, KindQuotaExhausted, KindUnavailable, KindModelNotFound, KindEmptyResponse:
		return true
	default:
		return false
	}
}

// UserMessage translates an error into a short human-readable string,
// never exposing raw provider payloads.
func UserMessage(err error) string {
	switch KindOf(err) {
	case KindQuotaExhausted, KindRateLimit:
		return "generation quota exceeded - wait a while or check your API key plan"
	case KindCredentials:
		return "invalid credentials - check your API key or application password"
	case KindConfiguration:
		return "missing configuration - set the required API credentials in settings"
	case KindMalformedOutput, KindMissingField:
		return "the model did not return valid structured data - try again"
	case KindTransport:
		return "could not reach the remote service - check the site URL and network"
	case KindValidation:
		return "the generated content failed validation"
	default:
		return "generation failed - try again"
	}
}
