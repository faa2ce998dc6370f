package llm

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	ErrKindAuth        ErrorKind = "auth"
	ErrKindRateLimit   ErrorKind = "rate_limit"
	ErrKindBadRequest  ErrorKind = "bad_request"
	ErrKindNotFound    ErrorKind = "not_found"
	ErrKindServer      ErrorKind = "server"
	ErrKindTimeout     ErrorKind = "timeout"
	ErrKindCanceled    ErrorKind = "canceled"
	ErrKindParse       ErrorKind = "parse"
	ErrKindInterrupted ErrorKind = "interrupted"
	ErrKindUnknown     ErrorKind = "unknown"
)

// LLMError is a provider-agnostic error container: stable classification,
// raw payload access and retry hints.
type LLMError struct {
	Provider string
	Kind     ErrorKind

	HTTPStatus   int
	ProviderCode string
	RequestID    string
	Message      string

	Retryable bool

	// Raw is the raw error payload (e.g. the HTTP response body), when one
	// was available.
	Raw []byte

	Cause error
}

func (e *LLMError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Provider != "" {
		return fmt.Sprintf("llm %s: %s", e.Provider, msg)
	}
	return fmt.Sprintf("llm: %s", msg)
}

func (e *LLMError) Unwrap() error { return e.Cause }

func AsLLMError(err error) (*LLMError, bool) {
	var e *LLMError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsAuth reports whether err is an authentication/authorization failure.
func IsAuth(err error) bool {
	e, ok := AsLLMError(err)
	return ok && e.Kind == ErrKindAuth
}

// IsRateLimit reports whether err is a quota/throttling failure.
func IsRateLimit(err error) bool {
	e, ok := AsLLMError(err)
	return ok && e.Kind == ErrKindRateLimit
}

// IsRetryable reports whether the provider considers err transient.
func IsRetryable(err error) bool {
	e, ok := AsLLMError(err)
	return ok && e.Retryable
}
