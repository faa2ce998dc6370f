package chatbot

import (
	"errors"
	"fmt"
)

// ConfigurationError reports a client-side configuration problem detected
// before any network call is made. It is never retried.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "chatbot: " + e.Reason
}

// ProviderError wraps any failure the backing provider returned:
// authentication, quota, malformed model id, network failure. The
// provider detail is preserved and reachable through errors.As.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("chatbot: %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ErrStreamInterrupted reports that a streaming response ended before its
// terminal marker was observed. The transcript is left without the
// partial assistant turn.
var ErrStreamInterrupted = errors.New("chatbot: stream interrupted before completion")
