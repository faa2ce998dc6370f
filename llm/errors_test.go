package llm

import (
	"errors"
	"fmt"
	"testing"
)

func TestLLMError(t *testing.T) {
	cause := errors.New("connection reset")
	err := &LLMError{
		Provider:  "ocigenai",
		Kind:      ErrKindRateLimit,
		Message:   "too many requests",
		Retryable: true,
		Cause:     cause,
	}

	if got := err.Error(); got != "llm ocigenai: too many requests" {
		t.Fatalf("Error()=%q", got)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause not unwrapped")
	}

	wrapped := fmt.Errorf("chat: %w", err)
	if !IsRateLimit(wrapped) {
		t.Fatalf("IsRateLimit=false through wrapping")
	}
	if !IsRetryable(wrapped) {
		t.Fatalf("IsRetryable=false through wrapping")
	}
	if IsAuth(wrapped) {
		t.Fatalf("IsAuth=true for a rate limit error")
	}

	e, ok := AsLLMError(wrapped)
	if !ok || e.Kind != ErrKindRateLimit {
		t.Fatalf("AsLLMError=%+v, %v", e, ok)
	}
}

func TestLLMError_MessageFallsBackToKind(t *testing.T) {
	err := &LLMError{Kind: ErrKindTimeout}
	if got := err.Error(); got != "llm: timeout" {
		t.Fatalf("Error()=%q", got)
	}
}
