package ocigenai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/djvolz/oci-genai-chatbot/llm"
	"github.com/djvolz/oci-genai-chatbot/llm/internal/transport"
)

// errorEnvelope is the service's error body: {"code": "...", "message": "..."}.
type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (p *Provider) mapError(err error) error {
	var le *llm.LLMError
	if errors.As(err, &le) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return &llm.LLMError{Provider: p.name, Kind: llm.ErrKindCanceled, Message: "request canceled", Cause: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &llm.LLMError{Provider: p.name, Kind: llm.ErrKindTimeout, Message: "request deadline exceeded", Retryable: true, Cause: err}
	}

	var se *transport.HTTPStatusError
	if errors.As(err, &se) {
		kind, retryable := classifyHTTP(se.StatusCode)
		var env errorEnvelope
		_ = json.Unmarshal(se.Body, &env)
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(se.StatusCode)
		}
		return &llm.LLMError{
			Provider:     p.name,
			Kind:         kind,
			HTTPStatus:   se.StatusCode,
			ProviderCode: env.Code,
			RequestID:    se.RequestID(),
			Message:      msg,
			Retryable:    retryable,
			Raw:          append([]byte(nil), se.Body...),
			Cause:        err,
		}
	}

	return &llm.LLMError{Provider: p.name, Kind: llm.ErrKindUnknown, Message: err.Error(), Retryable: true, Cause: err}
}

func classifyHTTP(status int) (llm.ErrorKind, bool) {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return llm.ErrKindAuth, false
	case http.StatusTooManyRequests:
		return llm.ErrKindRateLimit, true
	case http.StatusBadRequest:
		return llm.ErrKindBadRequest, false
	case http.StatusNotFound:
		return llm.ErrKindNotFound, false
	case http.StatusRequestTimeout:
		return llm.ErrKindTimeout, true
	default:
		if status >= 500 {
			return llm.ErrKindServer, true
		}
		return llm.ErrKindUnknown, false
	}
}
