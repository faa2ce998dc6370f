package ocigenai

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/djvolz/oci-genai-chatbot/llm"
)

// streamChunk is the union of the per-event payloads both API formats
// emit. Cohere events carry "text" directly; generic events nest deltas
// under "message". The terminal event of either format carries a
// finishReason.
type streamChunk struct {
	APIFormat    string          `json:"apiFormat"`
	Text         string          `json:"text"`
	Message      *genericMessage `json:"message"`
	FinishReason string          `json:"finishReason"`
	Usage        *apiUsage       `json:"usage"`
}

type stream struct {
	provider string
	format   apiFormat
	resp     *http.Response
	dec      *sseDecoder

	closed    bool
	done      bool
	sawFinish bool
}

func newStream(provider string, format apiFormat, resp *http.Response) *stream {
	return &stream{
		provider: provider,
		format:   format,
		resp:     resp,
		dec:      newSSEDecoder(resp.Body),
	}
}

func (s *stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.resp != nil && s.resp.Body != nil {
		return s.resp.Body.Close()
	}
	return nil
}

func (s *stream) Recv() (llm.StreamEvent, error) {
	if s.closed {
		return llm.StreamEvent{}, llm.ErrStreamClosed
	}
	for {
		if s.done {
			return llm.StreamEvent{}, io.EOF
		}

		data, err := s.dec.Next()
		if err != nil {
			s.done = true
			if !errors.Is(err, io.EOF) {
				return llm.StreamEvent{}, &llm.LLMError{Provider: s.provider, Kind: llm.ErrKindUnknown, Message: "stream read failed", Cause: err}
			}
			if !s.sawFinish {
				// The connection closed before a terminal event arrived.
				return llm.StreamEvent{}, &llm.LLMError{Provider: s.provider, Kind: llm.ErrKindInterrupted, Message: "stream ended before completion"}
			}
			return llm.StreamEvent{}, io.EOF
		}

		data = bytes.TrimSpace(data)
		if len(data) == 0 {
			continue
		}

		var chunk streamChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			return llm.StreamEvent{}, &llm.LLMError{Provider: s.provider, Kind: llm.ErrKindParse, Message: "failed to decode stream event", Raw: append([]byte(nil), data...), Cause: err}
		}

		if chunk.FinishReason != "" {
			// Cohere's terminal event repeats the full text alongside the
			// finish reason; only the reason is new information here.
			s.sawFinish = true
			return llm.StreamEvent{
				Kind:         llm.StreamEventDone,
				FinishReason: mapFinishReason(chunk.FinishReason),
				Usage:        chunk.Usage.canonical(),
				RawJSON:      append([]byte(nil), data...),
			}, nil
		}

		delta := chunk.Text
		if delta == "" && chunk.Message != nil {
			delta = flattenContent(chunk.Message.Content)
		}
		if delta == "" {
			continue
		}
		return llm.StreamEvent{
			Kind:      llm.StreamEventTextDelta,
			TextDelta: delta,
			RawJSON:   append([]byte(nil), data...),
		}, nil
	}
}
