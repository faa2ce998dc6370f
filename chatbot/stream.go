package chatbot

import (
	"errors"
	"io"
	"strings"

	"github.com/djvolz/oci-genai-chatbot/llm"
)

// TextStream delivers a finite, non-restartable sequence of text
// fragments in arrival order. Recv returns io.EOF after the final
// fragment, at which point the concatenated text has been committed to
// the owning client's transcript as one assistant turn.
//
// A consumer that stops early and calls Close leaves the transcript
// without that assistant turn; so does a stream that ends before its
// terminal marker, which Recv reports as ErrStreamInterrupted.
type TextStream struct {
	client *Client
	stream llm.Stream

	buf       strings.Builder
	sawFinish bool
	committed bool
	closed    bool
}

// Recv returns the next text fragment, or io.EOF once the response is
// complete.
func (s *TextStream) Recv() (string, error) {
	if s.closed {
		return "", llm.ErrStreamClosed
	}
	for {
		ev, err := s.stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if s.sawFinish {
					s.commit()
					return "", io.EOF
				}
				return "", ErrStreamInterrupted
			}
			if le, ok := llm.AsLLMError(err); ok && le.Kind == llm.ErrKindInterrupted {
				return "", ErrStreamInterrupted
			}
			return "", &ProviderError{Op: "chat stream", Err: err}
		}

		switch ev.Kind {
		case llm.StreamEventTextDelta:
			s.buf.WriteString(ev.TextDelta)
			return ev.TextDelta, nil
		case llm.StreamEventDone:
			s.sawFinish = true
		}
	}
}

// Text returns the fragments received so far, concatenated.
func (s *TextStream) Text() string { return s.buf.String() }

// Close releases the underlying stream. It never commits a partial
// response.
func (s *TextStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.stream.Close()
}

func (s *TextStream) commit() {
	if s.committed {
		return
	}
	s.committed = true
	s.client.history = append(s.client.history, llm.Assistant(s.buf.String()))
	s.client.trimHistory()
}
