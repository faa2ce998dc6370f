package llm

import (
	"errors"
	"io"
	"testing"
)

type sliceStream struct {
	events []StreamEvent
	err    error
	closed bool
}

func (s *sliceStream) Recv() (StreamEvent, error) {
	if len(s.events) > 0 {
		ev := s.events[0]
		s.events = s.events[1:]
		return ev, nil
	}
	if s.err != nil {
		return StreamEvent{}, s.err
	}
	return StreamEvent{}, io.EOF
}

func (s *sliceStream) Close() error {
	s.closed = true
	return nil
}

func TestAccumulator(t *testing.T) {
	var acc Accumulator
	acc.Apply(StreamEvent{Kind: StreamEventTextDelta, TextDelta: "Hel"})
	acc.Apply(StreamEvent{Kind: StreamEventTextDelta, TextDelta: "lo"})

	if acc.Done() {
		t.Fatalf("Done() before the done event")
	}
	acc.Apply(StreamEvent{
		Kind:         StreamEventDone,
		FinishReason: FinishReasonStop,
		Usage:        &Usage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5},
	})
	if !acc.Done() {
		t.Fatalf("Done() after the done event")
	}

	resp := acc.FinalResponse()
	if resp.Text != "Hello" {
		t.Fatalf("Text=%q", resp.Text)
	}
	if resp.FinishReason != FinishReasonStop {
		t.Fatalf("FinishReason=%q", resp.FinishReason)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 5 {
		t.Fatalf("Usage=%+v", resp.Usage)
	}
}

func TestDrainStream(t *testing.T) {
	s := &sliceStream{events: []StreamEvent{
		{Kind: StreamEventTextDelta, TextDelta: "a"},
		{Kind: StreamEventTextDelta, TextDelta: "b"},
		{Kind: StreamEventDone, FinishReason: FinishReasonLength},
	}}

	resp, err := DrainStream(s)
	if err != nil {
		t.Fatalf("DrainStream() err=%v", err)
	}
	if resp.Text != "ab" {
		t.Fatalf("Text=%q", resp.Text)
	}
	if resp.FinishReason != FinishReasonLength {
		t.Fatalf("FinishReason=%q", resp.FinishReason)
	}
	if !s.closed {
		t.Fatalf("stream not closed")
	}
}

func TestDrainStream_Error(t *testing.T) {
	want := &LLMError{Kind: ErrKindInterrupted, Message: "stream ended before completion"}
	s := &sliceStream{
		events: []StreamEvent{{Kind: StreamEventTextDelta, TextDelta: "a"}},
		err:    want,
	}

	_, err := DrainStream(s)
	var le *LLMError
	if !errors.As(err, &le) || le.Kind != ErrKindInterrupted {
		t.Fatalf("err=%v, want interrupted LLMError", err)
	}
	if !s.closed {
		t.Fatalf("stream not closed on error")
	}
}
