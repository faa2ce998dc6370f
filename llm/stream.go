package llm

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// Stream yields StreamEvent values until io.EOF.
//
// Implementations return io.EOF once the stream finishes normally, i.e.
// after a done event was delivered. A stream that ends without a done
// event surfaces an *LLMError of kind ErrKindInterrupted instead.
type Stream interface {
	Recv() (StreamEvent, error)
	Close() error
}

var ErrStreamClosed = errors.New("llm: stream closed")

type StreamEventKind string

const (
	StreamEventTextDelta StreamEventKind = "text_delta"
	StreamEventUsage     StreamEventKind = "usage"
	StreamEventDone      StreamEventKind = "done"
)

type StreamEvent struct {
	Kind StreamEventKind

	TextDelta    string
	FinishReason FinishReason
	Usage        *Usage

	RawJSON json.RawMessage
}

func (e StreamEvent) Done() bool { return e.Kind == StreamEventDone }

// Accumulator rebuilds a final response from a sequence of stream events.
type Accumulator struct {
	text         strings.Builder
	finishReason FinishReason
	usage        *Usage
	done         bool
}

func (a *Accumulator) Apply(ev StreamEvent) {
	switch ev.Kind {
	case StreamEventTextDelta:
		a.text.WriteString(ev.TextDelta)
	case StreamEventUsage:
		if ev.Usage != nil {
			u := *ev.Usage
			a.usage = &u
		}
	case StreamEventDone:
		a.done = true
		if ev.FinishReason != "" {
			a.finishReason = ev.FinishReason
		}
		if ev.Usage != nil {
			u := *ev.Usage
			a.usage = &u
		}
	}
}

// Text returns the concatenation of all text deltas applied so far.
func (a *Accumulator) Text() string { return a.text.String() }

// Done reports whether a done event has been applied.
func (a *Accumulator) Done() bool { return a.done }

func (a *Accumulator) FinalResponse() ChatResponse {
	return ChatResponse{
		Text:         a.text.String(),
		FinishReason: a.finishReason,
		Usage:        a.usage,
	}
}

// DrainStream consumes stream to completion and returns the reconstructed
// response. The stream is closed in all cases.
func DrainStream(stream Stream) (ChatResponse, error) {
	defer stream.Close()

	var acc Accumulator
	for {
		ev, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return ChatResponse{}, err
		}
		acc.Apply(ev)
	}
	return acc.FinalResponse(), nil
}
