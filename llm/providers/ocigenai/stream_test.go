package ocigenai

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/djvolz/oci-genai-chatbot/llm"
)

func sseServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "text/event-stream" {
			t.Errorf("Accept=%q", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte(body))
	}))
}

func TestChatStream_Cohere(t *testing.T) {
	srv := sseServer(t, ""+
		"data: {\"apiFormat\":\"COHERE\",\"text\":\"Hel\"}\n\n"+
		"data: {\"apiFormat\":\"COHERE\",\"text\":\"lo\"}\n\n"+
		"data: {\"apiFormat\":\"COHERE\",\"text\":\"Hello\",\"finishReason\":\"COMPLETE\"}\n\n")
	defer srv.Close()

	p := newTestProvider(t, srv)
	s, err := p.ChatStream(context.Background(), llm.ChatRequest{Messages: []llm.Message{llm.User("hi")}})
	if err != nil {
		t.Fatalf("ChatStream() err=%v", err)
	}
	defer s.Close()

	var acc llm.Accumulator
	for {
		ev, err := s.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Recv() err=%v", err)
		}
		acc.Apply(ev)
	}

	// The terminal event repeats the full text; only the deltas count.
	if acc.Text() != "Hello" {
		t.Fatalf("Text()=%q", acc.Text())
	}
	if !acc.Done() {
		t.Fatalf("Done()=false")
	}
	if resp := acc.FinalResponse(); resp.FinishReason != llm.FinishReasonStop {
		t.Fatalf("FinishReason=%q", resp.FinishReason)
	}
}

func TestChatStream_Generic(t *testing.T) {
	srv := sseServer(t, ""+
		"data: {\"apiFormat\":\"GENERIC\",\"message\":{\"role\":\"ASSISTANT\",\"content\":[{\"type\":\"TEXT\",\"text\":\"Hi\"}]}}\n\n"+
		"data: {\"apiFormat\":\"GENERIC\",\"finishReason\":\"stop\"}\n\n")
	defer srv.Close()

	p := newTestProvider(t, srv)
	s, err := p.ChatStream(context.Background(), llm.ChatRequest{
		Model:    "meta.llama-3.1-70b-instruct",
		Messages: []llm.Message{llm.User("hi")},
	})
	if err != nil {
		t.Fatalf("ChatStream() err=%v", err)
	}

	resp, err := llm.DrainStream(s)
	if err != nil {
		t.Fatalf("DrainStream() err=%v", err)
	}
	if resp.Text != "Hi" {
		t.Fatalf("Text=%q", resp.Text)
	}
	if resp.FinishReason != llm.FinishReasonStop {
		t.Fatalf("FinishReason=%q", resp.FinishReason)
	}
}

func TestChatStream_Interrupted(t *testing.T) {
	srv := sseServer(t, "data: {\"apiFormat\":\"COHERE\",\"text\":\"Hel\"}\n\n")
	defer srv.Close()

	p := newTestProvider(t, srv)
	s, err := p.ChatStream(context.Background(), llm.ChatRequest{Messages: []llm.Message{llm.User("hi")}})
	if err != nil {
		t.Fatalf("ChatStream() err=%v", err)
	}
	defer s.Close()

	ev, err := s.Recv()
	if err != nil || ev.TextDelta != "Hel" {
		t.Fatalf("Recv()=%+v, %v", ev, err)
	}

	_, err = s.Recv()
	var le *llm.LLMError
	if !errors.As(err, &le) || le.Kind != llm.ErrKindInterrupted {
		t.Fatalf("err=%v, want interrupted LLMError", err)
	}
}

func TestChatStream_RecvAfterClose(t *testing.T) {
	srv := sseServer(t, "data: {\"apiFormat\":\"COHERE\",\"text\":\"x\",\"finishReason\":\"COMPLETE\"}\n\n")
	defer srv.Close()

	p := newTestProvider(t, srv)
	s, err := p.ChatStream(context.Background(), llm.ChatRequest{Messages: []llm.Message{llm.User("hi")}})
	if err != nil {
		t.Fatalf("ChatStream() err=%v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() err=%v", err)
	}
	if _, err := s.Recv(); !errors.Is(err, llm.ErrStreamClosed) {
		t.Fatalf("Recv() after Close err=%v", err)
	}
}

func TestChatStream_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"code":"TooManyRequests","message":"slow down"}`))
	}))
	defer srv.Close()

	p := newTestProvider(t, srv)
	_, err := p.ChatStream(context.Background(), llm.ChatRequest{Messages: []llm.Message{llm.User("hi")}})

	var le *llm.LLMError
	if !errors.As(err, &le) || le.Kind != llm.ErrKindRateLimit {
		t.Fatalf("err=%v, want rate limit LLMError", err)
	}
	if !llm.IsRetryable(err) {
		t.Fatalf("IsRetryable=false for %v", err)
	}
}

func TestSSEDecoder(t *testing.T) {
	in := "" +
		": keepalive comment\n" +
		"event: message\n" +
		"data: {\"a\":1}\n" +
		"\n" +
		"data: part one\n" +
		"data: part two\n" +
		"\n" +
		"data: trailing without blank line"

	dec := newSSEDecoder(strings.NewReader(in))

	got, err := dec.Next()
	if err != nil || string(got) != `{"a":1}` {
		t.Fatalf("Next()=%q, %v", got, err)
	}
	got, err = dec.Next()
	if err != nil || string(got) != "part one\npart two" {
		t.Fatalf("Next()=%q, %v", got, err)
	}
	got, err = dec.Next()
	if err != nil || string(got) != "trailing without blank line" {
		t.Fatalf("Next()=%q, %v", got, err)
	}
	if _, err = dec.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("Next() err=%v, want io.EOF", err)
	}
}
