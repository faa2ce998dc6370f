package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	}
}

func TestDoJSON_RetriesUntilSuccess(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		switch calls {
		case 1:
			w.WriteHeader(http.StatusInternalServerError)
		case 2:
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"ok":true}`))
		}
	}))
	defer srv.Close()

	c, err := New(srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	c.Retry = fastRetry()

	resp, raw, err := c.DoJSON(context.Background(), http.MethodPost, "/things", nil, map[string]string{"a": "b"})
	if err != nil {
		t.Fatalf("DoJSON() err=%v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	if calls != 3 {
		t.Fatalf("calls=%d, want 3", calls)
	}
	var body struct{ OK bool }
	if err := json.Unmarshal(raw, &body); err != nil || !body.OK {
		t.Fatalf("body=%q err=%v", raw, err)
	}
}

func TestDoJSON_NoRetryOnClientError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Opc-Request-Id", "req-123")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":"InvalidParameter","message":"bad model"}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	c.Retry = fastRetry()

	_, raw, err := c.DoJSON(context.Background(), http.MethodPost, "/things", nil, nil)
	var se *HTTPStatusError
	if !errors.As(err, &se) {
		t.Fatalf("err=%v, want *HTTPStatusError", err)
	}
	if se.StatusCode != http.StatusBadRequest {
		t.Fatalf("status=%d", se.StatusCode)
	}
	if se.RequestID() != "req-123" {
		t.Fatalf("RequestID()=%q", se.RequestID())
	}
	if calls != 1 {
		t.Fatalf("calls=%d, want 1", calls)
	}
	if len(raw) == 0 {
		t.Fatalf("error body not returned")
	}
}

type headerSigner struct{ calls int }

func (s *headerSigner) Sign(r *http.Request) error {
	s.calls++
	r.Header.Set("Authorization", "Signature keyId=test")
	return nil
}

func TestNewRequest_HeadersAndSigner(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer srv.Close()

	c, err := New(srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	c.UserAgent = "kit-test/1"
	signer := &headerSigner{}
	c.Signer = signer

	if _, _, err := c.DoJSON(context.Background(), http.MethodPost, "/things", http.Header{"X-Extra": {"v"}}, nil); err != nil {
		t.Fatalf("DoJSON() err=%v", err)
	}
	if signer.calls != 1 {
		t.Fatalf("signer calls=%d", signer.calls)
	}
	if got.Get("Authorization") != "Signature keyId=test" {
		t.Fatalf("Authorization=%q", got.Get("Authorization"))
	}
	if got.Get("User-Agent") != "kit-test/1" {
		t.Fatalf("User-Agent=%q", got.Get("User-Agent"))
	}
	if got.Get("Opc-Request-Id") == "" {
		t.Fatalf("Opc-Request-Id not set")
	}
	if got.Get("X-Extra") != "v" {
		t.Fatalf("X-Extra=%q", got.Get("X-Extra"))
	}
}

func TestDoStream_StatusError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := New(srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	c.Retry = fastRetry()

	_, err = c.DoStream(context.Background(), http.MethodPost, "/things", nil, nil)
	var se *HTTPStatusError
	if !errors.As(err, &se) {
		t.Fatalf("err=%v, want *HTTPStatusError", err)
	}
	// Streams are never retried, even for retryable statuses.
	if calls != 1 {
		t.Fatalf("calls=%d, want 1", calls)
	}
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	if _, err := New("/not-absolute", nil); err == nil {
		t.Fatalf("New() accepted relative url")
	}
}

func TestJoinPath(t *testing.T) {
	cases := []struct{ a, b, want string }{
		{"", "/x", "/x"},
		{"/base", "", "/base"},
		{"/base", "/x", "/base/x"},
		{"/base/", "/x", "/base/x"},
		{"/base", "x", "/base/x"},
	}
	for _, tc := range cases {
		if got := joinPath(tc.a, tc.b); got != tc.want {
			t.Fatalf("joinPath(%q, %q)=%q, want %q", tc.a, tc.b, got, tc.want)
		}
	}
}
