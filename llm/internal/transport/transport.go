// Package transport is the shared HTTP layer for llm providers: base URL
// resolution, default headers, request IDs, bounded retries and an optional
// request signer hook.
package transport

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"math/big"
	"net/http"
	"net/url"
	"time"
)

// Signer signs an outbound request in place. The OCI SDK's
// HTTPRequestSigner satisfies this interface directly.
type Signer interface {
	Sign(r *http.Request) error
}

type RetryConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

func DefaultRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 250 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
	}
}

type Client struct {
	HTTPClient *http.Client
	BaseURL    *url.URL

	DefaultHeaders http.Header
	UserAgent      string
	Logger         *slog.Logger
	Retry          RetryConfig

	// Signer, when set, signs every request after headers are final.
	Signer Signer
}

func New(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.New("transport: base url must be absolute")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	return &Client{
		HTTPClient:     httpClient,
		BaseURL:        u,
		DefaultHeaders: make(http.Header),
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Retry:          DefaultRetry(),
	}, nil
}

func (c *Client) resolve(path string) string {
	u := *c.BaseURL
	u.Path = joinPath(u.Path, path)
	return u.String()
}

// url.JoinPath cleans too aggressively for base URLs that carry a path.
func joinPath(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	aSlash := a[len(a)-1] == '/'
	bSlash := b[0] == '/'
	switch {
	case aSlash && bSlash:
		return a + b[1:]
	case !aSlash && !bSlash:
		return a + "/" + b
	default:
		return a + b
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, hdr http.Header, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	mergeHeaders(req.Header, c.DefaultHeaders)
	mergeHeaders(req.Header, hdr)
	if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if req.Header.Get("Opc-Request-Id") == "" {
		req.Header.Set("Opc-Request-Id", randomID())
	}
	if c.Signer != nil {
		if err := c.Signer.Sign(req); err != nil {
			return nil, err
		}
	}
	return req, nil
}

// DoJSON posts reqBody as JSON and returns the response body. Retryable
// failures (throttling, 5xx, transport errors) are retried with
// exponential backoff until the attempt budget is spent.
func (c *Client) DoJSON(ctx context.Context, method, path string, hdr http.Header, reqBody any) (*http.Response, []byte, error) {
	bodyBytes, err := marshalBody(reqBody)
	if err != nil {
		return nil, nil, err
	}

	attempts := c.Retry.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastRaw []byte
	for attempt := 1; ; attempt++ {
		resp, raw, err := c.doOnce(ctx, method, path, hdr, bodyBytes)
		if err == nil {
			return resp, raw, nil
		}
		lastRaw = raw
		if attempt == attempts || !shouldRetry(err) {
			return nil, lastRaw, err
		}

		sleep := backoff(c.Retry.InitialBackoff, c.Retry.MaxBackoff, attempt-1)
		c.Logger.Debug("llm http retry", "attempt", attempt, "sleep", sleep, "err", err)
		select {
		case <-ctx.Done():
			return nil, lastRaw, ctx.Err()
		case <-time.After(sleep):
		}
	}
}

// DoStream posts body as JSON and hands the live response back to the
// caller. Streaming requests are never retried: a consumer may already
// have observed part of the stream.
func (c *Client) DoStream(ctx context.Context, method, path string, hdr http.Header, body any) (*http.Response, error) {
	bodyBytes, err := marshalBody(body)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, method, path, hdr, bodyBytes)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	return nil, &HTTPStatusError{StatusCode: resp.StatusCode, Body: raw, Header: resp.Header.Clone()}
}

func (c *Client) doOnce(ctx context.Context, method, path string, hdr http.Header, bodyBytes []byte) (*http.Response, []byte, error) {
	req, err := c.newRequest(ctx, method, path, hdr, bodyBytes)
	if err != nil {
		return nil, nil, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, raw, nil
	}
	return nil, raw, &HTTPStatusError{StatusCode: resp.StatusCode, Body: raw, Header: resp.Header.Clone()}
}

func marshalBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	return json.Marshal(body)
}

type HTTPStatusError struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

func (e *HTTPStatusError) Error() string {
	return http.StatusText(e.StatusCode)
}

// RequestID returns the service-assigned request identifier, if any.
func (e *HTTPStatusError) RequestID() string {
	return e.Header.Get("Opc-Request-Id")
}

func shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *HTTPStatusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case http.StatusRequestTimeout, http.StatusTooManyRequests:
			return true
		case http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		default:
			return false
		}
	}
	// Transport and IO errors are generally worth one more try.
	return true
}

func backoff(initial, max time.Duration, attempt int) time.Duration {
	if initial <= 0 {
		initial = 250 * time.Millisecond
	}
	if max <= 0 {
		max = 2 * time.Second
	}
	d := time.Duration(float64(initial) * math.Pow(2, float64(attempt)))
	if d > max {
		d = max
	}
	return time.Duration(float64(d) * (1 + jitter(0.2)))
}

func jitter(maxFrac float64) float64 {
	n, err := rand.Int(rand.Reader, big.NewInt(1000))
	if err != nil {
		return 0
	}
	return (float64(n.Int64())/1000.0)*maxFrac - maxFrac/2
}

func mergeHeaders(dst, src http.Header) {
	for k, vs := range src {
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
}

func randomID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return ""
	}
	return hex.EncodeToString(b[:])
}
