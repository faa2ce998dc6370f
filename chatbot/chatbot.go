// Package chatbot is a conversational client for the OCI Generative AI
// service. A Client holds generation settings and an in-memory transcript,
// and exposes chat, streaming chat and embedding operations over a
// pluggable llm.Provider backend.
//
// A Client is not safe for concurrent use: it keeps a single conversation
// with at most one request in flight. Callers that need parallel
// conversations create one Client per conversation. Cancellation and
// timeouts are the caller's, via context.
package chatbot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/djvolz/oci-genai-chatbot/llm"
)

// Config holds the client settings. Values are fixed at construction and
// mutable only through the Set* methods between requests.
type Config struct {
	// ProviderTag selects the backend from the llm registry.
	ProviderTag string

	Model          string
	EmbeddingModel string

	// Temperature in [0,2] controls sampling randomness.
	Temperature float64

	// MaxTokens bounds the generated completion length. Must be positive.
	MaxTokens int

	// CompartmentID scopes every request to an OCI compartment. Defaults
	// to the OCI_COMPARTMENT_ID environment variable. Requests are
	// rejected locally when it is empty.
	CompartmentID string

	// HistoryLimit caps the transcript at the most recent turns; a leading
	// system turn is always preserved. Zero disables trimming.
	HistoryLimit int

	// Credential/endpoint selection, passed through to the provider.
	CredentialsFile string
	Profile         string
	Region          string
	Endpoint        string

	HTTPClient *http.Client
	Logger     *slog.Logger
}

func DefaultConfig() Config {
	return Config{
		ProviderTag:    "ocigenai",
		Model:          "cohere.command-r-plus",
		EmbeddingModel: "cohere.embed-multilingual-v3.0",
		Temperature:    0.7,
		MaxTokens:      500,
		CompartmentID:  os.Getenv("OCI_COMPARTMENT_ID"),
		HistoryLimit:   20,
	}
}

type Client struct {
	cfg      Config
	provider llm.Provider
	history  []llm.Message
}

type Option func(*Client) error

func WithConfig(cfg Config) Option {
	return func(c *Client) error {
		c.cfg = cfg
		return nil
	}
}

func WithModel(model string) Option {
	return func(c *Client) error {
		c.cfg.Model = model
		return nil
	}
}

func WithEmbeddingModel(model string) Option {
	return func(c *Client) error {
		c.cfg.EmbeddingModel = model
		return nil
	}
}

func WithTemperature(t float64) Option {
	return func(c *Client) error {
		c.cfg.Temperature = t
		return nil
	}
}

func WithMaxTokens(n int) Option {
	return func(c *Client) error {
		c.cfg.MaxTokens = n
		return nil
	}
}

func WithCompartmentID(id string) Option {
	return func(c *Client) error {
		c.cfg.CompartmentID = id
		return nil
	}
}

func WithHistoryLimit(n int) Option {
	return func(c *Client) error {
		c.cfg.HistoryLimit = n
		return nil
	}
}

// WithProvider injects a constructed backend, bypassing the registry.
// Tests use this to supply fakes.
func WithProvider(p llm.Provider) Option {
	return func(c *Client) error {
		c.provider = p
		return nil
	}
}

// New builds a Client. Unless a provider was injected, the backend is
// resolved from the llm registry exactly once, here.
func New(opts ...Option) (*Client, error) {
	c := &Client{cfg: DefaultConfig()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if err := validateConfig(c.cfg); err != nil {
		return nil, err
	}

	if c.provider == nil {
		p, err := llm.NewProvider(c.cfg.ProviderTag, llm.ProviderConfig{
			CompartmentID:   c.cfg.CompartmentID,
			Region:          c.cfg.Region,
			Endpoint:        c.cfg.Endpoint,
			CredentialsFile: c.cfg.CredentialsFile,
			Profile:         c.cfg.Profile,
			HTTPClient:      c.cfg.HTTPClient,
			Logger:          c.cfg.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("chatbot: constructing provider %q: %w", c.cfg.ProviderTag, err)
		}
		c.provider = p
	}
	return c, nil
}

func validateConfig(cfg Config) error {
	if cfg.Model == "" {
		return &ConfigurationError{Reason: "model must not be empty"}
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return &ConfigurationError{Reason: fmt.Sprintf("temperature %v outside [0,2]", cfg.Temperature)}
	}
	if cfg.MaxTokens <= 0 {
		return &ConfigurationError{Reason: fmt.Sprintf("max tokens %d must be positive", cfg.MaxTokens)}
	}
	return nil
}

// Config returns a copy of the current settings.
func (c *Client) Config() Config { return c.cfg }

// SetModel changes the chat model for subsequent requests.
func (c *Client) SetModel(model string) error {
	if model == "" {
		return &ConfigurationError{Reason: "model must not be empty"}
	}
	c.cfg.Model = model
	return nil
}

func (c *Client) SetTemperature(t float64) error {
	if t < 0 || t > 2 {
		return &ConfigurationError{Reason: fmt.Sprintf("temperature %v outside [0,2]", t)}
	}
	c.cfg.Temperature = t
	return nil
}

func (c *Client) SetMaxTokens(n int) error {
	if n <= 0 {
		return &ConfigurationError{Reason: fmt.Sprintf("max tokens %d must be positive", n)}
	}
	c.cfg.MaxTokens = n
	return nil
}

func (c *Client) SetCompartmentID(id string) {
	c.cfg.CompartmentID = id
}

// RequestOption adjusts a single chat or embedding call.
type RequestOption func(*requestConfig)

type requestConfig struct {
	systemPrompt   string
	embeddingModel string
}

// WithSystemPrompt seeds the transcript with a system turn. It only takes
// effect on an empty transcript; supplying a different prompt later is a
// configuration error (see nextTurns).
func WithSystemPrompt(prompt string) RequestOption {
	return func(rc *requestConfig) { rc.systemPrompt = prompt }
}

// WithRequestEmbeddingModel overrides the configured embedding model for
// one call.
func WithRequestEmbeddingModel(model string) RequestOption {
	return func(rc *requestConfig) { rc.embeddingModel = model }
}

func applyRequestOptions(opts []RequestOption) requestConfig {
	var rc requestConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&rc)
		}
	}
	return rc
}

// Chat sends message with the full transcript and returns the assistant's
// reply. The user turn (and system turn, if any) and the assistant turn
// are appended to the transcript only when the request succeeds, so a
// failed call leaves the conversation state unchanged.
func (c *Client) Chat(ctx context.Context, message string, opts ...RequestOption) (string, error) {
	rc := applyRequestOptions(opts)
	if err := c.checkCompartment(); err != nil {
		return "", err
	}
	full, added, err := c.nextTurns(message, rc.systemPrompt)
	if err != nil {
		return "", err
	}

	resp, err := c.provider.Chat(ctx, c.chatRequest(full))
	if err != nil {
		return "", &ProviderError{Op: "chat", Err: err}
	}

	c.history = append(c.history, added...)
	c.history = append(c.history, llm.Assistant(resp.Text))
	c.trimHistory()
	return resp.Text, nil
}

// ChatStream sends message and returns a stream of incremental text
// fragments. The user turn is recorded as soon as the stream opens; the
// assistant turn is recorded only after the stream's terminal marker, so
// abandoning or cancelling a stream leaves the transcript without it.
func (c *Client) ChatStream(ctx context.Context, message string, opts ...RequestOption) (*TextStream, error) {
	rc := applyRequestOptions(opts)
	if err := c.checkCompartment(); err != nil {
		return nil, err
	}
	full, added, err := c.nextTurns(message, rc.systemPrompt)
	if err != nil {
		return nil, err
	}

	s, err := c.provider.ChatStream(ctx, c.chatRequest(full))
	if err != nil {
		return nil, &ProviderError{Op: "chat stream", Err: err}
	}

	c.history = append(c.history, added...)
	return &TextStream{client: c, stream: s}, nil
}

// EmbeddingResult is a single embedding vector.
type EmbeddingResult struct {
	Vector []float64
}

func (r EmbeddingResult) Dimension() int { return len(r.Vector) }

// Embedding embeds text. It does not touch the transcript.
func (c *Client) Embedding(ctx context.Context, text string, opts ...RequestOption) (EmbeddingResult, error) {
	rc := applyRequestOptions(opts)
	if err := c.checkCompartment(); err != nil {
		return EmbeddingResult{}, err
	}
	embedder, ok := c.provider.(llm.Embedder)
	if !ok {
		return EmbeddingResult{}, &ConfigurationError{Reason: fmt.Sprintf("provider %q does not support embeddings", c.cfg.ProviderTag)}
	}

	model := c.cfg.EmbeddingModel
	if rc.embeddingModel != "" {
		model = rc.embeddingModel
	}
	resp, err := embedder.Embed(ctx, llm.EmbeddingRequest{
		Model:         model,
		Inputs:        []string{text},
		CompartmentID: c.cfg.CompartmentID,
	})
	if err != nil {
		return EmbeddingResult{}, &ProviderError{Op: "embedding", Err: err}
	}
	if len(resp.Data) == 0 {
		return EmbeddingResult{}, &ProviderError{Op: "embedding", Err: fmt.Errorf("provider returned no vectors")}
	}
	return EmbeddingResult{Vector: resp.Data[0].Vector}, nil
}

// ResetHistory clears the transcript. It is idempotent.
func (c *Client) ResetHistory() {
	c.history = nil
}

// History returns a copy of the transcript.
func (c *Client) History() []llm.Message {
	return append([]llm.Message(nil), c.history...)
}

func (c *Client) checkCompartment() error {
	if c.cfg.CompartmentID == "" {
		return &ConfigurationError{Reason: "compartment id is required; set OCI_COMPARTMENT_ID or configure it explicitly"}
	}
	return nil
}

// nextTurns builds the outgoing transcript and the turns to append on
// success. A system prompt is accepted on an empty transcript, and as a
// no-op when it matches the existing system turn; anything else is
// rejected rather than silently replacing conversation context.
func (c *Client) nextTurns(message, systemPrompt string) (full, added []llm.Message, err error) {
	if systemPrompt != "" {
		switch {
		case len(c.history) == 0:
			added = append(added, llm.System(systemPrompt))
		case c.history[0].Role == llm.RoleSystem && c.history[0].Content == systemPrompt:
			// Same prompt resent on every call; nothing to do.
		default:
			return nil, nil, &ConfigurationError{Reason: "system prompt cannot change on a non-empty transcript; reset the conversation first"}
		}
	}
	added = append(added, llm.User(message))
	full = append(append([]llm.Message(nil), c.history...), added...)
	return full, added, nil
}

func (c *Client) chatRequest(msgs []llm.Message) llm.ChatRequest {
	temperature := c.cfg.Temperature
	maxTokens := c.cfg.MaxTokens
	return llm.ChatRequest{
		Model:         c.cfg.Model,
		Messages:      msgs,
		CompartmentID: c.cfg.CompartmentID,
		Temperature:   &temperature,
		MaxTokens:     &maxTokens,
	}
}

// trimHistory drops the oldest turns past the history limit, keeping a
// leading system turn in place.
func (c *Client) trimHistory() {
	limit := c.cfg.HistoryLimit
	if limit <= 0 {
		return
	}
	rest := c.history
	var sys []llm.Message
	if len(rest) > 0 && rest[0].Role == llm.RoleSystem {
		sys, rest = rest[:1], rest[1:]
	}
	if len(rest) <= limit {
		return
	}
	rest = rest[len(rest)-limit:]
	c.history = append(append([]llm.Message(nil), sys...), rest...)
}
