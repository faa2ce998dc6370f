// Package ocigenai implements the llm.Provider contract on top of the OCI
// Generative AI inference API.
//
// One endpoint serves several model families; the provider maps canonical
// requests onto the Cohere or Generic API format depending on the model
// (see formatForModel) and signs requests with the caller's OCI credential
// profile.
package ocigenai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/oracle/oci-go-sdk/v65/common"

	"github.com/djvolz/oci-genai-chatbot/llm"
	"github.com/djvolz/oci-genai-chatbot/llm/internal/transport"
)

// ProviderTag is the registry tag this package registers under.
const ProviderTag = "ocigenai"

const (
	chatPath  = "/20231130/actions/chat"
	embedPath = "/20231130/actions/embedText"

	servingTypeOnDemand = "ON_DEMAND"
)

func init() {
	llm.Register(ProviderTag, func(cfg llm.ProviderConfig) (llm.Provider, error) {
		var opts []Option
		if cfg.CompartmentID != "" {
			opts = append(opts, WithCompartmentID(cfg.CompartmentID))
		}
		if cfg.Region != "" {
			opts = append(opts, WithRegion(cfg.Region))
		}
		if cfg.Endpoint != "" {
			opts = append(opts, WithEndpoint(cfg.Endpoint))
		}
		if cfg.CredentialsFile != "" || cfg.Profile != "" {
			opts = append(opts, WithConfigFile(cfg.CredentialsFile, cfg.Profile))
		}
		if cfg.HTTPClient != nil {
			opts = append(opts, WithHTTPClient(cfg.HTTPClient))
		}
		if cfg.Logger != nil {
			opts = append(opts, WithLogger(cfg.Logger))
		}
		return New(opts...)
	})
}

// RequestSigner signs outbound HTTP requests. The OCI SDK's
// common.HTTPRequestSigner satisfies it.
type RequestSigner = transport.Signer

type Provider struct {
	name string

	compartmentID string
	model         string

	region           string
	endpoint         string
	configFile       string
	profile          string
	configProvider   common.ConfigurationProvider
	signer           RequestSigner
	signerConfigured bool
	httpClient       *http.Client
	logger           *slog.Logger
	retry            transport.RetryConfig
	retryConfigured  bool

	tr *transport.Client
}

type Option func(*Provider) error

// WithCompartmentID sets the default compartment applied to requests that
// do not carry their own.
func WithCompartmentID(id string) Option {
	return func(p *Provider) error {
		p.compartmentID = id
		return nil
	}
}

// WithDefaultModel sets the model used when a request leaves Model empty.
func WithDefaultModel(model string) Option {
	return func(p *Provider) error {
		p.model = model
		return nil
	}
}

// WithRegion selects the regional inference endpoint, e.g. "us-chicago-1".
// Without it the region comes from the credential profile.
func WithRegion(region string) Option {
	return func(p *Provider) error {
		p.region = region
		return nil
	}
}

// WithEndpoint overrides the base URL entirely. Mostly useful for tests
// and dedicated AI cluster endpoints.
func WithEndpoint(endpoint string) Option {
	return func(p *Provider) error {
		p.endpoint = endpoint
		return nil
	}
}

// WithConfigFile selects the OCI credential file and profile to sign with.
// Empty values fall back to ~/.oci/config and the DEFAULT profile.
func WithConfigFile(path, profile string) Option {
	return func(p *Provider) error {
		p.configFile = path
		p.profile = profile
		return nil
	}
}

// WithConfigurationProvider supplies an explicit OCI configuration
// provider instead of the file-based default.
func WithConfigurationProvider(cp common.ConfigurationProvider) Option {
	return func(p *Provider) error {
		p.configProvider = cp
		return nil
	}
}

// WithRequestSigner replaces the credential-file signer. Passing nil
// disables signing; tests use this to talk to local fakes.
func WithRequestSigner(s RequestSigner) Option {
	return func(p *Provider) error {
		p.signer = s
		p.signerConfigured = true
		return nil
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) error {
		p.httpClient = c
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) error {
		if logger != nil {
			p.logger = logger
		}
		return nil
	}
}

func WithRetry(cfg transport.RetryConfig) Option {
	return func(p *Provider) error {
		p.retry = cfg
		p.retryConfigured = true
		return nil
	}
}

func New(opts ...Option) (*Provider, error) {
	p := &Provider{
		name:  ProviderTag,
		model: DefaultChatModel,
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	if !p.signerConfigured {
		cp := p.configProvider
		if cp == nil {
			cp = fileConfigProvider(p.configFile, p.profile)
		}
		if ok, err := common.IsConfigurationProviderValid(cp); !ok || err != nil {
			return nil, fmt.Errorf("ocigenai: invalid OCI configuration: %w", err)
		}
		p.signer = common.DefaultRequestSigner(cp)
		if p.region == "" && p.endpoint == "" {
			region, err := cp.Region()
			if err != nil {
				return nil, fmt.Errorf("ocigenai: region not configured: %w", err)
			}
			p.region = region
		}
	}

	if p.endpoint == "" {
		if p.region == "" {
			return nil, errors.New("ocigenai: a region or endpoint is required")
		}
		p.endpoint = fmt.Sprintf("https://inference.generativeai.%s.oci.oraclecloud.com", p.region)
	}

	tr, err := transport.New(p.endpoint, p.httpClient)
	if err != nil {
		return nil, err
	}
	tr.Signer = p.signer
	tr.UserAgent = "oci-genai-chatbot/1"
	if p.logger != nil {
		tr.Logger = p.logger
	}
	if p.retryConfigured {
		tr.Retry = p.retry
	}
	p.tr = tr

	return p, nil
}

func fileConfigProvider(path, profile string) common.ConfigurationProvider {
	if path == "" && profile == "" {
		return common.DefaultConfigProvider()
	}
	if path == "" {
		return common.CustomProfileConfigProvider("", profile)
	}
	return common.CustomProfileConfigProvider(path, profile)
}

func (p *Provider) Chat(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	req = p.withDefaults(req)
	if err := p.validate(req); err != nil {
		return llm.ChatResponse{}, err
	}

	body := p.chatDetails(req, false)
	_, raw, err := p.tr.DoJSON(ctx, http.MethodPost, chatPath, jsonHeaders(), body)
	if err != nil {
		return llm.ChatResponse{}, p.mapError(err)
	}

	var env chatEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return llm.ChatResponse{}, &llm.LLMError{Provider: p.name, Kind: llm.ErrKindParse, Message: "failed to decode chat response", Raw: raw, Cause: err}
	}
	resp, err := p.mapChatResponse(env, formatForModel(req.Model))
	if err != nil {
		return llm.ChatResponse{}, err
	}
	resp.RawJSON = append([]byte(nil), raw...)
	return resp, nil
}

func (p *Provider) ChatStream(ctx context.Context, req llm.ChatRequest) (llm.Stream, error) {
	req = p.withDefaults(req)
	if err := p.validate(req); err != nil {
		return nil, err
	}

	body := p.chatDetails(req, true)
	hdr := jsonHeaders()
	hdr.Set("Accept", "text/event-stream")

	resp, err := p.tr.DoStream(ctx, http.MethodPost, chatPath, hdr, body)
	if err != nil {
		return nil, p.mapError(err)
	}
	return newStream(p.name, formatForModel(req.Model), resp), nil
}

func (p *Provider) Embed(ctx context.Context, req llm.EmbeddingRequest) (llm.EmbeddingResponse, error) {
	if req.Model == "" {
		req.Model = DefaultEmbeddingModel
	}
	if req.CompartmentID == "" {
		req.CompartmentID = p.compartmentID
	}
	if req.CompartmentID == "" {
		return llm.EmbeddingResponse{}, &llm.LLMError{Provider: p.name, Kind: llm.ErrKindBadRequest, Message: "compartment id is required"}
	}
	if len(req.Inputs) == 0 {
		return llm.EmbeddingResponse{}, &llm.LLMError{Provider: p.name, Kind: llm.ErrKindBadRequest, Message: "inputs are required"}
	}

	body := embedTextDetails{
		Inputs:        req.Inputs,
		ServingMode:   servingMode{ServingType: servingTypeOnDemand, ModelID: req.Model},
		CompartmentID: req.CompartmentID,
		Truncate:      "END",
	}
	_, raw, err := p.tr.DoJSON(ctx, http.MethodPost, embedPath, jsonHeaders(), body)
	if err != nil {
		return llm.EmbeddingResponse{}, p.mapError(err)
	}

	var wresp embedTextResponse
	if err := json.Unmarshal(raw, &wresp); err != nil {
		return llm.EmbeddingResponse{}, &llm.LLMError{Provider: p.name, Kind: llm.ErrKindParse, Message: "failed to decode embedding response", Raw: raw, Cause: err}
	}

	out := llm.EmbeddingResponse{Model: wresp.ModelID, Usage: wresp.Usage.canonical()}
	for i, vec := range wresp.Embeddings {
		out.Data = append(out.Data, llm.Embedding{Index: i, Vector: vec})
	}
	out.RawJSON = append([]byte(nil), raw...)
	return out, nil
}

func (p *Provider) withDefaults(req llm.ChatRequest) llm.ChatRequest {
	if req.Model == "" {
		req.Model = p.model
	}
	if req.CompartmentID == "" {
		req.CompartmentID = p.compartmentID
	}
	return req
}

func (p *Provider) validate(req llm.ChatRequest) error {
	if req.Model == "" {
		return &llm.LLMError{Provider: p.name, Kind: llm.ErrKindBadRequest, Message: "model is required"}
	}
	if req.CompartmentID == "" {
		return &llm.LLMError{Provider: p.name, Kind: llm.ErrKindBadRequest, Message: "compartment id is required"}
	}
	if len(req.Messages) == 0 {
		return &llm.LLMError{Provider: p.name, Kind: llm.ErrKindBadRequest, Message: "messages are required"}
	}
	if last := req.Messages[len(req.Messages)-1]; last.Role != llm.RoleUser {
		return &llm.LLMError{Provider: p.name, Kind: llm.ErrKindBadRequest, Message: "last message must be a user turn"}
	}
	return nil
}

func jsonHeaders() http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	return h
}
