package llm

import "encoding/json"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a canonical chat message. Content is plain text; providers map
// it onto their own wire formats.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

func System(text string) Message    { return Message{Role: RoleSystem, Content: text} }
func User(text string) Message      { return Message{Role: RoleUser, Content: text} }
func Assistant(text string) Message { return Message{Role: RoleAssistant, Content: text} }

type FinishReason string

const (
	FinishReasonStop          FinishReason = "stop"
	FinishReasonLength        FinishReason = "length"
	FinishReasonContentFilter FinishReason = "content_filter"
	FinishReasonUnknown       FinishReason = "unknown"
)

// ChatRequest is a provider-agnostic chat completion request.
//
// Optional sampling parameters are pointers so that "unset" is
// distinguishable from a zero value and providers can omit them.
type ChatRequest struct {
	Model    string
	Messages []Message

	// CompartmentID is the tenancy-scoping identifier some cloud providers
	// require on every request. Providers that do not need one ignore it.
	CompartmentID string

	Temperature      *float64
	TopP             *float64
	MaxTokens        *int
	FrequencyPenalty *float64
	PresencePenalty  *float64
	Stop             []string
}

func (r ChatRequest) Clone() ChatRequest {
	out := r
	out.Messages = append([]Message(nil), r.Messages...)
	if r.Stop != nil {
		out.Stop = append([]string(nil), r.Stop...)
	}
	clonePtr(&out.Temperature)
	clonePtr(&out.TopP)
	clonePtr(&out.MaxTokens)
	clonePtr(&out.FrequencyPenalty)
	clonePtr(&out.PresencePenalty)
	return out
}

func clonePtr[T any](p **T) {
	if *p == nil {
		return
	}
	v := **p
	*p = &v
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ChatResponse is a single completion. The upstream chat APIs this kit
// targets return one generation per request, so there is no choice list.
type ChatResponse struct {
	ID    string
	Model string

	Text         string
	FinishReason FinishReason
	Usage        *Usage

	// RawJSON preserves the provider-native payload for debugging.
	RawJSON json.RawMessage
}

type EmbeddingRequest struct {
	Model         string
	Inputs        []string
	CompartmentID string
}

type Embedding struct {
	Index  int
	Vector []float64
}

func (e Embedding) Dimension() int { return len(e.Vector) }

type EmbeddingResponse struct {
	Model string
	Data  []Embedding
	Usage *Usage

	RawJSON json.RawMessage
}
