package ocigenai

import (
	"encoding/json"
	"strings"

	"github.com/djvolz/oci-genai-chatbot/llm"
)

type chatEnvelope struct {
	ModelID      string          `json:"modelId"`
	ModelVersion string          `json:"modelVersion"`
	ChatResponse json.RawMessage `json:"chatResponse"`
}

type cohereChatResponse struct {
	APIFormat    string    `json:"apiFormat"`
	Text         string    `json:"text"`
	FinishReason string    `json:"finishReason"`
	Usage        *apiUsage `json:"usage"`
}

type genericChatChoice struct {
	Index        int            `json:"index"`
	Message      genericMessage `json:"message"`
	FinishReason string         `json:"finishReason"`
}

type genericChatResponse struct {
	APIFormat string              `json:"apiFormat"`
	Choices   []genericChatChoice `json:"choices"`
	Usage     *apiUsage           `json:"usage"`
}

type apiUsage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

func (u *apiUsage) canonical() *llm.Usage {
	if u == nil {
		return nil
	}
	return &llm.Usage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
}

type embedTextDetails struct {
	Inputs        []string    `json:"inputs"`
	ServingMode   servingMode `json:"servingMode"`
	CompartmentID string      `json:"compartmentId"`
	Truncate      string      `json:"truncate,omitempty"`
}

type embedTextResponse struct {
	ID           string      `json:"id"`
	ModelID      string      `json:"modelId"`
	ModelVersion string      `json:"modelVersion"`
	Embeddings   [][]float64 `json:"embeddings"`
	Usage        *apiUsage   `json:"usage"`
}

func (p *Provider) mapChatResponse(env chatEnvelope, format apiFormat) (llm.ChatResponse, error) {
	out := llm.ChatResponse{Model: env.ModelID}

	switch format {
	case apiFormatCohere:
		var w cohereChatResponse
		if err := json.Unmarshal(env.ChatResponse, &w); err != nil {
			return llm.ChatResponse{}, &llm.LLMError{Provider: p.name, Kind: llm.ErrKindParse, Message: "failed to decode cohere chat response", Raw: env.ChatResponse, Cause: err}
		}
		out.Text = w.Text
		out.FinishReason = mapFinishReason(w.FinishReason)
		out.Usage = w.Usage.canonical()
	default:
		var w genericChatResponse
		if err := json.Unmarshal(env.ChatResponse, &w); err != nil {
			return llm.ChatResponse{}, &llm.LLMError{Provider: p.name, Kind: llm.ErrKindParse, Message: "failed to decode generic chat response", Raw: env.ChatResponse, Cause: err}
		}
		if len(w.Choices) > 0 {
			out.Text = flattenContent(w.Choices[0].Message.Content)
			out.FinishReason = mapFinishReason(w.Choices[0].FinishReason)
		}
		out.Usage = w.Usage.canonical()
	}
	return out, nil
}

func flattenContent(parts []textContent) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// mapFinishReason folds the two wire vocabularies (Cohere's COMPLETE /
// MAX_TOKENS and the generic lowercase set) into canonical values.
func mapFinishReason(reason string) llm.FinishReason {
	switch strings.ToLower(reason) {
	case "":
		return ""
	case "complete", "stop", "end_turn":
		return llm.FinishReasonStop
	case "max_tokens", "length":
		return llm.FinishReasonLength
	case "error_toxic", "content_filter":
		return llm.FinishReasonContentFilter
	default:
		return llm.FinishReasonUnknown
	}
}
