package ocigenai

import "github.com/djvolz/oci-genai-chatbot/llm"

type servingMode struct {
	ServingType string `json:"servingType"`
	ModelID     string `json:"modelId"`
}

// chatDetails is the top-level body of POST /actions/chat. The shape of
// ChatRequest depends on the model family's API format.
type chatDetails struct {
	CompartmentID string      `json:"compartmentId"`
	ServingMode   servingMode `json:"servingMode"`
	ChatRequest   any         `json:"chatRequest"`
}

type cohereMessage struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

type cohereChatRequest struct {
	APIFormat        string          `json:"apiFormat"`
	Message          string          `json:"message"`
	ChatHistory      []cohereMessage `json:"chatHistory,omitempty"`
	PreambleOverride string          `json:"preambleOverride,omitempty"`
	MaxTokens        *int            `json:"maxTokens,omitempty"`
	Temperature      *float64        `json:"temperature,omitempty"`
	TopP             *float64        `json:"topP,omitempty"`
	FrequencyPenalty *float64        `json:"frequencyPenalty,omitempty"`
	PresencePenalty  *float64        `json:"presencePenalty,omitempty"`
	StopSequences    []string        `json:"stopSequences,omitempty"`
	IsStream         bool            `json:"isStream,omitempty"`
}

type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type genericMessage struct {
	Role    string        `json:"role"`
	Content []textContent `json:"content"`
}

type genericChatRequest struct {
	APIFormat        string           `json:"apiFormat"`
	Messages         []genericMessage `json:"messages"`
	MaxTokens        *int             `json:"maxTokens,omitempty"`
	Temperature      *float64         `json:"temperature,omitempty"`
	TopP             *float64         `json:"topP,omitempty"`
	FrequencyPenalty *float64         `json:"frequencyPenalty,omitempty"`
	PresencePenalty  *float64         `json:"presencePenalty,omitempty"`
	Stop             []string         `json:"stop,omitempty"`
	NumGenerations   int              `json:"numGenerations,omitempty"`
	IsStream         bool             `json:"isStream,omitempty"`
}

func (p *Provider) chatDetails(req llm.ChatRequest, stream bool) chatDetails {
	details := chatDetails{
		CompartmentID: req.CompartmentID,
		ServingMode:   servingMode{ServingType: servingTypeOnDemand, ModelID: req.Model},
	}
	switch formatForModel(req.Model) {
	case apiFormatCohere:
		details.ChatRequest = mapCohereRequest(req, stream)
	default:
		details.ChatRequest = mapGenericRequest(req, stream)
	}
	return details
}

// mapCohereRequest flattens the transcript into the Cohere schema: the
// latest user turn becomes "message", one leading system turn becomes the
// preamble override, everything in between becomes chatHistory.
func mapCohereRequest(req llm.ChatRequest, stream bool) cohereChatRequest {
	out := cohereChatRequest{
		APIFormat:        string(apiFormatCohere),
		MaxTokens:        req.MaxTokens,
		Temperature:      req.Temperature,
		TopP:             req.TopP,
		FrequencyPenalty: req.FrequencyPenalty,
		PresencePenalty:  req.PresencePenalty,
		StopSequences:    req.Stop,
		IsStream:         stream,
	}

	msgs := req.Messages
	if len(msgs) == 0 {
		return out
	}
	out.Message = msgs[len(msgs)-1].Content
	msgs = msgs[:len(msgs)-1]

	for _, m := range msgs {
		switch m.Role {
		case llm.RoleSystem:
			if out.PreambleOverride == "" {
				out.PreambleOverride = m.Content
				continue
			}
			out.ChatHistory = append(out.ChatHistory, cohereMessage{Role: "SYSTEM", Message: m.Content})
		case llm.RoleAssistant:
			out.ChatHistory = append(out.ChatHistory, cohereMessage{Role: "CHATBOT", Message: m.Content})
		default:
			out.ChatHistory = append(out.ChatHistory, cohereMessage{Role: "USER", Message: m.Content})
		}
	}
	return out
}

func mapGenericRequest(req llm.ChatRequest, stream bool) genericChatRequest {
	out := genericChatRequest{
		APIFormat:        string(apiFormatGeneric),
		MaxTokens:        req.MaxTokens,
		Temperature:      req.Temperature,
		TopP:             req.TopP,
		FrequencyPenalty: req.FrequencyPenalty,
		PresencePenalty:  req.PresencePenalty,
		Stop:             req.Stop,
		NumGenerations:   1,
		IsStream:         stream,
	}
	for _, m := range req.Messages {
		out.Messages = append(out.Messages, genericMessage{
			Role:    genericRole(m.Role),
			Content: []textContent{{Type: "TEXT", Text: m.Content}},
		})
	}
	return out
}

func genericRole(r llm.Role) string {
	switch r {
	case llm.RoleSystem:
		return "SYSTEM"
	case llm.RoleAssistant:
		return "ASSISTANT"
	default:
		return "USER"
	}
}
