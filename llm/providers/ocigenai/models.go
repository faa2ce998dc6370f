package ocigenai

import "strings"

const (
	DefaultChatModel      = "cohere.command-r-plus"
	DefaultEmbeddingModel = "cohere.embed-multilingual-v3.0"
)

// ModelInfo describes one model the service hosts on-demand.
type ModelInfo struct {
	ID          string
	Description string

	// Dimensions is the vector size of an embedding model; zero for chat
	// models.
	Dimensions int
}

// ChatModels returns the chat models this client knows how to drive.
func ChatModels() []ModelInfo {
	return []ModelInfo{
		{ID: "cohere.command-r-plus", Description: "Advanced command model with enhanced reasoning"},
		{ID: "cohere.command-r", Description: "Balanced command model for general use"},
		{ID: "meta.llama-3.1-405b-instruct", Description: "Large-scale Meta Llama model"},
		{ID: "meta.llama-3.1-70b-instruct", Description: "Mid-scale Meta Llama model"},
	}
}

// EmbeddingModels returns the known text embedding models.
func EmbeddingModels() []ModelInfo {
	return []ModelInfo{
		{ID: "cohere.embed-multilingual-v3.0", Description: "Multilingual embedding model", Dimensions: 1024},
		{ID: "cohere.embed-english-light-v3.0", Description: "Lightweight English embedding model", Dimensions: 384},
	}
}

// apiFormat selects the request/response schema inside chatRequest. The
// service multiplexes vendor-specific schemas behind one endpoint.
type apiFormat string

const (
	apiFormatCohere  apiFormat = "COHERE"
	apiFormatGeneric apiFormat = "GENERIC"
)

// formatForModel picks the API format from the model family prefix.
// Cohere models speak their native schema; everything else uses GENERIC.
func formatForModel(model string) apiFormat {
	if strings.HasPrefix(model, "cohere.") {
		return apiFormatCohere
	}
	return apiFormatGeneric
}
