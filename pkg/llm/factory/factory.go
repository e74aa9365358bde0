package factory

import (
	"fmt"

	"project-memory-be/pkg/llm"
	"project-memory-be/pkg/llm/ollama"
	"project-memory-be/pkg/llm/openai"
)

// NewLLMProvider builds a chat backend. apiKey is ignored by local backends.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "openai":
		return openai.NewOpenAIProvider(apiKey, baseURL, modelName), nil
	case "huggingface":
		if baseURL == "" {
			baseURL = "https://router.huggingface.co/v1"
		}
		return openai.NewOpenAIProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}

// RequiresAPIKey reports whether providerType refuses unauthenticated calls.
func RequiresAPIKey(providerType string) bool {
	return providerType != "ollama"
}
