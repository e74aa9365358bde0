package embedding

import (
	"context"
	"fmt"
	"math"
)

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// NewProvider builds an embedding backend. apiKey is ignored by local backends.
func NewProvider(providerType, model, baseURL, apiKey string) (EmbeddingProvider, error) {
	switch providerType {
	case "ollama":
		return NewOllamaProvider(baseURL, model), nil
	case "openai":
		return NewOpenAIProvider(apiKey, baseURL, model), nil
	case "jina":
		if baseURL == "" {
			baseURL = "https://api.jina.ai/v1"
		}
		if model == "" {
			model = "jina-embeddings-v2-base-en"
		}
		return NewOpenAIProvider(apiKey, baseURL, model), nil
	case "gemini":
		return NewGeminiProvider(apiKey, baseURL, model), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", providerType)
	}
}

// RequiresAPIKey reports whether providerType refuses unauthenticated calls.
func RequiresAPIKey(providerType string) bool {
	return providerType != "ollama"
}

func toFloat32(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}

// normalizeVector scales vec to unit length so pgvector cosine distance and
// in-process cosine similarity agree. Zero vectors are returned unchanged.
func normalizeVector(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
