// Package embedding provides the embedding provider implementations:
// a deterministic in-process encoder and two remote HTTP shapes
// (OpenAI-compatible and Ollama-compatible).
package embedding

import (
	"fmt"
	"math"
	"os"

	"axiom/config"
	"axiom/internal/port"
)

// New selects a provider from model configuration. The provider is
// chosen once at store-open time and held for the process lifetime.
func New(cfg config.ModelConfig) (port.Embedder, error) {
	switch cfg.Provider {
	case "local", "":
		return NewLocalEmbedder(cfg.Name), nil
	case "openai":
		key := cfg.APIKey
		if key == "" {
			env := cfg.APIKeyEnv
			if env == "" {
				env = "OPENAI_API_KEY"
			}
			key = os.Getenv(env)
		}
		return NewOpenAIEmbedder(cfg.BaseURL, key, cfg.Name), nil
	case "ollama":
		return NewOllamaEmbedder(cfg.BaseURL, cfg.Name), nil
	}
	return nil, fmt.Errorf("unknown embedding provider: %q", cfg.Provider)
}

// CosineSimilarity computes cosine similarity between two vectors.
// Mismatched or zero-norm inputs score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Norm returns the L2 norm of a vector.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
