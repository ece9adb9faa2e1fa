// Package registry holds the static embedding-model table and the
// project taxonomy (kind and label) registries.
package registry

import (
	"math"
	"strings"

	"axiom/internal/domain"
)

// ModelInfo describes an embedding model's input and output limits.
type ModelInfo struct {
	MaxTokens  int
	Dimensions int
}

// DefaultModelInfo is the conservative fallback for unknown models. A
// small ceiling risks a hard error the user can fix; a large one risks
// silent retrieval degradation, so unknown models get the small one.
var DefaultModelInfo = ModelInfo{MaxTokens: 512, Dimensions: 384}

var models = map[string]ModelInfo{
	"bge-small-en-v1.5":      {MaxTokens: 512, Dimensions: 384},
	"bge-base-en-v1.5":       {MaxTokens: 512, Dimensions: 768},
	"text-embedding-3-small": {MaxTokens: 8191, Dimensions: 1536},
	"text-embedding-3-large": {MaxTokens: 8191, Dimensions: 3072},
	"text-embedding-ada-002": {MaxTokens: 8191, Dimensions: 1536},
	"nomic-embed-text":       {MaxTokens: 8192, Dimensions: 768},
	"mxbai-embed-large":      {MaxTokens: 512, Dimensions: 1024},
	"all-minilm":             {MaxTokens: 256, Dimensions: 384},
	"voyage-3":               {MaxTokens: 32000, Dimensions: 1024},
}

// LookupModel returns registry info for a model name. Names may carry an
// org prefix (BAAI/bge-small-en-v1.5); the bare name is also tried.
// Unknown models fall back to DefaultModelInfo rather than failing.
func LookupModel(name string) ModelInfo {
	if info, ok := models[name]; ok {
		return info
	}
	if i := strings.LastIndex(name, "/"); i >= 0 {
		if info, ok := models[name[i+1:]]; ok {
			return info
		}
	}
	return DefaultModelInfo
}

// EstimateTokens estimates the token count of text. The heuristic of
// 0.75 words per token over-counts for typical English prose, which is
// the safe direction: an over-count can reject borderline input, an
// under-count would embed truncated text.
func EstimateTokens(text string) int {
	words := len(strings.Fields(text))
	return int(math.Ceil(float64(words) / 0.75))
}

// CheckBudget verifies text fits the model's token limit. maxTokens
// overrides the registry limit when positive (config override).
func CheckBudget(field, text, model string, maxTokens int) error {
	limit := maxTokens
	if limit <= 0 {
		limit = LookupModel(model).MaxTokens
	}
	tokens := EstimateTokens(text)
	if tokens > limit {
		return &domain.TokenBudgetError{Field: field, Tokens: tokens, Limit: limit, Model: model}
	}
	return nil
}
