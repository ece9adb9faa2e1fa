package embedding

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"

	"axiom/internal/registry"
)

// LocalEmbedder is the in-process provider: a deterministic
// feature-hashing encoder with no network dependency. Each token and
// token bigram is hashed into a fixed-dimension vector which is then
// L2-normalized, so identical text always embeds identically and
// related texts share hashed features. Vector dimensionality follows
// the configured model name's registry entry, which keeps stored
// vectors compatible if the project later switches to a real encoder
// of the same dimensionality and reindexes.
type LocalEmbedder struct {
	modelID string
	dims    int
}

// NewLocalEmbedder creates the local provider for a model name.
func NewLocalEmbedder(modelID string) *LocalEmbedder {
	return &LocalEmbedder{
		modelID: modelID,
		dims:    registry.LookupModel(modelID).Dimensions,
	}
}

func (e *LocalEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dims)
	tokens := localTokens(text)
	for i, tok := range tokens {
		e.addFeature(vec, tok)
		if i > 0 {
			e.addFeature(vec, tokens[i-1]+" "+tok)
		}
	}
	normalize(vec)
	return vec, nil
}

func (e *LocalEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *LocalEmbedder) ModelID() string { return e.modelID }

func (e *LocalEmbedder) Dimensions() int { return e.dims }

// addFeature hashes one feature into the vector. The low bit of the
// hash picks the sign so unrelated features cancel rather than
// accumulate.
func (e *LocalEmbedder) addFeature(vec []float32, feature string) {
	h := fnv.New64a()
	h.Write([]byte(feature))
	sum := h.Sum64()
	idx := int(sum % uint64(e.dims))
	if sum&(1<<63) != 0 {
		vec[idx] -= 1
	} else {
		vec[idx] += 1
	}
}

func localTokens(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func normalize(vec []float32) {
	n := Norm(vec)
	if n == 0 {
		return
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / n)
	}
}
