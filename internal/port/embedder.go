package port

import "context"

// Embedder generates embedding vectors for text. Implementations never
// truncate input; callers enforce the token budget first. Remote
// implementations surface failures without retrying internally.
type Embedder interface {
	// Embed generates the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for several texts, one vector per
	// input, in input order. Used by reindex to amortize call overhead.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// ModelID returns the model identifier recorded on stored artifacts.
	ModelID() string

	// Dimensions returns the embedding vector length.
	Dimensions() int
}
