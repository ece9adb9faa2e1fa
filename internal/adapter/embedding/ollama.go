package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"axiom/internal/domain"
	"axiom/internal/registry"
)

// OllamaEmbedder talks to an Ollama-compatible /api/embeddings
// endpoint. Ollama has no native batch call, so batches are issued as
// sequential requests.
type OllamaEmbedder struct {
	baseURL string
	model   string
	dims    int
	client  *http.Client
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaResponse struct {
	Embedding []float32 `json:"embedding"`
}

// NewOllamaEmbedder creates an embedder for an Ollama instance.
func NewOllamaEmbedder(baseURL, model string) *OllamaEmbedder {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	return &OllamaEmbedder{
		baseURL: baseURL,
		model:   model,
		dims:    registry.LookupModel(model).Dimensions,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(ollamaRequest{Model: e.model, Prompt: text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &domain.ProviderError{Provider: "ollama", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, &domain.ProviderError{
			Provider: "ollama",
			Err:      fmt.Errorf("status %d: %s", resp.StatusCode, truncateBody(data)),
		}
	}

	var parsed ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &domain.ProviderError{Provider: "ollama", Err: fmt.Errorf("malformed response: %w", err)}
	}
	if len(parsed.Embedding) == 0 {
		return nil, &domain.ProviderError{Provider: "ollama", Err: fmt.Errorf("empty embedding returned")}
	}
	// The registry only knows common models; trust what the server
	// actually returns.
	e.dims = len(parsed.Embedding)
	return parsed.Embedding, nil
}

func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (e *OllamaEmbedder) ModelID() string { return e.model }

func (e *OllamaEmbedder) Dimensions() int { return e.dims }
