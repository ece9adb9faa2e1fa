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

// maxBatch caps request size for OpenAI-compatible batch embedding.
const maxBatch = 100

// OpenAIEmbedder talks to any OpenAI-compatible /embeddings endpoint.
// It batches where the API allows and surfaces failures without
// retrying; retry policy belongs to the caller.
type OpenAIEmbedder struct {
	baseURL string
	apiKey  string
	model   string
	dims    int
	client  *http.Client
}

type openaiRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type openaiResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewOpenAIEmbedder creates an embedder for an OpenAI-compatible API.
func NewOpenAIEmbedder(baseURL, apiKey, model string) *OpenAIEmbedder {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "text-embedding-3-small"
	}
	return &OpenAIEmbedder{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		dims:    registry.LookupModel(model).Dimensions,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.embedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var all [][]float32
	for i := 0; i < len(texts); i += maxBatch {
		end := min(i+maxBatch, len(texts))
		vecs, err := e.embedBatch(ctx, texts[i:end])
		if err != nil {
			return nil, err
		}
		all = append(all, vecs...)
	}
	return all, nil
}

func (e *OpenAIEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(openaiRequest{Input: texts, Model: e.model})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &domain.ProviderError{Provider: "openai", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.ProviderError{Provider: "openai", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &domain.ProviderError{
			Provider: "openai",
			Err:      fmt.Errorf("status %d: %s", resp.StatusCode, truncateBody(data)),
		}
	}

	var parsed openaiResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, &domain.ProviderError{Provider: "openai", Err: fmt.Errorf("malformed response: %w", err)}
	}
	if parsed.Error != nil {
		return nil, &domain.ProviderError{Provider: "openai", Err: fmt.Errorf("api error: %s", parsed.Error.Message)}
	}
	if len(parsed.Data) != len(texts) {
		return nil, &domain.ProviderError{
			Provider: "openai",
			Err:      fmt.Errorf("expected %d embeddings, got %d", len(texts), len(parsed.Data)),
		}
	}

	vecs := make([][]float32, len(texts))
	for _, d := range parsed.Data {
		if d.Index < 0 || d.Index >= len(vecs) {
			return nil, &domain.ProviderError{Provider: "openai", Err: fmt.Errorf("embedding index %d out of range", d.Index)}
		}
		vecs[d.Index] = d.Embedding
	}
	if len(vecs) > 0 && len(vecs[0]) > 0 {
		// The registry only knows common models; trust what the API
		// actually returns.
		e.dims = len(vecs[0])
	}
	return vecs, nil
}

func (e *OpenAIEmbedder) ModelID() string { return e.model }

func (e *OpenAIEmbedder) Dimensions() int { return e.dims }

func truncateBody(b []byte) string {
	if len(b) > 200 {
		b = b[:200]
	}
	return string(b)
}
