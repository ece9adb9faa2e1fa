// Package retriever ranks live artifacts against a query vector.
package retriever

import (
	"sort"

	"axiom/internal/adapter/embedding"
	"axiom/internal/domain"
)

// Blended scores each candidate on two cosine similarities, one against
// the content vector and one against the context vector, mixed by a
// weight. Artifacts without context fall back to the content
// similarity for both terms, so a zero weight and a missing context are
// indistinguishable by construction.
type Blended struct {
	contextWeight float64
}

// New creates a retriever with the given default context weight,
// clamped to [0, 1].
func New(contextWeight float64) *Blended {
	return &Blended{contextWeight: clampWeight(contextWeight)}
}

func clampWeight(w float64) float64 {
	if w < 0 {
		return 0
	}
	if w > 1 {
		return 1
	}
	return w
}

// ContextWeight returns the default blend weight.
func (r *Blended) ContextWeight() float64 { return r.contextWeight }

// Search ranks candidates under the default blend weight.
func (r *Blended) Search(query []float32, candidates []*domain.Artifact, filter domain.ListFilter, limit int) []domain.SearchResult {
	return r.SearchWeighted(query, candidates, filter, limit, r.contextWeight)
}

// SearchWeighted ranks candidates by blended similarity under a
// per-query weight, filters first, then scores. Candidates whose
// vectors are missing or of the wrong dimensionality are skipped
// rather than scored at zero; they are stale, not dissimilar. Ties
// break on recency, then id.
func (r *Blended) SearchWeighted(query []float32, candidates []*domain.Artifact, filter domain.ListFilter, limit int, contextWeight float64) []domain.SearchResult {
	contextWeight = clampWeight(contextWeight)
	results := make([]domain.SearchResult, 0, len(candidates))
	for _, a := range candidates {
		if !filter.Match(a) {
			continue
		}
		if len(a.ContentEmbedding) != len(query) {
			continue
		}
		simContent := embedding.CosineSimilarity(query, a.ContentEmbedding)
		simContext := simContent
		if len(a.ContextEmbedding) == len(query) {
			simContext = embedding.CosineSimilarity(query, a.ContextEmbedding)
		}
		score := (1-contextWeight)*simContent + contextWeight*simContext
		results = append(results, domain.SearchResult{Artifact: *a, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if !results[i].Artifact.UpdatedAt.Equal(results[j].Artifact.UpdatedAt) {
			return results[i].Artifact.UpdatedAt.After(results[j].Artifact.UpdatedAt)
		}
		return results[i].Artifact.ID < results[j].Artifact.ID
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
