package usecase

import (
	"context"
	"fmt"
	"strings"

	"axiom/internal/adapter/embedding"
	"axiom/internal/domain"
)

// DefaultSearchLimit caps result sets when the caller gives no limit.
const DefaultSearchLimit = 10

// SearchOptions tunes one query. The zero value searches with the
// configured context weight.
type SearchOptions struct {
	// ContextWeight overrides the configured blend weight for this
	// query. Nil keeps the default.
	ContextWeight *float64
	// NoContext scores content similarity only, as if every artifact
	// had no context vector.
	NoContext bool
}

// Search embeds the query and ranks live artifacts by blended
// similarity. Filters narrow the candidate set before scoring. A query
// that embeds to a zero vector is rejected; ranking against it would
// order results arbitrarily.
func (s *Service) Search(ctx context.Context, query string, filter domain.ListFilter, opts SearchOptions) ([]domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &domain.ValidationError{Field: "query", Reason: "query cannot be empty"}
	}
	if err := s.validateLabelKeys(filter.Labels); err != nil {
		return nil, err
	}
	if err := s.checkBudget("query", query); err != nil {
		return nil, err
	}

	weight := s.Retriever.ContextWeight()
	if opts.ContextWeight != nil {
		w := *opts.ContextWeight
		if w < 0 || w > 1 {
			return nil, &domain.ValidationError{Field: "context_weight", Reason: fmt.Sprintf("weight %g outside [0, 1]", w)}
		}
		weight = w
	}
	if opts.NoContext {
		weight = 0
	}

	vec, err := s.Embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	if embedding.Norm(vec) == 0 {
		return nil, &domain.ValidationError{Field: "query", Reason: "query embeds to a zero vector"}
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return s.Retriever.SearchWeighted(vec, s.Store.Snapshot(), filter, limit, weight), nil
}

// StaleCount reports how many live artifacts carry vectors that do not
// match the active model. Surfaced as a warning on search so silent
// cross-model ranking does not go unnoticed.
func (s *Service) StaleCount() int {
	return len(s.Store.Stale(s.Embedder.ModelID()))
}
