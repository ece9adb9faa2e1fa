package usecase

import (
	"context"
	"fmt"

	"axiom/internal/domain"
)

// Reindex scopes.
const (
	ScopeAll     = "all"
	ScopeContent = "content"
	ScopeContext = "context"
)

// ReindexOptions controls a reindex pass.
type ReindexOptions struct {
	Scope    string            // all, content, or context
	Filter   domain.ListFilter // narrows candidates
	Force    bool              // re-embed even if vectors look current
	DryRun   bool              // report candidates without writing
	Progress func(done, total int)
}

// ReindexResult summarizes a reindex pass.
type ReindexResult struct {
	Model      string `json:"model"`
	Candidates int    `json:"candidates"`
	Reindexed  int    `json:"reindexed"`
}

// Reindex re-embeds stale artifacts under the active model. Without
// force, only artifacts whose vectors mismatch the model are touched.
// Embedding runs in batches; each artifact then commits as its own
// revision, so an interrupted pass keeps everything finished so far and
// the remainder simply stays stale.
func (s *Service) Reindex(ctx context.Context, opts ReindexOptions) (*ReindexResult, error) {
	switch opts.Scope {
	case "", ScopeAll, ScopeContent, ScopeContext:
	default:
		return nil, &domain.ValidationError{Field: "scope", Reason: fmt.Sprintf("unknown scope %q", opts.Scope)}
	}
	if opts.Scope == "" {
		opts.Scope = ScopeAll
	}

	model := s.Embedder.ModelID()
	var candidates []*domain.Artifact
	if opts.Force {
		all, err := s.Store.List(domain.ListFilter{
			Kind: opts.Filter.Kind, Labels: opts.Filter.Labels,
			After: opts.Filter.After, Before: opts.Filter.Before,
		})
		if err != nil {
			return nil, err
		}
		candidates = all
	} else {
		for _, a := range s.Store.Stale(model) {
			if opts.Filter.Match(a) {
				candidates = append(candidates, a)
			}
		}
	}

	result := &ReindexResult{Model: model, Candidates: len(candidates)}
	if opts.DryRun || len(candidates) == 0 {
		return result, nil
	}

	batchSize := s.Config.Search.BatchSize
	if batchSize <= 0 {
		batchSize = 32
	}

	for start := 0; start < len(candidates); start += batchSize {
		end := min(start+batchSize, len(candidates))
		batch := candidates[start:end]

		if opts.Scope == ScopeAll || opts.Scope == ScopeContent {
			texts := make([]string, len(batch))
			for i, a := range batch {
				texts[i] = a.Content
			}
			vecs, err := s.Embedder.EmbedBatch(ctx, texts)
			if err != nil {
				return result, err
			}
			for i, a := range batch {
				a.ContentEmbedding = vecs[i]
			}
		}
		if opts.Scope == ScopeAll || opts.Scope == ScopeContext {
			for _, a := range batch {
				if a.Context == "" {
					a.ContextEmbedding = nil
					continue
				}
				vec, err := s.Embedder.Embed(ctx, a.Context)
				if err != nil {
					return result, err
				}
				a.ContextEmbedding = vec
			}
		}

		for _, a := range batch {
			a.EmbeddingModel = model
			if _, err := s.Store.Update(a); err != nil {
				return result, err
			}
			result.Reindexed++
			if opts.Progress != nil {
				opts.Progress(result.Reindexed, len(candidates))
			}
		}
	}

	if err := s.autoPrune(); err != nil {
		return result, err
	}
	return result, nil
}
