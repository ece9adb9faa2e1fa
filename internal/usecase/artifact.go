package usecase

import (
	"context"
	"fmt"
	"time"

	"axiom/internal/domain"
	"axiom/internal/registry"
)

// AddParams describes a new artifact. Kind is required and must be
// registered; labels must use registered keys.
type AddParams struct {
	Kind    string
	Name    string
	Content string
	Context string
	Format  string
	Labels  map[string]string
}

// Add validates, embeds, and stores a new artifact, returning it with
// the store version the insert created. Validation and budget checks
// run before any provider call; a failure at any stage leaves the store
// untouched.
func (s *Service) Add(ctx context.Context, p AddParams) (*domain.Artifact, uint64, error) {
	if p.Content == "" {
		return nil, 0, &domain.ValidationError{Field: "content", Reason: "content cannot be empty"}
	}
	if !s.Kinds.Has(p.Kind) {
		return nil, 0, &domain.ValidationError{Field: "kind", Reason: fmt.Sprintf("kind %q is not registered", p.Kind)}
	}
	if err := s.validateLabels(p.Labels); err != nil {
		return nil, 0, err
	}
	format, err := domain.ParseFormat(p.Format)
	if err != nil {
		return nil, 0, err
	}
	if err := s.checkBudget("content", p.Content); err != nil {
		return nil, 0, err
	}
	if err := s.checkBudget("context", p.Context); err != nil {
		return nil, 0, err
	}

	now := time.Now().UTC()
	a := &domain.Artifact{
		ID:             domain.NewID(),
		Kind:           p.Kind,
		Name:           p.Name,
		Content:        p.Content,
		Context:        p.Context,
		Format:         format,
		Metadata:       p.Labels,
		EmbeddingModel: s.Embedder.ModelID(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.embed(ctx, a, true, a.Context != ""); err != nil {
		return nil, 0, err
	}

	version, err := s.Store.Insert(a)
	if err != nil {
		return nil, 0, err
	}
	if err := s.autoPrune(); err != nil {
		return nil, 0, err
	}
	return a, version, nil
}

// Get returns the live revision of an artifact.
func (s *Service) Get(id string) (*domain.Artifact, error) {
	return s.Store.Get(id)
}

// GetAt returns an artifact as of a historical store version.
func (s *Service) GetAt(id string, version uint64) (*domain.Artifact, error) {
	return s.Store.GetAt(id, version)
}

// UpdatePatch holds partial changes to an artifact. Nil pointers leave
// a field alone; a pointer to the empty string clears it (context only;
// content cannot be cleared). A label with an empty value removes that
// key.
type UpdatePatch struct {
	Kind    *string
	Name    *string
	Content *string
	Context *string
	Format  *string
	Labels  map[string]string
}

func (p UpdatePatch) empty() bool {
	return p.Kind == nil && p.Name == nil && p.Content == nil &&
		p.Context == nil && p.Format == nil && len(p.Labels) == 0
}

// Update applies a patch to an existing artifact as one new revision.
// Only the fields whose text changed are re-embedded.
func (s *Service) Update(ctx context.Context, id string, p UpdatePatch) (*domain.Artifact, uint64, error) {
	if p.empty() {
		return nil, 0, &domain.ValidationError{Field: "patch", Reason: "no fields to update"}
	}

	a, err := s.Store.Get(id)
	if err != nil {
		return nil, 0, err
	}

	if p.Kind != nil {
		if !s.Kinds.Has(*p.Kind) {
			return nil, 0, &domain.ValidationError{Field: "kind", Reason: fmt.Sprintf("kind %q is not registered", *p.Kind)}
		}
		a.Kind = *p.Kind
	}
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Format != nil {
		format, err := domain.ParseFormat(*p.Format)
		if err != nil {
			return nil, 0, err
		}
		a.Format = format
	}
	if len(p.Labels) > 0 {
		if err := s.validateLabelKeys(p.Labels); err != nil {
			return nil, 0, err
		}
		if a.Metadata == nil {
			a.Metadata = make(map[string]string)
		}
		for k, v := range p.Labels {
			if v == "" {
				delete(a.Metadata, k)
			} else {
				a.Metadata[k] = v
			}
		}
	}

	embedContent := false
	embedContext := false
	if p.Content != nil && *p.Content != a.Content {
		if *p.Content == "" {
			return nil, 0, &domain.ValidationError{Field: "content", Reason: "content cannot be empty"}
		}
		if err := s.checkBudget("content", *p.Content); err != nil {
			return nil, 0, err
		}
		a.Content = *p.Content
		embedContent = true
	}
	if p.Context != nil && *p.Context != a.Context {
		if err := s.checkBudget("context", *p.Context); err != nil {
			return nil, 0, err
		}
		a.Context = *p.Context
		if a.Context == "" {
			a.ContextEmbedding = nil
		} else {
			embedContext = true
		}
	}

	// A model switch since the last write also forces a re-embed, so a
	// revision never carries vectors from two different models.
	if a.EmbeddingModel != s.Embedder.ModelID() && (embedContent || embedContext) {
		embedContent = true
		embedContext = a.Context != ""
	}
	if embedContent || embedContext {
		a.EmbeddingModel = s.Embedder.ModelID()
	}
	if err := s.embed(ctx, a, embedContent, embedContext); err != nil {
		return nil, 0, err
	}

	a.UpdatedAt = time.Now().UTC()
	version, err := s.Store.Update(a)
	if err != nil {
		return nil, 0, err
	}
	if err := s.autoPrune(); err != nil {
		return nil, 0, err
	}
	return a, version, nil
}

// Remove tombstones an artifact. The content stays reachable at
// historical versions until compaction reclaims it.
func (s *Service) Remove(id string) (uint64, error) {
	version, err := s.Store.Delete(id)
	if err != nil {
		return 0, err
	}
	if err := s.autoPrune(); err != nil {
		return 0, err
	}
	return version, nil
}

// List returns live artifacts matching the filter, in creation order.
// Limit defaults to 100.
func (s *Service) List(filter domain.ListFilter) ([]*domain.Artifact, error) {
	if err := s.validateLabelKeys(filter.Labels); err != nil {
		return nil, err
	}
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	return s.Store.List(filter)
}

// ListAt returns artifacts as of a historical store version.
func (s *Service) ListAt(version uint64, filter domain.ListFilter) ([]*domain.Artifact, error) {
	if err := s.validateLabelKeys(filter.Labels); err != nil {
		return nil, err
	}
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	return s.Store.ListAt(version, filter)
}

func (s *Service) checkBudget(field, text string) error {
	if text == "" {
		return nil
	}
	return registry.CheckBudget(field, text, s.Embedder.ModelID(), s.Config.Model.MaxTokens)
}

func (s *Service) validateLabels(labels map[string]string) error {
	for k, v := range labels {
		if v == "" {
			return &domain.ValidationError{Field: "label", Reason: fmt.Sprintf("label %q has an empty value", k)}
		}
		if !s.Labels.Has(k) {
			return &domain.ValidationError{Field: "label", Reason: fmt.Sprintf("label key %q is not registered", k)}
		}
	}
	return nil
}

func (s *Service) validateLabelKeys(labels map[string]string) error {
	for k := range labels {
		if !s.Labels.Has(k) {
			return &domain.ValidationError{Field: "label", Reason: fmt.Sprintf("label key %q is not registered", k)}
		}
	}
	return nil
}

// embed fills the requested vectors on an artifact.
func (s *Service) embed(ctx context.Context, a *domain.Artifact, withContent, withContext bool) error {
	if withContent {
		vec, err := s.Embedder.Embed(ctx, a.Content)
		if err != nil {
			return err
		}
		a.ContentEmbedding = vec
	}
	if withContext {
		vec, err := s.Embedder.Embed(ctx, a.Context)
		if err != nil {
			return err
		}
		a.ContextEmbedding = vec
	}
	return nil
}
