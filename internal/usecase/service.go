// Package usecase wires the store, embedding provider, registries, and
// retriever into the operations the CLI and MCP surfaces expose.
package usecase

import (
	"time"

	"axiom/config"
	"axiom/internal/adapter/cache"
	"axiom/internal/adapter/embedding"
	"axiom/internal/adapter/retriever"
	"axiom/internal/adapter/store"
	"axiom/internal/port"
	"axiom/internal/registry"
)

// Service owns one open project: its config, store, provider, and
// registries. Construct with NewService and Close when done.
type Service struct {
	Dir    string
	Config *config.Config

	Store     *store.Store
	Embedder  port.Embedder
	Retriever *retriever.Blended
	Kinds     *registry.Taxonomy
	Labels    *registry.Taxonomy

	embedCache *cache.EmbedCache
}

// NewService opens the project rooted at dir.
func NewService(dir string) (*Service, error) {
	cfg, err := config.LoadFromDir(dir)
	if err != nil {
		return nil, err
	}
	return NewServiceWithConfig(dir, cfg)
}

// NewServiceWithConfig opens the project with an already-loaded config.
func NewServiceWithConfig(dir string, cfg *config.Config) (*Service, error) {
	st, err := store.Open(cfg.StorePath(dir))
	if err != nil {
		return nil, err
	}

	base, err := embedding.New(cfg.Model)
	if err != nil {
		st.Close()
		return nil, err
	}
	embedCache := cache.NewEmbedCache(256, 10*time.Minute)

	s := &Service{
		Dir:        dir,
		Config:     cfg,
		Store:      st,
		Embedder:   cache.NewCachedEmbedder(base, embedCache),
		Retriever:  retriever.New(cfg.Search.ContextWeight),
		embedCache: embedCache,
	}

	save := func(c *config.Config) error { return c.Save(config.Path(dir)) }
	s.Kinds = registry.Kinds(cfg, save, func(slug string) (int, error) {
		return st.CountKind(slug), nil
	})
	s.Labels = registry.Labels(cfg, save, func(slug string) (int, error) {
		return st.CountLabel(slug), nil
	})
	return s, nil
}

// Close releases the underlying store.
func (s *Service) Close() error {
	return s.Store.Close()
}

// autoPrune compacts after a mutation when storage.auto_prune is set.
func (s *Service) autoPrune() error {
	if !s.Config.Storage.AutoPrune {
		return nil
	}
	_, err := s.Store.Compact(s.Config.Storage.KeepVersions, 0)
	return err
}
