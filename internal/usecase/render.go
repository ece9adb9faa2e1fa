package usecase

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"axiom/internal/domain"
	"axiom/internal/registry"
)

// RenderResult lists the files a render pass wrote.
type RenderResult struct {
	Paths []string `json:"paths"`
}

// Render writes live artifacts into a directory tree, one file per
// artifact under its kind, named by slugified name plus id with an
// extension from the content format. A doublestar pattern, when given,
// matches against the kind-relative path and filters what gets written.
func (s *Service) Render(outDir, pattern string, filter domain.ListFilter) (*RenderResult, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, &domain.ValidationError{Field: "match", Reason: fmt.Sprintf("invalid pattern %q", pattern)}
	}

	artifacts, err := s.Store.List(filter)
	if err != nil {
		return nil, err
	}

	result := &RenderResult{}
	for _, a := range artifacts {
		rel := filepath.ToSlash(filepath.Join(a.Kind, renderName(a)))
		if pattern != "" {
			ok, err := doublestar.Match(pattern, rel)
			if err != nil {
				return nil, &domain.ValidationError{Field: "match", Reason: err.Error()}
			}
			if !ok {
				continue
			}
		}

		path := filepath.Join(outDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, &domain.StorageError{Op: "render", Err: err}
		}
		if err := os.WriteFile(path, []byte(a.Content), 0o644); err != nil {
			return nil, &domain.StorageError{Op: "render", Err: err}
		}
		result.Paths = append(result.Paths, rel)
	}
	return result, nil
}

func renderName(a *domain.Artifact) string {
	base := a.ID
	if a.Name != "" {
		if slug := registry.Slugify(a.Name); slug != "" {
			base = slug + "-" + a.ID
		}
	}
	return base + "." + a.Format.Ext()
}
