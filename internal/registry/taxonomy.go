package registry

import (
	"fmt"
	"regexp"
	"strings"

	"axiom/config"
	"axiom/internal/domain"
)

const (
	// SlugMinLength is the minimum slug length for kinds and labels.
	SlugMinLength = 2
	// SlugMaxLength is the maximum slug length for kinds and labels.
	SlugMaxLength = 64
)

// reservedSlugs cannot be registered as kinds or label keys.
var reservedSlugs = map[string]bool{
	"all": true, "any": true, "artifact": true, "artifacts": true,
	"config": true, "default": true, "kind": true, "kinds": true,
	"label": true, "labels": true, "none": true, "search": true,
	"system": true,
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9-]+`)

// Slugify transforms free text into slug form: lowercased, runs of
// invalid characters collapsed to single hyphens, edges trimmed.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlugChars.ReplaceAllString(s, "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

// ValidateSlug checks an already-slugified kind or label slug.
func ValidateSlug(field, slug string) error {
	switch {
	case slug == "":
		return &domain.ValidationError{Field: field, Reason: "slug cannot be empty"}
	case len(slug) < SlugMinLength:
		return &domain.ValidationError{Field: field, Reason: fmt.Sprintf("slug too short: minimum %d characters, got %d", SlugMinLength, len(slug))}
	case len(slug) > SlugMaxLength:
		return &domain.ValidationError{Field: field, Reason: fmt.Sprintf("slug too long: maximum %d characters, got %d", SlugMaxLength, len(slug))}
	case reservedSlugs[slug]:
		return &domain.ValidationError{Field: field, Reason: fmt.Sprintf("slug %q is reserved", slug)}
	case nonSlugChars.MatchString(slug) || strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-"):
		return &domain.ValidationError{Field: field, Reason: fmt.Sprintf("slug %q contains invalid characters", slug)}
	}
	return nil
}

// SaveFunc persists the config document after a registry mutation.
type SaveFunc func(*config.Config) error

// UsageFunc counts artifacts still referencing a slug. Used to guard
// non-forced removal; removal itself never cascades into the store.
type UsageFunc func(slug string) (int, error)

// Taxonomy is the validated view over one registry (kinds or labels)
// stored in project configuration. Mutations write the config back
// synchronously.
type Taxonomy struct {
	field string // "kind" or "label"
	cfg   *config.Config
	save  SaveFunc
	usage UsageFunc

	has    func(*config.Config, string) bool
	get    func(*config.Config, string) *config.Definition
	add    func(*config.Config, string, string) bool
	remove func(*config.Config, string) bool
	list   func(*config.Config) []config.Definition
}

// Kinds returns the kind registry for a loaded config.
func Kinds(cfg *config.Config, save SaveFunc, usage UsageFunc) *Taxonomy {
	return &Taxonomy{
		field: "kind", cfg: cfg, save: save, usage: usage,
		has:    (*config.Config).HasKind,
		get:    (*config.Config).GetKind,
		add:    (*config.Config).AddKind,
		remove: (*config.Config).RemoveKind,
		list:   func(c *config.Config) []config.Definition { return c.Kinds },
	}
}

// Labels returns the label-key registry for a loaded config.
func Labels(cfg *config.Config, save SaveFunc, usage UsageFunc) *Taxonomy {
	return &Taxonomy{
		field: "label", cfg: cfg, save: save, usage: usage,
		has:    (*config.Config).HasLabel,
		get:    (*config.Config).GetLabel,
		add:    (*config.Config).AddLabel,
		remove: (*config.Config).RemoveLabel,
		list:   func(c *config.Config) []config.Definition { return c.Labels },
	}
}

// Add validates and registers a slug. Re-adding an existing slug is an
// error, not an upsert.
func (t *Taxonomy) Add(slug, description string) (string, error) {
	slug = Slugify(slug)
	if err := ValidateSlug(t.field, slug); err != nil {
		return "", err
	}
	if !t.add(t.cfg, slug, description) {
		return "", &domain.ValidationError{Field: t.field, Reason: fmt.Sprintf("%q is already registered", slug)}
	}
	if err := t.save(t.cfg); err != nil {
		return "", fmt.Errorf("save registry: %w", err)
	}
	return slug, nil
}

// Has reports whether a slug is registered.
func (t *Taxonomy) Has(slug string) bool { return t.has(t.cfg, slug) }

// Get returns a registered definition.
func (t *Taxonomy) Get(slug string) (*config.Definition, error) {
	d := t.get(t.cfg, slug)
	if d == nil {
		return nil, &domain.NotFoundError{Resource: t.field, Key: slug}
	}
	return d, nil
}

// List returns all registered definitions.
func (t *Taxonomy) List() []config.Definition { return t.list(t.cfg) }

// Remove unregisters a slug. Without force, removal is refused while
// stored artifacts still reference the slug. Removal never deletes or
// rewrites those artifacts: they stay retrievable by id and by
// unfiltered listing, only slug-filtered queries stop matching.
func (t *Taxonomy) Remove(slug string, force bool) error {
	if !t.has(t.cfg, slug) {
		return &domain.NotFoundError{Resource: t.field, Key: slug}
	}
	if !force && t.usage != nil {
		n, err := t.usage(slug)
		if err != nil {
			return err
		}
		if n > 0 {
			return &domain.ValidationError{
				Field:  t.field,
				Reason: fmt.Sprintf("%q is referenced by %d artifact(s); use force to remove anyway", slug, n),
			}
		}
	}
	t.remove(t.cfg, slug)
	if err := t.save(t.cfg); err != nil {
		return fmt.Errorf("save registry: %w", err)
	}
	return nil
}
