package registry

import (
	"errors"
	"testing"

	"axiom/config"
	"axiom/internal/domain"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Invariant", "invariant"},
		{"  My Kind  ", "my-kind"},
		{"a__b..c", "a-b-c"},
		{"--edge--", "edge"},
		{"UPPER case 123", "upper-case-123"},
		{"!!!", ""},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestValidateSlug(t *testing.T) {
	if err := ValidateSlug("kind", "invariant"); err != nil {
		t.Errorf("valid slug rejected: %v", err)
	}
	if err := ValidateSlug("kind", "x"); err == nil {
		t.Error("single-char slug should fail")
	}
	if err := ValidateSlug("kind", "all"); err == nil {
		t.Error("reserved slug should fail")
	}
	if err := ValidateSlug("kind", "Bad_Slug"); err == nil {
		t.Error("invalid characters should fail")
	}
	long := ""
	for i := 0; i < 65; i++ {
		long += "a"
	}
	if err := ValidateSlug("kind", long); err == nil {
		t.Error("overlong slug should fail")
	}
}

func newTestTaxonomy(usage UsageFunc) (*Taxonomy, *config.Config) {
	cfg := config.DefaultConfig()
	save := func(*config.Config) error { return nil }
	return Kinds(cfg, save, usage), cfg
}

func TestTaxonomyAdd(t *testing.T) {
	tax, cfg := newTestTaxonomy(nil)

	slug, err := tax.Add("My Kind", "a description")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if slug != "my-kind" {
		t.Errorf("expected slugified my-kind, got %s", slug)
	}
	if !cfg.HasKind("my-kind") {
		t.Error("kind not written to config")
	}

	if _, err := tax.Add("my-kind", ""); err == nil {
		t.Error("duplicate add should fail")
	}
	var ve *domain.ValidationError
	if _, err := tax.Add("all", ""); !errors.As(err, &ve) {
		t.Errorf("reserved slug should be a validation error, got %v", err)
	}
}

func TestTaxonomyGet(t *testing.T) {
	tax, _ := newTestTaxonomy(nil)

	if _, err := tax.Add("invariant", "what must always hold"); err != nil {
		t.Fatal(err)
	}

	d, err := tax.Get("invariant")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if d.Slug != "invariant" || d.Description != "what must always hold" {
		t.Errorf("wrong definition: %+v", d)
	}

	var nf *domain.NotFoundError
	if _, err := tax.Get("missing"); !errors.As(err, &nf) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestTaxonomyRemove(t *testing.T) {
	inUse := 2
	tax, cfg := newTestTaxonomy(func(string) (int, error) { return inUse, nil })

	if _, err := tax.Add("invariant", ""); err != nil {
		t.Fatal(err)
	}

	// Refused while referenced.
	err := tax.Remove("invariant", false)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error while in use, got %v", err)
	}
	if !cfg.HasKind("invariant") {
		t.Error("refused removal must not unregister")
	}

	// Forced removal goes through.
	if err := tax.Remove("invariant", true); err != nil {
		t.Fatalf("forced removal failed: %v", err)
	}
	if cfg.HasKind("invariant") {
		t.Error("forced removal should unregister")
	}

	// Unreferenced removal needs no force.
	inUse = 0
	if _, err := tax.Add("contract", ""); err != nil {
		t.Fatal(err)
	}
	if err := tax.Remove("contract", false); err != nil {
		t.Fatalf("unreferenced removal failed: %v", err)
	}

	var nf *domain.NotFoundError
	if err := tax.Remove("missing", false); !errors.As(err, &nf) {
		t.Errorf("expected not-found error, got %v", err)
	}
}
