package usecase

import (
	"context"
	"errors"
	"testing"

	"axiom/config"
	"axiom/internal/domain"
)

// newTestService builds a service over a temp project with the local
// provider, the intent-flow kinds, and two label keys registered.
func newTestService(t *testing.T) *Service {
	t.Helper()
	dir := t.TempDir()
	cfg, err := Init(dir, true, false)
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	cfg.AddLabel("team", "owning team")
	cfg.AddLabel("status", "review status")
	if err := cfg.Save(config.Path(dir)); err != nil {
		t.Fatal(err)
	}

	svc, err := NewServiceWithConfig(dir, cfg)
	if err != nil {
		t.Fatalf("service failed: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return svc
}

func mustAdd(t *testing.T, svc *Service, p AddParams) *domain.Artifact {
	t.Helper()
	a, _, err := svc.Add(context.Background(), p)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	return a
}

func TestAddAndGet(t *testing.T) {
	svc := newTestService(t)

	a, version, err := svc.Add(context.Background(), AddParams{
		Kind:    "invariant",
		Name:    "stable ids",
		Content: "artifact identifiers never change after creation",
		Context: "applies to every storage backend",
		Format:  "markdown",
		Labels:  map[string]string{"team": "core"},
	})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if version != 1 {
		t.Errorf("first add should create version 1, got %d", version)
	}
	if !domain.ValidID(a.ID) {
		t.Errorf("generated id invalid: %s", a.ID)
	}
	if a.EmbeddingModel != "bge-small-en-v1.5" {
		t.Errorf("embedding model not recorded: %s", a.EmbeddingModel)
	}

	got, err := svc.Get(a.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Content != a.Content || got.Context != a.Context {
		t.Error("roundtrip lost text fields")
	}
	if got.Format != domain.FormatMarkdown {
		t.Errorf("format lost: %s", got.Format)
	}
	if got.Metadata["team"] != "core" {
		t.Errorf("labels lost: %v", got.Metadata)
	}
}

func TestAddValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	var ve *domain.ValidationError

	_, _, err := svc.Add(ctx, AddParams{Kind: "nonexistent", Content: "x"})
	if !errors.As(err, &ve) {
		t.Errorf("unregistered kind should be a validation error, got %v", err)
	}

	_, _, err = svc.Add(ctx, AddParams{Kind: "invariant", Content: ""})
	if !errors.As(err, &ve) {
		t.Errorf("empty content should be a validation error, got %v", err)
	}

	_, _, err = svc.Add(ctx, AddParams{
		Kind: "invariant", Content: "x",
		Labels: map[string]string{"unregistered": "v"},
	})
	if !errors.As(err, &ve) {
		t.Errorf("unregistered label key should be a validation error, got %v", err)
	}

	_, _, err = svc.Add(ctx, AddParams{
		Kind: "invariant", Content: "x",
		Labels: map[string]string{"team": ""},
	})
	if !errors.As(err, &ve) {
		t.Errorf("empty label value should be a validation error, got %v", err)
	}

	_, _, err = svc.Add(ctx, AddParams{Kind: "invariant", Content: "x", Format: "binary"})
	if !errors.As(err, &ve) {
		t.Errorf("unknown format should be a validation error, got %v", err)
	}

	// A failed add never creates a version.
	if svc.Head() != 0 {
		t.Errorf("validation failures must not bump head: %d", svc.Head())
	}
}

func TestAddTokenBudget(t *testing.T) {
	svc := newTestService(t)

	long := ""
	for i := 0; i < 600; i++ {
		long += "word "
	}
	_, _, err := svc.Add(context.Background(), AddParams{Kind: "invariant", Content: long})
	var budget *domain.TokenBudgetError
	if !errors.As(err, &budget) {
		t.Fatalf("expected token budget error, got %v", err)
	}
	if budget.Model != "bge-small-en-v1.5" || budget.Limit != 512 {
		t.Errorf("unexpected budget error: %+v", budget)
	}
	if svc.Head() != 0 {
		t.Error("budget failure must not bump head")
	}
}

func TestUpdate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	a := mustAdd(t, svc, AddParams{
		Kind: "invariant", Content: "original content",
		Labels: map[string]string{"team": "core", "status": "draft"},
	})

	content := "revised content"
	updated, version, err := svc.Update(ctx, a.ID, UpdatePatch{
		Content: &content,
		Labels:  map[string]string{"status": ""},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if version != 2 {
		t.Errorf("expected version 2, got %d", version)
	}
	if updated.Content != "revised content" {
		t.Errorf("content not updated: %q", updated.Content)
	}
	if _, ok := updated.Metadata["status"]; ok {
		t.Error("empty label value should remove the key")
	}
	if updated.Metadata["team"] != "core" {
		t.Error("untouched label lost")
	}
	if !updated.CreatedAt.Equal(a.CreatedAt) {
		t.Error("update must preserve CreatedAt")
	}
	if !updated.UpdatedAt.After(a.UpdatedAt) {
		t.Error("update must advance UpdatedAt")
	}

	// Removing an already-absent label is not an error.
	if _, _, err := svc.Update(ctx, a.ID, UpdatePatch{Labels: map[string]string{"status": ""}}); err != nil {
		t.Errorf("removing absent label should succeed: %v", err)
	}
}

func TestUpdateClearsContext(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	a := mustAdd(t, svc, AddParams{
		Kind: "invariant", Content: "content", Context: "some context",
	})

	empty := ""
	updated, _, err := svc.Update(ctx, a.ID, UpdatePatch{Context: &empty})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Context != "" || updated.ContextEmbedding != nil {
		t.Error("clearing context should drop text and vector")
	}
}

func TestUpdateValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	a := mustAdd(t, svc, AddParams{Kind: "invariant", Content: "x"})

	var ve *domain.ValidationError
	if _, _, err := svc.Update(ctx, a.ID, UpdatePatch{}); !errors.As(err, &ve) {
		t.Errorf("empty patch should be a validation error, got %v", err)
	}

	bad := "nonexistent"
	if _, _, err := svc.Update(ctx, a.ID, UpdatePatch{Kind: &bad}); !errors.As(err, &ve) {
		t.Errorf("unregistered kind should be a validation error, got %v", err)
	}

	empty := ""
	if _, _, err := svc.Update(ctx, a.ID, UpdatePatch{Content: &empty}); !errors.As(err, &ve) {
		t.Errorf("clearing content should be a validation error, got %v", err)
	}

	var nf *domain.NotFoundError
	c := "y"
	if _, _, err := svc.Update(ctx, "zzzzzzzzzz", UpdatePatch{Content: &c}); !errors.As(err, &nf) {
		t.Errorf("unknown id should be not-found, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	svc := newTestService(t)
	a := mustAdd(t, svc, AddParams{Kind: "invariant", Content: "doomed statement"})

	version, err := svc.Remove(a.ID)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if version != 2 {
		t.Errorf("expected removal at version 2, got %d", version)
	}

	var nf *domain.NotFoundError
	if _, err := svc.Get(a.ID); !errors.As(err, &nf) {
		t.Errorf("removed artifact should be not-found, got %v", err)
	}

	// Still readable before the removal.
	old, err := svc.GetAt(a.ID, 1)
	if err != nil {
		t.Fatalf("historical read failed: %v", err)
	}
	if old.Content != "doomed statement" {
		t.Errorf("wrong historical content: %q", old.Content)
	}
}

func TestListAtValidatesLabelKeys(t *testing.T) {
	svc := newTestService(t)
	mustAdd(t, svc, AddParams{
		Kind: "invariant", Content: "x",
		Labels: map[string]string{"team": "core"},
	})

	var ve *domain.ValidationError
	if _, err := svc.ListAt(1, domain.ListFilter{
		Labels: map[string]string{"unregistered": "v"},
	}); !errors.As(err, &ve) {
		t.Errorf("unregistered filter key should be a validation error, got %v", err)
	}

	got, err := svc.ListAt(1, domain.ListFilter{Labels: map[string]string{"team": "core"}})
	if err != nil {
		t.Fatalf("historical list failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 artifact, got %d", len(got))
	}
}

func TestKindRemovalLeavesArtifacts(t *testing.T) {
	svc := newTestService(t)
	a := mustAdd(t, svc, AddParams{Kind: "pace", Content: "release weekly"})

	// Refused while referenced.
	if err := svc.Kinds.Remove("pace", false); err == nil {
		t.Error("removal of referenced kind should be refused")
	}
	if err := svc.Kinds.Remove("pace", true); err != nil {
		t.Fatalf("forced removal failed: %v", err)
	}

	// The artifact survives and stays retrievable by id and unfiltered
	// listing; only the kind filter goes quiet.
	if _, err := svc.Get(a.ID); err != nil {
		t.Errorf("artifact lost after kind removal: %v", err)
	}
	all, _ := svc.List(domain.ListFilter{})
	if len(all) != 1 {
		t.Errorf("unfiltered list should still include it: %d", len(all))
	}
}

func TestAutoPruneBoundsRevisions(t *testing.T) {
	svc := newTestService(t)
	svc.Config.Storage.AutoPrune = true
	svc.Config.Storage.KeepVersions = 1
	ctx := context.Background()

	a := mustAdd(t, svc, AddParams{Kind: "invariant", Content: "r1"})
	for _, content := range []string{"r2", "r3", "r4"} {
		c := content
		if _, _, err := svc.Update(ctx, a.ID, UpdatePatch{Content: &c}); err != nil {
			t.Fatal(err)
		}
	}

	hist, err := svc.History(a.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 1 {
		t.Errorf("auto-prune with keep 1 should leave one revision, got %d", len(hist))
	}
	got, _ := svc.Get(a.ID)
	if got.Content != "r4" {
		t.Errorf("latest content lost: %q", got.Content)
	}
	if svc.Head() != 4 {
		t.Errorf("pruning must not move head: %d", svc.Head())
	}
}
