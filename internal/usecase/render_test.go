package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"axiom/internal/domain"
)

func TestRenderWritesKindTree(t *testing.T) {
	svc := newTestService(t)
	out := t.TempDir()

	a := mustAdd(t, svc, AddParams{
		Kind: "invariant", Name: "Stable IDs",
		Content: "ids never change", Format: "markdown",
	})
	b := mustAdd(t, svc, AddParams{Kind: "contract", Content: "plain body"})

	result, err := svc.Render(out, "", domain.ListFilter{})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if len(result.Paths) != 2 {
		t.Fatalf("expected 2 files, got %v", result.Paths)
	}

	named := filepath.Join(out, "invariant", "stable-ids-"+a.ID+".md")
	data, err := os.ReadFile(named)
	if err != nil {
		t.Fatalf("named file missing: %v", err)
	}
	if string(data) != "ids never change" {
		t.Errorf("wrong content: %q", data)
	}

	// Nameless artifacts fall back to the id, text format to .txt.
	if _, err := os.Stat(filepath.Join(out, "contract", b.ID+".txt")); err != nil {
		t.Errorf("nameless file missing: %v", err)
	}
}

func TestRenderPatternFilters(t *testing.T) {
	svc := newTestService(t)
	out := t.TempDir()

	mustAdd(t, svc, AddParams{Kind: "invariant", Content: "kept"})
	mustAdd(t, svc, AddParams{Kind: "contract", Content: "skipped"})

	result, err := svc.Render(out, "invariant/**", domain.ListFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Paths) != 1 {
		t.Fatalf("pattern should keep one file: %v", result.Paths)
	}
	if _, err := os.Stat(filepath.Join(out, "contract")); !os.IsNotExist(err) {
		t.Error("filtered kind directory should not exist")
	}

	var ve *domain.ValidationError
	if _, err := svc.Render(out, "[", domain.ListFilter{}); !errors.As(err, &ve) {
		t.Errorf("malformed pattern should be a validation error, got %v", err)
	}
}

func TestPruneThroughService(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	a := mustAdd(t, svc, AddParams{Kind: "invariant", Content: "v1"})
	for _, content := range []string{"v2", "v3"} {
		c := content
		if _, _, err := svc.Update(ctx, a.ID, UpdatePatch{Content: &c}); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := svc.Prune(1, 0, false)
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if stats.RevisionsRemoved != 2 {
		t.Errorf("expected 2 revisions removed, got %d", stats.RevisionsRemoved)
	}

	hist, err := svc.History(a.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 1 || hist[0].Version != 3 {
		t.Errorf("only the latest revision should survive: %v", hist)
	}
	got, _ := svc.Get(a.ID)
	if got.Content != "v3" {
		t.Errorf("latest content lost: %q", got.Content)
	}
}

func TestPruneOlderThanKeepsRecent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	a := mustAdd(t, svc, AddParams{Kind: "invariant", Content: "v1"})
	c := "v2"
	if _, _, err := svc.Update(ctx, a.ID, UpdatePatch{Content: &c}); err != nil {
		t.Fatal(err)
	}

	// Everything was just written, so an age cutoff removes nothing.
	stats, err := svc.Prune(0, time.Hour, false)
	if err != nil {
		t.Fatal(err)
	}
	if stats.RevisionsRemoved != 0 {
		t.Errorf("young revisions should survive an age cutoff: %d", stats.RevisionsRemoved)
	}
	hist, _ := svc.History(a.ID, 0)
	if len(hist) != 2 {
		t.Errorf("history truncated: %v", hist)
	}
}
