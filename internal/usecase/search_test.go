package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"axiom/config"
	"axiom/internal/domain"
)

func TestSearchFindsRelatedContent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	billing := mustAdd(t, svc, AddParams{
		Kind:    "invariant",
		Content: "billing invoices are immutable once issued",
	})
	mustAdd(t, svc, AddParams{
		Kind:    "algorithm",
		Content: "the cache eviction policy is least recently used",
	})

	results, err := svc.Search(ctx, "immutable billing invoices", domain.ListFilter{}, SearchOptions{})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected results")
	}
	if results[0].Artifact.ID != billing.ID {
		t.Errorf("expected billing invariant first, got %s", results[0].Artifact.ID)
	}
}

func TestSearchIsDeterministic(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, c := range []string{"alpha statement", "beta statement", "gamma statement"} {
		mustAdd(t, svc, AddParams{Kind: "intent", Content: c})
	}

	first, err := svc.Search(ctx, "statement", domain.ListFilter{}, SearchOptions{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Search(ctx, "statement", domain.ListFilter{}, SearchOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatalf("result counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Artifact.ID != second[i].Artifact.ID || first[i].Score != second[i].Score {
			t.Fatalf("rank %d differs between identical queries", i)
		}
	}
}

func TestSearchValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	var ve *domain.ValidationError

	if _, err := svc.Search(ctx, "", domain.ListFilter{}, SearchOptions{}); !errors.As(err, &ve) {
		t.Errorf("empty query should be a validation error, got %v", err)
	}
	if _, err := svc.Search(ctx, "   ", domain.ListFilter{}, SearchOptions{}); !errors.As(err, &ve) {
		t.Errorf("whitespace query should be a validation error, got %v", err)
	}
	// Punctuation-only text embeds to a zero vector under the local
	// provider.
	if _, err := svc.Search(ctx, "...", domain.ListFilter{}, SearchOptions{}); !errors.As(err, &ve) {
		t.Errorf("zero-vector query should be a validation error, got %v", err)
	}
	if _, err := svc.Search(ctx, "q", domain.ListFilter{
		Labels: map[string]string{"unregistered": "v"},
	}, SearchOptions{}); !errors.As(err, &ve) {
		t.Errorf("unregistered filter key should be a validation error, got %v", err)
	}

	for _, w := range []float64{-0.1, 1.5} {
		weight := w
		if _, err := svc.Search(ctx, "q", domain.ListFilter{}, SearchOptions{ContextWeight: &weight}); !errors.As(err, &ve) {
			t.Errorf("weight %g should be a validation error, got %v", w, err)
		}
	}
}

func TestSearchKindFilter(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	mustAdd(t, svc, AddParams{Kind: "invariant", Content: "payment retries are capped"})
	mustAdd(t, svc, AddParams{Kind: "intent", Content: "payment retries feel seamless"})

	results, err := svc.Search(ctx, "payment retries", domain.ListFilter{Kind: "intent"}, SearchOptions{})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range results {
		if r.Artifact.Kind != "intent" {
			t.Errorf("kind filter leaked %s", r.Artifact.Kind)
		}
	}
	if len(results) != 1 {
		t.Errorf("expected exactly the intent, got %d results", len(results))
	}
}

func TestSearchContextInfluencesRanking(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// Identical content; only one carries a context matching the query.
	plain := mustAdd(t, svc, AddParams{
		Kind: "contract", Content: "responses include a request identifier",
	})
	contextual := mustAdd(t, svc, AddParams{
		Kind:    "contract",
		Content: "responses include a request identifier",
		Context: "rate limiting and throttling behavior",
	})

	results, err := svc.Search(ctx, "throttling and rate limiting", domain.ListFilter{}, SearchOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected both contracts, got %d", len(results))
	}
	if results[0].Artifact.ID != contextual.ID {
		t.Errorf("context match should outrank %s", plain.ID)
	}
	if results[0].Score <= results[1].Score {
		t.Error("context match should score strictly higher")
	}
}

func TestSearchPerQueryContextWeight(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	mustAdd(t, svc, AddParams{
		Kind: "contract", Content: "responses include a request identifier",
	})
	contextual := mustAdd(t, svc, AddParams{
		Kind:    "contract",
		Content: "responses include a request identifier",
		Context: "rate limiting and throttling behavior",
	})

	// Weight zero for one query: identical content scores identically,
	// regardless of context.
	zero := 0.0
	results, err := svc.Search(ctx, "throttling and rate limiting", domain.ListFilter{},
		SearchOptions{ContextWeight: &zero})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 || results[0].Score != results[1].Score {
		t.Errorf("weight 0 should ignore context: %v", results)
	}

	noCtx, err := svc.Search(ctx, "throttling and rate limiting", domain.ListFilter{},
		SearchOptions{NoContext: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(noCtx) != 2 || noCtx[0].Score != noCtx[1].Score {
		t.Errorf("no-context should ignore context: %v", noCtx)
	}

	// Weight one: the context match dominates.
	one := 1.0
	results, err = svc.Search(ctx, "throttling and rate limiting", domain.ListFilter{},
		SearchOptions{ContextWeight: &one})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Artifact.ID != contextual.ID || results[0].Score <= results[1].Score {
		t.Errorf("weight 1 should rank the context match strictly first: %v", results)
	}
}

func TestReindexUnknownModelConverges(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Init(dir, true, false)
	if err != nil {
		t.Fatal(err)
	}
	svc, err := NewServiceWithConfig(dir, cfg)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	mustAdd(t, svc, AddParams{Kind: "invariant", Content: "first statement", Context: "ctx one"})
	mustAdd(t, svc, AddParams{Kind: "invariant", Content: "second statement"})
	svc.Close()

	// An Ollama endpoint serving a model the registry has no entry for,
	// with a dimensionality unlike any registry default.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"embedding":[0.1,0.2,0.3,0.4,0.5,0.6,0.7,0.8]}`)
	}))
	defer srv.Close()

	cfg.Model.Provider = "ollama"
	cfg.Model.Name = "mystery-model"
	cfg.Model.BaseURL = srv.URL
	if err := cfg.Save(config.Path(dir)); err != nil {
		t.Fatal(err)
	}
	svc2, err := NewServiceWithConfig(dir, cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer svc2.Close()

	if svc2.StaleCount() != 2 {
		t.Fatalf("expected 2 stale artifacts, got %d", svc2.StaleCount())
	}
	result, err := svc2.Reindex(ctx, ReindexOptions{})
	if err != nil {
		t.Fatalf("reindex failed: %v", err)
	}
	if result.Reindexed != 2 {
		t.Errorf("expected 2 reindexed, got %d", result.Reindexed)
	}
	if svc2.StaleCount() != 0 {
		t.Errorf("stale count must reach zero after reindexing under an unregistered model, got %d", svc2.StaleCount())
	}

	// A second pass finds nothing left to do.
	again, err := svc2.Reindex(ctx, ReindexOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if again.Candidates != 0 {
		t.Errorf("second reindex should find no candidates, got %d", again.Candidates)
	}
}

func TestReindexAfterModelChange(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Init(dir, true, false)
	if err != nil {
		t.Fatal(err)
	}
	svc, err := NewServiceWithConfig(dir, cfg)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	mustAdd(t, svc, AddParams{Kind: "invariant", Content: "first statement", Context: "ctx one"})
	mustAdd(t, svc, AddParams{Kind: "invariant", Content: "second statement"})
	if svc.StaleCount() != 0 {
		t.Fatalf("fresh store should not be stale: %d", svc.StaleCount())
	}
	svc.Close()

	// Switch models; stored vectors are now the wrong shape.
	cfg.Model.Name = "nomic-embed-text"
	if err := cfg.Save(config.Path(dir)); err != nil {
		t.Fatal(err)
	}
	svc2, err := NewServiceWithConfig(dir, cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer svc2.Close()

	if svc2.StaleCount() != 2 {
		t.Fatalf("expected 2 stale artifacts, got %d", svc2.StaleCount())
	}

	dry, err := svc2.Reindex(ctx, ReindexOptions{DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	if dry.Candidates != 2 || dry.Reindexed != 0 {
		t.Errorf("dry run wrong: %+v", dry)
	}
	if svc2.StaleCount() != 2 {
		t.Error("dry run must not write")
	}

	var progressCalls int
	result, err := svc2.Reindex(ctx, ReindexOptions{
		Progress: func(done, total int) { progressCalls++ },
	})
	if err != nil {
		t.Fatalf("reindex failed: %v", err)
	}
	if result.Reindexed != 2 {
		t.Errorf("expected 2 reindexed, got %d", result.Reindexed)
	}
	if progressCalls != 2 {
		t.Errorf("expected 2 progress calls, got %d", progressCalls)
	}
	if svc2.StaleCount() != 0 {
		t.Errorf("store still stale after reindex: %d", svc2.StaleCount())
	}

	// Search works under the new model.
	results, err := svc2.Search(ctx, "first statement", domain.ListFilter{}, SearchOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 {
		t.Error("expected results after reindex")
	}
	if results[0].Artifact.EmbeddingModel != "nomic-embed-text" {
		t.Errorf("model not updated: %s", results[0].Artifact.EmbeddingModel)
	}
}

func TestReindexValidatesScope(t *testing.T) {
	svc := newTestService(t)
	var ve *domain.ValidationError
	if _, err := svc.Reindex(context.Background(), ReindexOptions{Scope: "bogus"}); !errors.As(err, &ve) {
		t.Errorf("unknown scope should be a validation error, got %v", err)
	}
}
