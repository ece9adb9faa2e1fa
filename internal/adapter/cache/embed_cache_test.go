package cache

import (
	"context"
	"testing"
	"time"

	"axiom/internal/port"
)

func TestEmbedCache_PutGet(t *testing.T) {
	c := NewEmbedCache(10, time.Minute)

	if _, ok := c.Get("m", "query"); ok {
		t.Error("empty cache should miss")
	}

	c.Put("m", "query", []float32{1, 2, 3})
	vec, ok := c.Get("m", "query")
	if !ok {
		t.Fatal("expected hit after put")
	}
	if len(vec) != 3 || vec[0] != 1 {
		t.Errorf("wrong vector returned: %v", vec)
	}

	// Different model misses.
	if _, ok := c.Get("other", "query"); ok {
		t.Error("different model should miss")
	}
}

func TestEmbedCache_Eviction(t *testing.T) {
	c := NewEmbedCache(2, time.Minute)
	c.Put("m", "a", []float32{1})
	c.Put("m", "b", []float32{2})
	c.Put("m", "c", []float32{3})

	if c.Size() != 2 {
		t.Fatalf("expected size 2 after eviction, got %d", c.Size())
	}
	if _, ok := c.Get("m", "a"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := c.Get("m", "c"); !ok {
		t.Error("newest entry should survive")
	}
}

func TestEmbedCache_Invalidate(t *testing.T) {
	c := NewEmbedCache(10, time.Minute)
	c.Put("m", "query", []float32{1})
	c.Invalidate()
	if _, ok := c.Get("m", "query"); ok {
		t.Error("invalidated cache should miss")
	}
	if c.Size() != 0 {
		t.Errorf("expected empty cache, got %d", c.Size())
	}
}

type countingEmbedder struct {
	calls int
}

func (e *countingEmbedder) Embed(context.Context, string) ([]float32, error) {
	e.calls++
	return []float32{1, 0}, nil
}

func (e *countingEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.calls += len(texts)
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (e *countingEmbedder) ModelID() string { return "counting" }
func (e *countingEmbedder) Dimensions() int { return 2 }

var _ port.Embedder = (*countingEmbedder)(nil)

func TestCachedEmbedder(t *testing.T) {
	inner := &countingEmbedder{}
	e := NewCachedEmbedder(inner, NewEmbedCache(10, time.Minute))
	ctx := context.Background()

	if _, err := e.Embed(ctx, "q"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Embed(ctx, "q"); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 provider call, got %d", inner.calls)
	}

	// Batch calls bypass the cache.
	if _, err := e.EmbedBatch(ctx, []string{"q", "q"}); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 3 {
		t.Errorf("expected 3 provider calls after batch, got %d", inner.calls)
	}
}
