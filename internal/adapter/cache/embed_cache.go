// Package cache provides a small LRU+TTL cache for query embeddings so
// repeated searches do not pay a provider call per query.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"axiom/internal/port"
)

type EmbedCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	order   []string
	maxSize int
	ttl     time.Duration
	gen     uint64
}

type cacheEntry struct {
	vector    []float32
	timestamp time.Time
	gen       uint64
}

// NewEmbedCache creates a cache holding up to maxSize vectors for ttl.
func NewEmbedCache(maxSize int, ttl time.Duration) *EmbedCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &EmbedCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

func cacheKey(model, text string) string {
	h := sha256.Sum256([]byte(model + "\x00" + text))
	return hex.EncodeToString(h[:16])
}

// Get returns a cached vector for (model, text), if fresh.
func (c *EmbedCache) Get(model, text string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(model, text)
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Since(entry.timestamp) > c.ttl || entry.gen != c.gen {
		delete(c.entries, key)
		c.removeFromOrder(key)
		return nil, false
	}
	c.moveToEnd(key)
	return entry.vector, true
}

// Put stores a vector for (model, text).
func (c *EmbedCache) Put(model, text string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(model, text)
	if _, ok := c.entries[key]; ok {
		c.entries[key] = &cacheEntry{vector: vector, timestamp: time.Now(), gen: c.gen}
		c.moveToEnd(key)
		return
	}
	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	c.entries[key] = &cacheEntry{vector: vector, timestamp: time.Now(), gen: c.gen}
	c.order = append(c.order, key)
}

// Invalidate drops all cached vectors. Called when the active model
// changes.
func (c *EmbedCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.order = c.order[:0]
	c.gen++
}

// Size returns the number of cached vectors.
func (c *EmbedCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *EmbedCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *EmbedCache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *EmbedCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// CachedEmbedder wraps an embedder with the cache. Only single-text
// Embed goes through the cache; batch reindex calls bypass it.
type CachedEmbedder struct {
	embedder port.Embedder
	cache    *EmbedCache
}

func NewCachedEmbedder(embedder port.Embedder, cache *EmbedCache) *CachedEmbedder {
	return &CachedEmbedder{embedder: embedder, cache: cache}
}

func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := e.cache.Get(e.embedder.ModelID(), text); ok {
		return vec, nil
	}
	vec, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.Put(e.embedder.ModelID(), text, vec)
	return vec, nil
}

func (e *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return e.embedder.EmbedBatch(ctx, texts)
}

func (e *CachedEmbedder) ModelID() string { return e.embedder.ModelID() }

func (e *CachedEmbedder) Dimensions() int { return e.embedder.Dimensions() }
