package embedding

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// CachedEmbedder memoizes embeddings by exact text. Concurrent misses for the same text
// share one upstream call. Failures are never cached.
type CachedEmbedder struct {
	next  Embedder
	lru   *lru.Cache[string, []float32]
	group singleflight.Group
}

// NewCachedEmbedder wraps next with an LRU of the given capacity.
func NewCachedEmbedder(next Embedder, capacity int) (*CachedEmbedder, error) {
	c, err := lru.New[string, []float32](capacity)
	if err != nil {
		return nil, err
	}
	return &CachedEmbedder{next: next, lru: c}, nil
}

// Embed returns the cached embedding of text, loading it from the wrapped embedder on a miss.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := c.lru.Get(text); ok {
		return clone(v), nil
	}
	val, err, _ := c.group.Do(text, func() (any, error) {
		v, err := c.next.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		c.lru.Add(text, v)
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return clone(val.([]float32)), nil
}

// Len returns the number of cached embeddings.
func (c *CachedEmbedder) Len() int {
	return c.lru.Len()
}

// Dimensions returns the wrapped embedder's dimension.
func (c *CachedEmbedder) Dimensions() int {
	return c.next.Dimensions()
}

// Close purges the cache and closes the wrapped embedder.
func (c *CachedEmbedder) Close() error {
	c.lru.Purge()
	return c.next.Close()
}

func clone(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
