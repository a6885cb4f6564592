package embedding

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingEmbedder struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls.Add(1)
	time.Sleep(c.delay)
	if c.err != nil {
		return nil, c.err
	}
	return []float32{float32(len(text)), 1}, nil
}

func (c *countingEmbedder) Dimensions() int { return 2 }
func (c *countingEmbedder) Close() error    { return nil }

func TestCachedEmbedder_HitAndEvict(t *testing.T) {
	inner := &countingEmbedder{}
	c, err := NewCachedEmbedder(inner, 2)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	v1, _ := c.Embed(ctx, "a")
	v1[0] = 99 // callers must not be able to corrupt the cache
	v2, _ := c.Embed(ctx, "a")
	if v2[0] != 1 {
		t.Errorf("cached vector was mutated: %v", v2)
	}
	if inner.calls.Load() != 1 {
		t.Errorf("expected 1 upstream call, got %d", inner.calls.Load())
	}

	_, _ = c.Embed(ctx, "bb")
	_, _ = c.Embed(ctx, "ccc") // evicts "a"
	if c.Len() != 2 {
		t.Errorf("Len = %d", c.Len())
	}
	_, _ = c.Embed(ctx, "a")
	if inner.calls.Load() != 4 {
		t.Errorf("expected a to be reloaded, calls = %d", inner.calls.Load())
	}
}

func TestCachedEmbedder_CoalescesConcurrentMisses(t *testing.T) {
	inner := &countingEmbedder{delay: 50 * time.Millisecond}
	c, _ := NewCachedEmbedder(inner, 10)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Embed(context.Background(), "same text")
		}()
	}
	wg.Wait()
	if n := inner.calls.Load(); n != 1 {
		t.Errorf("expected 1 upstream call, got %d", n)
	}
}

func TestCachedEmbedder_DoesNotCacheErrors(t *testing.T) {
	boom := errors.New("boom")
	inner := &countingEmbedder{err: boom}
	c, _ := NewCachedEmbedder(inner, 10)
	for i := 0; i < 2; i++ {
		if _, err := c.Embed(context.Background(), "x"); !errors.Is(err, boom) {
			t.Fatalf("err = %v", err)
		}
	}
	if inner.calls.Load() != 2 || c.Len() != 0 {
		t.Errorf("calls=%d len=%d", inner.calls.Load(), c.Len())
	}
}
