package storage

import (
	"context"
	"testing"
)

func TestMemoryStore_Contract(t *testing.T) {
	runContract(t, func(t *testing.T) FragmentStore { return NewMemoryStore() }, 0)
}

func TestMemoryStore_CopiesEmbedding(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	emb := []float32{1, 0}
	if _, err := s.Insert(ctx, 1, "", "x", emb); err != nil {
		t.Fatal(err)
	}
	emb[0] = -1

	res, err := s.TopK(ctx, 1, []float32{1, 0}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if res[0].Similarity != 1 {
		t.Errorf("stored vector was aliased, similarity = %v", res[0].Similarity)
	}
}
