package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/hyperjump/solace/internal/apperr"
)

// runContract exercises the FragmentStore behaviour every backend must share.
// base offsets user IDs so backends with shared state (postgres) do not collide across runs.
func runContract(t *testing.T, newStore func(t *testing.T) FragmentStore, base int64) {
	ctx := context.Background()
	alice, bob := base+1, base+2

	t.Run("user isolation", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Insert(ctx, alice, "c1", "alice fragment", []float32{1, 0, 0}); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Insert(ctx, bob, "c2", "bob fragment", []float32{1, 0, 0}); err != nil {
			t.Fatal(err)
		}
		res, err := s.TopK(ctx, alice, []float32{1, 0, 0}, 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(res) != 1 || res[0].Text != "alice fragment" {
			t.Fatalf("alice saw %+v", res)
		}
		recent, err := s.Recent(ctx, bob, 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(recent) != 1 || recent[0].Text != "bob fragment" {
			t.Fatalf("bob saw %+v", recent)
		}
	})

	t.Run("top k ordering and bound", func(t *testing.T) {
		s := newStore(t)
		vecs := [][]float32{{1, 0}, {0.6, 0.8}, {0, 1}, {-1, 0}, {0.8, 0.6}}
		for i, v := range vecs {
			if _, err := s.Insert(ctx, alice, "c", fmt.Sprintf("f%d", i), v); err != nil {
				t.Fatal(err)
			}
		}
		res, err := s.TopK(ctx, alice, []float32{1, 0}, 3)
		if err != nil {
			t.Fatal(err)
		}
		if len(res) != 3 {
			t.Fatalf("len = %d, want 3", len(res))
		}
		want := []string{"f0", "f4", "f1"}
		for i := range res {
			if res[i].Text != want[i] {
				t.Errorf("[%d] = %s, want %s", i, res[i].Text, want[i])
			}
			if i > 0 && res[i].Similarity > res[i-1].Similarity {
				t.Errorf("similarity not non-increasing at %d", i)
			}
		}
		if math.Abs(res[0].Similarity-1) > 1e-6 {
			t.Errorf("identical vector similarity = %v", res[0].Similarity)
		}

		all, err := s.TopK(ctx, alice, []float32{1, 0}, 100)
		if err != nil {
			t.Fatal(err)
		}
		if len(all) != len(vecs) {
			t.Errorf("k larger than store: got %d", len(all))
		}
		if last := all[len(all)-1]; last.Text != "f3" || math.Abs(last.Similarity+1) > 1e-6 {
			t.Errorf("opposite vector should rank last with -1, got %+v", last)
		}
	})

	t.Run("ties prefer recent", func(t *testing.T) {
		s := newStore(t)
		for _, text := range []string{"first", "second", "third"} {
			if _, err := s.Insert(ctx, alice, "", text, []float32{0.5, 0.5}); err != nil {
				t.Fatal(err)
			}
		}
		res, err := s.TopK(ctx, alice, []float32{1, 1}, 2)
		if err != nil {
			t.Fatal(err)
		}
		if len(res) != 2 || res[0].Text != "third" || res[1].Text != "second" {
			t.Errorf("got %+v", res)
		}
	})

	t.Run("non positive k", func(t *testing.T) {
		s := newStore(t)
		_, _ = s.Insert(ctx, alice, "", "x", []float32{1})
		for _, k := range []int{0, -3} {
			res, err := s.TopK(ctx, alice, []float32{1}, k)
			if err != nil || len(res) != 0 {
				t.Errorf("k=%d: res=%v err=%v", k, res, err)
			}
			recent, err := s.Recent(ctx, alice, k)
			if err != nil || len(recent) != 0 {
				t.Errorf("recent k=%d: res=%v err=%v", k, recent, err)
			}
		}
	})

	t.Run("empty store", func(t *testing.T) {
		s := newStore(t)
		res, err := s.TopK(ctx, alice, []float32{1, 2}, 5)
		if err != nil || len(res) != 0 {
			t.Errorf("res=%v err=%v", res, err)
		}
	})

	t.Run("zero norm similarity is zero", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Insert(ctx, alice, "", "zero", []float32{0, 0}); err != nil {
			t.Fatal(err)
		}
		res, err := s.TopK(ctx, alice, []float32{1, 0}, 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(res) != 1 || res[0].Similarity != 0 {
			t.Errorf("got %+v", res)
		}
	})

	t.Run("dimension mismatch skipped", func(t *testing.T) {
		s := newStore(t)
		_, _ = s.Insert(ctx, alice, "", "three", []float32{1, 0, 0})
		_, _ = s.Insert(ctx, alice, "", "two", []float32{1, 0})
		res, err := s.TopK(ctx, alice, []float32{1, 0}, 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(res) != 1 || res[0].Text != "two" {
			t.Errorf("got %+v", res)
		}
	})

	t.Run("invalid embedding", func(t *testing.T) {
		s := newStore(t)
		nan := float32(math.NaN())
		if _, err := s.Insert(ctx, alice, "", "x", nil); !errors.Is(err, apperr.ErrInvalidEmbedding) {
			t.Errorf("insert empty: %v", err)
		}
		if _, err := s.Insert(ctx, alice, "", "x", []float32{nan}); !errors.Is(err, apperr.ErrInvalidEmbedding) {
			t.Errorf("insert nan: %v", err)
		}
		if _, err := s.TopK(ctx, alice, []float32{}, 1); !errors.Is(err, apperr.ErrInvalidEmbedding) {
			t.Errorf("topk empty: %v", err)
		}
		if n, _ := s.Count(ctx, alice); n != 0 {
			t.Errorf("invalid inserts must not persist, count = %d", n)
		}
	})

	t.Run("recent order", func(t *testing.T) {
		s := newStore(t)
		for i := 0; i < 5; i++ {
			if _, err := s.Insert(ctx, alice, "c", fmt.Sprintf("m%d", i), []float32{float32(i + 1)}); err != nil {
				t.Fatal(err)
			}
		}
		recent, err := s.Recent(ctx, alice, 3)
		if err != nil {
			t.Fatal(err)
		}
		want := []string{"m4", "m3", "m2"}
		if len(recent) != len(want) {
			t.Fatalf("len = %d", len(recent))
		}
		for i, f := range recent {
			if f.Text != want[i] {
				t.Errorf("[%d] = %s, want %s", i, f.Text, want[i])
			}
			if f.UserID != alice || f.ID == "" || len(f.Embedding) != 1 {
				t.Errorf("incomplete fragment %+v", f)
			}
		}
		if n, _ := s.Count(ctx, alice); n != 5 {
			t.Errorf("count = %d", n)
		}
	})

	t.Run("concurrent inserts", func(t *testing.T) {
		s := newStore(t)
		var wg sync.WaitGroup
		errs := make(chan error, 40)
		for u := int64(0); u < 4; u++ {
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func(user int64, i int) {
					defer wg.Done()
					_, err := s.Insert(ctx, user, "", fmt.Sprintf("u%d-%d", user, i), []float32{float32(i), 1})
					errs <- err
				}(base+10+u, i)
			}
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				t.Fatal(err)
			}
		}
		for u := int64(0); u < 4; u++ {
			n, err := s.Count(ctx, base+10+u)
			if err != nil {
				t.Fatal(err)
			}
			if n != 10 {
				t.Errorf("user %d count = %d", u, n)
			}
		}
	})
}
