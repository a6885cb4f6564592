package vector

import (
	"container/heap"
	"sort"
)

// Candidate is a scored item offered to a TopK collector. Seq orders insertion; on equal
// scores the larger Seq (more recent) ranks first.
type Candidate[T any] struct {
	Seq   int64
	Score float64
	Item  T
}

func better[T any](a, b Candidate[T]) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Seq > b.Seq
}

// candidateHeap is a min-heap: the root is the worst retained candidate.
type candidateHeap[T any] []Candidate[T]

func (h candidateHeap[T]) Len() int           { return len(h) }
func (h candidateHeap[T]) Less(i, j int) bool { return better(h[j], h[i]) }
func (h candidateHeap[T]) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *candidateHeap[T]) Push(x any)        { *h = append(*h, x.(Candidate[T])) }
func (h *candidateHeap[T]) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[:n-1]
	return c
}

// TopK keeps the k best candidates seen so far in O(k) memory.
type TopK[T any] struct {
	k int
	h candidateHeap[T]
}

// NewTopK returns a collector for the k best candidates. k <= 0 collects nothing.
func NewTopK[T any](k int) *TopK[T] {
	if k < 0 {
		k = 0
	}
	return &TopK[T]{k: k, h: make(candidateHeap[T], 0, min(k, 1024))}
}

// Offer considers c for the result set.
func (t *TopK[T]) Offer(c Candidate[T]) {
	if t.k == 0 {
		return
	}
	if len(t.h) < t.k {
		heap.Push(&t.h, c)
		return
	}
	if better(c, t.h[0]) {
		t.h[0] = c
		heap.Fix(&t.h, 0)
	}
}

// Len returns the number of retained candidates.
func (t *TopK[T]) Len() int {
	return len(t.h)
}

// Sorted returns the retained candidates, best first.
func (t *TopK[T]) Sorted() []Candidate[T] {
	out := make([]Candidate[T], len(t.h))
	copy(out, t.h)
	sort.Slice(out, func(i, j int) bool { return better(out[i], out[j]) })
	return out
}
