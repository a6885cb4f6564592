package vector

import "testing"

func TestTopK_OrderAndBound(t *testing.T) {
	top := NewTopK[string](3)
	scores := []float64{0.1, 0.9, -0.5, 0.4, 0.7, 0.2}
	for i, s := range scores {
		top.Offer(Candidate[string]{Seq: int64(i + 1), Score: s, Item: string(rune('a' + i))})
	}
	got := top.Sorted()
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	want := []string{"b", "e", "d"}
	for i, c := range got {
		if c.Item != want[i] {
			t.Errorf("[%d] = %s, want %s", i, c.Item, want[i])
		}
	}
}

func TestTopK_TiesPreferRecent(t *testing.T) {
	top := NewTopK[string](2)
	top.Offer(Candidate[string]{Seq: 1, Score: 0.5, Item: "old"})
	top.Offer(Candidate[string]{Seq: 2, Score: 0.5, Item: "mid"})
	top.Offer(Candidate[string]{Seq: 3, Score: 0.5, Item: "new"})
	got := top.Sorted()
	if got[0].Item != "new" || got[1].Item != "mid" {
		t.Errorf("got %v, %v", got[0].Item, got[1].Item)
	}
}

func TestTopK_ZeroAndShort(t *testing.T) {
	zero := NewTopK[int](0)
	zero.Offer(Candidate[int]{Score: 1})
	if zero.Len() != 0 {
		t.Error("k=0 must retain nothing")
	}

	short := NewTopK[int](10)
	short.Offer(Candidate[int]{Seq: 1, Score: -1})
	short.Offer(Candidate[int]{Seq: 2, Score: 1})
	got := short.Sorted()
	if len(got) != 2 || got[0].Seq != 2 {
		t.Errorf("unexpected result %+v", got)
	}
}
