package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hyperjump/solace/internal/models"
	"github.com/hyperjump/solace/internal/vector"
)

// MemoryStore is an in-memory FragmentStore using brute-force cosine ranking.
// Suitable for tests and local development; nothing survives a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	seq    int64
	byUser map[int64][]*models.Fragment
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byUser: make(map[int64][]*models.Fragment)}
}

// Insert appends a fragment.
func (m *MemoryStore) Insert(ctx context.Context, userID int64, conversationID, text string, embedding []float32) (string, error) {
	if err := vector.Validate(embedding); err != nil {
		return "", err
	}
	emb := make([]float32, len(embedding))
	copy(emb, embedding)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	f := &models.Fragment{
		ID:             uuid.New().String(),
		Seq:            m.seq,
		UserID:         userID,
		ConversationID: conversationID,
		Text:           text,
		Embedding:      emb,
		CreatedAt:      time.Now().UTC(),
	}
	m.byUser[userID] = append(m.byUser[userID], f)
	return f.ID, nil
}

// TopK ranks the user's fragments of matching dimensionality against query.
func (m *MemoryStore) TopK(ctx context.Context, userID int64, query []float32, k int) ([]*models.RetrievalResult, error) {
	if err := vector.Validate(query); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []*models.RetrievalResult{}, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	top := vector.NewTopK[*models.RetrievalResult](k)
	for _, f := range m.byUser[userID] {
		if len(f.Embedding) != len(query) {
			continue
		}
		score := vector.Cosine(query, f.Embedding)
		top.Offer(vector.Candidate[*models.RetrievalResult]{
			Seq:   f.Seq,
			Score: score,
			Item: &models.RetrievalResult{
				FragmentID:     f.ID,
				ConversationID: f.ConversationID,
				Text:           f.Text,
				Similarity:     score,
			},
		})
	}
	return collect(top), nil
}

// Recent returns the user's newest fragments.
func (m *MemoryStore) Recent(ctx context.Context, userID int64, k int) ([]*models.Fragment, error) {
	if k <= 0 {
		return []*models.Fragment{}, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	frags := m.byUser[userID]
	if k > len(frags) {
		k = len(frags)
	}
	out := make([]*models.Fragment, 0, k)
	for i := len(frags) - 1; i >= len(frags)-k; i-- {
		c := *frags[i]
		out = append(out, &c)
	}
	return out, nil
}

// Count returns the number of fragments for the user.
func (m *MemoryStore) Count(ctx context.Context, userID int64) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.byUser[userID])), nil
}

// Stats returns fragment and user totals.
func (m *MemoryStore) Stats(ctx context.Context) (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := &Stats{Backend: string(BackendMemory), Users: int64(len(m.byUser))}
	for _, frags := range m.byUser {
		st.Fragments += int64(len(frags))
	}
	return st, nil
}

// Close is a no-op for MemoryStore.
func (m *MemoryStore) Close() error {
	return nil
}
