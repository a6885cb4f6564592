package evaluation

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryMarkerStore keeps markers in an expiring in-process LRU.
type MemoryMarkerStore struct {
	lru *expirable.LRU[int64, Marker]
}

// NewMemoryMarkerStore returns a store holding up to size markers for ttl each.
func NewMemoryMarkerStore(size int, ttl time.Duration) *MemoryMarkerStore {
	return &MemoryMarkerStore{lru: expirable.NewLRU[int64, Marker](size, nil, ttl)}
}

// Get returns the user's marker.
func (s *MemoryMarkerStore) Get(_ context.Context, userID int64) (*Marker, error) {
	m, ok := s.lru.Get(userID)
	if !ok {
		return nil, nil
	}
	return &m, nil
}

// Set writes the user's marker.
func (s *MemoryMarkerStore) Set(_ context.Context, userID int64, m Marker) error {
	s.lru.Add(userID, m)
	return nil
}
