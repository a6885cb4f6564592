// Package storage defines the append-only fragment store and its backends.
package storage

import (
	"context"

	"github.com/hyperjump/solace/internal/models"
)

// FragmentStore persists embedded fragments per user and answers exact cosine top-K queries.
// Every read is scoped to a single user. Fragments are never updated or deleted.
type FragmentStore interface {
	// Insert stores a fragment and returns its generated ID. The write is durable when
	// Insert returns (except for the memory backend).
	Insert(ctx context.Context, userID int64, conversationID, text string, embedding []float32) (string, error)

	// TopK scans all of the user's fragments whose dimensionality matches query and returns
	// the k most similar, best first. Equal similarities rank the more recent fragment first.
	TopK(ctx context.Context, userID int64, query []float32, k int) ([]*models.RetrievalResult, error)

	// Recent returns the user's k most recently inserted fragments, newest first.
	Recent(ctx context.Context, userID int64, k int) ([]*models.Fragment, error)

	// Count returns the number of fragments stored for the user.
	Count(ctx context.Context, userID int64) (int64, error)

	// Stats reports totals across all users.
	Stats(ctx context.Context) (*Stats, error)

	Close() error
}

// Stats summarizes the store contents.
type Stats struct {
	Backend   string `json:"backend"`
	Fragments int64  `json:"fragments"`
	Users     int64  `json:"users"`
}
