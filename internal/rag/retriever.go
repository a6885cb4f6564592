// Package rag implements retrieval-augmented chat: fragment retrieval, prompt assembly and
// answer streaming.
package rag

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/solace/internal/embedding"
	"github.com/hyperjump/solace/internal/metrics"
	"github.com/hyperjump/solace/internal/models"
	"github.com/hyperjump/solace/internal/storage"
)

// Retriever finds a user's fragments most similar to a query and records the query as a
// new fragment of that user's history.
type Retriever struct {
	embedder embedding.Embedder
	store    storage.FragmentStore
	logger   *zap.Logger
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Retriever) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRetriever creates a retriever.
func NewRetriever(embedder embedding.Embedder, store storage.FragmentStore, opts ...Option) *Retriever {
	r := &Retriever{embedder: embedder, store: store, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve embeds query, ranks the user's existing fragments against it, then stores the
// query as a fragment. The ranking always completes before the insert, so a query never
// matches itself. If ranking fails nothing is stored.
func (r *Retriever) Retrieve(ctx context.Context, userID int64, conversationID, query string, k int) ([]*models.RetrievalResult, error) {
	start := time.Now()
	emb, err := r.embedder.Embed(ctx, query)
	if err != nil {
		r.logger.Warn("embed query failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}

	results, err := r.store.TopK(ctx, userID, emb, k)
	if err != nil {
		r.logger.Error("rank fragments failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}

	if _, err := r.store.Insert(ctx, userID, conversationID, query, emb); err != nil {
		r.logger.Error("store query fragment failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}
	metrics.FragmentsInserted.Inc()
	metrics.Retrievals.Inc()

	r.logger.Debug("retrieved fragments",
		zap.Int64("user_id", userID),
		zap.String("conversation_id", conversationID),
		zap.Int("k", k),
		zap.Int("results", len(results)),
		zap.Duration("took", time.Since(start)),
	)
	return results, nil
}

// Index embeds text and stores it as a fragment without ranking anything.
func (r *Retriever) Index(ctx context.Context, userID int64, conversationID, text string) (string, error) {
	emb, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return "", err
	}
	id, err := r.store.Insert(ctx, userID, conversationID, text, emb)
	if err != nil {
		return "", err
	}
	metrics.FragmentsInserted.Inc()
	return id, nil
}
