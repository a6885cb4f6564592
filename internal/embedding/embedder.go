// Package embedding provides the text embedding gateway and its providers.
package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperjump/solace/internal/apperr"
	"github.com/hyperjump/solace/internal/vector"
)

// Embedder produces vector embeddings for text. Implementations do not retry; any failure
// of the underlying service surfaces as an embedding-unavailable error.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	Close() error
}

// checkInput rejects blank text before it reaches a provider.
func checkInput(op, text string) error {
	if strings.TrimSpace(text) == "" {
		return apperr.New(apperr.KindValidation, op, "text to embed is empty")
	}
	return nil
}

// checkOutput turns a missing or malformed provider vector into an embedding-unavailable error.
// dims <= 0 skips the length check.
func checkOutput(op string, v []float32, dims int) ([]float32, error) {
	if err := vector.Validate(v); err != nil {
		return nil, apperr.Wrap(apperr.KindEmbeddingUnavailable, op, err)
	}
	if dims > 0 && len(v) != dims {
		return nil, apperr.Wrap(apperr.KindEmbeddingUnavailable, op,
			fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(v), dims))
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out, nil
}
