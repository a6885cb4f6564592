package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"

	"google.golang.org/genai"

	"github.com/hyperjump/solace/internal/apperr"
)

const (
	defaultGeminiModel      = "gemini-embedding-001"
	defaultGeminiDimensions = 768
)

// GeminiEmbedder calls the Gemini embeddings API through the Google Gen AI SDK.
type GeminiEmbedder struct {
	client     *genai.Client
	model      string
	dimensions int
}

// GeminiOption configures a GeminiEmbedder.
type GeminiOption func(*GeminiEmbedder)

// WithGeminiModel sets the embedding model name. Empty keeps the default.
func WithGeminiModel(model string) GeminiOption {
	return func(e *GeminiEmbedder) {
		if model != "" {
			e.model = model
		}
	}
}

// WithGeminiDimensions sets the requested output dimensionality.
func WithGeminiDimensions(dims int) GeminiOption {
	return func(e *GeminiEmbedder) {
		if dims > 0 {
			e.dimensions = dims
		}
	}
}

// NewGeminiEmbedder creates a Gemini embedder.
func NewGeminiEmbedder(ctx context.Context, apiKey string, opts ...GeminiOption) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, errors.New("gemini embedder: API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini embedder: %w", err)
	}
	e := &GeminiEmbedder{
		client:     client,
		model:      defaultGeminiModel,
		dimensions: defaultGeminiDimensions,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.dimensions > math.MaxInt32 {
		return nil, fmt.Errorf("gemini embedder: dimensions %d out of range", e.dimensions)
	}
	return e, nil
}

// Embed returns the embedding of text.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	const op = "embedding.gemini"
	if err := checkInput(op, text); err != nil {
		return nil, err
	}
	dims := int32(e.dimensions)
	resp, err := e.client.Models.EmbedContent(ctx, e.model,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		&genai.EmbedContentConfig{OutputDimensionality: &dims},
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindEmbeddingUnavailable, op, err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, apperr.Wrap(apperr.KindEmbeddingUnavailable, op, errors.New("no embedding in response"))
	}
	return checkOutput(op, resp.Embeddings[0].Values, e.dimensions)
}

// Dimensions returns the configured output dimensionality.
func (e *GeminiEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (e *GeminiEmbedder) Close() error {
	return nil
}
