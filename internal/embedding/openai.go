package embedding

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"

	"github.com/hyperjump/solace/internal/apperr"
)

// OpenAIEmbedder calls the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
}

// NewOpenAIEmbedder creates an OpenAI embedder. An empty model uses text-embedding-3-small;
// dims <= 0 keeps the model's native size (1536 for the default model).
func NewOpenAIEmbedder(apiKey, model string, dims int) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, errors.New("openai embedder: API key is required")
	}
	m := openai.SmallEmbedding3
	if model != "" {
		m = openai.EmbeddingModel(model)
	}
	if dims <= 0 {
		dims = 1536
	}
	return &OpenAIEmbedder{
		client:     openai.NewClient(apiKey),
		model:      m,
		dimensions: dims,
	}, nil
}

// Embed returns the embedding of text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	const op = "embedding.openai"
	if err := checkInput(op, text); err != nil {
		return nil, err
	}
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      e.model,
		Dimensions: e.dimensions,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindEmbeddingUnavailable, op, err)
	}
	if len(resp.Data) == 0 {
		return nil, apperr.Wrap(apperr.KindEmbeddingUnavailable, op, errors.New("no embedding returned from API"))
	}
	return checkOutput(op, resp.Data[0].Embedding, e.dimensions)
}

// Dimensions returns the configured output dimensionality.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for OpenAIEmbedder.
func (e *OpenAIEmbedder) Close() error {
	return nil
}
