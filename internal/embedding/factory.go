package embedding

import (
	"context"
	"fmt"
)

// Provider names an embedding backend.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
	ProviderMock   Provider = "mock"
)

// Options selects and configures an embedder.
type Options struct {
	Provider   string
	APIKey     string
	Model      string
	Dimensions int
	// CacheSize > 0 wraps the embedder in an LRU of that many entries.
	CacheSize int
}

// New creates the embedder described by opts.
// Supported providers: "gemini" (default), "openai", "mock".
func New(ctx context.Context, opts Options) (Embedder, error) {
	var (
		e   Embedder
		err error
	)
	switch Provider(opts.Provider) {
	case ProviderGemini, "":
		e, err = NewGeminiEmbedder(ctx, opts.APIKey,
			WithGeminiModel(opts.Model), WithGeminiDimensions(opts.Dimensions))
	case ProviderOpenAI:
		e, err = NewOpenAIEmbedder(opts.APIKey, opts.Model, opts.Dimensions)
	case ProviderMock:
		e = NewMockEmbedder(opts.Dimensions)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: gemini, openai, mock)", opts.Provider)
	}
	if err != nil {
		return nil, err
	}
	if opts.CacheSize > 0 {
		return NewCachedEmbedder(e, opts.CacheSize)
	}
	return e, nil
}
