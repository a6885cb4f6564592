package generation

import (
	"context"
	"fmt"
)

// Options selects and configures a generator.
type Options struct {
	Provider string
	APIKey   string
	Model    string

	// Temperature > 0 overrides the provider's sampling temperature (gemini only).
	Temperature float32
}

// New creates the generator described by opts.
// Supported providers: "gemini" (default), "openai", "mock".
func New(ctx context.Context, opts Options) (Generator, error) {
	switch opts.Provider {
	case "gemini", "":
		geminiOpts := []GeminiOption{WithModel(opts.Model)}
		if opts.Temperature > 0 {
			geminiOpts = append(geminiOpts, WithTemperature(opts.Temperature))
		}
		return NewGeminiGenerator(ctx, opts.APIKey, geminiOpts...)
	case "openai":
		return NewOpenAIGenerator(opts.APIKey, opts.Model)
	case "mock":
		return NewMockGenerator(), nil
	default:
		return nil, fmt.Errorf("unknown generation provider: %s (supported: gemini, openai, mock)", opts.Provider)
	}
}
