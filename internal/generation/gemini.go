package generation

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"google.golang.org/genai"

	"github.com/hyperjump/solace/internal/apperr"
	"github.com/hyperjump/solace/internal/stream"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiGenerator generates text with a Gemini model through the Google Gen AI SDK.
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	temperature *float32
}

// GeminiOption configures a GeminiGenerator.
type GeminiOption func(*GeminiGenerator)

// WithModel sets the generative model. Empty keeps the default.
func WithModel(model string) GeminiOption {
	return func(g *GeminiGenerator) {
		if model != "" {
			g.model = model
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) GeminiOption {
	return func(g *GeminiGenerator) {
		g.temperature = &t
	}
}

// NewGeminiGenerator creates a Gemini generator.
func NewGeminiGenerator(ctx context.Context, apiKey string, opts ...GeminiOption) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini generator: API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini generator: %w", err)
	}
	return newGeminiGenerator(client, opts...), nil
}

func newGeminiGenerator(client *genai.Client, opts ...GeminiOption) *GeminiGenerator {
	g := &GeminiGenerator{client: client, model: defaultGeminiModel}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Model returns the model name.
func (g *GeminiGenerator) Model() string {
	return g.model
}

func (g *GeminiGenerator) config() *genai.GenerateContentConfig {
	if g.temperature == nil {
		return nil
	}
	return &genai.GenerateContentConfig{Temperature: g.temperature}
}

// Generate returns the complete response text.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	const op = "generation.gemini"
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config())
	if err != nil {
		return "", apperr.Wrap(apperr.KindGenerationUnavailable, op, err)
	}
	text, err := geminiChunk{resp: resp}.Text()
	if err != nil {
		return "", apperr.Wrap(apperr.KindGenerationUnavailable, op, err)
	}
	return text, nil
}

// GenerateStream streams the response.
func (g *GeminiGenerator) GenerateStream(ctx context.Context, prompt string) iter.Seq2[stream.Chunk, error] {
	return func(yield func(stream.Chunk, error) bool) {
		for resp, err := range g.client.Models.GenerateContentStream(ctx, g.model, genai.Text(prompt), g.config()) {
			if err != nil {
				yield(nil, apperr.Wrap(apperr.KindGenerationUnavailable, "generation.gemini.stream", err))
				return
			}
			if !yield(geminiChunk{resp: resp}, nil) {
				return
			}
		}
	}
}

// geminiChunk extracts text from one response, failing on blocked prompts or candidates.
type geminiChunk struct {
	resp *genai.GenerateContentResponse
}

func (c geminiChunk) Text() (string, error) {
	if c.resp == nil {
		return "", errors.New("empty response")
	}
	if fb := c.resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return "", fmt.Errorf("prompt blocked: %s", fb.BlockReason)
	}
	for _, cand := range c.resp.Candidates {
		if cand == nil {
			continue
		}
		switch cand.FinishReason {
		case genai.FinishReasonSafety, genai.FinishReasonBlocklist, genai.FinishReasonProhibitedContent:
			return "", fmt.Errorf("candidate blocked: %s", cand.FinishReason)
		}
	}
	return c.resp.Text(), nil
}
