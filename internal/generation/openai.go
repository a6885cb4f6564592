package generation

import (
	"context"
	"errors"
	"io"
	"iter"

	"github.com/sashabaranov/go-openai"

	"github.com/hyperjump/solace/internal/apperr"
	"github.com/hyperjump/solace/internal/stream"
)

// OpenAIGenerator generates text with an OpenAI chat model.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator creates an OpenAI generator. An empty model uses gpt-4o-mini.
func NewOpenAIGenerator(apiKey, model string) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("openai generator: API key is required")
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIGenerator{client: openai.NewClient(apiKey), model: model}, nil
}

// Model returns the model name.
func (g *OpenAIGenerator) Model() string {
	return g.model
}

func (g *OpenAIGenerator) request(prompt string, streaming bool) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Stream: streaming,
	}
}

// Generate returns the complete response text.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	const op = "generation.openai"
	resp, err := g.client.CreateChatCompletion(ctx, g.request(prompt, false))
	if err != nil {
		return "", apperr.Wrap(apperr.KindGenerationUnavailable, op, err)
	}
	if len(resp.Choices) == 0 {
		return "", apperr.Wrap(apperr.KindGenerationUnavailable, op, errors.New("no choices in response"))
	}
	if resp.Choices[0].FinishReason == openai.FinishReasonContentFilter {
		return "", apperr.Wrap(apperr.KindGenerationUnavailable, op, errors.New("response filtered"))
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateStream streams the response. The HTTP stream is opened on the first pull and
// closed when the sequence ends or the consumer stops.
func (g *OpenAIGenerator) GenerateStream(ctx context.Context, prompt string) iter.Seq2[stream.Chunk, error] {
	const op = "generation.openai.stream"
	return func(yield func(stream.Chunk, error) bool) {
		s, err := g.client.CreateChatCompletionStream(ctx, g.request(prompt, true))
		if err != nil {
			yield(nil, apperr.Wrap(apperr.KindGenerationUnavailable, op, err))
			return
		}
		defer s.Close()
		for {
			resp, err := s.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, apperr.Wrap(apperr.KindGenerationUnavailable, op, err))
				return
			}
			if !yield(openAIChunk(resp), nil) {
				return
			}
		}
	}
}

type openAIChunk openai.ChatCompletionStreamResponse

func (c openAIChunk) Text() (string, error) {
	if len(c.Choices) == 0 {
		return "", nil
	}
	if c.Choices[0].FinishReason == openai.FinishReasonContentFilter {
		return "", errors.New("response filtered")
	}
	return c.Choices[0].Delta.Content, nil
}
