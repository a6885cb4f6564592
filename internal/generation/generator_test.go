package generation

import (
	"context"
	"errors"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/hyperjump/solace/internal/stream"
)

func TestGeminiChunk_Text(t *testing.T) {
	ok := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: "hello"}}},
		}},
	}
	text, err := geminiChunk{resp: ok}.Text()
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	blocked := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
	}
	_, err = geminiChunk{resp: blocked}.Text()
	assert.Error(t, err)

	promptBlocked := &genai.GenerateContentResponse{
		PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
	}
	_, err = geminiChunk{resp: promptBlocked}.Text()
	assert.Error(t, err)

	_, err = geminiChunk{}.Text()
	assert.Error(t, err)
}

func TestOpenAIChunk_Text(t *testing.T) {
	c := openAIChunk{Choices: []openai.ChatCompletionStreamChoice{{
		Delta: openai.ChatCompletionStreamChoiceDelta{Content: "hi"},
	}}}
	text, err := c.Text()
	require.NoError(t, err)
	assert.Equal(t, "hi", text)

	empty, err := openAIChunk{}.Text()
	require.NoError(t, err)
	assert.Empty(t, empty)

	filtered := openAIChunk{Choices: []openai.ChatCompletionStreamChoice{{
		FinishReason: openai.FinishReasonContentFilter,
	}}}
	_, err = filtered.Text()
	assert.Error(t, err)
}

func TestMockGenerator_Stream(t *testing.T) {
	boom := errors.New("boom")
	m := &MockGenerator{Chunks: []string{"a", "b", "c"}, Err: boom, FailAfter: 1}
	var got []string
	var gotErr error
	for d, err := range stream.Relay(m.GenerateStream(context.Background(), "p")) {
		if err != nil {
			gotErr = err
			break
		}
		got = append(got, d)
	}
	assert.Equal(t, []string{"a"}, got)
	assert.ErrorIs(t, gotErr, boom)
	assert.Equal(t, []string{"p"}, m.Prompts())
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	g, err := New(ctx, Options{Provider: "mock"})
	require.NoError(t, err)
	assert.Equal(t, "mock", g.Model())

	_, err = New(ctx, Options{Provider: "gemini"})
	assert.Error(t, err, "missing API key")
	_, err = New(ctx, Options{Provider: "openai"})
	assert.Error(t, err, "missing API key")
	_, err = New(ctx, Options{Provider: "llama"})
	assert.Error(t, err)
}
