package generation

import (
	"context"
	"iter"
	"sync"

	"github.com/hyperjump/solace/internal/stream"
)

// MockGenerator returns scripted output. It backs the "mock" provider and the tests.
type MockGenerator struct {
	// Response is returned by Generate.
	Response string
	// Chunks are streamed by GenerateStream.
	Chunks []string
	// Err fails Generate, and GenerateStream after the first FailAfter chunks.
	Err       error
	FailAfter int

	mu      sync.Mutex
	prompts []string
}

const mockEvaluation = "```json\n" + `{
  "emotion_state": "NEUTRAL",
  "stress_level": 0,
  "gad7_score": 0,
  "gad7_assessment": "",
  "pss10_score": 0,
  "pss10_assessment": "",
  "mbi_ss_score": {"emotional_exhaustion": 0, "cynicism": 0, "professional_efficacy": 0, "assessment": ""},
  "overall_mental_health": "Not enough conversation yet to assess."
}` + "\n```"

// NewMockGenerator returns a generator suitable for running the server without a provider.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		Response: mockEvaluation,
		Chunks:   []string{"I hear you. ", "Thank you for sharing ", "how you feel."},
	}
}

// Model returns "mock".
func (m *MockGenerator) Model() string { return "mock" }

// Generate records the prompt and returns Response or Err.
func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.record(prompt)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

// GenerateStream records the prompt and streams Chunks.
func (m *MockGenerator) GenerateStream(ctx context.Context, prompt string) iter.Seq2[stream.Chunk, error] {
	return func(yield func(stream.Chunk, error) bool) {
		m.record(prompt)
		for i, c := range m.Chunks {
			if m.Err != nil && i == m.FailAfter {
				yield(nil, m.Err)
				return
			}
			if !yield(stream.TextChunk(c), nil) {
				return
			}
		}
		if m.Err != nil && m.FailAfter >= len(m.Chunks) {
			yield(nil, m.Err)
		}
	}
}

// Prompts returns the prompts received so far.
func (m *MockGenerator) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

func (m *MockGenerator) record(prompt string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
}
