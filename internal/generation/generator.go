// Package generation wraps the external text generation capability used for chat answers
// and evaluations.
package generation

import (
	"context"
	"iter"

	"github.com/hyperjump/solace/internal/stream"
)

// Generator produces text from a prompt, either in one call or as a stream of chunks.
type Generator interface {
	// Generate returns the complete response text.
	Generate(ctx context.Context, prompt string) (string, error)

	// GenerateStream returns the response as a lazy chunk sequence. Nothing is requested from
	// the provider until the sequence is ranged over; stopping the range abandons the stream.
	GenerateStream(ctx context.Context, prompt string) iter.Seq2[stream.Chunk, error]

	// Model returns the provider model name, for logging.
	Model() string
}
