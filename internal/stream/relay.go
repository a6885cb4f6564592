// Package stream relays a provider's chunked generation output as a lazy sequence of text deltas.
package stream

import (
	"iter"

	"github.com/hyperjump/solace/internal/apperr"
)

// Chunk is one element of a provider's streaming response.
type Chunk interface {
	// Text extracts the chunk's text delta. It fails when the chunk carries no usable
	// content, for example a safety-blocked candidate.
	Text() (string, error)
}

// TextChunk is a Chunk holding plain text.
type TextChunk string

// Text returns the chunk as-is.
func (c TextChunk) Text() (string, error) { return string(c), nil }

// Relay turns a chunk sequence into a sequence of text deltas, one per chunk, in order.
//
// The returned sequence is single-pass: ranging over it drives the upstream sequence, and
// breaking out of the range stops pulling from the provider. The first upstream or
// extraction error is yielded once with an empty delta and ends the sequence; nothing
// after it is delivered. Errors without a kind are reported as generation-unavailable.
func Relay(chunks iter.Seq2[Chunk, error]) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for chunk, err := range chunks {
			if err != nil {
				yield("", classify(err))
				return
			}
			if chunk == nil {
				continue
			}
			delta, err := chunk.Text()
			if err != nil {
				yield("", classify(err))
				return
			}
			if !yield(delta, nil) {
				return
			}
		}
	}
}

func classify(err error) error {
	if apperr.HasKind(err) {
		return err
	}
	return apperr.Wrap(apperr.KindGenerationUnavailable, "stream.relay", err)
}

// FromSlice returns a chunk sequence over texts, optionally ending with err.
func FromSlice(texts []string, err error) iter.Seq2[Chunk, error] {
	return func(yield func(Chunk, error) bool) {
		for _, t := range texts {
			if !yield(TextChunk(t), nil) {
				return
			}
		}
		if err != nil {
			yield(nil, err)
		}
	}
}
