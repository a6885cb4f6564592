package stream

import (
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/solace/internal/apperr"
)

type badChunk struct{}

func (badChunk) Text() (string, error) { return "", errors.New("candidate blocked") }

func drain(seq iter.Seq2[string, error]) ([]string, []error) {
	var deltas []string
	var errs []error
	for d, err := range seq {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		deltas = append(deltas, d)
	}
	return deltas, errs
}

func TestRelay_DeliversInOrder(t *testing.T) {
	deltas, errs := drain(Relay(FromSlice([]string{"a", "b", "c"}, nil)))
	assert.Equal(t, []string{"a", "b", "c"}, deltas)
	assert.Empty(t, errs)
}

func TestRelay_UpstreamFailureIsTerminal(t *testing.T) {
	upstream := func(yield func(Chunk, error) bool) {
		if !yield(TextChunk("a"), nil) {
			return
		}
		if !yield(nil, errors.New("connection reset")) {
			return
		}
		yield(TextChunk("never"), nil)
	}
	deltas, errs := drain(Relay(upstream))
	assert.Equal(t, []string{"a"}, deltas)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], apperr.ErrGenerationUnavailable)
}

func TestRelay_ExtractionFailureIsTerminal(t *testing.T) {
	upstream := func(yield func(Chunk, error) bool) {
		for _, c := range []Chunk{TextChunk("a"), badChunk{}, TextChunk("c")} {
			if !yield(c, nil) {
				return
			}
		}
	}
	deltas, errs := drain(Relay(upstream))
	assert.Equal(t, []string{"a"}, deltas)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], apperr.ErrGenerationUnavailable)
}

func TestRelay_KeepsExistingKind(t *testing.T) {
	kinded := apperr.New(apperr.KindMalformedGenerationOutput, "x", "bad")
	_, errs := drain(Relay(FromSlice(nil, kinded)))
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], apperr.ErrMalformedGenerationOutput)
}

func TestRelay_EmptyStream(t *testing.T) {
	deltas, errs := drain(Relay(FromSlice(nil, nil)))
	assert.Empty(t, deltas)
	assert.Empty(t, errs)
}

func TestRelay_ConsumerStopHaltsUpstream(t *testing.T) {
	pulled := 0
	upstream := func(yield func(Chunk, error) bool) {
		for i := 0; i < 100; i++ {
			pulled++
			if !yield(TextChunk("x"), nil) {
				return
			}
		}
	}
	n := 0
	for range Relay(upstream) {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, pulled)
}
