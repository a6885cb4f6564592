package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorsIsMatchesKind(t *testing.T) {
	err := Wrap(KindEmbeddingUnavailable, "embed", errors.New("boom"))
	wrapped := fmt.Errorf("retrieve: %w", err)

	if !errors.Is(wrapped, ErrEmbeddingUnavailable) {
		t.Error("expected wrapped error to match ErrEmbeddingUnavailable")
	}
	if errors.Is(wrapped, ErrGenerationUnavailable) {
		t.Error("kinds must not cross-match")
	}
	if KindOf(wrapped) != KindEmbeddingUnavailable {
		t.Errorf("KindOf: got %s", KindOf(wrapped))
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(KindInternal, "op", nil) != nil {
		t.Error("Wrap(nil) should be nil")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(KindInvalidEmbedding, "insert", "empty"), http.StatusBadRequest},
		{New(KindValidation, "", "bad"), http.StatusBadRequest},
		{New(KindUnauthorized, "", "no token"), http.StatusUnauthorized},
		{New(KindNotFound, "", "missing"), http.StatusNotFound},
		{Wrap(KindEmbeddingUnavailable, "", errors.New("x")), http.StatusBadGateway},
		{Wrap(KindGenerationUnavailable, "", errors.New("x")), http.StatusBadGateway},
		{Wrap(KindMalformedGenerationOutput, "", errors.New("x")), http.StatusBadGateway},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	err := Wrap(KindNotFound, "evaluation.find", errors.New("record 7"))
	if got := err.Error(); got != "evaluation.find: not_found: record 7" {
		t.Errorf("unexpected message %q", got)
	}
	if got := New(KindValidation, "", "query is required").Error(); got != "query is required" {
		t.Errorf("unexpected message %q", got)
	}
}
