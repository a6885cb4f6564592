// Package apperr defines the error kinds shared by the retrieval and evaluation components
// and their mapping to HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind categorizes an error.
type Kind string

const (
	KindInternal                  Kind = "internal"
	KindValidation                Kind = "validation"
	KindUnauthorized              Kind = "unauthorized"
	KindNotFound                  Kind = "not_found"
	KindInvalidEmbedding          Kind = "invalid_embedding"
	KindEmbeddingUnavailable      Kind = "embedding_unavailable"
	KindGenerationUnavailable     Kind = "generation_unavailable"
	KindMalformedGenerationOutput Kind = "malformed_generation_output"
)

// Error is an error carrying a Kind. Op names the operation that failed.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the package-level sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New returns an error of the given kind.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap returns an error of the given kind wrapping err. A nil err yields nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Sentinels for errors.Is.
var (
	ErrInternal                  = New(KindInternal, "", "internal error")
	ErrValidation                = New(KindValidation, "", "invalid input")
	ErrUnauthorized              = New(KindUnauthorized, "", "unauthorized")
	ErrNotFound                  = New(KindNotFound, "", "not found")
	ErrInvalidEmbedding          = New(KindInvalidEmbedding, "", "invalid embedding")
	ErrEmbeddingUnavailable      = New(KindEmbeddingUnavailable, "", "embedding service unavailable")
	ErrGenerationUnavailable     = New(KindGenerationUnavailable, "", "generation service unavailable")
	ErrMalformedGenerationOutput = New(KindMalformedGenerationOutput, "", "malformed generation output")
)

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HasKind reports whether err's chain carries an *Error.
func HasKind(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

// HTTPStatus maps an error to the status code the API returns for it.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindInvalidEmbedding:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindEmbeddingUnavailable, KindGenerationUnavailable, KindMalformedGenerationOutput:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
