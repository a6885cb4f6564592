// Package vector provides similarity, validation and encoding helpers for embedding vectors.
package vector

import (
	"math"

	"github.com/hyperjump/solace/internal/apperr"
)

// Cosine returns the cosine similarity of a and b in [-1, 1]. Vectors of different length
// are not comparable and yield 0, as does a zero-norm vector.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	na, nb := L2Norm(a), L2Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	s := InnerProduct(a, b) / (na * nb)
	return math.Max(-1, math.Min(1, s))
}

// InnerProduct returns the dot product of two vectors of equal length, or 0 otherwise.
func InnerProduct(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

// L2Norm returns the L2 norm of a vector.
func L2Norm(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// Validate rejects empty vectors and vectors holding NaN or infinite components.
func Validate(v []float32) error {
	if len(v) == 0 {
		return apperr.New(apperr.KindInvalidEmbedding, "vector.validate", "embedding is empty")
	}
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return apperr.New(apperr.KindInvalidEmbedding, "vector.validate", "embedding contains non-finite values")
		}
	}
	return nil
}
