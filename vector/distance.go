package vector

import (
	"fmt"
	"math"

	"github.com/viant/vec/search"
)

// SquaredL2 returns the squared Euclidean distance between a and b,
// accumulated in float64. b must be at least as long as a.
func SquaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// L2Distance computes the Euclidean (L2) distance between two vectors. It
// returns an error if the vectors have different lengths.
func L2Distance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector: L2 distance dimension mismatch: %d vs %d", len(a), len(b))
	}
	return math.Sqrt(SquaredL2(a, b)), nil
}

// Magnitude returns the Euclidean norm of v.
func Magnitude(v []float32) float32 {
	return search.Float32s(v).Magnitude()
}

// Offset returns b - a.
func Offset(a, b []float32) ([]float32, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("vector: offset dimension mismatch: %d vs %d", len(a), len(b))
	}
	out := make([]float32, len(a))
	for i := range a {
		out[i] = b[i] - a[i]
	}
	return out, nil
}
