// Package pointgen generates uniformly distributed point sets for the
// benchmark and integrity drivers.
package pointgen

import (
	"math/rand/v2"

	"github.com/viant/flatkd/kdtree"
)

// NewRand returns a PCG-backed generator. A zero seed draws a random one.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Uniform2 returns n points drawn uniformly from [0,1)².
func Uniform2(rng *rand.Rand, n int) []kdtree.Point2 {
	points := make([]kdtree.Point2, n)
	for i := range points {
		points[i] = kdtree.Point2{rng.Float64(), rng.Float64()}
	}
	return points
}

// Uniform returns n vectors of dims coordinates drawn uniformly from [0,1).
func Uniform(rng *rand.Rand, n, dims int) [][]float32 {
	backing := make([]float32, n*dims)
	for i := range backing {
		backing[i] = rng.Float32()
	}
	vectors := make([][]float32, n)
	for i := range vectors {
		vectors[i] = backing[i*dims : (i+1)*dims : (i+1)*dims]
	}
	return vectors
}

// Shuffle permutes points in place.
func Shuffle[P any](rng *rand.Rand, points []P) {
	rng.Shuffle(len(points), func(i, j int) { points[i], points[j] = points[j], points[i] })
}
