package kdtree

import (
	"math/rand/v2"
	"slices"
)

func randomPoints2(rng *rand.Rand, n int) []Point2 {
	points := make([]Point2, n)
	for i := range points {
		points[i] = Point2{rng.Float64(), rng.Float64()}
	}
	return points
}

func randomVectors(rng *rand.Rand, n, dims int) [][]float32 {
	points := make([][]float32, n)
	for i := range points {
		points[i] = make([]float32, dims)
		for j := range points[i] {
			points[i][j] = rng.Float32()
		}
	}
	return points
}

// bruteForce returns the k smallest distances from query, ascending.
func bruteForce[P any, D Scalar](points []P, k int, query P, policy Policy[P, D]) []D {
	distances := make([]D, len(points))
	for i, p := range points {
		distances[i] = policy.Distance(query, p)
	}
	slices.Sort(distances)
	return distances[:min(k, len(distances))]
}
