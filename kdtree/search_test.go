package kdtree

import (
	"math/rand/v2"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchKNN_Scenarios(t *testing.T) {
	t.Run("two nearest of four", func(t *testing.T) {
		points := []Point2{{0, 0}, {1, 1}, {2, 2}, {5, 5}}
		Construct(points, Euclidean2{})

		out := make([]Point2, 2)
		dist := make([]float64, 2)
		n := SearchKNN(points, out, dist, 2, Point2{0, 0}, Euclidean2{})
		require.Equal(t, 2, n)

		SortResults(out, dist, n)
		assert.Equal(t, []Point2{{0, 0}, {1, 1}}, out)
		assert.Equal(t, []float64{0, 2}, dist)
	})

	t.Run("fewer points than k", func(t *testing.T) {
		points := []Point2{{3, 4}}
		Construct(points, Euclidean2{})

		out := make([]Point2, 5)
		dist := make([]float64, 5)
		n := SearchKNN(points, out, dist, 5, Point2{0, 0}, Euclidean2{})
		require.Equal(t, 1, n)
		assert.Equal(t, Point2{3, 4}, out[0])
		assert.Equal(t, 25.0, dist[0])
	})

	t.Run("zero k leaves buffers untouched", func(t *testing.T) {
		points := []Point2{{0, 0}, {1, 1}}
		Construct(points, Euclidean2{})

		out := []Point2{{9, 9}}
		dist := []float64{-1}
		n := SearchKNN(points, out, dist, 0, Point2{0, 0}, Euclidean2{})
		assert.Equal(t, 0, n)
		assert.Equal(t, []Point2{{9, 9}}, out)
		assert.Equal(t, []float64{-1}, dist)

		n = SearchKNN(points, nil, nil, 0, Point2{0, 0}, Euclidean2{})
		assert.Equal(t, 0, n)
	})

	t.Run("duplicates", func(t *testing.T) {
		points := []Point2{{1, 1}, {1, 1}, {4, 0}, {0, 4}}
		Construct(points, Euclidean2{})

		out := make([]Point2, 1)
		dist := make([]float64, 1)
		n := SearchKNN(points, out, dist, 1, Point2{1, 1}, Euclidean2{})
		require.Equal(t, 1, n)
		assert.Equal(t, Point2{1, 1}, out[0])
		assert.Equal(t, 0.0, dist[0])
	})

	t.Run("empty index", func(t *testing.T) {
		out := make([]Point2, 3)
		dist := make([]float64, 3)
		n := SearchKNN(nil, out, dist, 3, Point2{0, 0}, Euclidean2{})
		assert.Equal(t, 0, n)
	})
}

func TestSearchKNN_Count(t *testing.T) {
	rng := rand.New(rand.NewPCG(21, 22))
	for _, n := range []int{0, 1, 2, 7, 64} {
		points := randomPoints2(rng, n)
		Construct(points, Euclidean2{})
		for _, k := range []int{0, 1, 3, 7, 64, 100} {
			out := make([]Point2, k)
			dist := make([]float64, k)
			found := SearchKNN(points, out, dist, k, Point2{0.5, 0.5}, Euclidean2{})
			assert.Equal(t, min(k, n), found, "n=%d k=%d", n, k)
		}
	}
}

func TestSearchKNN_Exact(t *testing.T) {
	rng := rand.New(rand.NewPCG(31, 37))

	t.Run("plane", func(t *testing.T) {
		points := randomPoints2(rng, 3000)
		pristine := slices.Clone(points)
		Construct(points, Euclidean2{})

		for q := 0; q < 200; q++ {
			query := Point2{rng.Float64()*1.2 - 0.1, rng.Float64()*1.2 - 0.1}
			k := 1 + rng.IntN(40)
			out := make([]Point2, k)
			dist := make([]float64, k)
			n := SearchKNN(points, out, dist, k, query, Euclidean2{})
			require.Equal(t, k, n)

			SortResults(out, dist, n)
			require.Equal(t, bruteForce(pristine, k, query, Euclidean2{}), dist)
			for i := range out {
				require.Equal(t, Euclidean2{}.Distance(query, out[i]), dist[i])
			}
		}
	})

	t.Run("vectors", func(t *testing.T) {
		policy := Euclidean[float32]{K: 5}
		points := randomVectors(rng, 2000, 5)
		pristine := slices.Clone(points)
		Construct(points, policy)

		for q := 0; q < 100; q++ {
			query := randomVectors(rng, 1, 5)[0]
			out := make([][]float32, 10)
			dist := make([]float32, 10)
			n := SearchKNN(points, out, dist, 10, query, policy)
			SortResults(out, dist, n)
			require.Equal(t, bruteForce(pristine, 10, query, policy), dist)
		}
	})

	t.Run("manhattan", func(t *testing.T) {
		policy := Manhattan[float64]{K: 3}
		points := make([][]float64, 1500)
		for i := range points {
			points[i] = []float64{rng.Float64(), rng.Float64(), rng.Float64()}
		}
		pristine := slices.Clone(points)
		Construct(points, policy)

		for q := 0; q < 100; q++ {
			query := []float64{rng.Float64(), rng.Float64(), rng.Float64()}
			out := make([][]float64, 6)
			dist := make([]float64, 6)
			n := SearchKNN(points, out, dist, 6, query, policy)
			SortResults(out, dist, n)
			require.Equal(t, bruteForce(pristine, 6, query, policy), dist)
		}
	})

	t.Run("integer grid with ties", func(t *testing.T) {
		var points []Point2
		for x := 0; x < 20; x++ {
			for y := 0; y < 20; y++ {
				points = append(points, Point2{float64(x), float64(y)}, Point2{float64(x), float64(y)})
			}
		}
		pristine := slices.Clone(points)
		Construct(points, Euclidean2{})

		for q := 0; q < 100; q++ {
			query := Point2{float64(rng.IntN(22) - 1), float64(rng.IntN(22) - 1)}
			out := make([]Point2, 9)
			dist := make([]float64, 9)
			n := SearchKNN(points, out, dist, 9, query, Euclidean2{})
			SortResults(out, dist, n)
			require.Equal(t, bruteForce(pristine, 9, query, Euclidean2{}), dist)
		}
	})
}

func TestSearchKNN_HeapOrder(t *testing.T) {
	rng := rand.New(rand.NewPCG(41, 43))
	points := randomPoints2(rng, 500)
	Construct(points, Euclidean2{})

	out := make([]Point2, 25)
	dist := make([]float64, 25)
	n := SearchKNN(points, out, dist, 25, Point2{0.3, 0.7}, Euclidean2{})
	require.Equal(t, 25, n)

	for i := 1; i < n; i++ {
		parent := (i - 1) / 2
		assert.GreaterOrEqual(t, dist[parent], dist[i], "heap order broken at %d", i)
	}
	assert.Equal(t, slices.Max(dist), dist[0])
}

func TestSearchKNN_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewPCG(51, 53))
	points := randomPoints2(rng, 1000)
	Construct(points, Euclidean2{})
	snapshot := slices.Clone(points)

	query := Point2{0.25, 0.25}
	first := make([]Point2, 12)
	firstDist := make([]float64, 12)
	SearchKNN(points, first, firstDist, 12, query, Euclidean2{})

	for i := 0; i < 5; i++ {
		out := make([]Point2, 12)
		dist := make([]float64, 12)
		SearchKNN(points, out, dist, 12, query, Euclidean2{})
		assert.Equal(t, first, out)
		assert.Equal(t, firstDist, dist)
	}
	assert.Equal(t, snapshot, points, "search must not modify the index")
}

func TestSearchKNN_Concurrent(t *testing.T) {
	rng := rand.New(rand.NewPCG(61, 67))
	points := randomPoints2(rng, 5000)
	pristine := slices.Clone(points)
	Construct(points, Euclidean2{})

	queries := randomPoints2(rng, 64)
	results := make([][]float64, len(queries))

	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(i int, q Point2) {
			defer wg.Done()
			out := make([]Point2, 16)
			dist := make([]float64, 16)
			n := SearchKNN(points, out, dist, 16, q, Euclidean2{})
			SortResults(out, dist, n)
			results[i] = dist[:n]
		}(i, q)
	}
	wg.Wait()

	for i, q := range queries {
		assert.Equal(t, bruteForce(pristine, 16, q, Euclidean2{}), results[i], "query %d", i)
	}
}

func TestSearchKNN_ShortBufferPanics(t *testing.T) {
	points := []Point2{{0, 0}, {1, 1}, {2, 2}}
	Construct(points, Euclidean2{})
	assert.Panics(t, func() {
		SearchKNN(points, make([]Point2, 1), make([]float64, 1), 2, Point2{}, Euclidean2{})
	})
}

func TestNearest(t *testing.T) {
	points := []Point2{{0, 0}, {10, 10}, {4, 5}, {7, 1}}
	Construct(points, Euclidean2{})

	p, d, ok := Nearest(points, Point2{6, 2}, Euclidean2{})
	require.True(t, ok)
	assert.Equal(t, Point2{7, 1}, p)
	assert.Equal(t, 2.0, d)

	_, _, ok = Nearest([]Point2{}, Point2{}, Euclidean2{})
	assert.False(t, ok)
}

func TestSortResults(t *testing.T) {
	points := []string{"c", "a", "b", "d"}
	distances := []int{3, 1, 2, 4}

	// Build a heap through the same path the search uses.
	heapPoints := make([]string, 4)
	heapDistances := make([]int, 4)
	n := 0
	for i := range points {
		n = push(heapPoints, heapDistances, n, points[i], distances[i])
	}
	require.Equal(t, 4, heapDistances[0])

	SortResults(heapPoints, heapDistances, n)
	assert.Equal(t, []string{"a", "b", "c", "d"}, heapPoints)
	assert.Equal(t, []int{1, 2, 3, 4}, heapDistances)
}

func TestReplaceTop(t *testing.T) {
	points := make([]int, 5)
	distances := make([]int, 5)
	n := 0
	for _, d := range []int{5, 9, 2, 7, 4} {
		n = push(points, distances, n, d, d)
	}
	require.Equal(t, 9, distances[0])

	replaceTop(points, distances, n, 1, 1)
	assert.Equal(t, 7, distances[0])
	for i := 1; i < n; i++ {
		assert.GreaterOrEqual(t, distances[(i-1)/2], distances[i])
	}
	assert.ElementsMatch(t, []int{1, 2, 4, 5, 7}, points)
}
