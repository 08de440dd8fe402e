package kdtree

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstruct_Invariant(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	t.Run("plane", func(t *testing.T) {
		for _, n := range []int{0, 1, 2, 3, 4, 5, 16, 17, 100, 1000, 4097} {
			points := randomPoints2(rng, n)
			Construct(points, Euclidean2{})
			require.NoError(t, Verify(points, Euclidean2{}), "n=%d", n)
		}
	})

	t.Run("space", func(t *testing.T) {
		points := make([]Point3, 2000)
		for i := range points {
			points[i] = Point3{rng.Float64(), rng.Float64(), rng.Float64()}
		}
		Construct(points, Euclidean3{})
		require.NoError(t, Verify(points, Euclidean3{}))
	})

	t.Run("high dimension", func(t *testing.T) {
		policy := Euclidean[float32]{K: 7}
		points := randomVectors(rng, 1500, 7)
		Construct(points, policy)
		require.NoError(t, Verify(points, policy))
	})

	t.Run("duplicates", func(t *testing.T) {
		points := make([]Point2, 500)
		for i := range points {
			points[i] = Point2{float64(rng.IntN(4)), float64(rng.IntN(4))}
		}
		Construct(points, Euclidean2{})
		require.NoError(t, Verify(points, Euclidean2{}))
	})

	t.Run("grid", func(t *testing.T) {
		var points []Point2
		for x := 0; x < 32; x++ {
			for y := 0; y < 32; y++ {
				points = append(points, Point2{float64(x), float64(y)})
			}
		}
		Construct(points, Euclidean2{})
		require.NoError(t, Verify(points, Euclidean2{}))
	})
}

func TestConstruct_Permutes(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	points := randomPoints2(rng, 777)
	original := slices.Clone(points)

	Construct(points, Euclidean2{})

	cmp := func(a, b Point2) int {
		if a[0] != b[0] {
			if a[0] < b[0] {
				return -1
			}
			return 1
		}
		switch {
		case a[1] < b[1]:
			return -1
		case a[1] > b[1]:
			return 1
		}
		return 0
	}
	slices.SortFunc(points, cmp)
	slices.SortFunc(original, cmp)
	assert.Equal(t, original, points)
}

func TestConstruct_OrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewPCG(13, 17))
	base := randomPoints2(rng, 600)
	queries := randomPoints2(rng, 20)

	var want [][]float64
	for trial := 0; trial < 5; trial++ {
		points := slices.Clone(base)
		rng.Shuffle(len(points), func(i, j int) { points[i], points[j] = points[j], points[i] })
		Construct(points, Euclidean2{})
		require.NoError(t, Verify(points, Euclidean2{}))

		var got [][]float64
		for _, q := range queries {
			out := make([]Point2, 8)
			dist := make([]float64, 8)
			n := SearchKNN(points, out, dist, 8, q, Euclidean2{})
			SortResults(out, dist, n)
			got = append(got, dist[:n])
		}
		if want == nil {
			want = got
			continue
		}
		assert.Equal(t, want, got, "trial %d", trial)
	}
}

func TestVerify_DetectsViolation(t *testing.T) {
	points := []Point2{{0, 0}, {1, 1}, {2, 2}, {3, 3}, {4, 4}}
	Construct(points, Euclidean2{})
	require.NoError(t, Verify(points, Euclidean2{}))

	// Move the root into its own right half.
	points[2], points[4] = points[4], points[2]
	err := Verify(points, Euclidean2{})
	require.Error(t, err)

	var invErr *InvariantError
	require.True(t, errors.As(err, &invErr))
	assert.Equal(t, 0, invErr.Lo)
	assert.Equal(t, 5, invErr.Hi)
	assert.Equal(t, 2, invErr.Mid)
	assert.Equal(t, 0, invErr.Axis)
	assert.Contains(t, err.Error(), "kdtree:")
}

func TestZeroDimensionPolicy(t *testing.T) {
	policy := Euclidean[float64]{K: 0}
	points := [][]float64{{1}, {2}, {3}}
	want := "kdtree: policy Dims() = 0, want at least 1"

	assert.PanicsWithValue(t, want, func() { Construct(points, policy) })
	assert.PanicsWithValue(t, want, func() {
		SearchKNN(points, make([][]float64, 1), make([]float64, 1), 1, []float64{0}, policy)
	})
	assert.EqualError(t, Verify(points, policy), want)

	assert.NotPanics(t, func() { Construct([][]float64{}, policy) })
	assert.Equal(t, 0, SearchKNN(nil, make([][]float64, 1), make([]float64, 1), 1, []float64{0}, policy))
	assert.NoError(t, Verify([][]float64{}, policy))
}
