package kdtree

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Scalar is the set of numeric types usable as a distance.
type Scalar interface {
	constraints.Integer | constraints.Float
}

// Policy describes how points of type P are ordered and measured.
//
// Dims must be at least 1 and return the same value for the lifetime of a
// constructed tree.
// PartialDistance must never exceed the contribution of that axis to Distance,
// otherwise the search prunes subtrees that still hold nearer points.
type Policy[P any, D Scalar] interface {
	// Dims returns the number of coordinates the splitting axis cycles through.
	Dims() int
	// Less reports whether p is strictly less than q on axis dim.
	Less(dim int, p, q P) bool
	// PartialDistance returns the distance between p and q along axis dim alone.
	PartialDistance(dim int, p, q P) D
	// Distance returns the full distance between p and q.
	Distance(p, q P) D
}

// axes returns policy.Dims and panics when it is not positive.
func axes[P any, D Scalar](policy Policy[P, D]) int {
	n := policy.Dims()
	if n < 1 {
		panic(fmt.Sprintf("kdtree: policy Dims() = %d, want at least 1", n))
	}
	return n
}

// Point2 is a point in the plane.
type Point2 [2]float64

// Point3 is a point in space.
type Point3 [3]float64

// Euclidean2 measures Point2 values by squared Euclidean distance.
type Euclidean2 struct{}

func (Euclidean2) Dims() int                      { return 2 }
func (Euclidean2) Less(dim int, p, q Point2) bool { return p[dim] < q[dim] }

func (Euclidean2) PartialDistance(dim int, p, q Point2) float64 {
	d := p[dim] - q[dim]
	return d * d
}

func (Euclidean2) Distance(p, q Point2) float64 {
	dx, dy := p[0]-q[0], p[1]-q[1]
	return dx*dx + dy*dy
}

// Euclidean3 measures Point3 values by squared Euclidean distance.
type Euclidean3 struct{}

func (Euclidean3) Dims() int                      { return 3 }
func (Euclidean3) Less(dim int, p, q Point3) bool { return p[dim] < q[dim] }

func (Euclidean3) PartialDistance(dim int, p, q Point3) float64 {
	d := p[dim] - q[dim]
	return d * d
}

func (Euclidean3) Distance(p, q Point3) float64 {
	dx, dy, dz := p[0]-q[0], p[1]-q[1], p[2]-q[2]
	return dx*dx + dy*dy + dz*dz
}

// Euclidean measures slice points of K coordinates by squared Euclidean
// distance. Points shorter than K are a caller error.
type Euclidean[F constraints.Float] struct {
	K int
}

func (e Euclidean[F]) Dims() int                 { return e.K }
func (Euclidean[F]) Less(dim int, p, q []F) bool { return p[dim] < q[dim] }

func (Euclidean[F]) PartialDistance(dim int, p, q []F) F {
	d := p[dim] - q[dim]
	return d * d
}

func (e Euclidean[F]) Distance(p, q []F) F {
	var sum F
	for i := 0; i < e.K; i++ {
		d := p[i] - q[i]
		sum += d * d
	}
	return sum
}

// Manhattan measures slice points of K coordinates by L1 distance.
type Manhattan[F constraints.Float] struct {
	K int
}

func (m Manhattan[F]) Dims() int                 { return m.K }
func (Manhattan[F]) Less(dim int, p, q []F) bool { return p[dim] < q[dim] }

func (Manhattan[F]) PartialDistance(dim int, p, q []F) F {
	return abs(p[dim] - q[dim])
}

func (m Manhattan[F]) Distance(p, q []F) F {
	var sum F
	for i := 0; i < m.K; i++ {
		sum += abs(p[i] - q[i])
	}
	return sum
}

func abs[F constraints.Float](v F) F {
	if v < 0 {
		return -v
	}
	return v
}
