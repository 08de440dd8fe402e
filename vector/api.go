package vector

import (
	"context"
)

// Point is a stored vector and its identifier.
type Point struct {
	// ID is the logical identifier of the point. When empty on insert, the
	// store generates one.
	ID string

	// Vector holds the coordinates.
	Vector []float32
}

// Neighbor is a point returned by a nearest-neighbour query.
type Neighbor struct {
	ID       string
	Distance float64
}

// Store defines durable storage for a point set.
type Store interface {
	// AddPoints inserts points and returns their assigned IDs.
	AddPoints(ctx context.Context, points []Point) ([]string, error)

	// Points loads every stored point in insertion order as parallel slices.
	Points(ctx context.Context) (ids []string, vectors [][]float32, err error)

	// Nearest returns up to k stored points nearest to query, ordered by
	// increasing squared Euclidean distance.
	Nearest(ctx context.Context, query []float32, k int) ([]Neighbor, error)

	// Remove deletes the point with the given ID.
	Remove(ctx context.Context, id string) error

	// Count returns the number of stored points.
	Count(ctx context.Context) (int, error)
}
