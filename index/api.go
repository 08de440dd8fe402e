package index

// Index defines a k-nearest-neighbour index over float32 vectors keyed by id.
// Distances are squared Euclidean and results come back nearest first.
type Index interface {
	// Build replaces the indexed set with the given ids and vectors.
	// ids and vectors must have the same length and every vector the same
	// dimension.
	Build(ids []string, vectors [][]float32) error

	// Query returns up to k ids nearest to query together with their squared
	// distances, ordered by increasing distance. A k <= 0 yields no results.
	Query(query []float32, k int) (ids []string, distances []float64, err error)

	// Len returns the number of indexed vectors.
	Len() int
}
