// Package kdtree turns a caller-owned slice of points into an implicit,
// balanced k-d tree and answers exact k-nearest-neighbour queries against it.
//
// The tree has no nodes. Construct permutes the slice in place so that every
// sub-range is split at its midpoint on an axis that cycles with depth;
// SearchKNN walks the same ranges and keeps the best candidates in a bounded
// max-heap laid over the caller's output buffers. Neither call allocates.
//
//	points := []kdtree.Point2{{0, 0}, {1, 1}, {2, 2}, {5, 5}}
//	kdtree.Construct(points, kdtree.Euclidean2{})
//
//	out := make([]kdtree.Point2, 2)
//	dist := make([]float64, 2)
//	n := kdtree.SearchKNN(points, out, dist, 2, kdtree.Point2{0, 0}, kdtree.Euclidean2{})
//	kdtree.SortResults(out, dist, n) // optional, results come back in heap order
//
// Construct needs exclusive access to the slice. Any number of SearchKNN calls
// may share a constructed slice as long as each uses its own output buffers.
package kdtree
