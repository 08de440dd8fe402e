package kdtree

// Construct permutes points in place into an implicit balanced k-d tree.
//
// Each range is split at index len/2 on axis depth mod Dims: after the call the
// split element is not less than anything to its left and not greater than
// anything to its right on that axis, and the same holds recursively for both
// halves on the next axis. Ties are placed arbitrarily. It panics when the
// slice is not empty and policy.Dims() is less than 1.
func Construct[P any, D Scalar](points []P, policy Policy[P, D]) {
	if len(points) == 0 {
		return
	}
	construct(points, 0, axes(policy), policy)
}

func construct[P any, D Scalar](points []P, dim, dims int, policy Policy[P, D]) {
	if len(points) == 0 {
		return
	}
	middle := len(points) / 2
	if len(points) > 1 {
		Select(points, middle, func(a, b P) bool { return policy.Less(dim, a, b) })
	}
	next := (dim + 1) % dims
	construct(points[:middle], next, dims, policy)
	construct(points[middle+1:], next, dims, policy)
}
