package kdtree

// SearchKNN finds the k points of a constructed slice nearest to query.
//
// It returns min(k, len(points)) and writes that many point/distance pairs to
// outPoints and outDistances. Both buffers need room for k entries. The pairs
// are left in max-heap order with the farthest kept neighbour at index 0; use
// SortResults for nearest-first order. A k of zero leaves the buffers
// untouched.
//
// points must have been built by Construct with an equivalent policy. The
// search does not modify points.
func SearchKNN[P any, D Scalar](points, outPoints []P, outDistances []D, k int, query P, policy Policy[P, D]) int {
	if k <= 0 {
		return 0
	}
	outPoints, outDistances = outPoints[:k], outDistances[:k]
	if len(points) == 0 {
		return 0
	}
	s := searcher[P, D]{
		points:    outPoints,
		distances: outDistances,
		query:     query,
		policy:    policy,
		dims:      axes(policy),
	}
	return s.search(points, 0, 0)
}

// Nearest returns the single point nearest to query and its distance. ok is
// false when points is empty.
func Nearest[P any, D Scalar](points []P, query P, policy Policy[P, D]) (nearest P, distance D, ok bool) {
	var (
		outPoints    [1]P
		outDistances [1]D
	)
	if SearchKNN(points, outPoints[:], outDistances[:], 1, query, policy) == 0 {
		return nearest, distance, false
	}
	return outPoints[0], outDistances[0], true
}

type searcher[P any, D Scalar] struct {
	points    []P
	distances []D
	query     P
	policy    Policy[P, D]
	dims      int
}

// search visits the range rooted at its midpoint and returns the heap size.
func (s *searcher[P, D]) search(points []P, dim, n int) int {
	if len(points) == 0 {
		return n
	}
	middle := len(points) / 2
	root := points[middle]
	distance := s.policy.Distance(s.query, root)

	k := len(s.distances)
	switch {
	case n < k:
		n = push(s.points, s.distances, n, root, distance)
	case distance < s.distances[0]:
		replaceTop(s.points, s.distances, n, root, distance)
	}

	next := (dim + 1) % s.dims
	near, far := points[:middle], points[middle+1:]
	if !s.policy.Less(dim, s.query, root) {
		near, far = far, near
	}
	n = s.search(near, next, n)
	if n < k || s.policy.PartialDistance(dim, root, s.query) < s.distances[0] {
		n = s.search(far, next, n)
	}
	return n
}
