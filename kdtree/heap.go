package kdtree

// The candidate heap is a binary max-heap keyed on distance and spread over
// two parallel slices: points[i] always travels with distances[i]. The parent
// of i is (i-1)/2 and its children are 2i+1 and 2i+2.

// push inserts (p, d) into a heap of size n and returns the new size.
func push[P any, D Scalar](points []P, distances []D, n int, p P, d D) int {
	i := n
	for i > 0 {
		parent := (i - 1) / 2
		if distances[parent] >= d {
			break
		}
		points[i], distances[i] = points[parent], distances[parent]
		i = parent
	}
	points[i], distances[i] = p, d
	return n + 1
}

// replaceTop drops the root of a heap of size n and sifts (p, d) down from
// the vacated slot.
func replaceTop[P any, D Scalar](points []P, distances []D, n int, p P, d D) {
	i := 0
	for {
		child := 2*i + 1
		if child >= n {
			break
		}
		if right := child + 1; right < n && distances[right] > distances[child] {
			child = right
		}
		if distances[child] <= d {
			break
		}
		points[i], distances[i] = points[child], distances[child]
		i = child
	}
	points[i], distances[i] = p, d
}

// SortResults orders the first n entries of a SearchKNN result by ascending
// distance, keeping points and distances paired. It sorts in place.
func SortResults[P any, D Scalar](points []P, distances []D, n int) {
	for end := n - 1; end > 0; end-- {
		p, d := points[end], distances[end]
		points[end], distances[end] = points[0], distances[0]
		replaceTop(points, distances, end, p, d)
	}
}
