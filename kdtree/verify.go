package kdtree

import "fmt"

// InvariantError reports an element on the wrong side of a split.
type InvariantError struct {
	// Lo and Hi bound the offending range, Mid is its split index.
	Lo, Hi, Mid int
	// Index is the misplaced element.
	Index int
	// Axis is the splitting axis of the range.
	Axis int
}

func (e *InvariantError) Error() string {
	side := "left"
	if e.Index > e.Mid {
		side = "right"
	}
	return fmt.Sprintf("kdtree: element %d is on the %s of split %d in [%d,%d) on axis %d",
		e.Index, side, e.Mid, e.Lo, e.Hi, e.Axis)
}

// Verify checks that points satisfy the layout Construct produces under
// policy. It returns nil or an *InvariantError for the first violation found.
func Verify[P any, D Scalar](points []P, policy Policy[P, D]) error {
	if len(points) == 0 {
		return nil
	}
	if n := policy.Dims(); n < 1 {
		return fmt.Errorf("kdtree: policy Dims() = %d, want at least 1", n)
	}
	return verify(points, 0, 0, policy.Dims(), policy)
}

func verify[P any, D Scalar](points []P, offset, dim, dims int, policy Policy[P, D]) error {
	if len(points) == 0 {
		return nil
	}
	middle := len(points) / 2
	root := points[middle]
	for i, p := range points {
		if (i < middle && policy.Less(dim, root, p)) || (i > middle && policy.Less(dim, p, root)) {
			return &InvariantError{
				Lo:    offset,
				Hi:    offset + len(points),
				Mid:   offset + middle,
				Index: offset + i,
				Axis:  dim,
			}
		}
	}
	next := (dim + 1) % dims
	if err := verify(points[:middle], offset, next, dims, policy); err != nil {
		return err
	}
	return verify(points[middle+1:], offset+middle+1, next, dims, policy)
}
