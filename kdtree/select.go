package kdtree

import (
	"math/bits"
	"slices"
)

const insertionCutoff = 12

// Select reorders points in place so that points[nth] holds the element that
// would sit there if points were sorted by less. No element before nth is
// greater than it and no element after nth is less. Equal elements end up on
// either side.
//
// Select runs in expected linear time. Once the partition budget is spent it
// finishes the remaining range with an in-place sort.
func Select[P any](points []P, nth int, less func(a, b P) bool) {
	lo, hi := 0, len(points)
	budget := 2 * bits.Len(uint(len(points)))
	for hi-lo > insertionCutoff {
		if budget == 0 {
			slices.SortFunc(points[lo:hi], func(a, b P) int {
				switch {
				case less(a, b):
					return -1
				case less(b, a):
					return 1
				}
				return 0
			})
			return
		}
		budget--

		lt, gt := partition(points, lo, hi, less)
		switch {
		case nth < lt:
			hi = lt
		case nth >= gt:
			lo = gt
		default:
			return
		}
	}
	insertionSort(points[lo:hi], less)
}

// partition splits points[lo:hi] around a median-of-three pivot into
// [lo,lt) < pivot, [lt,gt) == pivot and [gt,hi) > pivot.
func partition[P any](points []P, lo, hi int, less func(a, b P) bool) (lt, gt int) {
	pivot := medianOfThree(points[lo], points[lo+(hi-lo)/2], points[hi-1], less)
	lt, gt = lo, hi
	for i := lo; i < gt; {
		switch {
		case less(points[i], pivot):
			points[lt], points[i] = points[i], points[lt]
			lt++
			i++
		case less(pivot, points[i]):
			gt--
			points[i], points[gt] = points[gt], points[i]
		default:
			i++
		}
	}
	return lt, gt
}

func medianOfThree[P any](a, b, c P, less func(a, b P) bool) P {
	if less(b, a) {
		a, b = b, a
	}
	if less(c, b) {
		b = c
		if less(b, a) {
			b = a
		}
	}
	return b
}

func insertionSort[P any](points []P, less func(a, b P) bool) {
	for i := 1; i < len(points); i++ {
		for j := i; j > 0 && less(points[j], points[j-1]); j-- {
			points[j], points[j-1] = points[j-1], points[j]
		}
	}
}
