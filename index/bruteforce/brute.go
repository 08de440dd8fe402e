package bruteforce

import (
	"fmt"
	"sort"
	"sync"

	"github.com/viant/flatkd/index"
	"github.com/viant/flatkd/vector"
)

// Index is a brute-force vector index using squared Euclidean distance.
type Index struct {
	mu   sync.RWMutex
	ids  []string
	vecs [][]float32
	dim  int
}

// Build loads ids and vectors. Vectors are referenced, not copied.
func (i *Index) Build(ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("bruteforce: %w: %d != %d", index.ErrLengthMismatch, len(ids), len(vectors))
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if len(ids) == 0 {
		i.ids, i.vecs, i.dim = nil, nil, 0
		return nil
	}
	dim := len(vectors[0])
	for j := range vectors {
		if len(vectors[j]) != dim {
			return fmt.Errorf("bruteforce: %w: vector %d has %d dims, want %d", index.ErrDimensionMismatch, j, len(vectors[j]), dim)
		}
	}
	i.ids = append([]string(nil), ids...)
	i.vecs = append([][]float32(nil), vectors...)
	i.dim = dim
	return nil
}

// Query returns the k nearest ids by exhaustive scan.
func (i *Index) Query(query []float32, k int) ([]string, []float64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if k <= 0 || len(i.vecs) == 0 {
		return nil, nil, nil
	}
	if len(query) != i.dim {
		return nil, nil, fmt.Errorf("bruteforce: %w: query dim %d != index dim %d", index.ErrDimensionMismatch, len(query), i.dim)
	}
	type scored struct {
		idx  int
		dist float64
	}
	scoreds := make([]scored, len(i.vecs))
	for j := range i.vecs {
		scoreds[j] = scored{idx: j, dist: vector.SquaredL2(query, i.vecs[j])}
	}
	sort.SliceStable(scoreds, func(a, b int) bool { return scoreds[a].dist < scoreds[b].dist })
	if k > len(scoreds) {
		k = len(scoreds)
	}
	outIDs := make([]string, k)
	outDistances := make([]float64, k)
	for n := 0; n < k; n++ {
		outIDs[n] = i.ids[scoreds[n].idx]
		outDistances[n] = scoreds[n].dist
	}
	return outIDs, outDistances, nil
}

// Len returns the number of indexed vectors.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.ids)
}

var _ index.Index = (*Index)(nil)
