package kd

import (
	"fmt"
	"sync"

	"github.com/viant/flatkd/index"
	"github.com/viant/flatkd/kdtree"
	"github.com/viant/flatkd/vector"
)

// Index implements index.Index on top of an implicit k-d tree.
type Index struct {
	mu      sync.RWMutex
	entries []entry
	dim     int
}

type entry struct {
	id  string
	vec []float32
}

// policy orders entries by coordinate and measures them by squared
// Euclidean distance accumulated in float64.
type policy struct {
	dims int
}

func (p policy) Dims() int                   { return p.dims }
func (policy) Less(dim int, a, b entry) bool { return a.vec[dim] < b.vec[dim] }
func (policy) Distance(a, b entry) float64   { return vector.SquaredL2(a.vec, b.vec) }

func (policy) PartialDistance(dim int, a, b entry) float64 {
	d := float64(a.vec[dim]) - float64(b.vec[dim])
	return d * d
}

// New returns an empty index.
func New() *Index { return &Index{} }

// Build copies ids and vector references and constructs the tree.
func (i *Index) Build(ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("kd: %w: %d != %d", index.ErrLengthMismatch, len(ids), len(vectors))
	}
	dim := 0
	if len(vectors) > 0 {
		if dim = len(vectors[0]); dim == 0 {
			return fmt.Errorf("kd: %w: empty vectors", index.ErrDimensionMismatch)
		}
	}
	entries := make([]entry, len(ids))
	for j := range vectors {
		if len(vectors[j]) != dim {
			return fmt.Errorf("kd: %w: vector %d has %d dims, want %d", index.ErrDimensionMismatch, j, len(vectors[j]), dim)
		}
		entries[j] = entry{id: ids[j], vec: vectors[j]}
	}
	if len(entries) > 0 {
		kdtree.Construct(entries, kdtree.Policy[entry, float64](policy{dims: dim}))
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries = entries
	i.dim = dim
	return nil
}

// Query returns the k nearest ids ordered by increasing squared distance.
func (i *Index) Query(query []float32, k int) ([]string, []float64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if k <= 0 || len(i.entries) == 0 {
		return nil, nil, nil
	}
	if len(query) != i.dim {
		return nil, nil, fmt.Errorf("kd: %w: query dim %d != index dim %d", index.ErrDimensionMismatch, len(query), i.dim)
	}
	k = min(k, len(i.entries))
	out := make([]entry, k)
	distances := make([]float64, k)
	n := kdtree.SearchKNN(i.entries, out, distances, k, entry{vec: query}, kdtree.Policy[entry, float64](policy{dims: i.dim}))
	kdtree.SortResults(out, distances, n)

	ids := make([]string, n)
	for j := 0; j < n; j++ {
		ids[j] = out[j].id
	}
	return ids, distances[:n], nil
}

// Len returns the number of indexed vectors.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries)
}

// Verify checks the tree layout of the indexed vectors.
func (i *Index) Verify() error {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.dim == 0 {
		return nil
	}
	return kdtree.Verify(i.entries, kdtree.Policy[entry, float64](policy{dims: i.dim}))
}

var _ index.Index = (*Index)(nil)
