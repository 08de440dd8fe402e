// Package integrity cross-checks k-d tree search results against exhaustive
// baselines and fails on the first difference.
package integrity

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/viant/flatkd/config"
	"github.com/viant/flatkd/index"
	"github.com/viant/flatkd/internal/logging"
	"github.com/viant/flatkd/kdtree"
	"github.com/viant/flatkd/pointgen"
)

// Check builds a tree over cfg.Count random planar points and compares
// cfg.Iterations kNN searches with a full sort of the same points.
//
// Results are compared by rank after sorting both by distance. Two results
// agree at a rank when their distances are equal; points that tie on
// distance may differ.
func Check(ctx context.Context, cfg config.Config, logger *logging.Logger, w io.Writer) error {
	if cfg.Count < 0 || cfg.K < 0 || cfg.Iterations < 0 {
		return fmt.Errorf("integrity: count, k and iterations must not be negative")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.WithCount(cfg.Count).WithK(cfg.K)
	if _, err := fmt.Fprintln(w, "integrity check"); err != nil {
		return err
	}

	rng := pointgen.NewRand(cfg.Seed)
	points := pointgen.Uniform2(rng, cfg.Count)
	queries := pointgen.Uniform2(rng, cfg.Iterations)
	reference := slices.Clone(points)
	policy := kdtree.Euclidean2{}

	kdtree.Construct(points, policy)
	if err := kdtree.Verify(points, policy); err != nil {
		return fmt.Errorf("integrity: %w", err)
	}

	out := make([]kdtree.Point2, cfg.K)
	distances := make([]float64, cfg.K)
	expectedCount := min(cfg.K, cfg.Count)
	for i, q := range queries {
		if err := ctx.Err(); err != nil {
			return err
		}
		found := kdtree.SearchKNN(points, out, distances, cfg.K, q, policy)
		logger.LogSearch(ctx, cfg.K, found, nil)
		if found != expectedCount {
			return &MismatchError{Query: i, Position: -1, ExpectedCount: expectedCount, ActualCount: found}
		}
		kdtree.SortResults(out, distances, found)

		slices.SortStableFunc(reference, func(a, b kdtree.Point2) int {
			return cmp.Compare(policy.Distance(q, a), policy.Distance(q, b))
		})
		for j := 0; j < found; j++ {
			want := policy.Distance(q, reference[j])
			if distances[j] != want || policy.Distance(q, out[j]) != distances[j] {
				return &MismatchError{
					Query:            i,
					Position:         j,
					Expected:         formatPoint(reference[j]),
					Actual:           formatPoint(out[j]),
					ExpectedDistance: want,
					ActualDistance:   distances[j],
				}
			}
		}
	}

	logger.InfoContext(ctx, "integrity check passed", "queries", len(queries))
	_, err := fmt.Fprintln(w, "integrity check passed")
	return err
}

// CompareIndexes runs every query against want and got and returns the first
// disagreement. Ids at a rank may differ only when their distances tie.
func CompareIndexes(ctx context.Context, want, got index.Index, queries [][]float32, k int) error {
	for i, q := range queries {
		if err := ctx.Err(); err != nil {
			return err
		}
		wantIDs, wantDist, err := want.Query(q, k)
		if err != nil {
			return fmt.Errorf("integrity: reference query %d: %w", i, err)
		}
		gotIDs, gotDist, err := got.Query(q, k)
		if err != nil {
			return fmt.Errorf("integrity: query %d: %w", i, err)
		}
		if len(wantIDs) != len(gotIDs) {
			return &MismatchError{Query: i, Position: -1, ExpectedCount: len(wantIDs), ActualCount: len(gotIDs)}
		}
		for j := range wantIDs {
			if wantDist[j] != gotDist[j] {
				return &MismatchError{
					Query:            i,
					Position:         j,
					Expected:         wantIDs[j],
					Actual:           gotIDs[j],
					ExpectedDistance: wantDist[j],
					ActualDistance:   gotDist[j],
				}
			}
		}
	}
	return nil
}

func formatPoint(p kdtree.Point2) string {
	return fmt.Sprintf("%g, %g", p[0], p[1])
}
