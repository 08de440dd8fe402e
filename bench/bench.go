// Package bench times tree construction and kNN search over uniformly
// random planar points.
package bench

import (
	"context"
	"fmt"
	"io"

	"github.com/viant/flatkd/config"
	"github.com/viant/flatkd/internal/logging"
	"github.com/viant/flatkd/kdtree"
	"github.com/viant/flatkd/pointgen"
)

// Result holds the statistics of one run.
type Result struct {
	Construct Stats
	Search    Stats
}

// Run builds cfg.Count random points and, for cfg.Iterations rounds, shuffles
// and reconstructs them; it then times one cfg.K search per round against the
// final tree. Reports are written to w as each phase completes.
func Run(ctx context.Context, cfg config.Config, logger *logging.Logger, w io.Writer) (*Result, error) {
	if cfg.Count < 0 || cfg.K < 0 || cfg.Iterations < 0 {
		return nil, fmt.Errorf("bench: count, k and iterations must not be negative")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.WithCount(cfg.Count).WithK(cfg.K)

	rng := pointgen.NewRand(cfg.Seed)
	points := pointgen.Uniform2(rng, cfg.Count)
	queries := pointgen.Uniform2(rng, cfg.Iterations)
	policy := kdtree.Euclidean2{}

	construct := NewTimer("construct")
	for i := 0; i < cfg.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pointgen.Shuffle(rng, points)
		construct.Start()
		kdtree.Construct(points, policy)
		construct.Stop()
	}
	if err := construct.Report(w); err != nil {
		return nil, err
	}
	if cfg.Iterations == 0 {
		kdtree.Construct(points, policy)
	}

	out := make([]kdtree.Point2, cfg.K)
	distances := make([]float64, cfg.K)
	search := NewTimer("search")
	for i := 0; i < cfg.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		search.Start()
		found := kdtree.SearchKNN(points, out, distances, cfg.K, queries[i], policy)
		search.Stop()
		logger.LogSearch(ctx, cfg.K, found, nil)
	}
	if err := search.Report(w); err != nil {
		return nil, err
	}

	result := &Result{Construct: construct.Stats(), Search: search.Stats()}
	logger.InfoContext(ctx, "benchmark completed",
		"iterations", cfg.Iterations,
		"construct_mean_ms", result.Construct.Mean,
		"search_mean_ms", result.Search.Mean,
	)
	return result, nil
}
