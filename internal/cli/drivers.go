package cli

import (
	"github.com/spf13/cobra"

	"github.com/viant/flatkd/bench"
	"github.com/viant/flatkd/integrity"
)

func newBenchCommand(a *app) *cobra.Command {
	var seed uint64
	cmd := &cobra.Command{
		Use:   "bench <count> <k> [iterations]",
		Short: "Time construction and search over random points",
		Long: `Generate count random points in the unit square, then time repeated
shuffle-and-construct rounds and one k-nearest search per round.

Examples:
  flatkd bench 100000 10
  flatkd bench 1000000 50 20 --seed 7`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if err := positional(args, 0, "count", &cfg.Count); err != nil {
				return err
			}
			if err := positional(args, 1, "k", &cfg.K); err != nil {
				return err
			}
			if err := positional(args, 2, "iterations", &cfg.Iterations); err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				cfg.Seed = seed
			}
			_, err := bench.Run(cmd.Context(), cfg, a.logger, cmd.OutOrStdout())
			return err
		},
	}
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed (0 draws a fresh one)")
	return cmd
}

func newIntegrityCommand(a *app) *cobra.Command {
	var seed uint64
	cmd := &cobra.Command{
		Use:   "integrity <count> <k> [tests]",
		Short: "Cross-check search results against a full sort",
		Long: `Generate count random points and tests random queries, and compare every
k-nearest result with an exhaustive sort. Fails on the first mismatch.

Examples:
  flatkd integrity 10000 16
  flatkd integrity 500 600 10`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if err := positional(args, 0, "count", &cfg.Count); err != nil {
				return err
			}
			if err := positional(args, 1, "k", &cfg.K); err != nil {
				return err
			}
			if err := positional(args, 2, "tests", &cfg.Iterations); err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				cfg.Seed = seed
			}
			return integrity.Check(cmd.Context(), cfg, a.logger, cmd.OutOrStdout())
		},
	}
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed (0 draws a fresh one)")
	return cmd
}
