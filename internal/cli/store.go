package cli

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/viant/flatkd/engine"
	"github.com/viant/flatkd/index/bruteforce"
	"github.com/viant/flatkd/index/kd"
	"github.com/viant/flatkd/integrity"
	"github.com/viant/flatkd/internal/logging"
	"github.com/viant/flatkd/knn"
	"github.com/viant/flatkd/pointgen"
	"github.com/viant/flatkd/vector"
)

// openStore opens the database and its point store. withTable installs the
// flatkd virtual table module first, since it only reaches connections opened
// after registration.
func openStore(path string, logger *logging.Logger, withTable bool) (*sql.DB, *vector.SQLiteStore, error) {
	if err := engine.RegisterVectorFunctions(); err != nil {
		return nil, nil, err
	}
	db, err := engine.Open(path)
	if err != nil {
		return nil, nil, err
	}
	if withTable {
		if err := knn.RegisterModule(db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
	}
	store, err := vector.NewSQLiteStore(db, vector.WithLogger(logger))
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, store, nil
}

func newLoadCommand(a *app) *cobra.Command {
	var (
		db   string
		dims int
		seed uint64
	)
	cmd := &cobra.Command{
		Use:   "load <count>",
		Short: "Store a random point set in SQLite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if err := positional(args, 0, "count", &cfg.Count); err != nil {
				return err
			}
			if cmd.Flags().Changed("db") {
				cfg.DB = db
			}
			if cmd.Flags().Changed("dims") {
				cfg.Dims = dims
			}
			if cmd.Flags().Changed("seed") {
				cfg.Seed = seed
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			sqlDB, store, err := openStore(cfg.DB, a.logger, false)
			if err != nil {
				return err
			}
			defer sqlDB.Close()

			vectors := pointgen.Uniform(pointgen.NewRand(cfg.Seed), cfg.Count, cfg.Dims)
			points := make([]vector.Point, len(vectors))
			for i, v := range vectors {
				points[i] = vector.Point{Vector: v}
			}
			ids, err := store.AddPoints(cmd.Context(), points)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "stored %d points (%d dims) in %s\n", len(ids), cfg.Dims, cfg.DB)
			return err
		},
	}
	cmd.Flags().StringVar(&db, "db", "", "SQLite database path")
	cmd.Flags().IntVar(&dims, "dims", 0, "Point dimension")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed (0 draws a fresh one)")
	return cmd
}

func newQueryCommand(a *app) *cobra.Command {
	var (
		db     string
		k      int
		verify bool
		viaSQL bool
	)
	cmd := &cobra.Command{
		Use:   "query <coord>...",
		Short: "Find the nearest stored points to a query",
		Long: `Load the point set from SQLite, build a k-d tree over it and print the
k nearest points with their squared and Euclidean distances.

Examples:
  flatkd query --db points.sqlite --k 5 0.5 0.5
  flatkd query --db points.sqlite --verify 0.1 0.9`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("db") {
				cfg.DB = db
			}
			if cmd.Flags().Changed("k") {
				cfg.K = k
			}
			query := make([]float32, len(args))
			for i, arg := range args {
				v, err := strconv.ParseFloat(arg, 32)
				if err != nil {
					return fmt.Errorf("invalid coordinate %q: %w", arg, err)
				}
				query[i] = float32(v)
			}

			sqlDB, store, err := openStore(cfg.DB, a.logger, viaSQL)
			if err != nil {
				return err
			}
			defer sqlDB.Close()
			return runQuery(cmd, sqlDB, store, query, cfg.K, viaSQL, verify, a.logger)
		},
	}
	cmd.Flags().StringVar(&db, "db", "", "SQLite database path")
	cmd.Flags().IntVarP(&k, "k", "k", 0, "Number of neighbours")
	cmd.Flags().BoolVar(&verify, "verify", false, "Cross-check the result with an SQL scan")
	cmd.Flags().BoolVar(&viaSQL, "vtab", false, "Answer through the flatkd virtual table")
	return cmd
}

func runQuery(cmd *cobra.Command, db *sql.DB, store *vector.SQLiteStore, query []float32, k int, viaSQL, verify bool, logger *logging.Logger) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ids, vectors, err := store.Points(ctx)
	if err != nil {
		return err
	}
	tree := kd.New()
	if err := tree.Build(ids, vectors); err != nil {
		return err
	}

	var gotIDs []string
	var distances []float64
	if viaSQL {
		gotIDs, distances, err = tableSearch(ctx, db, store, query, k, logger)
	} else {
		gotIDs, distances, err = tree.Query(query, k)
		logger.WithCount(len(ids)).LogSearch(ctx, k, len(gotIDs), err)
	}
	if err != nil {
		return err
	}

	if verify {
		if err := verifyResult(ctx, store, tree, ids, vectors, query, k, gotIDs, distances); err != nil {
			return err
		}
	}

	byID := make(map[string][]float32, len(ids))
	for i, id := range ids {
		byID[id] = vectors[i]
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSQUARED\tEUCLIDEAN")
	for i, id := range gotIDs {
		offset, err := vector.Offset(query, byID[id])
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%g\t%g\n", id, distances[i], vector.Magnitude(offset))
	}
	return w.Flush()
}

// tableSearch answers the query through the flatkd virtual table.
func tableSearch(ctx context.Context, db *sql.DB, store *vector.SQLiteStore, query []float32, k int, logger *logging.Logger) ([]string, []float64, error) {
	if _, err := knn.Bind(ctx, store, knn.WithLogger(logger)); err != nil {
		return nil, nil, err
	}
	if _, err := db.ExecContext(ctx, `CREATE VIRTUAL TABLE IF NOT EXISTS flatkd_nn USING flatkd`); err != nil {
		return nil, nil, err
	}
	blob, err := vector.EncodeVector(query)
	if err != nil {
		return nil, nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT id, distance FROM flatkd_nn WHERE id MATCH ? AND k = ?`, blob, k)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	var ids []string
	var distances []float64
	for rows.Next() {
		var id string
		var d float64
		if err := rows.Scan(&id, &d); err != nil {
			return nil, nil, err
		}
		ids = append(ids, id)
		distances = append(distances, d)
	}
	return ids, distances, rows.Err()
}

// verifyResult checks the tree against a brute-force index over the same
// points, and the reported neighbours against an SQL scan of the store.
func verifyResult(ctx context.Context, store *vector.SQLiteStore, tree *kd.Index, ids []string, vectors [][]float32, query []float32, k int, gotIDs []string, distances []float64) error {
	ref := &bruteforce.Index{}
	if err := ref.Build(ids, vectors); err != nil {
		return err
	}
	if err := integrity.CompareIndexes(ctx, ref, tree, [][]float32{query}, k); err != nil {
		return fmt.Errorf("verify: %w", err)
	}

	want, err := store.Nearest(ctx, query, k)
	if err != nil {
		return err
	}
	if len(want) != len(gotIDs) {
		return fmt.Errorf("verify: expected %d results, got %d", len(want), len(gotIDs))
	}
	for i := range want {
		if want[i].Distance != distances[i] {
			return fmt.Errorf("verify: rank %d: expected %s (%g), got %s (%g)",
				i, want[i].ID, want[i].Distance, gotIDs[i], distances[i])
		}
	}
	return nil
}
