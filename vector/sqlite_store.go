package vector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/viant/flatkd/internal/logging"
)

// ErrDimensionMismatch is returned when a point does not match the
// dimension of the stored set.
var ErrDimensionMismatch = errors.New("vector: dimension mismatch")

// SQLiteStore keeps a point set in a SQLite points table. Nearest is answered
// in SQL with the vec_l2sq function, so engine.RegisterVectorFunctions must be
// called before the database connection is opened.
type SQLiteStore struct {
	db     *sql.DB
	logger *logging.Logger
	gen    atomic.Uint64
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithLogger sets the store logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *SQLiteStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSQLiteStore creates a SQLite-backed Store. It ensures the points schema
// exists in the provided database.
func NewSQLiteStore(db *sql.DB, opts ...Option) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("vector: db is nil")
	}
	if err := EnsureSchema(db); err != nil {
		return nil, err
	}
	s := &SQLiteStore{db: db, logger: logging.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AddPoints inserts points in a single transaction. Points without an ID get
// a random UUID. All points must share the dimension of the stored set.
func (s *SQLiteStore) AddPoints(ctx context.Context, points []Point) ([]string, error) {
	if len(points) == 0 {
		return nil, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	dims := 0
	err = tx.QueryRowContext(ctx, `SELECT dims FROM points LIMIT 1`).Scan(&dims)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if dims == 0 {
		dims = len(points[0].Vector)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO points(id, dims, vector) VALUES(?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	ids := make([]string, 0, len(points))
	for i, p := range points {
		if len(p.Vector) == 0 || len(p.Vector) != dims {
			return nil, fmt.Errorf("vector: %w: point %d has %d dims, want %d", ErrDimensionMismatch, i, len(p.Vector), dims)
		}
		id := p.ID
		if id == "" {
			id = uuid.NewString()
		}
		blob, err := EncodeVector(p.Vector)
		if err != nil {
			return nil, err
		}
		if _, err := stmt.ExecContext(ctx, id, dims, blob); err != nil {
			return nil, fmt.Errorf("vector: insert point %q: %w", id, err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	s.gen.Add(1)
	s.logger.DebugContext(ctx, "points added", "count", len(ids), "dimension", dims)
	return ids, nil
}

// Points loads every stored point in insertion order.
func (s *SQLiteStore) Points(ctx context.Context) ([]string, [][]float32, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, vector FROM points ORDER BY rowid`)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var ids []string
	var vectors [][]float32
	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, nil, err
		}
		vec, err := DecodeVector(blob)
		if err != nil {
			return nil, nil, fmt.Errorf("vector: point %q: %w", id, err)
		}
		ids = append(ids, id)
		vectors = append(vectors, vec)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	s.logger.DebugContext(ctx, "points loaded", "count", len(ids))
	return ids, vectors, nil
}

// Nearest orders the stored points by vec_l2sq in SQL. It is an exhaustive
// scan and serves as an independent check on the in-memory indexes.
func (s *SQLiteStore) Nearest(ctx context.Context, query []float32, k int) ([]Neighbor, error) {
	if k <= 0 {
		return nil, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	blob, err := EncodeVector(query)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, vec_l2sq(vector, ?) AS d FROM points WHERE dims = ? ORDER BY d, rowid LIMIT ?`,
		blob, len(query), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Neighbor
	for rows.Next() {
		var n Neighbor
		if err := rows.Scan(&n.ID, &n.Distance); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Remove deletes a point by ID.
func (s *SQLiteStore) Remove(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("vector: Remove called with empty id")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM points WHERE id = ?`, id); err != nil {
		return err
	}
	s.gen.Add(1)
	return nil
}

// Generation counts the writes made through this store. Callers caching a
// structure built from Points compare generations to detect staleness.
func (s *SQLiteStore) Generation() uint64 { return s.gen.Load() }

// Count returns the number of stored points.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM points`).Scan(&n)
	return n, err
}

// Ensure SQLiteStore satisfies the Store interface.
var _ Store = (*SQLiteStore)(nil)
