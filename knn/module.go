package knn

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/viant/flatkd/index/kd"
	"github.com/viant/flatkd/internal/logging"
	"github.com/viant/flatkd/vector"
	"modernc.org/sqlite/vtab"
)

// ModuleName is the name used in CREATE VIRTUAL TABLE ... USING.
const ModuleName = "flatkd"

const (
	defaultK = 10

	idxMatch  = 1
	idxMatchK = 2

	colID       = 0
	colDistance = 1
	colK        = 2
)

// Module binds a vector.SQLiteStore to the flatkd virtual table and caches
// the tree built from it.
type Module struct {
	name   string
	store  *vector.SQLiteStore
	logger *logging.Logger

	mu  sync.Mutex
	idx *kd.Index
	gen uint64
}

// Option configures a Module.
type Option func(*Module)

// WithName binds the store under name, selected with
// USING flatkd(store=name). The default binding is "default".
func WithName(name string) Option {
	return func(m *Module) {
		if name != "" {
			m.name = name
		}
	}
}

// WithLogger sets the module logger.
func WithLogger(logger *logging.Logger) Option {
	return func(m *Module) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Table is one flatkd virtual table instance.
type Table struct {
	module *Module
	name   string
	k      int
}

// Cursor iterates one MATCH result.
type Cursor struct {
	table     *Table
	ids       []string
	distances []float64
	pos       int
}

// ErrStale is returned by MATCH when the store was written to after the
// tree was last built. Module.Refresh rebuilds it.
var ErrStale = errors.New("knn: index is stale")

// bindings maps store names to modules for the whole process. SQLite
// modules are registered by name for the whole driver, so one dispatcher
// serves every binding and a name selects the same store on every database.
var bindings = struct {
	mu     sync.RWMutex
	byName map[string]*Module
}{byName: make(map[string]*Module)}

type dispatcher struct{}

// RegisterModule installs the flatkd module on db. The module only reaches
// connections opened after registration, and only the first of them, so it
// must run before any other statement on db and it limits the pool to that
// one connection.
func RegisterModule(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("knn: db is nil")
	}
	db.SetMaxOpenConns(1)
	if err := vtab.RegisterModule(db, ModuleName, dispatcher{}); err != nil {
		if !strings.Contains(err.Error(), "already registered") {
			return err
		}
	}
	return nil
}

// Bind builds the tree over the points in store and binds it under its name,
// replacing any earlier binding of that name in the process. Tables select a
// binding with USING flatkd(store=name) when they are created or connected.
func Bind(ctx context.Context, store *vector.SQLiteStore, opts ...Option) (*Module, error) {
	if store == nil {
		return nil, fmt.Errorf("knn: store is nil")
	}
	m := &Module{name: "default", store: store, logger: logging.Nop()}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.Refresh(ctx); err != nil {
		return nil, err
	}
	bindings.mu.Lock()
	bindings.byName[m.name] = m
	bindings.mu.Unlock()
	return m, nil
}

func lookup(name string) (*Module, error) {
	bindings.mu.RLock()
	defer bindings.mu.RUnlock()
	m, ok := bindings.byName[name]
	if !ok {
		return nil, fmt.Errorf("knn: no store bound as %q", name)
	}
	return m, nil
}

// Create declares the table schema.
func (d dispatcher) Create(ctx vtab.Context, args []string) (vtab.Table, error) {
	return d.Connect(ctx, args)
}

// Connect attaches to an existing table.
func (dispatcher) Connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("knn: expected at least 3 args, got %d", len(args))
	}
	if err := ctx.EnableConstraintSupport(); err != nil {
		return nil, fmt.Errorf("knn: EnableConstraintSupport failed: %w", err)
	}
	if err := ctx.Declare(fmt.Sprintf("CREATE TABLE %s(id TEXT, distance REAL, k INTEGER HIDDEN)", args[2])); err != nil {
		return nil, err
	}
	name, k, err := parseOptions(args[3:])
	if err != nil {
		return nil, err
	}
	m, err := lookup(name)
	if err != nil {
		return nil, err
	}
	return &Table{module: m, name: args[2], k: k}, nil
}

func parseOptions(args []string) (string, int, error) {
	name, k := "default", defaultK
	for _, raw := range args {
		key, val, ok := strings.Cut(strings.TrimSpace(raw), "=")
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "k":
			n, err := strconv.Atoi(strings.TrimSpace(val))
			if err != nil || n < 0 {
				return "", 0, fmt.Errorf("knn: invalid k %q", val)
			}
			k = n
		case "store":
			name = strings.TrimSpace(val)
		}
	}
	return name, k, nil
}

// Refresh rebuilds the tree from the store. It reads the points table, so it
// must not run while a statement on the module's connection is open.
func (m *Module) Refresh(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	gen := m.store.Generation()
	started := time.Now()
	ids, vectors, err := m.store.Points(ctx)
	if err != nil {
		return err
	}
	idx := kd.New()
	if err := idx.Build(ids, vectors); err != nil {
		return err
	}
	m.logger.LogConstruct(ctx, len(ids), time.Since(started))
	m.mu.Lock()
	m.idx, m.gen = idx, gen
	m.mu.Unlock()
	return nil
}

// index returns the tree built by the last Refresh.
func (m *Module) index() (*kd.Index, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != m.store.Generation() {
		return nil, fmt.Errorf("%w: store generation %d, tree built at %d; call Refresh",
			ErrStale, m.store.Generation(), m.gen)
	}
	return m.idx, nil
}

// BestIndex requires MATCH on id and pushes down an optional k = constraint.
func (t *Table) BestIndex(info *vtab.IndexInfo) error {
	var match, k *vtab.Constraint
	for i := range info.Constraints {
		c := &info.Constraints[i]
		if !c.Usable {
			continue
		}
		switch {
		case c.Column == colID && c.Op == vtab.OpMATCH:
			match = c
		case c.Column == colK && c.Op == vtab.OpEQ:
			k = c
		}
	}
	if match == nil {
		return fmt.Errorf("knn: %s requires a MATCH constraint on id", t.name)
	}
	match.ArgIndex = 0
	match.Omit = true
	info.IdxNum = idxMatch
	if k != nil {
		k.ArgIndex = 1
		k.Omit = true
		info.IdxNum = idxMatchK
	}
	return nil
}

// Open allocates a new cursor.
func (t *Table) Open() (vtab.Cursor, error) { return &Cursor{table: t}, nil }

// Disconnect is a no-op.
func (t *Table) Disconnect() error { return nil }

// Destroy is a no-op; the points table belongs to the store.
func (t *Table) Destroy() error { return nil }

// Filter runs the k-nearest search for the MATCH argument.
func (c *Cursor) Filter(idxNum int, _ string, vals []vtab.Value) error {
	c.ids, c.distances, c.pos = nil, nil, 0
	if len(vals) == 0 || vals[0] == nil {
		return fmt.Errorf("knn: MATCH argument is required")
	}
	query, err := decodeQuery(vals[0])
	if err != nil {
		return err
	}
	k := c.table.k
	if idxNum == idxMatchK {
		if len(vals) < 2 {
			return fmt.Errorf("knn: missing k argument")
		}
		if k, err = asInt(vals[1]); err != nil {
			return err
		}
	}

	ctx := context.Background()
	idx, err := c.table.module.index()
	if err != nil {
		return err
	}
	ids, distances, err := idx.Query(query, k)
	c.table.module.logger.LogSearch(ctx, k, len(ids), err)
	if err != nil {
		return err
	}
	c.ids, c.distances = ids, distances
	return nil
}

func decodeQuery(v vtab.Value) ([]float32, error) {
	switch val := v.(type) {
	case []byte:
		return vector.DecodeVector(val)
	case string:
		return parseQuery(val)
	default:
		return nil, fmt.Errorf("knn: expected MATCH arg as BLOB or string, got %T", v)
	}
}

func parseQuery(raw string) ([]float32, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, fmt.Errorf("knn: MATCH string is empty")
	}
	if strings.HasPrefix(s, "[") {
		var coords []float32
		if err := json.Unmarshal([]byte(s), &coords); err != nil {
			return nil, fmt.Errorf("knn: invalid MATCH array: %w", err)
		}
		return coords, nil
	}
	parts := strings.Split(s, ",")
	coords := make([]float32, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("knn: invalid MATCH coordinate %q: %w", p, err)
		}
		coords = append(coords, float32(f))
	}
	return coords, nil
}

func asInt(v vtab.Value) (int, error) {
	switch val := v.(type) {
	case int64:
		if val < 0 {
			return 0, fmt.Errorf("knn: k must not be negative, got %d", val)
		}
		return int(val), nil
	case float64:
		if val < 0 {
			return 0, fmt.Errorf("knn: k must not be negative, got %g", val)
		}
		return int(val), nil
	case string:
		n, err := strconv.Atoi(val)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("knn: invalid k %q", val)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("knn: unsupported k type %T", v)
	}
}

// Next advances the cursor.
func (c *Cursor) Next() error {
	if c.pos < len(c.ids) {
		c.pos++
	}
	return nil
}

// Eof reports end-of-rows.
func (c *Cursor) Eof() bool { return c.pos >= len(c.ids) }

// Column returns the value of a column in the current row.
func (c *Cursor) Column(col int) (vtab.Value, error) {
	if c.pos >= len(c.ids) {
		return nil, fmt.Errorf("knn: Column out of range (pos=%d,len=%d)", c.pos, len(c.ids))
	}
	switch col {
	case colID:
		return c.ids[c.pos], nil
	case colDistance:
		return c.distances[c.pos], nil
	case colK:
		return nil, nil
	}
	return nil, fmt.Errorf("knn: unsupported column %d", col)
}

// Rowid returns the rank of the current row, starting at 1.
func (c *Cursor) Rowid() (int64, error) {
	if c.pos >= len(c.ids) {
		return 0, fmt.Errorf("knn: Rowid out of range (pos=%d,len=%d)", c.pos, len(c.ids))
	}
	return int64(c.pos + 1), nil
}

// Close releases the result.
func (c *Cursor) Close() error { c.ids, c.distances, c.pos = nil, nil, 0; return nil }
