package vec

import (
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/DanielSebasCM/research-stay-2024/embedding"
	"modernc.org/sqlite/vtab"
)

// ModuleName is the name used by Register.
const ModuleName = "vec_neighbors"

const defaultK = 10

const (
	idxNone = iota
	idxQuery
	idxQueryScore
)

const (
	colTerm = iota
	colScore
	colQuery
)

// Module implements vtab.Module over an embedding.Space.
type Module struct {
	space embedding.Space
}

// Table is one vec_neighbors instance.
type Table struct {
	space embedding.Space
	k     int
}

// Cursor iterates the neighbors of one query.
type Cursor struct {
	table *Table
	query string
	rows  []embedding.Neighbor
	pos   int
}

var (
	registryMu sync.Mutex
	registry   = map[string]embedding.Space{}
)

// Register registers the vec_neighbors module on db, backed by space.
func Register(db *sql.DB, space embedding.Space) error {
	return RegisterAs(db, ModuleName, space)
}

// RegisterAs registers the module under name. Module names are global to the
// driver, so registering a name again with a different space fails; use a
// distinct name per space.
func RegisterAs(db *sql.DB, name string, space embedding.Space) error {
	if space == nil {
		return errors.New("vec: space is nil")
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if prev, ok := registry[name]; ok && !sameSpace(prev, space) {
		return fmt.Errorf("vec: module %q is already backed by another space", name)
	}
	if err := vtab.RegisterModule(db, name, &Module{space: space}); err != nil {
		if !strings.Contains(err.Error(), "already registered") {
			return err
		}
		if _, ok := registry[name]; !ok {
			return fmt.Errorf("vec: module %q registered outside this package: %w", name, err)
		}
	}
	registry[name] = space
	return nil
}

func sameSpace(a, b embedding.Space) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// Create declares the table schema.
func (m *Module) Create(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.connect(ctx, args)
}

// Connect attaches to an existing table.
func (m *Module) Connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.connect(ctx, args)
}

func (m *Module) connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("vec: expects at least 3 args, got %d", len(args))
	}
	if err := ctx.EnableConstraintSupport(); err != nil {
		return nil, fmt.Errorf("vec: EnableConstraintSupport failed: %w", err)
	}
	k, err := parseK(args[3:])
	if err != nil {
		return nil, err
	}
	if err := ctx.Declare(fmt.Sprintf("CREATE TABLE %s(term TEXT, score REAL, query TEXT HIDDEN)", args[2])); err != nil {
		return nil, err
	}
	return &Table{space: m.space, k: k}, nil
}

// parseK reads the optional k=N module argument.
func parseK(args []string) (int, error) {
	k := defaultK
	for _, arg := range args {
		if strings.TrimSpace(arg) == "" {
			continue
		}
		key, value, ok := strings.Cut(strings.TrimSpace(arg), "=")
		if !ok || strings.TrimSpace(key) != "k" {
			return 0, fmt.Errorf("vec: unsupported argument %q", arg)
		}
		n, err := strconv.Atoi(strings.Trim(strings.TrimSpace(value), `'"`))
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("vec: k must be a positive integer, got %q", value)
		}
		k = n
	}
	return k, nil
}

// BestIndex pushes down MATCH (or =) on the query column and a lower bound on
// score.
func (t *Table) BestIndex(info *vtab.IndexInfo) error {
	var query, score *vtab.Constraint
	for i := range info.Constraints {
		c := &info.Constraints[i]
		if !c.Usable {
			continue
		}
		switch {
		case c.Column == colQuery && (c.Op == vtab.OpMATCH || c.Op == vtab.OpEQ):
			query = c
		case c.Column == colScore && (c.Op == vtab.OpGE || c.Op == vtab.OpGT):
			score = c
		}
	}
	info.IdxNum = idxNone
	if query == nil {
		return nil
	}
	query.ArgIndex = 0
	query.Omit = true
	info.IdxNum = idxQuery
	if score != nil {
		score.ArgIndex = 1
		// strict > is re-checked by SQLite
		score.Omit = score.Op == vtab.OpGE
		info.IdxNum = idxQueryScore
	}
	return nil
}

// Open allocates a new cursor.
func (t *Table) Open() (vtab.Cursor, error) { return &Cursor{table: t}, nil }

// Disconnect is a no-op; the space outlives the table.
func (t *Table) Disconnect() error { return nil }

// Destroy is a no-op.
func (t *Table) Destroy() error { return nil }

// Filter runs the neighbor query for the pushed-down constraints.
func (c *Cursor) Filter(idxNum int, idxStr string, vals []vtab.Value) error {
	_ = idxStr
	c.rows, c.pos, c.query = nil, 0, ""
	if idxNum == idxNone || len(vals) == 0 {
		return nil
	}
	query, err := asString(vals[0])
	if err != nil {
		return err
	}
	c.query = query
	found, err := c.table.space.MostSimilar(query, c.table.k)
	if errors.Is(err, embedding.ErrUnknownTerm) {
		return nil
	}
	if err != nil {
		return err
	}
	if idxNum == idxQueryScore && len(vals) > 1 {
		bound, err := asFloat(vals[1])
		if err != nil {
			return err
		}
		kept := found[:0]
		for _, n := range found {
			if n.Score >= bound {
				kept = append(kept, n)
			}
		}
		found = kept
	}
	c.rows = found
	return nil
}

// Next advances the cursor.
func (c *Cursor) Next() error {
	if c.pos < len(c.rows) {
		c.pos++
	}
	return nil
}

// Eof reports end-of-rows.
func (c *Cursor) Eof() bool { return c.pos >= len(c.rows) }

// Column returns the value of a column in the current row.
func (c *Cursor) Column(col int) (vtab.Value, error) {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return nil, fmt.Errorf("vec: Column out of range (pos=%d,len=%d)", c.pos, len(c.rows))
	}
	switch col {
	case colTerm:
		return c.rows[c.pos].Term, nil
	case colScore:
		return c.rows[c.pos].Score, nil
	case colQuery:
		return c.query, nil
	}
	return nil, fmt.Errorf("vec: unsupported column %d", col)
}

// Rowid returns the 1-based rank of the current row.
func (c *Cursor) Rowid() (int64, error) {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return 0, fmt.Errorf("vec: Rowid out of range (pos=%d,len=%d)", c.pos, len(c.rows))
	}
	return int64(c.pos + 1), nil
}

// Close releases resources.
func (c *Cursor) Close() error { c.rows = nil; c.pos = 0; return nil }

func asString(v vtab.Value) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	}
	return "", fmt.Errorf("vec: query must be TEXT, got %T", v)
}

func asFloat(v vtab.Value) (float64, error) {
	switch f := v.(type) {
	case float64:
		return f, nil
	case int64:
		return float64(f), nil
	}
	return 0, fmt.Errorf("vec: score bound must be numeric, got %T", v)
}
