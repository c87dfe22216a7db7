package orm

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/rowkit/internal/statement"
	"github.com/mesh-intelligence/rowkit/pkg/schema"
	"github.com/mesh-intelligence/rowkit/pkg/types"
)

// Model runs table and row operations for one entity type. It owns its
// Session exclusively and is not safe for concurrent use.
type Model struct {
	schema   *schema.Schema
	sess     Session
	compiler statement.Compiler
	log      *zap.Logger
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.log = l
		}
	}
}

// NewModel binds s to sess.
func NewModel(s *schema.Schema, sess Session, opts ...Option) *Model {
	m := &Model{
		schema:   s,
		sess:     sess,
		compiler: statement.New(sess.Dialect()),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With(zap.String("table", s.Table()))
	return m
}

// Schema returns the entity type's schema.
func (m *Model) Schema() *schema.Schema { return m.schema }

// Close releases the model's session.
func (m *Model) Close() error { return m.sess.Close() }

// Exists reports whether the entity's table is present.
func (m *Model) Exists(ctx context.Context) (bool, error) {
	if err := m.sess.Execute(ctx, m.compiler.Exists(m.schema.Table())); err != nil {
		return false, err
	}
	row, ok := m.sess.FetchOne()
	if !ok || len(row) == 0 {
		return false, nil
	}
	n, ok := schema.AsInt64(row[0])
	if !ok {
		m.log.Error("table existence check returned a non-integer count", zap.Any("count", row[0]))
		return false, fmt.Errorf("%w: existence count of type %T", types.ErrSchemaMismatch, row[0])
	}
	return n > 0, nil
}

// Create creates the table. An existing table fails with ErrTableExists
// unless force is set, in which case it is dropped and recreated.
func (m *Model) Create(ctx context.Context, force bool) error {
	exists, err := m.Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		if !force {
			m.log.Error("failed to create the table: already exists")
			return fmt.Errorf("%w: %s", types.ErrTableExists, m.schema.Table())
		}
		if err := m.sess.Execute(ctx, m.compiler.Drop(m.schema.Table())); err != nil {
			return err
		}
	}

	fields := m.schema.Fields()
	cols := make([]statement.Column, len(fields))
	for i, f := range fields {
		cols[i] = statement.Column{Name: f.Name(), Type: f.SQLType()}
	}
	if err := m.sess.Execute(ctx, m.compiler.Create(m.schema.Table(), cols)); err != nil {
		return err
	}
	m.log.Info("table was created successfully", zap.Bool("replaced", exists))
	return nil
}

// Drop drops the table. A missing table fails with ErrTableNotFound unless
// silent is set.
func (m *Model) Drop(ctx context.Context, silent bool) error {
	exists, err := m.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists && !silent {
		m.log.Error("failed to drop the table: not found")
		return fmt.Errorf("%w: %s", types.ErrTableNotFound, m.schema.Table())
	}
	if err := m.sess.Execute(ctx, m.compiler.Drop(m.schema.Table())); err != nil {
		return err
	}
	m.log.Info("table was dropped successfully")
	return nil
}

// New returns a transient row holding the declared defaults overridden by
// values. Every value is validated; unknown names fail with ErrUnknownField.
func (m *Model) New(values Values) (*Row, error) {
	r := &Row{model: m, values: make(map[string]any, len(values))}
	for _, f := range m.schema.Fields() {
		r.values[f.Name()] = f.Default()
	}
	for name, v := range values {
		if err := r.Set(name, v); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Insert builds a row from values and saves it.
func (m *Model) Insert(ctx context.Context, values Values) (*Row, error) {
	r, err := m.New(values)
	if err != nil {
		return nil, err
	}
	if err := r.Save(ctx); err != nil {
		return nil, err
	}
	m.log.Info("inserted a row", zap.Int64("id", r.id))
	return r, nil
}

// InsertMany inserts each entry in order. It is not atomic: on failure the
// rows already inserted stay persisted and are returned with the error.
func (m *Model) InsertMany(ctx context.Context, rows []Values) ([]*Row, error) {
	out := make([]*Row, 0, len(rows))
	for i, values := range rows {
		r, err := m.Insert(ctx, values)
		if err != nil {
			return out, fmt.Errorf("inserting row %d: %w", i, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// GetByID fetches the row with the given id. found is false when no row
// matches.
func (m *Model) GetByID(ctx context.Context, id int64) (row *Row, found bool, err error) {
	stmt := m.compiler.SelectByID(m.schema.Table(), m.schema.Columns(), id)
	return m.fetchFirst(ctx, stmt)
}

// Get fetches the first row matching every condition. At least one
// condition is required; use All for unfiltered scans.
func (m *Model) Get(ctx context.Context, conds ...Cond) (row *Row, found bool, err error) {
	if len(conds) == 0 {
		m.log.Error("get() called without conditions; use all()")
		return nil, false, fmt.Errorf("%w: get needs at least one condition, use All to scan the table", types.ErrMethodUsage)
	}
	sc, err := m.resolve(conds)
	if err != nil {
		return nil, false, err
	}
	stmt := m.compiler.Select(m.schema.Table(), m.schema.Columns(), sc, nil)
	return m.fetchFirst(ctx, stmt)
}

func (m *Model) fetchFirst(ctx context.Context, stmt statement.Statement) (*Row, bool, error) {
	if err := m.sess.Execute(ctx, stmt); err != nil {
		return nil, false, err
	}
	raw, ok := m.sess.FetchOne()
	if !ok {
		return nil, false, nil
	}
	r, err := m.RowFromValues(raw)
	if err != nil {
		return nil, false, err
	}
	return r, true, nil
}

// All returns the rows matching every condition, or every row when there
// are none. The statement runs when iteration starts and rows are mapped one
// at a time. The sequence can be ranged over once; a second range yields
// ErrCursorConsumed.
func (m *Model) All(ctx context.Context, conds ...Cond) iter.Seq2[*Row, error] {
	used := false
	return func(yield func(*Row, error) bool) {
		if used {
			yield(nil, types.ErrCursorConsumed)
			return
		}
		used = true

		sc, err := m.resolve(conds)
		if err != nil {
			yield(nil, err)
			return
		}
		stmt := m.compiler.SelectAll(m.schema.Table(), m.schema.Columns())
		if len(sc) > 0 {
			stmt = m.compiler.Select(m.schema.Table(), m.schema.Columns(), sc, nil)
		}
		if err := m.sess.Execute(ctx, stmt); err != nil {
			yield(nil, err)
			return
		}
		for _, raw := range m.sess.FetchAll() {
			r, err := m.RowFromValues(raw)
			if !yield(r, err) || err != nil {
				return
			}
		}
	}
}

// DeleteWhere deletes every row matching all conditions. At least one
// condition is required.
func (m *Model) DeleteWhere(ctx context.Context, conds ...Cond) error {
	if len(conds) == 0 {
		m.log.Error("delete_where() called without conditions")
		return fmt.Errorf("%w: delete needs at least one condition", types.ErrMethodUsage)
	}
	sc, err := m.resolve(conds)
	if err != nil {
		return err
	}
	if err := m.sess.Execute(ctx, m.compiler.Delete(m.schema.Table(), sc, nil)); err != nil {
		return err
	}
	m.log.Info("deleted rows")
	return nil
}

// RowFromValues maps a fetched row, positioned as Schema.Columns, onto a
// persisted Row. A nil raw row maps to a nil Row.
func (m *Model) RowFromValues(raw []any) (*Row, error) {
	if raw == nil {
		return nil, nil
	}
	cols := m.schema.Columns()
	if len(raw) != len(cols) {
		m.log.Error("fetched row does not match schema", zap.Int("got", len(raw)), zap.Int("want", len(cols)))
		return nil, fmt.Errorf("%w: got %d values for %d columns", types.ErrSchemaMismatch, len(raw), len(cols))
	}
	id, ok := schema.AsInt64(raw[0])
	if !ok {
		return nil, fmt.Errorf("%w: id column holds %T", types.ErrSchemaMismatch, raw[0])
	}

	padded := m.compiler.Dialect().PadsChar
	r := &Row{model: m, id: id, persisted: true, values: make(map[string]any, len(cols)-1)}
	for i, f := range m.schema.Fields() {
		in := raw[i+1]
		if padded && f.Kind() == schema.KindString {
			in = trimPadding(in)
		}
		v, err := f.Decode(in)
		if err != nil {
			return nil, m.logFieldErr(err)
		}
		r.values[f.Name()] = v
	}
	return r, nil
}

// Collect drains a row sequence into a slice, stopping at the first error.
func Collect(seq iter.Seq2[*Row, error]) ([]*Row, error) {
	var out []*Row
	for r, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, r)
	}
	return out, nil
}

// trimPadding removes the trailing blanks a padding database adds to
// CHAR(n) values.
func trimPadding(v any) any {
	switch s := v.(type) {
	case string:
		return strings.TrimRight(s, " ")
	case []byte:
		return strings.TrimRight(string(s), " ")
	}
	return v
}

func (m *Model) logFieldErr(err error) error {
	m.log.Error("field check failed", zap.Error(err))
	return err
}
