package orm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/rowkit/pkg/schema"
	"github.com/mesh-intelligence/rowkit/pkg/types"
)

// Row is one entity instance. A row without an id is transient; Save
// inserts it. A row with an id is persisted; Save updates it.
type Row struct {
	model     *Model
	id        int64
	persisted bool
	values    map[string]any
}

// ID returns the row's id and whether it has one.
func (r *Row) ID() (int64, bool) { return r.id, r.persisted }

// Persisted reports whether the row is known to exist in storage.
func (r *Row) Persisted() bool { return r.persisted }

// Model returns the model the row belongs to.
func (r *Row) Model() *Model { return r.model }

// Get returns the current value of a field and whether the field exists.
func (r *Row) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Set validates v through the field's descriptor and stores it. On failure
// the previous value is kept.
func (r *Row) Set(name string, v any) error {
	f, ok := r.model.schema.Field(name)
	if !ok {
		return r.model.logFieldErr(types.NewFieldError(name, types.ErrUnknownField, "not declared on "+r.model.schema.Name()))
	}
	nv, err := f.Validate(v)
	if err != nil {
		return r.model.logFieldErr(err)
	}
	r.values[name] = nv
	return nil
}

// Values returns a copy of the field values.
func (r *Row) Values() Values {
	out := make(Values, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Save persists the row as one unit of work. A transient row is checked for
// required fields before any statement runs, then inserted and given its
// generated id. A persisted row has every field updated by id. Either way
// the table must exist.
func (r *Row) Save(ctx context.Context) error {
	m := r.model
	names := m.schema.FieldNames()
	values := make([]any, len(names))
	for i, name := range names {
		values[i] = r.values[name]
	}

	if !r.persisted {
		for i, f := range m.schema.Fields() {
			if f.Required() && values[i] == nil {
				m.log.Error("attempted to save a row with a null value for a not-null field", zap.String("field", f.Name()))
				return types.NewFieldError(f.Name(), types.ErrNotNullField, "")
			}
		}
	}

	var newID int64
	err := m.sess.Unit(ctx, func(ctx context.Context) error {
		exists, err := m.Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			m.log.Error("failed to save the row: table not found")
			return fmt.Errorf("%w: %s", types.ErrTableNotFound, m.schema.Table())
		}

		if r.persisted {
			return m.sess.Execute(ctx, m.compiler.Update(m.schema.Table(), names, values, r.id))
		}

		if err := m.sess.Execute(ctx, m.compiler.Insert(m.schema.Table(), names, values)); err != nil {
			return err
		}
		row, ok := m.sess.FetchOne()
		if !ok || len(row) == 0 {
			return fmt.Errorf("%w: insert returned no id", types.ErrSchemaMismatch)
		}
		id, ok := schema.AsInt64(row[0])
		if !ok {
			return fmt.Errorf("%w: insert returned id of type %T", types.ErrSchemaMismatch, row[0])
		}
		newID = id
		return nil
	})
	if err != nil {
		return err
	}

	if !r.persisted {
		r.id, r.persisted = newID, true
	}
	m.log.Info("row was saved successfully", zap.Int64("id", r.id))
	return nil
}

// Delete removes rows from the table. With conditions it deletes every
// matching row and leaves this row's state alone. Without conditions it
// deletes this row by id and returns it to transient, so a later Save
// inserts it again.
func (r *Row) Delete(ctx context.Context, conds ...Cond) error {
	m := r.model
	if len(conds) > 0 {
		return m.DeleteWhere(ctx, conds...)
	}
	if !r.persisted {
		m.log.Error("delete() called on a transient row without conditions")
		return fmt.Errorf("%w: row has no id and no conditions were given", types.ErrMethodUsage)
	}
	if err := m.sess.Execute(ctx, m.compiler.DeleteByID(m.schema.Table(), r.id)); err != nil {
		return err
	}
	m.log.Info("deleted row", zap.Int64("id", r.id))
	r.id, r.persisted = 0, false
	return nil
}

// String lists the row as "name: value" lines in column order.
func (r *Row) String() string {
	var b strings.Builder
	if r.persisted {
		fmt.Fprintf(&b, "id: %d", r.id)
	} else {
		b.WriteString("id: <transient>")
	}
	for _, name := range r.model.schema.FieldNames() {
		v := r.values[name]
		if v == nil {
			fmt.Fprintf(&b, "\n%s: NULL", name)
			continue
		}
		fmt.Fprintf(&b, "\n%s: %v", name, v)
	}
	return b.String()
}
