package orm

import (
	"github.com/mesh-intelligence/rowkit/internal/statement"
	"github.com/mesh-intelligence/rowkit/pkg/schema"
	"github.com/mesh-intelligence/rowkit/pkg/types"
)

// Values maps field names to values for constructing rows.
type Values map[string]any

// Cond is one equality condition on id or a declared field.
type Cond struct {
	Field string
	Value any
}

// Where builds a Cond.
func Where(field string, value any) Cond {
	return Cond{Field: field, Value: value}
}

// resolve checks every condition against the schema and normalizes its
// value through the field descriptor.
func (m *Model) resolve(conds []Cond) ([]statement.Cond, error) {
	out := make([]statement.Cond, 0, len(conds))
	for _, c := range conds {
		if c.Field == schema.IDColumn {
			if c.Value == nil {
				out = append(out, statement.Cond{Field: c.Field})
				continue
			}
			id, ok := schema.AsInt64(c.Value)
			if !ok {
				return nil, m.logFieldErr(types.NewFieldError(c.Field, types.ErrValidation, "id must be an integer"))
			}
			out = append(out, statement.Cond{Field: c.Field, Value: id})
			continue
		}
		f, ok := m.schema.Field(c.Field)
		if !ok {
			return nil, m.logFieldErr(types.NewFieldError(c.Field, types.ErrUnknownField, "not declared on "+m.schema.Name()))
		}
		v, err := f.Validate(c.Value)
		if err != nil {
			return nil, m.logFieldErr(err)
		}
		out = append(out, statement.Cond{Field: c.Field, Value: v})
	}
	return out, nil
}
