package schema

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/rowkit/pkg/types"
)

// IDColumn is the surrogate primary key every table carries.
const IDColumn = "id"

// fingerprintNS namespaces schema fingerprints (UUIDv5).
var fingerprintNS = uuid.MustParse("6f1c9a52-3b0e-4d1a-9a57-0c7e2f4b8d11")

// Schema is the immutable table definition for one entity type.
type Schema struct {
	name        string
	table       string
	fields      []*Field
	index       map[string]int
	columns     []string
	fingerprint uuid.UUID
}

// Define derives the Schema for an entity type from its declared fields.
// The declaration order of fields is the column order.
func Define(typeName string, fields ...*Field) (*Schema, error) {
	table := TableName(typeName)
	if table == "" || !IsIdentifier(table) {
		return nil, fmt.Errorf("%w: type name %q does not give a valid table name", types.ErrInvalidSchema, typeName)
	}

	s := &Schema{
		name:    typeName,
		table:   table,
		fields:  make([]*Field, 0, len(fields)),
		index:   make(map[string]int, len(fields)),
		columns: make([]string, 0, len(fields)+1),
	}
	s.columns = append(s.columns, IDColumn)

	for _, f := range fields {
		if f == nil {
			return nil, fmt.Errorf("%w: %s: nil field", types.ErrInvalidSchema, typeName)
		}
		switch {
		case strings.HasPrefix(f.name, "_"):
			return nil, fmt.Errorf("%w: %s: field %q is private", types.ErrInvalidSchema, typeName, f.name)
		case f.name == IDColumn:
			return nil, fmt.Errorf("%w: %s: field name %q is reserved", types.ErrInvalidSchema, typeName, IDColumn)
		case !IsIdentifier(f.name):
			return nil, fmt.Errorf("%w: %s: field name %q is not a lower-case identifier", types.ErrInvalidSchema, typeName, f.name)
		}
		if _, dup := s.index[f.name]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate field %q", types.ErrInvalidSchema, typeName, f.name)
		}
		if err := f.check(); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", types.ErrInvalidSchema, typeName, err)
		}
		s.index[f.name] = len(s.fields)
		s.fields = append(s.fields, f)
		s.columns = append(s.columns, f.name)
	}

	s.fingerprint = uuid.NewSHA1(fingerprintNS, []byte(s.signature()))
	return s, nil
}

// MustDefine is like Define but panics on error. It suits package-level
// entity declarations.
func MustDefine(typeName string, fields ...*Field) *Schema {
	s, err := Define(typeName, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the declared entity type name.
func (s *Schema) Name() string { return s.name }

// Table returns the snake_case table name.
func (s *Schema) Table() string { return s.table }

// Fields returns the field descriptors in declaration order.
func (s *Schema) Fields() []*Field {
	out := make([]*Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// FieldNames returns the field names in declaration order, without id.
func (s *Schema) FieldNames() []string {
	out := make([]string, len(s.columns)-1)
	copy(out, s.columns[1:])
	return out
}

// Columns returns the positional column order used for fetched rows: id
// followed by every field in declaration order.
func (s *Schema) Columns() []string {
	out := make([]string, len(s.columns))
	copy(out, s.columns)
	return out
}

// Field looks up a descriptor by name.
func (s *Schema) Field(name string) (*Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.fields[i], true
}

// Fingerprint identifies the column layout. Two schemas with the same table,
// columns, and SQL types share a fingerprint.
func (s *Schema) Fingerprint() uuid.UUID { return s.fingerprint }

func (s *Schema) signature() string {
	var b strings.Builder
	b.WriteString(s.table)
	for _, f := range s.fields {
		fmt.Fprintf(&b, "|%s:%s", f.name, f.SQLType())
	}
	return b.String()
}
