// Package schema declares entity types: typed field descriptors, the
// once-per-type Schema derived from them, a Registry of schemas, and YAML
// declaration files.
package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mesh-intelligence/rowkit/pkg/types"
)

// Kind is the value kind a Field accepts.
type Kind string

// Field kinds.
const (
	KindInteger Kind = "integer"
	KindFloat   Kind = "float"
	KindString  Kind = "string"
	KindText    Kind = "text"
	KindBoolean Kind = "boolean"
)

// DefaultMaxLength bounds string fields declared without an explicit length.
const DefaultMaxLength = 255

// Field describes one column: its kind, constraints, default, and SQL type.
// A Field is immutable once its Schema is defined.
type Field struct {
	name        string
	kind        Kind
	required    bool
	nonNegative bool
	maxLength   int
	def         any
	optErr      error
}

// Option configures a Field at declaration time.
type Option func(*Field)

// Required marks the field NOT NULL. It is enforced when a row is saved,
// not on assignment.
func Required() Option {
	return func(f *Field) { f.required = true }
}

// NonNegative rejects values below zero. Numeric kinds only.
func NonNegative() Option {
	return func(f *Field) {
		if f.kind != KindInteger && f.kind != KindFloat {
			f.optErr = fmt.Errorf("non_negative is not valid for %s field %q", f.kind, f.name)
			return
		}
		f.nonNegative = true
	}
}

// Default sets the value a new row starts with.
func Default(v any) Option {
	return func(f *Field) { f.def = v }
}

// Integer declares an integer field (INT).
func Integer(name string, opts ...Option) *Field {
	return newField(name, KindInteger, 0, opts)
}

// Float declares a floating-point field (FLOAT).
func Float(name string, opts ...Option) *Field {
	return newField(name, KindFloat, 0, opts)
}

// String declares a bounded string field (CHAR(maxLength)). A maxLength of
// zero selects DefaultMaxLength.
func String(name string, maxLength int, opts ...Option) *Field {
	if maxLength == 0 {
		maxLength = DefaultMaxLength
	}
	return newField(name, KindString, maxLength, opts)
}

// Text declares an unbounded string field (TEXT).
func Text(name string, opts ...Option) *Field {
	return newField(name, KindText, 0, opts)
}

// Bool declares a boolean field (BOOLEAN).
func Bool(name string, opts ...Option) *Field {
	return newField(name, KindBoolean, 0, opts)
}

// NewField declares a field of the given kind. It backs the kind-specific
// constructors and declaration files.
func NewField(name string, kind Kind, maxLength int, opts ...Option) *Field {
	if kind == KindString && maxLength == 0 {
		maxLength = DefaultMaxLength
	}
	return newField(name, kind, maxLength, opts)
}

func newField(name string, kind Kind, maxLength int, opts []Option) *Field {
	f := &Field{name: name, kind: kind, maxLength: maxLength}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Field) Name() string      { return f.name }
func (f *Field) Kind() Kind        { return f.kind }
func (f *Field) Required() bool    { return f.required }
func (f *Field) NonNegative() bool { return f.nonNegative }
func (f *Field) MaxLength() int    { return f.maxLength }
func (f *Field) Default() any      { return f.def }

// SQLType returns the column type used in CREATE TABLE.
func (f *Field) SQLType() string {
	var t string
	switch f.kind {
	case KindInteger:
		t = "INT"
	case KindFloat:
		t = "FLOAT"
	case KindString:
		t = fmt.Sprintf("CHAR(%d)", f.maxLength)
	case KindText:
		t = "TEXT"
	case KindBoolean:
		t = "BOOLEAN"
	}
	if f.required {
		t += " NOT NULL"
	}
	return t
}

// check reports declaration errors; Define calls it once per field.
func (f *Field) check() error {
	if f.optErr != nil {
		return f.optErr
	}
	switch f.kind {
	case KindInteger, KindFloat, KindText, KindBoolean:
	case KindString:
		if f.maxLength < 1 {
			return fmt.Errorf("string field %q: max_length must be positive", f.name)
		}
	default:
		return fmt.Errorf("field %q: unknown kind %q", f.name, f.kind)
	}
	if f.def != nil {
		v, err := f.Validate(f.def)
		if err != nil {
			return fmt.Errorf("default: %w", err)
		}
		f.def = v
	}
	return nil
}

// Validate type-checks value against the field and returns it normalized
// (int64 for integers, float64 for floats). A nil value is accepted as is;
// nullability is checked when the row is saved.
func (f *Field) Validate(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch f.kind {
	case KindInteger:
		n, ok := AsInt64(value)
		if !ok {
			if isUnsigned(value) {
				return nil, f.invalid("%v is out of range for a 64-bit integer", value)
			}
			return nil, f.invalid("should be integer, got %T", value)
		}
		if f.nonNegative && n < 0 {
			return nil, f.invalid("should be non-negative, got %d", n)
		}
		return n, nil
	case KindFloat:
		var x float64
		switch v := value.(type) {
		case float64:
			x = v
		case float32:
			x = float64(v)
		default:
			return nil, f.invalid("should be float, got %T", value)
		}
		if f.nonNegative && x < 0 {
			return nil, f.invalid("should be non-negative, got %g", x)
		}
		return x, nil
	case KindString, KindText:
		s, ok := value.(string)
		if !ok {
			return nil, f.invalid("should be %s, got %T", f.kind, value)
		}
		if f.kind == KindString && utf8.RuneCountInString(s) > f.maxLength {
			return nil, f.invalid("length cannot exceed %d", f.maxLength)
		}
		return s, nil
	case KindBoolean:
		b, ok := value.(bool)
		if !ok {
			return nil, f.invalid("should be boolean, got %T", value)
		}
		return b, nil
	}
	return nil, f.invalid("unsupported kind %q", f.kind)
}

// Decode converts a value scanned from the database into the field's kind
// and validates it. Strings are returned as stored; removing CHAR(n) blank
// padding is up to the caller, which knows whether the database pads.
func (f *Field) Decode(raw any) (any, error) {
	if b, ok := raw.([]byte); ok {
		raw = string(b)
	}
	switch f.kind {
	case KindBoolean:
		// sqlite stores BOOLEAN as 0/1.
		if n, ok := AsInt64(raw); ok {
			raw = n != 0
		}
	case KindFloat:
		if n, ok := AsInt64(raw); ok {
			raw = float64(n)
		}
	case KindInteger:
		if s, ok := raw.(string); ok {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				raw = n
			}
		}
	}
	return f.Validate(raw)
}

// Parse converts command-line text into a validated value. The literal
// "null" (any case) parses to nil.
func (f *Field) Parse(text string) (any, error) {
	if strings.EqualFold(text, "null") {
		return nil, nil
	}
	var v any
	var err error
	switch f.kind {
	case KindInteger:
		v, err = strconv.ParseInt(text, 10, 64)
	case KindFloat:
		v, err = strconv.ParseFloat(text, 64)
	case KindBoolean:
		v, err = strconv.ParseBool(text)
	default:
		v = text
	}
	if err != nil {
		return nil, f.invalid("cannot parse %q as %s", text, f.kind)
	}
	return f.Validate(v)
}

func (f *Field) invalid(format string, args ...any) error {
	return types.NewFieldError(f.name, types.ErrValidation, fmt.Sprintf(format, args...))
}

// AsInt64 normalizes any Go integer type to int64. It reports false for
// non-integers and for unsigned values above math.MaxInt64.
func AsInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

func isUnsigned(v any) bool {
	switch v.(type) {
	case uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}
