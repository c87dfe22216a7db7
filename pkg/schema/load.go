package schema

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/rowkit/pkg/types"
)

// declFile is the YAML layout of a schema declaration file:
//
//	entities:
//	  - name: UserAccount
//	    fields:
//	      - {name: name, kind: string, max_length: 50, required: true}
//	      - {name: age, kind: integer, non_negative: true}
type declFile struct {
	Entities []declEntity `yaml:"entities"`
}

type declEntity struct {
	Name   string      `yaml:"name"`
	Fields []declField `yaml:"fields"`
}

type declField struct {
	Name        string `yaml:"name"`
	Kind        string `yaml:"kind"`
	Required    bool   `yaml:"required"`
	NonNegative bool   `yaml:"non_negative"`
	MaxLength   int    `yaml:"max_length"`
	Default     any    `yaml:"default"`
}

// LoadFile reads a declaration file into a new Registry.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return r, nil
}

// Load decodes YAML declarations and defines every entity in file order.
func Load(in io.Reader) (*Registry, error) {
	var decl declFile
	dec := yaml.NewDecoder(in)
	dec.KnownFields(true)
	if err := dec.Decode(&decl); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding declarations: %w", err)
	}

	reg := NewRegistry()
	for _, e := range decl.Entities {
		fields := make([]*Field, 0, len(e.Fields))
		for _, df := range e.Fields {
			f, err := df.field()
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", types.ErrInvalidSchema, e.Name, err)
			}
			fields = append(fields, f)
		}
		if _, err := reg.Define(e.Name, fields...); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func (df declField) field() (*Field, error) {
	kind := Kind(df.Kind)
	switch kind {
	case KindInteger, KindFloat, KindString, KindText, KindBoolean:
	case "":
		return nil, fmt.Errorf("field %q has no kind", df.Name)
	default:
		return nil, fmt.Errorf("field %q: unknown kind %q", df.Name, df.Kind)
	}
	if df.MaxLength != 0 && kind != KindString {
		return nil, fmt.Errorf("max_length is not valid for %s field %q", kind, df.Name)
	}

	var opts []Option
	if df.Required {
		opts = append(opts, Required())
	}
	if df.NonNegative {
		opts = append(opts, NonNegative())
	}
	if df.Default != nil {
		def := df.Default
		// YAML decodes whole numbers as int; float fields need float64.
		if n, ok := def.(int); ok && kind == KindFloat {
			def = float64(n)
		}
		opts = append(opts, Default(def))
	}
	return NewField(df.Name, kind, df.MaxLength, opts...), nil
}
