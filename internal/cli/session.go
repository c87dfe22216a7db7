package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mesh-intelligence/rowkit/pkg/rowkit"
	"github.com/mesh-intelligence/rowkit/pkg/schema"
)

// registry loads the schema declaration file.
func (a *app) registry() (*schema.Registry, error) {
	path := a.v.GetString(cfgKeySchema)
	if path == "" {
		return nil, fmt.Errorf("%w: no schema file; pass --schema or set schema in config.yaml", errUsage)
	}
	return schema.LoadFile(path)
}

// entity looks up a declared entity by type or table name.
func (a *app) entity(name string) (*schema.Schema, error) {
	reg, err := a.registry()
	if err != nil {
		return nil, err
	}
	s, ok := reg.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: entity %q is not declared (declared: %v)", errUsage, name, reg.Sorted())
	}
	return s, nil
}

// open binds the named entity to a new session.
func (a *app) open(ctx context.Context, name string) (*rowkit.Model, error) {
	s, err := a.entity(name)
	if err != nil {
		return nil, err
	}
	cfg, err := a.connConfig()
	if err != nil {
		return nil, err
	}
	return rowkit.Open(ctx, cfg, s, a.log)
}

// rowJSON is the JSON form of a row.
type rowJSON struct {
	ID     *int64         `json:"id"`
	Fields map[string]any `json:"fields"`
}

func toJSON(r *rowkit.Row) rowJSON {
	out := rowJSON{Fields: r.Values()}
	if id, ok := r.ID(); ok {
		out.ID = &id
	}
	return out
}

// printRows writes rows as text blocks separated by blank lines, or as a
// JSON array.
func (a *app) printRows(w io.Writer, rows []*rowkit.Row) error {
	if a.jsonMode {
		out := make([]rowJSON, len(rows))
		for i, r := range rows {
			out[i] = toJSON(r)
		}
		return writeJSON(w, out)
	}
	for i, r := range rows {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, r.String())
	}
	return nil
}

func (a *app) printRow(w io.Writer, r *rowkit.Row) error {
	if a.jsonMode {
		return writeJSON(w, toJSON(r))
	}
	_, err := fmt.Fprintln(w, r.String())
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
