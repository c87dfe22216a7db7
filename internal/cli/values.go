package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/rowkit/pkg/rowkit"
	"github.com/mesh-intelligence/rowkit/pkg/schema"
	"github.com/mesh-intelligence/rowkit/pkg/types"
)

var errUsage = errors.New("usage")

// assignment is one name=value argument.
type assignment struct {
	name string
	text string
}

func splitAssignments(args []string) ([]assignment, error) {
	out := make([]assignment, 0, len(args))
	for _, arg := range args {
		name, text, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: expected name=value, got %q", errUsage, arg)
		}
		out = append(out, assignment{name: name, text: text})
	}
	return out, nil
}

// parseValues turns name=value arguments into validated field values.
func parseValues(s *schema.Schema, args []string) (rowkit.Values, error) {
	as, err := splitAssignments(args)
	if err != nil {
		return nil, err
	}
	values := make(rowkit.Values, len(as))
	for _, a := range as {
		f, ok := s.Field(a.name)
		if !ok {
			return nil, types.NewFieldError(a.name, types.ErrUnknownField, "not declared on "+s.Name())
		}
		v, err := f.Parse(a.text)
		if err != nil {
			return nil, err
		}
		values[a.name] = v
	}
	return values, nil
}

// parseConds turns name=value arguments into conditions. A single bare
// argument is taken as an id.
func parseConds(s *schema.Schema, args []string) ([]rowkit.Cond, error) {
	if len(args) == 1 && !strings.Contains(args[0], "=") {
		args = []string{schema.IDColumn + "=" + args[0]}
	}
	as, err := splitAssignments(args)
	if err != nil {
		return nil, err
	}
	conds := make([]rowkit.Cond, 0, len(as))
	for _, a := range as {
		if a.name == schema.IDColumn {
			id, err := strconv.ParseInt(a.text, 10, 64)
			if err != nil {
				return nil, types.NewFieldError(a.name, types.ErrValidation, fmt.Sprintf("cannot parse %q as integer", a.text))
			}
			conds = append(conds, rowkit.Where(a.name, id))
			continue
		}
		f, ok := s.Field(a.name)
		if !ok {
			return nil, types.NewFieldError(a.name, types.ErrUnknownField, "not declared on "+s.Name())
		}
		v, err := f.Parse(a.text)
		if err != nil {
			return nil, err
		}
		conds = append(conds, rowkit.Where(a.name, v))
	}
	return conds, nil
}
