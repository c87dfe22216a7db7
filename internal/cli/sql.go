package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rowkit/internal/statement"
	"github.com/mesh-intelligence/rowkit/pkg/rowkit"
	"github.com/mesh-intelligence/rowkit/pkg/schema"
)

var sqlOps = []string{"exists", "create", "drop", "select", "insert", "update", "delete"}

func newSQLCmd(a *app) *cobra.Command {
	var bind bool
	cmd := &cobra.Command{
		Use:   "sql <op> <entity> [name=value ...]",
		Short: "Print the statement an operation would run",
		Long: `Print the SQL for an operation without connecting. Ops: ` + strings.Join(sqlOps, ", ") + `.
Values are shown as escaped literals for reading; the statements that run
always bind them as parameters. Use --bind to see the text and arguments
as sent.

Example:
  rowkit sql create UserAccount
  rowkit sql select UserAccount name=Ada
  rowkit sql update UserAccount id=3 name=Ada age=31`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.entity(args[1])
			if err != nil {
				return err
			}
			d, err := statement.ForDriver(a.v.GetString(cfgKeyDriver))
			if err != nil {
				return err
			}
			stmt, err := compileOp(statement.New(d), s, args[0], args[2:])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if bind {
				fmt.Fprintln(w, stmt.Text)
				for i, arg := range stmt.Args {
					fmt.Fprintf(w, "  $%d = %s\n", i+1, statement.Literal(arg))
				}
				return nil
			}
			fmt.Fprintln(w, stmt.Render())
			return nil
		},
	}
	cmd.Flags().BoolVar(&bind, "bind", false, "print parameterized text and arguments")
	return cmd
}

// compileOp builds the statement for op on s from name=value arguments.
func compileOp(c statement.Compiler, s *schema.Schema, op string, args []string) (statement.Statement, error) {
	table := s.Table()
	switch op {
	case "exists":
		return c.Exists(table), nil
	case "create":
		cols := make([]statement.Column, 0, len(s.Fields()))
		for _, f := range s.Fields() {
			cols = append(cols, statement.Column{Name: f.Name(), Type: f.SQLType()})
		}
		return c.Create(table, cols), nil
	case "drop":
		return c.Drop(table), nil
	case "select":
		if len(args) == 0 {
			return c.SelectAll(table, s.Columns()), nil
		}
		conds, err := statementConds(s, args)
		if err != nil {
			return statement.Statement{}, err
		}
		return c.Select(table, s.Columns(), conds, nil), nil
	case "delete":
		conds, err := statementConds(s, args)
		if err != nil {
			return statement.Statement{}, err
		}
		if len(conds) == 0 {
			return statement.Statement{}, fmt.Errorf("%w: delete needs at least one condition", errUsage)
		}
		return c.Delete(table, conds, nil), nil
	case "insert", "update":
		return compileWrite(c, s, op, args)
	}
	return statement.Statement{}, fmt.Errorf("%w: unknown op %q (ops: %s)", errUsage, op, strings.Join(sqlOps, ", "))
}

// compileWrite renders insert and update with the declared defaults filled
// in, the way Save would send them.
func compileWrite(c statement.Compiler, s *schema.Schema, op string, args []string) (statement.Statement, error) {
	var id int64
	var rest []string
	for _, arg := range args {
		if v, ok := strings.CutPrefix(arg, schema.IDColumn+"="); ok && op == "update" {
			conds, err := parseConds(s, []string{v})
			if err != nil {
				return statement.Statement{}, err
			}
			id = conds[0].Value.(int64)
			continue
		}
		rest = append(rest, arg)
	}
	if op == "update" && id == 0 {
		return statement.Statement{}, fmt.Errorf("%w: update needs id=<n>", errUsage)
	}

	given, err := parseValues(s, rest)
	if err != nil {
		return statement.Statement{}, err
	}
	names := s.FieldNames()
	values := make([]any, len(names))
	for i, f := range s.Fields() {
		values[i] = f.Default()
		if v, ok := given[f.Name()]; ok {
			values[i] = v
		}
	}
	if op == "insert" {
		return c.Insert(s.Table(), names, values), nil
	}
	return c.Update(s.Table(), names, values, id), nil
}

func statementConds(s *schema.Schema, args []string) ([]statement.Cond, error) {
	conds, err := parseConds(s, args)
	if err != nil {
		return nil, err
	}
	return toStatementConds(conds), nil
}

func toStatementConds(conds []rowkit.Cond) []statement.Cond {
	out := make([]statement.Cond, len(conds))
	for i, c := range conds {
		out[i] = statement.Cond{Field: c.Field, Value: c.Value}
	}
	return out
}
