package statement

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Op names a statement shape.
type Op string

// Statement shapes.
const (
	OpExists         Op = "exists"
	OpCreate         Op = "create"
	OpDrop           Op = "drop"
	OpSelectAll      Op = "select_all"
	OpSelectFiltered Op = "select_filtered"
	OpSelectByID     Op = "select_by_id"
	OpInsert         Op = "insert"
	OpUpdate         Op = "update"
	OpDeleteFiltered Op = "delete_filtered"
	OpDeleteByID     Op = "delete_by_id"
)

// Statement is compiled text plus the values bound to its placeholders.
type Statement struct {
	Op   Op
	Text string
	Args []any

	// template is Text before placeholder rebinding; Render walks it.
	template string
}

// Column is a name and SQL type pair for CREATE TABLE.
type Column struct {
	Name string
	Type string
}

// Cond is one equality condition. A nil Value compiles to IS NULL.
type Cond struct {
	Field string
	Value any
}

// Compiler renders statements for one dialect. The zero value is not usable;
// call New.
type Compiler struct {
	dialect Dialect
}

// New returns a Compiler for d.
func New(d Dialect) Compiler {
	return Compiler{dialect: d}
}

// Dialect returns the compiler's dialect.
func (c Compiler) Dialect() Dialect { return c.dialect }

func (c Compiler) build(op Op, template string, args ...any) Statement {
	return Statement{
		Op:       op,
		Text:     sqlx.Rebind(c.dialect.BindType, template),
		Args:     args,
		template: template,
	}
}

// Exists counts base tables named table.
func (c Compiler) Exists(table string) Statement {
	return c.build(OpExists, c.dialect.ExistsQuery, table)
}

// Create defines table with cols followed by the surrogate id column.
func (c Compiler) Create(table string, cols []Column) Statement {
	defs := make([]string, 0, len(cols)+1)
	for _, col := range cols {
		defs = append(defs, col.Name+" "+col.Type)
	}
	defs = append(defs, c.dialect.IDColumn)
	return c.build(OpCreate, fmt.Sprintf("CREATE TABLE %s (%s);", table, strings.Join(defs, ", ")))
}

// Drop removes table if present.
func (c Compiler) Drop(table string) Statement {
	return c.build(OpDrop, fmt.Sprintf("DROP TABLE IF EXISTS %s;", table))
}

// SelectAll scans every row of table.
func (c Compiler) SelectAll(table string, fields []string) Statement {
	return c.build(OpSelectAll, fmt.Sprintf("SELECT %s FROM %s;", strings.Join(fields, ", "), table))
}

// Select fetches rows matching every condition. With no conditions it falls
// back to SelectByID(id).
func (c Compiler) Select(table string, fields []string, conds []Cond, id any) Statement {
	if len(conds) == 0 {
		return c.SelectByID(table, fields, id)
	}
	where, args := whereClause(conds)
	return c.build(OpSelectFiltered,
		fmt.Sprintf("SELECT %s FROM %s WHERE %s;", strings.Join(fields, ", "), table, where), args...)
}

// SelectByID fetches the row with the given id.
func (c Compiler) SelectByID(table string, fields []string, id any) Statement {
	return c.build(OpSelectByID,
		fmt.Sprintf("SELECT %s FROM %s WHERE id=?;", strings.Join(fields, ", "), table), id)
}

// Insert adds one row and returns its generated id.
func (c Compiler) Insert(table string, fields []string, values []any) Statement {
	if len(fields) == 0 {
		return c.build(OpInsert, fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING id;", table))
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(fields)), ", ")
	return c.build(OpInsert,
		fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id;", table, strings.Join(fields, ", "), marks),
		values...)
}

// Update overwrites fields of the row with the given id.
func (c Compiler) Update(table string, fields []string, values []any, id any) Statement {
	sets := make([]string, len(fields))
	for i, f := range fields {
		sets[i] = f + "=?"
	}
	if len(sets) == 0 {
		sets = []string{"id=id"}
	}
	args := make([]any, 0, len(values)+1)
	args = append(args, values...)
	args = append(args, id)
	return c.build(OpUpdate,
		fmt.Sprintf("UPDATE %s SET %s WHERE id=?;", table, strings.Join(sets, ", ")), args...)
}

// Delete removes rows matching every condition. With no conditions it falls
// back to DeleteByID(id).
func (c Compiler) Delete(table string, conds []Cond, id any) Statement {
	if len(conds) == 0 {
		return c.DeleteByID(table, id)
	}
	where, args := whereClause(conds)
	return c.build(OpDeleteFiltered, fmt.Sprintf("DELETE FROM %s WHERE %s;", table, where), args...)
}

// DeleteByID removes the row with the given id.
func (c Compiler) DeleteByID(table string, id any) Statement {
	return c.build(OpDeleteByID, fmt.Sprintf("DELETE FROM %s WHERE id=?;", table), id)
}

func whereClause(conds []Cond) (string, []any) {
	parts := make([]string, len(conds))
	args := make([]any, 0, len(conds))
	for i, cond := range conds {
		if cond.Value == nil {
			parts[i] = cond.Field + " IS NULL"
			continue
		}
		parts[i] = cond.Field + "=?"
		args = append(args, cond.Value)
	}
	return strings.Join(parts, " AND "), args
}

// ReturnsRows reports whether statements of this shape produce a result set.
func (o Op) ReturnsRows() bool {
	switch o {
	case OpExists, OpSelectAll, OpSelectFiltered, OpSelectByID, OpInsert:
		return true
	}
	return false
}
