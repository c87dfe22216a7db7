// Package statement compiles the fixed set of CRUD and DDL statements rowkit
// issues. Values are bound through placeholders and never interpolated into
// statement text. Render produces a literal form for display only.
package statement

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mesh-intelligence/rowkit/pkg/types"
)

// Dialect captures the per-database differences in the statement set.
type Dialect struct {
	Name string
	// BindType is the sqlx placeholder style (sqlx.DOLLAR, sqlx.QUESTION).
	BindType int
	// ExistsQuery counts base tables named by its single placeholder.
	ExistsQuery string
	// IDColumn is the surrogate key definition appended to CREATE TABLE.
	IDColumn string
	// PadsChar is set when CHAR(n) values come back blank-padded to n.
	PadsChar bool
}

// Postgres targets PostgreSQL through pgx.
var Postgres = Dialect{
	Name:        types.DriverPostgres,
	BindType:    sqlx.DOLLAR,
	ExistsQuery: "SELECT COUNT(*) FROM information_schema.tables WHERE table_name=? AND table_type='BASE TABLE';",
	IDColumn:    "id SERIAL PRIMARY KEY",
	PadsChar:    true,
}

// SQLite targets SQLite 3.35+ (RETURNING support).
var SQLite = Dialect{
	Name:        types.DriverSQLite,
	BindType:    sqlx.QUESTION,
	ExistsQuery: "SELECT COUNT(*) FROM sqlite_master WHERE name=? AND type='table';",
	IDColumn:    "id INTEGER PRIMARY KEY AUTOINCREMENT",
}

// ForDriver returns the dialect for a configured driver name.
func ForDriver(driver string) (Dialect, error) {
	switch driver {
	case types.DriverPostgres:
		return Postgres, nil
	case types.DriverSQLite:
		return SQLite, nil
	}
	return Dialect{}, fmt.Errorf("%w: %q", types.ErrDriverUnknown, driver)
}
