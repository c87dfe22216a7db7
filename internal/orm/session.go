// Package orm is the row lifecycle engine. A Model runs the table-level
// operations for one entity type over one Session; the Rows it produces
// borrow that Session and carry their own persisted or transient identity.
package orm

import (
	"context"

	"github.com/mesh-intelligence/rowkit/internal/statement"
)

// Session executes compiled statements on one database session.
// *conn.Conn is the production implementation.
type Session interface {
	Dialect() statement.Dialect
	Execute(ctx context.Context, stmt statement.Statement) error
	FetchOne() ([]any, bool)
	FetchAll() [][]any
	Unit(ctx context.Context, fn func(ctx context.Context) error) error
	Close() error
}
