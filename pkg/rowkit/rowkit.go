// Package rowkit provides the public API for binding entity schemas to a
// PostgreSQL or SQLite database. It exposes the engine types and a factory
// that opens a session and returns a Model, keeping the statement compiler
// and connection internal.
//
// Example:
//
//	users := schema.MustDefine("UserAccount",
//	    schema.String("name", 50, schema.Required()),
//	    schema.Integer("age", schema.NonNegative()),
//	)
//	m, err := rowkit.Open(ctx, types.Config{
//	    Driver:   types.DriverSQLite,
//	    Database: "app.db",
//	}, users, logger)
//	if err != nil {
//	    return err
//	}
//	defer m.Close()
//	if err := m.Create(ctx, false); err != nil {
//	    return err
//	}
//	ada, err := m.Insert(ctx, rowkit.Values{"name": "Ada", "age": 30})
package rowkit

import (
	"context"
	"iter"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/rowkit/internal/conn"
	"github.com/mesh-intelligence/rowkit/internal/orm"
	"github.com/mesh-intelligence/rowkit/pkg/schema"
	"github.com/mesh-intelligence/rowkit/pkg/types"
)

type (
	// Model runs table and row operations for one entity type.
	Model = orm.Model
	// Row is one entity instance, transient or persisted.
	Row = orm.Row
	// Values maps field names to values.
	Values = orm.Values
	// Cond is one equality condition.
	Cond = orm.Cond
	// Session is the connection contract a Model runs against.
	Session = orm.Session
	// Option configures a Model.
	Option = orm.Option
)

// Where builds an equality condition on id or a declared field.
func Where(field string, value any) Cond { return orm.Where(field, value) }

// WithLogger sets the logger a Model reports to.
func WithLogger(l *zap.Logger) Option { return orm.WithLogger(l) }

// Collect drains the sequence returned by Model.All.
func Collect(seq iter.Seq2[*Row, error]) ([]*Row, error) { return orm.Collect(seq) }

// Connect opens a session for cfg. Callers that bind several schemas to one
// database use it with NewModel; each Model still needs its own session.
func Connect(ctx context.Context, cfg types.Config, log *zap.Logger) (Session, error) {
	return conn.Open(ctx, cfg, log)
}

// NewModel binds s to an open session.
func NewModel(s *schema.Schema, sess Session, opts ...Option) *Model {
	return orm.NewModel(s, sess, opts...)
}

// Open connects to the database described by cfg and binds s to the new
// session. Close the Model to release it.
func Open(ctx context.Context, cfg types.Config, s *schema.Schema, log *zap.Logger) (*Model, error) {
	sess, err := Connect(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return NewModel(s, sess, WithLogger(log)), nil
}
