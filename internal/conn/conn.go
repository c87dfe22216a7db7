// Package conn owns a single database session. Statements run one at a time,
// auto-commit unless a unit of work is open, and their result rows are
// buffered for FetchOne and FetchAll.
package conn

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite

	"github.com/mesh-intelligence/rowkit/internal/statement"
	"github.com/mesh-intelligence/rowkit/pkg/types"
)

// driverNames maps configured drivers to database/sql registrations.
var driverNames = map[string]string{
	types.DriverPostgres: "pgx",
	types.DriverSQLite:   "sqlite",
}

// Conn is one live session. It is not safe for concurrent statement
// execution; the mutex only guards Close against a racing Execute.
type Conn struct {
	mu      sync.Mutex
	id      uuid.UUID
	db      *sqlx.DB
	sess    *sqlx.Conn
	tx      *sqlx.Tx
	dialect statement.Dialect
	log     *zap.Logger
	rows    [][]any
	closed  bool
}

// Open connects using cfg and pins one session from the driver.
// A nil logger disables logging.
func Open(ctx context.Context, cfg types.Config, log *zap.Logger) (*Conn, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dialect, err := statement.ForDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	log = log.With(zap.String("session", id.String()), zap.String("driver", cfg.Driver))
	log.Info("setting up the connection to database", zap.String("dsn", cfg.Redacted()))

	db, err := sqlx.Open(driverNames[cfg.Driver], cfg.DataSourceName())
	if err != nil {
		log.Error("opening database failed", zap.Error(err))
		return nil, fmt.Errorf("opening %s database: %w", cfg.Driver, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	sess, err := db.Connx(ctx)
	if err != nil {
		_ = db.Close()
		log.Error("acquiring session failed", zap.Error(err))
		return nil, fmt.Errorf("acquiring session: %w", err)
	}
	if err := sess.PingContext(ctx); err != nil {
		_ = sess.Close()
		_ = db.Close()
		log.Error("ping failed", zap.Error(err))
		return nil, fmt.Errorf("pinging %s database: %w", cfg.Driver, err)
	}

	log.Info("connection setup done")
	return &Conn{
		id:      id,
		db:      db,
		sess:    sess,
		dialect: dialect,
		log:     log,
	}, nil
}

// ID returns the session identifier carried in log lines.
func (c *Conn) ID() uuid.UUID { return c.id }

// Dialect returns the statement dialect of the underlying database.
func (c *Conn) Dialect() statement.Dialect { return c.dialect }

// Execute runs stmt on the session (or the open unit of work) and buffers
// any result rows, replacing rows left from the previous statement.
func (c *Conn) Execute(ctx context.Context, stmt statement.Statement) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		c.log.Error("execute on closed connection", zap.String("op", string(stmt.Op)))
		return types.ErrConnectionClosed
	}
	c.rows = nil
	c.log.Info("SQL query execution", zap.String("op", string(stmt.Op)), zap.String("sql", Summarize(stmt.Text)))

	if !stmt.Op.ReturnsRows() {
		var err error
		if c.tx != nil {
			_, err = c.tx.ExecContext(ctx, stmt.Text, stmt.Args...)
		} else {
			_, err = c.sess.ExecContext(ctx, stmt.Text, stmt.Args...)
		}
		return c.fail(stmt, err)
	}

	var rows *sqlx.Rows
	var err error
	if c.tx != nil {
		rows, err = c.tx.QueryxContext(ctx, stmt.Text, stmt.Args...)
	} else {
		rows, err = c.sess.QueryxContext(ctx, stmt.Text, stmt.Args...)
	}
	if err != nil {
		return c.fail(stmt, err)
	}
	defer rows.Close()

	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return c.fail(stmt, fmt.Errorf("scanning row: %w", err))
		}
		c.rows = append(c.rows, vals)
	}
	return c.fail(stmt, rows.Err())
}

// FetchOne returns the next buffered row of the last statement.
func (c *Conn) FetchOne() ([]any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.rows) == 0 {
		return nil, false
	}
	row := c.rows[0]
	c.rows = c.rows[1:]
	return row, true
}

// FetchAll returns every remaining buffered row of the last statement.
func (c *Conn) FetchAll() [][]any {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows := c.rows
	c.rows = nil
	return rows
}

// Unit runs fn inside one transaction on the session. It commits when fn
// returns nil and rolls back when fn returns an error or panics; a panic is
// re-raised after the rollback. A nested Unit joins the open one.
func (c *Conn) Unit(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.log.Error("unit of work on closed connection")
		return types.ErrConnectionClosed
	}
	if c.tx != nil {
		c.mu.Unlock()
		return fn(ctx)
	}
	tx, err := c.sess.BeginTxx(ctx, nil)
	if err != nil {
		c.mu.Unlock()
		c.log.Error("beginning transaction failed", zap.Error(err))
		return fmt.Errorf("beginning transaction: %w", err)
	}
	c.tx = tx
	c.mu.Unlock()

	defer func() {
		p := recover()
		c.mu.Lock()
		defer c.mu.Unlock()
		c.tx = nil
		if p != nil || err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				c.log.Warn("rollback failed", zap.Error(rbErr))
			}
			if p != nil {
				c.log.Error("unit of work panicked; rolled back", zap.Any("panic", p))
				panic(p)
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			c.log.Error("committing transaction failed", zap.Error(cErr))
			err = fmt.Errorf("committing transaction: %w", cErr)
		}
	}()

	return fn(ctx)
}

// Close releases the session and the driver pool. It is idempotent.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.rows = nil
	if c.tx != nil {
		_ = c.tx.Rollback()
		c.tx = nil
	}
	sessErr := c.sess.Close()
	dbErr := c.db.Close()
	c.log.Info("connection closed")
	if sessErr != nil {
		return sessErr
	}
	return dbErr
}

func (c *Conn) fail(stmt statement.Statement, err error) error {
	if err == nil {
		return nil
	}
	err = translate(err)
	c.log.Error("statement failed", zap.String("op", string(stmt.Op)), zap.Error(err))
	return fmt.Errorf("executing %s: %w", stmt.Op, err)
}
