package conn

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mesh-intelligence/rowkit/pkg/types"
)

// Postgres SQLSTATE codes for table existence.
const (
	pgDuplicateTable = "42P07"
	pgUndefinedTable = "42P01"
)

// translate maps driver errors about table existence onto the rowkit
// sentinels, keeping the driver error in the chain.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgDuplicateTable:
			return fmt.Errorf("%w: %w", types.ErrTableExists, err)
		case pgUndefinedTable:
			return fmt.Errorf("%w: %w", types.ErrTableNotFound, err)
		}
		return err
	}
	// modernc sqlite reports plain messages.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "no such table"):
		return fmt.Errorf("%w: %w", types.ErrTableNotFound, err)
	case strings.Contains(msg, "already exists") && strings.Contains(msg, "table"):
		return fmt.Errorf("%w: %w", types.ErrTableExists, err)
	}
	return err
}
