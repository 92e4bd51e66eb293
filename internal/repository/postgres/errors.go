package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrSchemaMissing is returned when the tables have not been migrated.
var ErrSchemaMissing = errors.New("database schema missing, run the migrate command")

const (
	codeUndefinedTable  = "42P01"
	codeUndefinedObject = "42704" // unknown type, e.g. vector without the extension
)

func classify(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUndefinedTable, codeUndefinedObject:
			return fmt.Errorf("%w: %s", ErrSchemaMissing, pgErr.Message)
		}
	}
	return err
}
