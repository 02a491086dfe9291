package db

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// undefinedColumn is the Postgres error code raised when a statement
// references a column the table does not have.
const undefinedColumn = "42703"

// IsSchemaDrift reports whether err means the statement used a column that
// does not exist yet, i.e. the database schema is behind the code. Writers
// respond by retrying with the base column set.
func IsSchemaDrift(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == undefinedColumn
}

// IsNotFound reports whether err is a no-rows lookup result.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
