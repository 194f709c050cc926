package database

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// undefinedTableCode is the Postgres SQLSTATE for "relation does not exist".
const undefinedTableCode = "42P01"

// IsUndefinedTable reports whether err means the queried table does not exist
// in this deployment. Optional tables degrade to empty results on this error.
func IsUndefinedTable(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == undefinedTableCode
	}
	// sqlite, used by the test suite
	return strings.Contains(err.Error(), "no such table")
}
