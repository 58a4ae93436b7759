package storage

import (
	"context"
	"database/sql"

	"github.com/georgysavva/scany/v2/sqlscan"
)

// Execer runs the statements that write settings and likes.
// *sql.DB and *sql.Tx both satisfy it.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Querier reads rows that are scanned with sqlscan
type Querier = sqlscan.Querier

// ExecQuerier is the handle held by the settings store and the favorites
// service, which both read and write.
type ExecQuerier interface {
	Execer
	Querier
}

var (
	_ ExecQuerier = (*sql.DB)(nil)
	_ ExecQuerier = (*sql.Tx)(nil)
)
