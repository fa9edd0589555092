package ports

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the querying surface shared by a connection pool and an open
// transaction. Scoped repository methods accept it so the same code path runs
// inside a transactional scope or, in fallback mode, directly on the pool.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Transactor runs a unit of work in an atomic scope when the backing store
// supports one. The DB handed to fn is the open transaction on the atomic
// path and the plain pool on the fallback path; callers treat it opaquely.
type Transactor interface {
	WithinOptionalTx(ctx context.Context, fn func(ctx context.Context, db DB) error) error
}
