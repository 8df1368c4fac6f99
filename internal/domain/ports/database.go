package ports

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the executor every store method receives: the shared pool for
// standalone reads, or an open transaction when the caller needs several
// writes to commit together. Stores never begin transactions themselves.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, arguments ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, arguments ...interface{}) pgx.Row
}

// TransactionManager runs a function inside a single write transaction.
// The reconciler relies on this to commit the transaction audit row and
// the invoice status transition atomically.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
}

// DBPort exposes the connection pool, for health probes and plain reads,
// alongside transaction control.
type DBPort interface {
	GetDB() *pgxpool.Pool
	TransactionManager
}
