// Package dialect provides the storage abstraction used by the persist cascade.
//
// This package defines the interfaces every storage backend must satisfy so
// that a whole record graph can be written through one transaction,
// regardless of whether the database is PostgreSQL, MySQL, or SQLite.
//
// # Dialect Constants
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// # Driver Interface
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// # Transaction Interface
//
// A Tx exposes the same Exec and Query methods as the driver, bound to a
// single connection, plus Commit and Rollback:
//
//	type Tx interface {
//	    ExecQuerier
//	    Commit() error
//	    Rollback() error
//	}
//
// Every statement of one cascade runs against the same Tx, so a failure or a
// vetoed save anywhere in the graph rolls back every write made so far.
//
// # Sub-packages
//
//   - dialect/sql: database/sql driver wrapper and statement builders
//   - dialect/sql/sqlgraph: row-level create/update/pivot primitives
package dialect
