package sql

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/syssam/persist/dialect"
)

// QueryStats holds statement execution statistics.
type QueryStats struct {
	// Queries is the number of statements that returned rows.
	Queries atomic.Int64
	// Execs is the number of statements that did not return rows (writes).
	Execs atomic.Int64
	// Commits and Rollbacks count finished transactions.
	Commits   atomic.Int64
	Rollbacks atomic.Int64
	// Errors is the count of failed statements.
	Errors atomic.Int64
	// Duration is the total time spent executing statements, in nanoseconds.
	Duration atomic.Int64
}

// Stats returns a snapshot of the current statistics.
func (s *QueryStats) Stats() StatsSnapshot {
	return StatsSnapshot{
		Queries:   s.Queries.Load(),
		Execs:     s.Execs.Load(),
		Commits:   s.Commits.Load(),
		Rollbacks: s.Rollbacks.Load(),
		Errors:    s.Errors.Load(),
		Duration:  time.Duration(s.Duration.Load()),
	}
}

// Reset resets all statistics to zero.
func (s *QueryStats) Reset() {
	s.Queries.Store(0)
	s.Execs.Store(0)
	s.Commits.Store(0)
	s.Rollbacks.Store(0)
	s.Errors.Store(0)
	s.Duration.Store(0)
}

// StatsSnapshot is a point-in-time snapshot of query statistics.
type StatsSnapshot struct {
	Queries   int64
	Execs     int64
	Commits   int64
	Rollbacks int64
	Errors    int64
	Duration  time.Duration
}

// StatsDriver wraps a dialect.Driver with statement statistics collection.
type StatsDriver struct {
	dialect.Driver
	stats *QueryStats
}

// NewStatsDriver wraps a Driver with statistics collection.
//
//	drv := sql.NewStatsDriver(sql.OpenDB(dialect.SQLite, db))
//	p, err := persist.New(drv)
//	...
//	fmt.Println(drv.QueryStats().Stats().Execs)
func NewStatsDriver(drv dialect.Driver) *StatsDriver {
	return &StatsDriver{Driver: drv, stats: &QueryStats{}}
}

// QueryStats returns the underlying QueryStats for reading statistics.
func (d *StatsDriver) QueryStats() *QueryStats {
	return d.stats
}

// Query executes a query and records statistics.
func (d *StatsDriver) Query(ctx context.Context, query string, args, v any) error {
	return d.stats.record(&d.stats.Queries, func() error { return d.Driver.Query(ctx, query, args, v) })
}

// Exec executes a statement and records statistics.
func (d *StatsDriver) Exec(ctx context.Context, query string, args, v any) error {
	return d.stats.record(&d.stats.Execs, func() error { return d.Driver.Exec(ctx, query, args, v) })
}

// Tx starts a transaction that also records statistics.
func (d *StatsDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &StatsTx{Tx: tx, stats: d.stats}, nil
}

func (s *QueryStats) record(counter *atomic.Int64, fn func() error) error {
	start := time.Now()
	err := fn()
	counter.Add(1)
	s.Duration.Add(int64(time.Since(start)))
	if err != nil {
		s.Errors.Add(1)
	}
	return err
}

// StatsTx wraps a transaction with statistics collection.
type StatsTx struct {
	dialect.Tx
	stats *QueryStats
}

// Query executes a query within the transaction and records statistics.
func (tx *StatsTx) Query(ctx context.Context, query string, args, v any) error {
	return tx.stats.record(&tx.stats.Queries, func() error { return tx.Tx.Query(ctx, query, args, v) })
}

// Exec executes a statement within the transaction and records statistics.
func (tx *StatsTx) Exec(ctx context.Context, query string, args, v any) error {
	return tx.stats.record(&tx.stats.Execs, func() error { return tx.Tx.Exec(ctx, query, args, v) })
}

// Commit commits the transaction and counts it.
func (tx *StatsTx) Commit() error {
	err := tx.Tx.Commit()
	if err == nil {
		tx.stats.Commits.Add(1)
	}
	return err
}

// Rollback rolls back the transaction and counts it.
func (tx *StatsTx) Rollback() error {
	err := tx.Tx.Rollback()
	if err == nil {
		tx.stats.Rollbacks.Add(1)
	}
	return err
}

// LogDriver wraps a Driver and logs every statement with slog.
type LogDriver struct {
	dialect.Driver
	logger *slog.Logger
}

// NewLogDriver wraps a Driver with debug logging. A nil logger uses slog.Default.
func NewLogDriver(drv dialect.Driver, logger *slog.Logger) *LogDriver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogDriver{Driver: drv, logger: logger}
}

// Query logs and executes a query.
func (d *LogDriver) Query(ctx context.Context, query string, args, v any) error {
	d.logger.DebugContext(ctx, "query", "sql", query, "args", args)
	return d.Driver.Query(ctx, query, args, v)
}

// Exec logs and executes a statement.
func (d *LogDriver) Exec(ctx context.Context, query string, args, v any) error {
	d.logger.DebugContext(ctx, "exec", "sql", query, "args", args)
	return d.Driver.Exec(ctx, query, args, v)
}

// Tx starts a transaction with debug logging.
func (d *LogDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	d.logger.DebugContext(ctx, "begin transaction")
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &LogTx{Tx: tx, logger: d.logger}, nil
}

// LogTx wraps a transaction with debug logging.
type LogTx struct {
	dialect.Tx
	logger *slog.Logger
}

// Query logs and executes a query within the transaction.
func (tx *LogTx) Query(ctx context.Context, query string, args, v any) error {
	tx.logger.DebugContext(ctx, "tx query", "sql", query, "args", args)
	return tx.Tx.Query(ctx, query, args, v)
}

// Exec logs and executes a statement within the transaction.
func (tx *LogTx) Exec(ctx context.Context, query string, args, v any) error {
	tx.logger.DebugContext(ctx, "tx exec", "sql", query, "args", args)
	return tx.Tx.Exec(ctx, query, args, v)
}

// Commit logs and commits the transaction.
func (tx *LogTx) Commit() error {
	tx.logger.Debug("commit transaction")
	return tx.Tx.Commit()
}

// Rollback logs and rolls back the transaction.
func (tx *LogTx) Rollback() error {
	tx.logger.Debug("rollback transaction")
	return tx.Tx.Rollback()
}

var (
	_ dialect.Driver = (*StatsDriver)(nil)
	_ dialect.Tx     = (*StatsTx)(nil)
	_ dialect.Driver = (*LogDriver)(nil)
	_ dialect.Tx     = (*LogTx)(nil)
)
