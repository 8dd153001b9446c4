package config

import (
	"log/slog"

	// Database drivers of the supported dialects.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/syssam/persist/dialect"
	"github.com/syssam/persist/dialect/sql"
)

// DriverName returns the database/sql driver name registered for a dialect.
func DriverName(d string) string {
	switch d {
	case dialect.Postgres:
		return "postgres"
	case dialect.MySQL:
		return "mysql"
	default:
		return "sqlite"
	}
}

// Open opens the configured database and applies the pool settings. With
// Debug set, statements are logged to logger.
func Open(cfg *Config, logger *slog.Logger) (dialect.Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	drv, err := sql.Open(cfg.Dialect, DriverName(cfg.Dialect), cfg.DSN)
	if err != nil {
		return nil, err
	}
	db := drv.DB()
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.Debug {
		return sql.NewLogDriver(drv, logger), nil
	}
	return drv, nil
}
