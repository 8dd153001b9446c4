// Package sql provides the database/sql implementation of the dialect
// interfaces together with the small statement builders the cascade needs.
//
// # Builder Types
//
//   - Builder: Low-level SQL string builder with identifier quoting
//   - InsertBuilder: INSERT statement builder with RETURNING support
//   - UpdateBuilder: UPDATE statement builder with SET and WHERE clauses
//   - Selector: SELECT builder used for existence checks
//
// # Dialect Support
//
// Identifier quoting and placeholders follow the dialect:
//
//	sql.Dialect(dialect.Postgres).Insert("users").Set("name", "a8m").Returning("id")
//	// INSERT INTO "users" ("name") VALUES ($1) RETURNING "id"
//
//	sql.Dialect(dialect.MySQL).Update("users").Set("name", "a8m").Where(sql.EQ("id", 1))
//	// UPDATE `users` SET `name` = ? WHERE `id` = ?
//
// # Driver Wrappers
//
// StatsDriver counts statements, commits and rollbacks; LogDriver writes
// every statement to a *slog.Logger at debug level:
//
//	drv := sql.NewLogDriver(sql.NewStatsDriver(sql.OpenDB(dialect.SQLite, db)), logger)
package sql
