// Package db wires pgx connection pooling and goose migrations for the
// service's Postgres-backed stores.
//
// Connect retries with a growing delay so restarts do not race the
// database; Migrate runs the embedded goose migrations on startup.
package db
