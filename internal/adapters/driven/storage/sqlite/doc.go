// Package sqlite provides a SQLite-backed implementation of the citescope
// storage ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. A single database holds:
//
//   - CitationStore: normalised citation events, unique per
//     (query, engine, url, collection interval)
//   - QueryStore: tracked queries and their owner domains
//   - ResultStore: persisted analysis runs
//
// # Schema
//
// The schema is managed through numbered migrations embedded from the
// migrations/ directory. Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.citescope/data/citescope.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. SQLite runs in WAL mode with a
// busy timeout.
package sqlite
